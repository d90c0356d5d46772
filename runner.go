// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package slurmbatch

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/paramsweep/slurmbatch/internal/cli"
	"github.com/paramsweep/slurmbatch/jobspec"
	"github.com/paramsweep/slurmbatch/worker"
)

// JobFunc is the caller's unit of work for one concrete job: params is the
// merged assignment for the claimed index, metadata its stringified form.
type JobFunc = worker.JobFunc

// OnFinishFunc runs once the main array job's scheduler accounting report
// has been fetched, the Go equivalent of the source's optional onfinish
// hook passed to its cleanup entry point.
type OnFinishFunc func(ctx context.Context, slurmID int, report string) error

// Runner binds a job space and a job function to the six-subcommand CLI
// surface (prep, run, do_job, wait, status, cleanup). It replaces the
// source's decorator-based binding (a Python function wrapped at
// definition time) with explicit registration, since Go has no equivalent
// of a parameterized function decorator.
type Runner struct {
	spec     jobspec.Spec
	job      JobFunc
	onFinish OnFinishFunc
}

// New builds a Runner over spec and job. spec may be nil or empty, which
// selects the single-script (non-array) submission mode.
func New(spec jobspec.Spec, job JobFunc) *Runner {
	return &Runner{spec: spec, job: job}
}

// WithOnFinish attaches a hook invoked by the cleanup subcommand after it
// fetches the main job's accounting report, and returns r for chaining.
func (r *Runner) WithOnFinish(fn OnFinishFunc) *Runner {
	r.onFinish = fn
	return r
}

// Command builds the cobra command tree for r: prep, run, do_job, wait,
// status, cleanup, ready to be executed by main.
func (r *Runner) Command() *cobra.Command {
	return cli.NewRootCommand(r.spec, r.job, cli.Options{OnFinish: r.onFinish})
}
