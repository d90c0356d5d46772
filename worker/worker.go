// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package worker runs the per-process claim loop: for each task index in its
// assigned range, claim it through the filesystem lock protocol and, if won,
// invoke the caller's job function with a scoped per-task log sink.
package worker

import (
	"context"
	"fmt"

	"github.com/paramsweep/slurmbatch/claim"
	"github.com/paramsweep/slurmbatch/jobspec"
	batcherrors "github.com/paramsweep/slurmbatch/pkg/errors"
	"github.com/paramsweep/slurmbatch/pkg/logging"
)

// JobFunc is the caller-supplied unit of work for one task index. metadata
// is the stringified form of params, computed once by jobspec.BuildCallArgs.
type JobFunc func(ctx context.Context, params jobspec.Assignment, metadata map[string]string) error

// Config parameterizes one worker process's pass over the job space.
type Config struct {
	// JobName, JobID, and LockDir together locate the marker files for
	// every task index this worker may claim.
	JobName string
	JobID   string
	LockDir string

	// LogDir is the directory per-task log files are written to; empty
	// disables the per-task file sink and logs only go to Logger.
	LogDir string

	// NumJobs is the exclusive upper bound on task indices to attempt,
	// normally jobspec.Count(spec) capped by the runner's configured limit.
	NumJobs int

	// Spec is consulted only to build each claimed index's call payload;
	// worker.Run does not enumerate it eagerly.
	Spec jobspec.Spec

	// Logger receives a Debug-level line per skip/claim decision and an
	// Error-level line per recoverable job failure. Defaults to
	// logging.NoOpLogger if nil.
	Logger logging.Logger
}

type interactiveKey struct{}

// WithInteractive marks ctx as running under worker.RunInteractive, so a job
// function that inspects its context can tell single-shot debugging runs
// apart from coordinated worker passes.
func WithInteractive(ctx context.Context) context.Context {
	return context.WithValue(ctx, interactiveKey{}, true)
}

// IsInteractive reports whether ctx was produced by WithInteractive.
func IsInteractive(ctx context.Context) bool {
	v, _ := ctx.Value(interactiveKey{}).(bool)
	return v
}

// Run attempts every task index in [0, cfg.NumJobs) in order, claiming each
// through the filesystem lock protocol and invoking fn for the indices this
// process wins. A Fatal-classified error from fn propagates out of Run
// immediately, stopping the loop before any later index is attempted. A
// context cancellation observed between indices also stops the loop without
// starting a new claim.
func Run(ctx context.Context, cfg Config, fn JobFunc) error {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	for i := 0; i < cfg.NumJobs; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		args, err := jobspec.BuildCallArgs(cfg.Spec, i)
		if err != nil {
			return fmt.Errorf("worker: build call args for index %d: %w", i, err)
		}

		m := claim.NamesFor(cfg.LockDir, cfg.JobName, cfg.JobID, i)
		outcome, err := claim.Attempt(m, func() error {
			return runOne(ctx, cfg, i, args, fn, logger)
		})
		if err != nil {
			return err
		}

		switch outcome {
		case claim.OutcomeSkippedDone, claim.OutcomeSkippedErr, claim.OutcomeSkippedLocked:
			logger.Debug("skipped task index", "index", i, "outcome", outcome.String())
		case claim.OutcomeFailed:
			logger.Error("task index failed", "index", i)
		case claim.OutcomeSucceeded:
			logger.Debug("task index succeeded", "index", i)
		}
	}

	return nil
}

func runOne(ctx context.Context, cfg Config, index int, args jobspec.CallArgs, fn JobFunc, fallback logging.Logger) error {
	taskLogger := fallback
	if cfg.LogDir != "" {
		sink, f, err := logging.NewTaskSink(cfg.LogDir, cfg.JobName, cfg.JobID, index)
		if err == nil {
			defer f.Close()
			taskLogger = sink
		} else {
			fallback.Warn("could not open task log sink, logging to default logger", "index", index, "error", err)
		}
	}

	ctx = logging.ContextWithJob(ctx, cfg.JobName, cfg.JobID)
	ctx = logging.ContextWithTaskIndex(ctx, index)
	taskLogger = taskLogger.WithContext(ctx)

	taskLogger.Info("starting task", "index", index, "params", args.Params)

	err := fn(ctx, args.Params, args.Metadata)
	if err != nil {
		if batcherrors.Classify(err) == batcherrors.Fatal {
			logging.LogError(taskLogger, err, "task aborted: fatal error", "index", index)
			return err
		}
		logging.LogError(taskLogger, err, "task failed", "index", index)
		return err
	}

	taskLogger.Info("task completed", "index", index)
	return nil
}

// RunInteractive runs exactly one task index directly, bypassing the claim
// protocol entirely: no lck/done/err markers are written regardless of fn's
// outcome. This is the single-machine debugging entry point — a developer
// iterating on a job function wants to rerun the same index repeatedly
// without fighting its own done marker.
func RunInteractive(ctx context.Context, spec jobspec.Spec, index int, fn JobFunc) error {
	args, err := jobspec.BuildCallArgs(spec, index)
	if err != nil {
		return fmt.Errorf("worker: build call args for index %d: %w", index, err)
	}
	return fn(WithInteractive(ctx), args.Params, args.Metadata)
}
