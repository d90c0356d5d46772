// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package submit shells out to the scheduler's submission and accounting
// commands and parses their output.
package submit

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"

	"github.com/paramsweep/slurmbatch/batchscript"
	batcherrors "github.com/paramsweep/slurmbatch/pkg/errors"
)

// scriptPath is the single submission script filename spec.md §3 and §6
// mandate: regenerated and overwritten on every prep/run/Chain invocation,
// never derived per job name.
const scriptPath = "run-slurm.sh"

// submittedJobPattern matches sbatch's success line exactly, per spec.md
// §4.F: "Submitted batch job <id>", allowing surrounding whitespace but
// nothing else on the line.
var submittedJobPattern = regexp.MustCompile(`^\s*Submitted batch job (\d+)\s*$`)

// Runner executes a scheduler command and returns its captured stdout and
// stderr, letting tests substitute a fake without invoking a real
// subprocess.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct{}

// Run implements Runner using exec.CommandContext.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Submit runs `sbatch <scriptPath>` through runner and parses the resulting
// job ID. A non-empty stderr is a submission failure (CategorySubmission).
// Stdout that does not match the expected pattern is not an error — per
// spec.md §8 property 8, malformed scheduler output must not raise; the
// caller receives jobID == 0.
func Submit(ctx context.Context, runner Runner, scriptPath string) (int, error) {
	stdout, stderr, err := runner.Run(ctx, "sbatch", scriptPath)
	if err != nil {
		return 0, batcherrors.NewSubmissionError("sbatch failed to run", err)
	}
	if len(bytes.TrimSpace(stderr)) > 0 {
		return 0, batcherrors.NewSubmissionError(fmt.Sprintf("sbatch wrote to stderr: %s", bytes.TrimSpace(stderr)), nil)
	}

	match := submittedJobPattern.FindStringSubmatch(string(stdout))
	if match == nil {
		return 0, nil
	}

	var jobID int
	if _, err := fmt.Sscanf(match[1], "%d", &jobID); err != nil {
		return 0, nil
	}
	return jobID, nil
}

// Account runs `sacct` for slurmID and returns its raw stdout, the final
// accounting report a cleanup job prints once the array has finished.
func Account(ctx context.Context, runner Runner, slurmID int) (string, error) {
	stdout, stderr, err := runner.Run(ctx, "sacct", "-j", fmt.Sprint(slurmID), "--format=JobID,JobName,State,ExitCode")
	if err != nil {
		return "", batcherrors.NewSlurmBatchErrorWithCause(batcherrors.ErrorCodeSubmissionFailed, "sacct failed to run", err)
	}
	if len(bytes.TrimSpace(stderr)) > 0 {
		return "", batcherrors.NewSlurmBatchError(batcherrors.ErrorCodeSubmissionFailed, fmt.Sprintf("sacct wrote to stderr: %s", bytes.TrimSpace(stderr)))
	}
	return string(stdout), nil
}

// Chain renders and submits a single-script "_finish" cleanup job that
// depends on mainID via an afterany dependency, implementing spec.md
// §4.F's chained submission: the cleanup job runs once mainID's array has
// finished, regardless of whether any individual task failed.
func Chain(ctx context.Context, runner Runner, mainID int, opts batchscript.Options) (int, error) {
	cleanupOpts := opts
	cleanupOpts.JobSpec = nil
	cleanupOpts.JobName = opts.JobName + "_finish"
	cleanupOpts.Dependency = batchscript.Dependency{Status: "afterany", IDs: []int{mainID}}
	cleanupOpts.Flags = append(append([]string{}, opts.Flags...), "cleanup", fmt.Sprint(mainID))

	if err := batchscript.WriteFile(scriptPath, cleanupOpts); err != nil {
		return 0, err
	}

	return Submit(ctx, runner, scriptPath)
}
