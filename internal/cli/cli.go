// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package cli builds the cobra command tree for a parameterized batch job
// runner: prep, run, do_job, wait, status, and cleanup, closing over the
// caller's job space and job function.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/paramsweep/slurmbatch/batchscript"
	"github.com/paramsweep/slurmbatch/claim"
	"github.com/paramsweep/slurmbatch/jobspec"
	"github.com/paramsweep/slurmbatch/pkg/config"
	"github.com/paramsweep/slurmbatch/pkg/logging"
	"github.com/paramsweep/slurmbatch/pkg/retry"
	"github.com/paramsweep/slurmbatch/submit"
	"github.com/paramsweep/slurmbatch/worker"
)

const scriptPath = "run-slurm.sh"

// Options configures the root command built by NewRootCommand. OnFinish, if
// set, is invoked by cleanup once the scheduler's accounting report for the
// main job has been fetched — the Go equivalent of the source's optional
// onfinish hook.
type Options struct {
	OnFinish func(ctx context.Context, slurmID int, report string) error
}

// layoutFlags are the flags shared by prep and run: the batch-script layout
// options from spec.md §4.E's table.
type layoutFlags struct {
	limit       int
	jobsPerNode int
	maxNodes    int
	jobName     string
	partition   string
	dependency  []int
	logDir      string
	uniqueID    string
}

func (lf *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&lf.limit, "limit", "l", 0, "cap the number of task indices dispatched")
	cmd.Flags().IntVarP(&lf.jobsPerNode, "jobs_per_node", "n", 0, "worker processes launched per array element")
	cmd.Flags().IntVarP(&lf.maxNodes, "maxnodes", "x", 0, "array size")
	cmd.Flags().StringVarP(&lf.jobName, "jobname", "j", "", "job name, embedded in lock filenames")
	cmd.Flags().StringVarP(&lf.partition, "partition", "p", "", "scheduler partition")
	cmd.Flags().IntSliceVarP(&lf.dependency, "dependency", "d", nil, "job ids this submission depends on")
	cmd.Flags().StringVarP(&lf.logDir, "logdir", "L", "", "directory for scheduler and per-task logs")
	cmd.Flags().StringVarP(&lf.uniqueID, "uniqueid", "u", "", "identifier embedded in lock filenames")
}

func (lf *layoutFlags) batchscriptOptions(spec jobspec.Spec, binaryPath string) batchscript.Options {
	cfg := config.NewDefault()
	cfg.Load()

	opts := batchscript.Options{
		JobName:     firstNonEmpty(lf.jobName, cfg.JobName),
		Partition:   firstNonEmpty(lf.partition, cfg.Partition),
		BinaryPath:  binaryPath,
		Limit:       lf.limit,
		JobsPerNode: firstPositive(lf.jobsPerNode, cfg.JobsPerNode),
		MaxNodes:    firstPositive(lf.maxNodes, cfg.MaxNodes),
		UniqueID:    firstNonEmpty(lf.uniqueID, cfg.UniqueID),
		LogDir:      firstNonEmpty(lf.logDir, cfg.LogDir),
	}
	if len(spec) > 0 {
		opts.JobSpec = spec
	}
	if len(lf.dependency) > 0 {
		opts.Dependency = batchscript.Dependency{Status: "afterany", IDs: lf.dependency}
	}
	return opts
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

// NewRootCommand builds the full command tree for spec/job: prep, run,
// do_job, wait, status, cleanup. spec and job are closed over by every
// subcommand, matching spec.md §9's explicit-registration replacement for
// the source's decorator-bound entry point.
func NewRootCommand(spec jobspec.Spec, job worker.JobFunc, opts Options) *cobra.Command {
	logger := logging.NewLogger(logging.DefaultConfig())

	root := &cobra.Command{
		Use:   "slurmbatch",
		Short: "Parameterized batch job runner for the Slurm scheduler",
	}

	root.AddCommand(newPrepCommand(spec))
	root.AddCommand(newRunCommand(spec))
	root.AddCommand(newDoJobCommand(spec, job, logger))
	root.AddCommand(newWaitCommand())
	root.AddCommand(newStatusCommand())
	root.AddCommand(newCleanupCommand(opts))

	return root
}

func binaryPath() string {
	if p, err := os.Executable(); err == nil {
		return p
	}
	return os.Args[0]
}

func newPrepCommand(spec jobspec.Spec) *cobra.Command {
	var lf layoutFlags
	cmd := &cobra.Command{
		Use:   "prep",
		Short: "Render run-slurm.sh without submitting it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return batchscript.WriteFile(scriptPath, lf.batchscriptOptions(spec, binaryPath()))
		},
	}
	lf.register(cmd)
	return cmd
}

func newRunCommand(spec jobspec.Spec) *cobra.Command {
	var lf layoutFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Render, submit the main job, and chain a cleanup job afterany",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			batchOpts := lf.batchscriptOptions(spec, binaryPath())
			if err := batchscript.WriteFile(scriptPath, batchOpts); err != nil {
				return err
			}

			runner := submit.ExecRunner{}
			mainID, err := submit.Submit(ctx, runner, scriptPath)
			if err != nil {
				return err
			}
			if mainID == 0 {
				return errors.New("slurmbatch: sbatch did not report a job id")
			}
			fmt.Printf("submitted main job %d\n", mainID)

			cleanupID, err := submit.Chain(ctx, runner, mainID, batchOpts)
			if err != nil {
				return err
			}
			fmt.Printf("submitted cleanup job %d (afterany:%d)\n", cleanupID, mainID)
			return nil
		},
	}
	lf.register(cmd)
	return cmd
}

func newDoJobCommand(spec jobspec.Spec, job worker.JobFunc, logger logging.Logger) *cobra.Command {
	var jobName, jobID, logDir string
	var numJobs int

	cmd := &cobra.Command{
		Use:   "do_job",
		Short: "Worker loop: claim and execute indices on this node",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := worker.Config{
				JobName: jobName,
				JobID:   jobID,
				LockDir: "locks",
				LogDir:  logDir,
				NumJobs: numJobs,
				Spec:    spec,
				Logger:  logger,
			}
			return worker.Run(cmd.Context(), cfg, job)
		},
	}
	cmd.Flags().StringVar(&jobName, "job_name", "", "job name")
	cmd.Flags().StringVar(&jobID, "job_id", "", "job id")
	cmd.Flags().IntVar(&numJobs, "num_jobs", 0, "number of task indices in the job space")
	cmd.Flags().StringVar(&logDir, "logdir", "log", "directory for scheduler and per-task logs")
	return cmd
}

func newWaitCommand() *cobra.Command {
	var jobName, jobID string
	var numJobs int

	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Poll locks/ every 10s until every index has a done marker",
		RunE: func(cmd *cobra.Command, args []string) error {
			backoff := retry.NewConstantBackoff(10*time.Second, 0)
			return retry.Retry(cmd.Context(), backoff, func() error {
				summary, err := claim.Scan("locks", jobName, jobID)
				if err != nil {
					return err
				}
				if summary.Done >= numJobs {
					return nil
				}
				return fmt.Errorf("slurmbatch: %d/%d indices done", summary.Done, numJobs)
			})
		},
	}
	cmd.Flags().StringVar(&jobName, "job_name", "", "job name")
	cmd.Flags().StringVar(&jobID, "job_id", "", "job id")
	cmd.Flags().IntVar(&numJobs, "num_jobs", 0, "number of task indices to wait for")
	return cmd
}

func newStatusCommand() *cobra.Command {
	var jobName, jobID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report done/in-progress/errored counts from the lock directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := claim.Scan("locks", jobName, jobID)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().StringVarP(&jobName, "job_name", "j", "", "job name")
	cmd.Flags().StringVarP(&jobID, "job_id", "u", "", "job id")
	return cmd
}

// printStatus renders summary as a four-column table — Jobs, Done, In
// Progress, Errored — title-cased the way the teacher's own example
// programs format display labels.
func printStatus(w io.Writer, summary claim.Summary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		titleCase("jobs"), titleCase("done"), titleCase("in progress"), titleCase("errored"))
	fmt.Fprintf(tw, "%d\t%d\t%d\t%d\n",
		summary.Total, summary.Done, summary.InProgress, summary.Errored)
	tw.Flush()
}

func newCleanupCommand(opts Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup slurm_id",
		Short: "Print the scheduler's accounting report for slurm_id and run the onfinish hook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var slurmID int
			if _, err := fmt.Sscanf(args[0], "%d", &slurmID); err != nil {
				return fmt.Errorf("slurmbatch: invalid slurm_id %q: %w", args[0], err)
			}

			report, err := submit.Account(cmd.Context(), submit.ExecRunner{}, slurmID)
			if err != nil {
				return err
			}
			fmt.Print(report)

			if opts.OnFinish != nil {
				return opts.OnFinish(cmd.Context(), slurmID, report)
			}
			return nil
		},
	}
	return cmd
}

var titleCaser = cases.Title(language.English)

func titleCase(s string) string {
	return titleCaser.String(s)
}
