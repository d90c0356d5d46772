// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package batchscript

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paramsweep/slurmbatch/jobspec"
)

// Dependency describes a `--dependency=<Status>:<id>,<id>,...` line. An
// empty IDs slice renders no dependency line at all.
type Dependency struct {
	Status string
	IDs    []int
}

// Options controls how a batch script is rendered. JobSpec being non-nil
// selects the multi-script (array job) template; a nil JobSpec selects the
// single-script template, matching spec.md §4.E's selection table.
type Options struct {
	JobName     string
	Partition   string
	BinaryPath  string
	JobSpec     jobspec.Spec
	Limit       int
	JobsPerNode int
	MaxNodes    int
	UniqueID    string
	Dependency  Dependency
	LogDir      string
	LockDir     string
	Flags       []string
}

// renderData is the flattened, template-ready projection of Options.
type renderData struct {
	JobName        string
	Partition      string
	BinaryPath     string
	NumJobs        int
	JobsPerNode    int
	LastArrayIndex int
	UniqueID       string
	DependencyLine string
	OutputLine     string
	LogDir         string
	LockDir        string
	Flags          string
}

// NumJobs returns the task count the rendered script will coordinate:
// jobspec.Count(opts.JobSpec) capped by opts.Limit, or 1 when opts.JobSpec
// is empty (the single-script case has exactly one invocation).
func NumJobs(opts Options) int {
	if opts.JobSpec == nil {
		return 1
	}
	n := jobspec.Count(opts.JobSpec)
	if opts.Limit > 0 && opts.Limit < n {
		return opts.Limit
	}
	return n
}

func dependencyLine(dep Dependency) string {
	if dep.Status == "" || len(dep.IDs) == 0 {
		return ""
	}
	ids := make([]string, len(dep.IDs))
	for i, id := range dep.IDs {
		ids[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("%s:%s", dep.Status, strings.Join(ids, ","))
}

func toData(opts Options) renderData {
	var output string
	if opts.JobSpec != nil {
		output = fmt.Sprintf("#SBATCH --output %s/slurm-%s-%%A_%%a.out", opts.LogDir, opts.JobName)
	} else {
		output = fmt.Sprintf("#SBATCH --output %s/slurm-%s-%%A.out", opts.LogDir, opts.JobName)
	}

	lockDir := opts.LockDir
	if lockDir == "" {
		lockDir = "locks"
	}

	return renderData{
		JobName:        opts.JobName,
		Partition:      opts.Partition,
		BinaryPath:     opts.BinaryPath,
		NumJobs:        NumJobs(opts),
		JobsPerNode:    opts.JobsPerNode,
		LastArrayIndex: opts.MaxNodes - 1,
		UniqueID:       opts.UniqueID,
		DependencyLine: dependencyLine(opts.Dependency),
		OutputLine:     output,
		LogDir:         opts.LogDir,
		LockDir:        lockDir,
		Flags:          strings.Join(opts.Flags, " "),
	}
}

// Render produces the batch script text for opts, selecting the
// single-script or multi-script template per spec.md §4.E's table.
func Render(opts Options) (string, error) {
	data := toData(opts)

	tmpl := singleTmpl
	if opts.JobSpec != nil {
		tmpl = multiTmpl
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("batchscript: render: %w", err)
	}
	return b.String(), nil
}

// WriteFile renders opts and writes the result to path, truncating any
// prior copy. spec.md §3 treats the submission script as disposable and
// regenerated on every prep, never appended to.
func WriteFile(path string, opts Options) error {
	script, err := Render(opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		return fmt.Errorf("batchscript: write %s: %w", path, err)
	}
	return nil
}
