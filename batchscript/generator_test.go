// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package batchscript

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paramsweep/slurmbatch/jobspec"
)

func TestNumJobsSingleScript(t *testing.T) {
	assert.Equal(t, 1, NumJobs(Options{}))
}

func TestNumJobsMultiScriptCappedByLimit(t *testing.T) {
	spec := jobspec.Spec{jobspec.Axis{{"x": 1}, {"x": 2}, {"x": 3}, {"x": 4}}}
	assert.Equal(t, 4, NumJobs(Options{JobSpec: spec}))
	assert.Equal(t, 2, NumJobs(Options{JobSpec: spec, Limit: 2}))
	assert.Equal(t, 4, NumJobs(Options{JobSpec: spec, Limit: 100}))
}

func TestRenderSingleScriptHasNoArrayDirective(t *testing.T) {
	opts := Options{
		JobName:    "sweep",
		Partition:  "savio2",
		BinaryPath: "/usr/bin/slurmbatch",
		LogDir:     "log",
		Flags:      []string{"--jobname", "sweep"},
	}

	out, err := Render(opts)
	require.NoError(t, err)
	assert.Contains(t, out, "#SBATCH --job-name=sweep")
	assert.Contains(t, out, "#SBATCH --partition=savio2")
	assert.NotContains(t, out, "--array=")
	assert.Contains(t, out, "/usr/bin/slurmbatch --jobname sweep")
	assert.NotContains(t, out, "#SBATCH --dependency=")
}

func TestRenderMultiScriptSelectedWhenJobSpecPresent(t *testing.T) {
	spec := jobspec.Spec{jobspec.Axis{{"x": 1}, {"x": 2}}}
	opts := Options{
		JobName:     "sweep",
		Partition:   "savio2",
		BinaryPath:  "/usr/bin/slurmbatch",
		JobSpec:     spec,
		JobsPerNode: 24,
		MaxNodes:    10,
		UniqueID:    `"${SLURM_ARRAY_JOB_ID}"`,
		LogDir:      "log",
	}

	out, err := Render(opts)
	require.NoError(t, err)
	assert.Contains(t, out, "#SBATCH --array=0-9")
	assert.Contains(t, out, "seq 1 24")
	assert.Contains(t, out, "do_job --job_name sweep")
	assert.Contains(t, out, "--num_jobs 2")
	assert.Contains(t, out, `wait --job_name sweep`)
}

func TestRenderDependencyLinePresentOnlyWhenIDsGiven(t *testing.T) {
	withDep, err := Render(Options{
		JobName:    "cleanup",
		BinaryPath: "/usr/bin/slurmbatch",
		LogDir:     "log",
		Dependency: Dependency{Status: "afterany", IDs: []int{123}},
	})
	require.NoError(t, err)
	assert.Contains(t, withDep, "#SBATCH --dependency=afterany:123")

	withoutDep, err := Render(Options{
		JobName:    "cleanup",
		BinaryPath: "/usr/bin/slurmbatch",
		LogDir:     "log",
	})
	require.NoError(t, err)
	assert.NotContains(t, withoutDep, "--dependency=")
}

func TestWriteFileTruncatesPriorContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run-slurm.sh")

	require.NoError(t, os.WriteFile(path, []byte("stale content that should be fully replaced"), 0o644))

	err := WriteFile(path, Options{JobName: "sweep", BinaryPath: "/usr/bin/slurmbatch", LogDir: "log"})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "stale content")
	assert.Contains(t, string(content), "#SBATCH --job-name=sweep")
}
