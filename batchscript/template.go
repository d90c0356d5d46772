// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package batchscript renders the bash script submitted to the scheduler:
// a common #SBATCH preamble, followed by either a single invocation of the
// runner binary or an array of worker processes that race each other
// through the filesystem claim protocol.
package batchscript

import "text/template"

// commonHeader is the #SBATCH preamble shared by every job, single or
// array. The dependency line is emitted only when the caller's Options name
// a dependency; the output line is always emitted.
const commonHeader = `#!/bin/bash
#SBATCH --job-name={{.JobName}}
#SBATCH --partition={{.Partition}}
#SBATCH --account=co_laika
#SBATCH --qos=savio_lowprio
#SBATCH --nodes=1
#SBATCH --time=72:00:00
#SBATCH --requeue
{{if .DependencyLine}}#SBATCH --dependency={{.DependencyLine}}
{{end}}{{.OutputLine}}
`

// multiTemplate is rendered when Options.JobSpec is non-nil: it fans out jobs_per_node worker processes per array task, each
// racing the others for task indices via the filesystem lock protocol, then
// waits for all of them before the array task exits.
const multiTemplate = commonHeader + `#SBATCH --array=0-{{.LastArrayIndex}}

mkdir -p {{.LogDir}}
mkdir -p {{.LockDir}}

for i in $(seq 1 {{.JobsPerNode}})
do
    nohup {{.BinaryPath}} do_job --job_name {{.JobName}} \
--job_id {{.UniqueID}} --num_jobs {{.NumJobs}} --logdir "{{.LogDir}}" {{.Flags}} \
> {{.LogDir}}/nohup-{{.JobName}}-{{.UniqueID}}-${SLURM_ARRAY_TASK_ID}-$i.out &
done

{{.BinaryPath}} wait --job_name {{.JobName}} \
--job_id {{.UniqueID}} --num_jobs {{.NumJobs}} {{.Flags}}
`

// singleTemplate is rendered when Options.JobSpec is nil: the script
// invokes the binary exactly once with the caller's flags, no array, no
// claim protocol.
const singleTemplate = commonHeader + `
{{.BinaryPath}} {{.Flags}}
`

var (
	multiTmpl  = template.Must(template.New("multi").Parse(multiTemplate))
	singleTmpl = template.Must(template.New("single").Parse(singleTemplate))
)
