// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package slurmbatch is a parameterized batch job runner for the Slurm
// scheduler: declare a job space as a set of axes and a job function, and
// the library enumerates the Cartesian product, renders a submission
// script, submits it, and coordinates many worker processes across many
// nodes through filesystem lock markers — no central coordinator, no
// database, just exclusive file creation.
//
// A caller builds a Runner with New, then hands its Command to main:
//
//	runner := slurmbatch.New(spec, job)
//	if err := runner.Command().ExecuteContext(context.Background()); err != nil {
//		os.Exit(1)
//	}
//
// The job function runs once per concrete job in the space; the runner
// takes care of claiming indices and recording done/err markers. An index
// whose worker crashed while holding its lck is not retried until that lck
// file is removed.
package slurmbatch
