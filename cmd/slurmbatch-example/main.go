// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Command slurmbatch-example wires the slurmbatch library to a small job
// space and a toy job function, the way a real caller registers its own
// axes and work. It is illustrative, not a production pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/paramsweep/slurmbatch"
	"github.com/paramsweep/slurmbatch/jobspec"
)

func main() {
	spec := jobspec.Spec{
		jobspec.Axis{
			{"region": "us-west"},
			{"region": "us-east"},
			{"region": "eu-central"},
		},
		jobspec.Axis{
			{"scenario": "baseline"},
			{"scenario": "stress"},
		},
	}

	job := func(ctx context.Context, params jobspec.Assignment, metadata map[string]string) error {
		fmt.Printf("running region=%s scenario=%s\n", params["region"], params["scenario"])
		select {
		case <-time.After(10 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	}

	runner := slurmbatch.New(spec, job).WithOnFinish(
		func(_ context.Context, slurmID int, _ string) error {
			fmt.Printf("job %d finished\n", slurmID)
			return nil
		},
	)

	if err := runner.Command().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
