// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package slurmbatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paramsweep/slurmbatch/jobspec"
)

func TestNewBuildsRunnableCommandTree(t *testing.T) {
	spec := jobspec.Spec{jobspec.Axis{{"x": 1}}}
	job := func(context.Context, jobspec.Assignment, map[string]string) error { return nil }

	runner := New(spec, job)
	cmd := runner.Command()

	expected := []string{"prep", "run", "do_job", "wait", "status", "cleanup"}
	for _, name := range expected {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		assert.Truef(t, found, "subcommand %q not registered", name)
	}
}

func TestWithOnFinishReturnsSameRunnerForChaining(t *testing.T) {
	runner := New(nil, func(context.Context, jobspec.Assignment, map[string]string) error { return nil })
	chained := runner.WithOnFinish(func(context.Context, int, string) error { return nil })
	assert.Same(t, runner, chained)
}
