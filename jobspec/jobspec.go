// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package jobspec implements deterministic enumeration of a job space: the
// Cartesian product of an ordered list of axes, and the big-endian
// mixed-radix mapping from a job index to a concrete job.
package jobspec

import "fmt"

// Assignment is a partial parameter assignment: one entry in an axis.
type Assignment map[string]any

// Axis is an ordered sequence of partial assignments; one dimension of the
// job space.
type Axis []Assignment

// Spec is the ordered list of axes whose Cartesian product defines every
// job. The first axis varies slowest and the last axis fastest: grouping by
// the first axis's value yields contiguous index ranges, which is what makes
// partial reruns scoped to one axis value practical.
type Spec []Axis

// Count returns the total number of jobs in spec: the product of the axis
// lengths. An empty spec has a count of 1 (the empty merge).
func Count(spec Spec) int {
	n := 1
	for _, axis := range spec {
		n *= len(axis)
	}
	return n
}

// JobAt returns the concrete job at index, merging one assignment per axis.
// index must be in [0, Count(spec)). The decomposition is big-endian
// mixed-radix: the first axis varies slowest (outermost), the last axis
// fastest, and on a key
// collision between axes, the later axis's value wins.
//
//	iⱼ = (index ÷ ∏_{m>j} |Aₘ|) mod |Aⱼ|
//
// JobAt is pure and depends only on spec and index: two processes that
// never share memory compute identical results from the index alone.
func JobAt(spec Spec, index int) (Assignment, error) {
	n := Count(spec)
	if index < 0 || index >= n {
		return nil, fmt.Errorf("jobspec: index %d out of range [0, %d)", index, n)
	}

	job := make(Assignment)
	for j := range spec {
		divisor := 1
		for m := j + 1; m < len(spec); m++ {
			divisor *= len(spec[m])
		}
		i := (index / divisor) % len(spec[j])
		for k, v := range spec[j][i] {
			job[k] = v
		}
	}
	return job, nil
}

// Enumerate returns an iterator over every concrete job in index order.
// Go's range-over-func lets callers consume jobs one at a time without
// materializing the whole space, matching a worker's need to look at only
// the one index it claimed.
func Enumerate(spec Spec) func(yield func(int, Assignment) bool) {
	return func(yield func(int, Assignment) bool) {
		n := Count(spec)
		for i := 0; i < n; i++ {
			job, err := JobAt(spec, i)
			if err != nil {
				return
			}
			if !yield(i, job) {
				return
			}
		}
	}
}

// CallArgs is the job invocation payload: the concrete job's parameters,
// augmented with Metadata, the stringified form of each parameter. Both are
// delivered to the user's job function.
type CallArgs struct {
	Params   Assignment
	Metadata map[string]string
}

// BuildCallArgs computes the invocation payload for the job at index.
func BuildCallArgs(spec Spec, index int) (CallArgs, error) {
	job, err := JobAt(spec, index)
	if err != nil {
		return CallArgs{}, err
	}

	metadata := make(map[string]string, len(job))
	for k, v := range job {
		metadata[k] = fmt.Sprintf("%v", v)
	}

	return CallArgs{Params: job, Metadata: metadata}, nil
}
