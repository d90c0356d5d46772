// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package claim implements the per-task-index state machine that lets many
// worker processes, coordinated only through a shared filesystem, claim and
// execute a disjoint subset of a job space without a central coordinator.
package claim

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/paramsweep/slurmbatch/lockfile"
	batcherrors "github.com/paramsweep/slurmbatch/pkg/errors"
)

// Outcome describes how a single claim attempt resolved.
type Outcome int

const (
	// OutcomeSkippedDone means the index was already terminal as done
	// before this worker attempted it.
	OutcomeSkippedDone Outcome = iota

	// OutcomeSkippedErr means the index was already terminal as err
	// before this worker attempted it; it is not retried within this run.
	OutcomeSkippedErr

	// OutcomeSkippedLocked means another worker holds the lck for this
	// index, or won the race to create it.
	OutcomeSkippedLocked

	// OutcomeSucceeded means this worker executed the job and it returned
	// normally; a done marker was created.
	OutcomeSucceeded

	// OutcomeFailed means this worker executed the job and it returned a
	// recoverable error; an err marker was created.
	OutcomeFailed
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeSkippedDone:
		return "skipped-done"
	case OutcomeSkippedErr:
		return "skipped-err"
	case OutcomeSkippedLocked:
		return "skipped-locked"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Markers names the three marker files for one (job_name, job_id, index)
// tuple, all siblings in the same lock directory.
type Markers struct {
	Lck  string
	Done string
	Err  string
}

// NamesFor builds the Markers for one task index, following the
// <name>-<id>-<index>.{lck,done,err} naming convention.
func NamesFor(lockDir, jobName, jobID string, taskIndex int) Markers {
	base := fmt.Sprintf("%s-%s-%d", jobName, jobID, taskIndex)
	return Markers{
		Lck:  filepath.Join(lockDir, base+".lck"),
		Done: filepath.Join(lockDir, base+".done"),
		Err:  filepath.Join(lockDir, base+".err"),
	}
}

// Attempt runs the claim procedure from the specification for one task
// index: check for a terminal marker, attempt exclusive creation of lck,
// re-check for a terminal marker to close the race between the first check
// and the lck winning, invoke fn, and record the outcome.
//
// A Fatal-classified error from fn (per pkg/errors.Classify) is returned
// unwrapped from Attempt after lck is still removed; no err marker is
// written, so the index remains available for the scheduler record — it is
// neither done nor err, and its lck is gone, exactly like a crash.
func Attempt(m Markers, fn func() error) (Outcome, error) {
	if lockfile.Exists(m.Done) {
		return OutcomeSkippedDone, nil
	}
	if lockfile.Exists(m.Err) {
		return OutcomeSkippedErr, nil
	}

	f, err := lockfile.ExclusiveCreate(m.Lck)
	if err != nil {
		if errors.Is(err, lockfile.ErrExists) {
			return OutcomeSkippedLocked, nil
		}
		return OutcomeSkippedLocked, err
	}
	f.Close()

	// Step 4: re-check after winning the lck. Closes the race where two
	// workers both passed the checks above and one created the lck while
	// the other was about to.
	if lockfile.Exists(m.Done) {
		_ = lockfile.Remove(m.Lck)
		return OutcomeSkippedDone, nil
	}
	if lockfile.Exists(m.Err) {
		_ = lockfile.Remove(m.Lck)
		return OutcomeSkippedErr, nil
	}

	defer func() { _ = lockfile.Remove(m.Lck) }()

	jobErr := fn()
	if jobErr == nil {
		if err := touch(m.Done); err != nil {
			return OutcomeSucceeded, err
		}
		return OutcomeSucceeded, nil
	}

	if batcherrors.Classify(jobErr) == batcherrors.Fatal {
		return OutcomeFailed, jobErr
	}

	if err := touch(m.Err); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeFailed, nil
}

func touch(path string) error {
	f, err := lockfile.ExclusiveCreate(path)
	if err != nil {
		return err
	}
	return f.Close()
}
