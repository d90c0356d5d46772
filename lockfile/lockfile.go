// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

// Package lockfile is the single atomicity primitive the claim protocol
// relies on: exclusive creation of a marker file. The create-or-fail
// decision must be atomic with respect to other processes on the same
// filesystem, so it is implemented directly with the OS's O_EXCL flag
// rather than emulated with a stat-then-create check.
package lockfile

import (
	"errors"
	"fmt"
	"os"
)

// ErrExists is returned when path already exists; the caller should treat
// this as "another worker already holds this marker" and move on.
var ErrExists = errors.New("lockfile: already exists")

// ExclusiveCreate creates path only if it does not already exist. On
// success the returned file's handle must still be closed by the caller;
// deletion of path is always the caller's separate responsibility — this
// function only supplies the atomic create-or-fail decision.
func ExclusiveCreate(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrExists, path)
		}
		return nil, err
	}
	return f, nil
}

// Exists reports whether path is present. Callers that need to distinguish
// a permission error from genuine absence should stat path themselves.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes path if present; a missing file is not an error, since the
// claim protocol calls this from multiple exit paths where the file may
// already be gone.
func Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
