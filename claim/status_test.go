// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package claim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paramsweep/slurmbatch/lockfile"
)

func TestScanTalliesMarkersByState(t *testing.T) {
	dir := t.TempDir()

	for i, ext := range map[int]string{0: "done", 1: "done", 2: "err", 3: "lck"} {
		m := NamesFor(dir, "sweep", "7", i)
		var path string
		switch ext {
		case "done":
			path = m.Done
		case "err":
			path = m.Err
		case "lck":
			path = m.Lck
		}
		f, err := lockfile.ExclusiveCreate(path)
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}

	summary, err := Scan(dir, "sweep", "7")
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Done)
	assert.Equal(t, 1, summary.Errored)
	assert.Equal(t, 1, summary.InProgress)
}

func TestScanIgnoresOtherJobs(t *testing.T) {
	dir := t.TempDir()

	m1 := NamesFor(dir, "sweep", "7", 0)
	f, err := lockfile.ExclusiveCreate(m1.Done)
	require.NoError(t, err)
	f.Close()

	m2 := NamesFor(dir, "other", "9", 0)
	f2, err := lockfile.ExclusiveCreate(m2.Done)
	require.NoError(t, err)
	f2.Close()

	summary, err := Scan(dir, "sweep", "7")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
}

func TestScanOnMissingDirReturnsEmptySummary(t *testing.T) {
	summary, err := Scan("/nonexistent/lock/dir", "sweep", "7")
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
}
