// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskSinkWritesToExpectedPath(t *testing.T) {
	dir := t.TempDir()

	logger, f, err := NewTaskSink(dir, "climate", "42", 3)
	require.NoError(t, err)
	require.NotNil(t, logger)
	defer f.Close()

	logger.Debug("beginning job", "index", 3)

	wantPath := filepath.Join(dir, "run-climate-42-3.log")
	data, err := os.ReadFile(wantPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "beginning job")
}

func TestNewTaskSinkCreatesLogDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	_, f, err := NewTaskSink(dir, "job", "1", 0)
	require.NoError(t, err)
	defer f.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
