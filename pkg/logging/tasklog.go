// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// NewTaskSink opens (creating if needed) <dir>/run-<jobName>-<jobID>-<taskIndex>.log
// and returns a Logger writing to it, plus the file so the worker loop can
// close it when the task is done. This mirrors the source's pattern of
// attaching a logging.FileHandler for the duration of one task and
// detaching it on exit, generalized to slog's handler model.
func NewTaskSink(dir, jobName, jobID string, taskIndex int) (Logger, *os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	name := fmt.Sprintf("run-%s-%s-%d.log", jobName, jobID, taskIndex)
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open task log %s: %w", path, err)
	}

	cfg := &Config{
		Level:   slog.LevelDebug,
		Format:  FormatText,
		Output:  f,
		Version: "unknown",
	}

	return NewLogger(cfg), f, nil
}
