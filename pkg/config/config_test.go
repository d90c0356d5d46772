// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()

	require.NotNil(t, cfg)
	assert.Equal(t, "slurm_job", cfg.JobName)
	assert.Equal(t, "savio2", cfg.Partition)
	assert.Equal(t, 24, cfg.JobsPerNode)
	assert.Equal(t, 100, cfg.MaxNodes)
	assert.Equal(t, `"${SLURM_ARRAY_JOB_ID}"`, cfg.UniqueID)
	assert.Equal(t, "log", cfg.LogDir)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.False(t, cfg.Debug)
}

func TestConfigLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(*testing.T, *Config)
	}{
		{
			name:    "jobname from environment",
			envVars: map[string]string{"SLURMBATCH_JOBNAME": "climate-avg"},
			expected: func(t *testing.T, c *Config) {
				assert.Equal(t, "climate-avg", c.JobName)
			},
		},
		{
			name:    "partition from environment",
			envVars: map[string]string{"SLURMBATCH_PARTITION": "savio_bigmem"},
			expected: func(t *testing.T, c *Config) {
				assert.Equal(t, "savio_bigmem", c.Partition)
			},
		},
		{
			name:    "jobs per node from environment",
			envVars: map[string]string{"SLURMBATCH_JOBS_PER_NODE": "8"},
			expected: func(t *testing.T, c *Config) {
				assert.Equal(t, 8, c.JobsPerNode)
			},
		},
		{
			name:    "poll interval from environment",
			envVars: map[string]string{"SLURMBATCH_POLL_INTERVAL": "2s"},
			expected: func(t *testing.T, c *Config) {
				assert.Equal(t, 2*time.Second, c.PollInterval)
			},
		},
		{
			name:    "debug from environment",
			envVars: map[string]string{"SLURMBATCH_DEBUG": "true"},
			expected: func(t *testing.T, c *Config) {
				assert.True(t, c.Debug)
			},
		},
		{
			name: "all environment variables",
			envVars: map[string]string{
				"SLURMBATCH_JOBNAME":       "test",
				"SLURMBATCH_PARTITION":     "debug",
				"SLURMBATCH_JOBS_PER_NODE": "4",
				"SLURMBATCH_MAXNODES":      "10",
				"SLURMBATCH_LOGDIR":        "/tmp/logs",
				"SLURMBATCH_DEBUG":         "true",
			},
			expected: func(t *testing.T, c *Config) {
				assert.Equal(t, "test", c.JobName)
				assert.Equal(t, "debug", c.Partition)
				assert.Equal(t, 4, c.JobsPerNode)
				assert.Equal(t, 10, c.MaxNodes)
				assert.Equal(t, "/tmp/logs", c.LogDir)
				assert.True(t, c.Debug)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg := NewDefault()
			cfg.Load()

			require.NotNil(t, cfg)
			tt.expected(t, cfg)
		})
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		expectedErr error
	}{
		{
			name: "valid config",
			config: &Config{
				JobName:      "test",
				JobsPerNode:  4,
				MaxNodes:     10,
				PollInterval: time.Second,
			},
		},
		{
			name: "missing job name",
			config: &Config{
				JobsPerNode:  4,
				MaxNodes:     10,
				PollInterval: time.Second,
			},
			expectedErr: ErrMissingJobName,
		},
		{
			name: "invalid jobs per node",
			config: &Config{
				JobName:      "test",
				JobsPerNode:  0,
				MaxNodes:     10,
				PollInterval: time.Second,
			},
			expectedErr: ErrInvalidJobsPerNode,
		},
		{
			name: "invalid maxnodes",
			config: &Config{
				JobName:      "test",
				JobsPerNode:  4,
				MaxNodes:     -1,
				PollInterval: time.Second,
			},
			expectedErr: ErrInvalidMaxNodes,
		},
		{
			name: "invalid poll interval",
			config: &Config{
				JobName:      "test",
				JobsPerNode:  4,
				MaxNodes:     10,
				PollInterval: 0,
			},
			expectedErr: ErrInvalidPollInterval,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
