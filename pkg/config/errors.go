package config

import "errors"

var (
	// ErrMissingJobName is returned when the job name is empty.
	ErrMissingJobName = errors.New("job name is required")

	// ErrInvalidJobsPerNode is returned when jobs-per-node is not positive.
	ErrInvalidJobsPerNode = errors.New("jobs per node must be greater than 0")

	// ErrInvalidMaxNodes is returned when maxnodes is not positive.
	ErrInvalidMaxNodes = errors.New("maxnodes must be greater than 0")

	// ErrInvalidPollInterval is returned when the poll interval is not positive.
	ErrInvalidPollInterval = errors.New("poll interval must be greater than 0")
)
