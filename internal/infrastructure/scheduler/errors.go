package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when a run is requested from a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrRunInProgress is returned when a reconciliation is already running
	ErrRunInProgress = errors.New("reconciliation already in progress")
)
