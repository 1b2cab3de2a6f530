package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when interacting with a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrSchedulerAlreadyRunning is returned when starting a running scheduler
	ErrSchedulerAlreadyRunning = errors.New("scheduler is already running")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrScanTimeout is returned when the default scan exceeds the job timeout
	ErrScanTimeout = errors.New("default scan timed out")
)
