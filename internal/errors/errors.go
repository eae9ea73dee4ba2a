package errors

import (
	"errors"
	"fmt"
)

// SidecarError is the base interface for all supervisor errors.
type SidecarError interface {
	error
	IsSidecarError() bool
}

// Compile-time verification that all error types implement SidecarError.
var (
	_ SidecarError = (*ConfigurationError)(nil)
	_ SidecarError = (*NotFoundError)(nil)
	_ SidecarError = (*LaunchError)(nil)
	_ SidecarError = (*WriteError)(nil)
	_ SidecarError = (*KillError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrNoActiveProcess indicates a shutdown was requested with no sidecar running.
	ErrNoActiveProcess = errors.New("no active sidecar process to shutdown")

	// ErrSupervisorClosed indicates the exit transition has begun and no new
	// sidecar may be started.
	ErrSupervisorClosed = errors.New("supervisor closed: application is exiting")

	// ErrUnknownCommand indicates a host command lookup found nothing registered.
	ErrUnknownCommand = errors.New("unknown command")
)

// ConfigurationError indicates the supervisor was used before its shared state
// was initialized.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "sidecar state not initialized: " + e.Reason
}

// IsSidecarError implements SidecarError.
func (e *ConfigurationError) IsSidecarError() bool { return true }

// NotFoundError indicates the helper executable could not be resolved.
type NotFoundError struct {
	Name          string
	SearchedPaths []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sidecar %q not found in: %v", e.Name, e.SearchedPaths)
}

// IsSidecarError implements SidecarError.
func (e *NotFoundError) IsSidecarError() bool { return true }

// LaunchError indicates the helper executable could not be spawned.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to spawn sidecar: %v", e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// IsSidecarError implements SidecarError.
func (e *LaunchError) IsSidecarError() bool { return true }

// WriteError indicates the cooperative shutdown command could not be delivered
// to the sidecar's stdin. It is the trigger for forced termination.
type WriteError struct {
	PID int
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write to sidecar stdin (pid %d): %v", e.PID, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsSidecarError implements SidecarError.
func (e *WriteError) IsSidecarError() bool { return true }

// KillError indicates forced termination failed after the shutdown command
// could not be delivered. The sidecar may be left orphaned.
type KillError struct {
	PID      int
	WriteErr error
	Err      error
}

func (e *KillError) Error() string {
	return fmt.Sprintf("failed to kill sidecar (pid %d): %v (after stdin write failure: %v)",
		e.PID, e.Err, e.WriteErr)
}

// Unwrap returns both the kill and the write failure.
func (e *KillError) Unwrap() []error {
	return []error{e.Err, e.WriteErr}
}

// IsSidecarError implements SidecarError.
func (e *KillError) IsSidecarError() bool { return true }
