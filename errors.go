package sidecar

import "github.com/wagiedev/sidecar-go/internal/errors"

// Re-export error types from internal package

// SidecarError is the base interface for all supervisor errors.
type SidecarError = errors.SidecarError

// ConfigurationError indicates the supervisor is missing a dependency.
type ConfigurationError = errors.ConfigurationError

// NotFoundError indicates the sidecar executable could not be found.
type NotFoundError = errors.NotFoundError

// LaunchError indicates the sidecar could not be spawned.
type LaunchError = errors.LaunchError

// WriteError indicates the shutdown command could not be written to stdin.
type WriteError = errors.WriteError

// KillError indicates the forced kill after a failed write also failed.
type KillError = errors.KillError

// Re-export sentinel errors from internal package.
var (
	// ErrNoActiveProcess indicates a shutdown was requested with no sidecar running.
	ErrNoActiveProcess = errors.ErrNoActiveProcess

	// ErrSupervisorClosed indicates Exit has begun and Start is refused.
	ErrSupervisorClosed = errors.ErrSupervisorClosed

	// ErrUnknownCommand indicates a host command lookup failed.
	ErrUnknownCommand = errors.ErrUnknownCommand
)
