package sidecar

import (
	"context"

	"github.com/wagiedev/sidecar-go/internal/slot"
	"github.com/wagiedev/sidecar-go/internal/supervisor"
)

// Status messages returned by Start.
const (
	MsgStarted        = supervisor.MsgStarted
	MsgAlreadyRunning = supervisor.MsgAlreadyRunning
)

// Supervisor starts, monitors and stops one sidecar process.
//
// All methods are safe for concurrent use.
//
// Lifecycle: Start and Shutdown may alternate any number of times. Exit is
// terminal; after it, Start returns ErrSupervisorClosed.
type Supervisor interface {
	// Start spawns the sidecar and begins relaying its output.
	// Returns MsgAlreadyRunning without spawning if a sidecar is running.
	// Returns LaunchError (wrapping NotFoundError when discovery failed) on failure.
	Start(ctx context.Context) (string, error)

	// Shutdown writes the shutdown command to the running sidecar's stdin.
	// The sidecar is killed if the write fails, and WriteError is returned.
	// Returns ErrNoActiveProcess if nothing is running.
	Shutdown(ctx context.Context) (string, error)

	// Exit runs the exit-time shutdown once and refuses later starts.
	Exit(ctx context.Context) error

	// Running reports whether a sidecar is installed.
	Running() bool

	// Wait blocks until the output of every spawned sidecar has been relayed.
	Wait() error
}

// Compile-time verification that the internal supervisor satisfies Supervisor.
var _ Supervisor = (*supervisor.Supervisor)(nil)

// New creates a supervisor with an empty handle slot.
func New(opts ...Option) (Supervisor, error) {
	options := applyOptions(opts)

	sup, err := supervisor.New(options, slot.New())
	if err != nil {
		return nil, err
	}

	return sup, nil
}
