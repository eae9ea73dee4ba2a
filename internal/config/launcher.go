package config

import (
	"context"

	"github.com/wagiedev/sidecar-go/internal/event"
)

// Child is the handle of a spawned sidecar process.
//
// A Child is owned by whoever holds it in the supervisor's slot. Write and Kill
// are only called by that owner.
type Child interface {
	// Write sends raw bytes to the child's stdin.
	Write(data []byte) error

	// Kill forcefully terminates the child.
	Kill() error

	// PID returns the operating system process id, or 0 if unknown.
	PID() int
}

// Launcher resolves and spawns the sidecar executable with piped stdio.
// Implement this to provide fakes for testing or alternative process sources.
//
// The default implementation lives in internal/subprocess.
type Launcher interface {
	// Spawn starts the sidecar. The returned channel yields the child's output
	// events and is closed after a KindTerminated event once the child exits.
	Spawn(ctx context.Context) (Child, <-chan event.CommandEvent, error)
}

// LauncherFunc adapts a plain function to the Launcher interface.
type LauncherFunc func(ctx context.Context) (Child, <-chan event.CommandEvent, error)

// Spawn implements Launcher.
func (f LauncherFunc) Spawn(ctx context.Context) (Child, <-chan event.CommandEvent, error) {
	return f(ctx)
}
