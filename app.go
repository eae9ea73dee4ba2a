package sidecar

import (
	"log/slog"

	"github.com/wagiedev/sidecar-go/internal/host"
)

// Host command names and status values.
const (
	StartCommand    = host.StartCommand
	ShutdownCommand = host.ShutdownCommand
	StatusCommand   = host.StatusCommand

	StatusRunning = host.StatusRunning
	StatusStopped = host.StatusStopped
)

// App binds a Supervisor to the host's commands and lifecycle hooks.
type App = host.App

// Registry holds host commands by name.
type Registry = host.Registry

// Result is the host-facing outcome of a command.
type Result = host.Result

// NewApp registers the sidecar commands for sup. A nil logger disables logging.
func NewApp(log *slog.Logger, sup Supervisor) *App {
	return host.NewApp(log, sup)
}
