package host

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Command names registered by App.
const (
	StartCommand    = "start_sidecar"
	ShutdownCommand = "shutdown_sidecar"
	StatusCommand   = "sidecar_status"
)

// Status values returned by the status command.
const (
	StatusRunning = "running"
	StatusStopped = "stopped"
)

// Controller is the part of the supervisor the host drives.
type Controller interface {
	Start(ctx context.Context) (string, error)
	Shutdown(ctx context.Context) (string, error)
	Exit(ctx context.Context) error
	Running() bool
}

// App connects a Controller to the host's commands and lifecycle hooks.
type App struct {
	log      *slog.Logger
	sup      Controller
	registry *Registry

	setupOnce sync.Once
	exitOnce  sync.Once
	exitErr   error
}

// NewApp registers the sidecar commands on a new registry backed by sup.
// A nil logger disables logging.
func NewApp(log *slog.Logger, sup Controller) *App {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	a := &App{
		log:      log.With("component", "host"),
		sup:      sup,
		registry: NewRegistry(),
	}

	// Names and handlers are static, Register cannot fail here.
	_ = a.registry.Register(StartCommand, "Spawn the sidecar process unless one is already running.", a.start)
	_ = a.registry.Register(ShutdownCommand, "Ask the running sidecar process to exit.", a.shutdown)
	_ = a.registry.Register(StatusCommand, "Report whether a sidecar process is running.", a.status)

	return a
}

// Registry returns the command registry.
func (a *App) Registry() *Registry {
	return a.registry
}

// Setup spawns the sidecar during application startup. It runs once. A spawn
// failure is logged and does not abort the host; the frontend can retry with
// the start command.
func (a *App) Setup(ctx context.Context) {
	a.setupOnce.Do(func() {
		msg, err := a.sup.Start(ctx)
		if err != nil {
			a.log.Error("Failed to start sidecar during setup", "error", err)

			return
		}

		a.log.Info(msg)
	})
}

// ExitRequested runs the exit-time shutdown. It runs once; later calls return
// the first call's error.
func (a *App) ExitRequested(ctx context.Context) error {
	a.exitOnce.Do(func() {
		a.exitErr = a.sup.Exit(ctx)
		if a.exitErr != nil {
			a.log.Error("Sidecar shutdown on exit failed", "error", a.exitErr)
		}
	})

	return a.exitErr
}

func (a *App) start(ctx context.Context) (string, error) {
	return a.sup.Start(ctx)
}

func (a *App) shutdown(ctx context.Context) (string, error) {
	return a.sup.Shutdown(ctx)
}

func (a *App) status(context.Context) (string, error) {
	if a.sup.Running() {
		return StatusRunning, nil
	}

	return StatusStopped, nil
}
