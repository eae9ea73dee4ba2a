package supervisor

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/sidecar-go/internal/config"
	"github.com/wagiedev/sidecar-go/internal/errors"
	"github.com/wagiedev/sidecar-go/internal/event"
	"github.com/wagiedev/sidecar-go/internal/metrics"
	"github.com/wagiedev/sidecar-go/internal/relay"
	"github.com/wagiedev/sidecar-go/internal/slot"
	"github.com/wagiedev/sidecar-go/internal/subprocess"
)

// Status messages returned to the caller of Start and Shutdown.
const (
	MsgStarted        = "Sidecar spawned and monitoring started."
	MsgAlreadyRunning = "Sidecar is already running."
)

// Supervisor manages the lifecycle of a single sidecar process.
//
// Supervisor is safe for concurrent use. A zero Supervisor has no slot and
// reports ConfigurationError from every operation.
type Supervisor struct {
	log      *slog.Logger
	options  *config.Options
	launcher config.Launcher
	emitter  event.Emitter
	slot     *slot.Slot
	metrics  *metrics.Metrics

	// relays tracks one goroutine per spawned child.
	relays errgroup.Group

	exitOnce sync.Once
	exitErr  error

	// pidExists probes whether a child that could not be killed is still alive.
	pidExists func(ctx context.Context, pid int32) (bool, error)
}

// handle is the slot entry: the child plus the identity used in its logs.
type handle struct {
	config.Child
	instance string
	log      *slog.Logger
}

// New creates a supervisor that installs children into s.
//
// A nil options.Launcher selects the subprocess launcher and a nil
// options.Emitter drops all output notifications.
func New(options *config.Options, s *slot.Slot) (*Supervisor, error) {
	log := options.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	log = log.With("component", "supervisor", "sidecar", options.SidecarName())

	m, err := metrics.New(options.MetricsRegisterer)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	launcher := options.Launcher
	if launcher == nil {
		launcher = subprocess.NewLauncher(log, options)
	}

	emitter := options.Emitter
	if emitter == nil {
		emitter = event.Discard
	}

	return &Supervisor{
		log:       log,
		options:   options,
		launcher:  launcher,
		emitter:   emitter,
		slot:      s,
		metrics:   m,
		pidExists: process.PidExistsWithContext,
	}, nil
}

// Start spawns the sidecar if none is running and begins relaying its output.
//
// Calling Start while a sidecar is running is not an error: it returns
// MsgAlreadyRunning and spawns nothing. The spawn happens while the slot lock
// is held, so concurrent calls on an empty slot spawn exactly one process.
//
// Returns LaunchError if the sidecar cannot be spawned, ErrSupervisorClosed
// once Exit has begun, or ConfigurationError if the supervisor is incomplete.
func (s *Supervisor) Start(ctx context.Context) (string, error) {
	if err := s.validate(); err != nil {
		return "", err
	}

	var (
		h      *handle
		events <-chan event.CommandEvent
	)

	installed, err := s.slot.Fill(func() (config.Child, error) {
		child, ev, err := s.launcher.Spawn(ctx)
		if err != nil {
			return nil, err
		}

		instance := ulid.Make().String()
		h = &handle{
			Child:    child,
			instance: instance,
			log:      s.log.With("instance", instance, "pid", child.PID()),
		}
		events = ev

		return h, nil
	})
	if err != nil {
		if stderrors.Is(err, errors.ErrSupervisorClosed) {
			s.log.Warn("Refusing to start sidecar during exit")

			return "", err
		}

		s.metrics.SpawnFailed()
		s.log.Error("Failed to spawn sidecar", "error", err)

		if _, ok := stderrors.AsType[*errors.LaunchError](err); !ok {
			err = &errors.LaunchError{Err: err}
		}

		return "", err
	}

	if !installed {
		s.log.Info("Sidecar is already running, skipping spawn")

		return MsgAlreadyRunning, nil
	}

	s.metrics.Spawned()
	h.log.Info("Sidecar spawned, monitoring output")

	relayLog := h.log.With("component", "relay")

	s.relays.Go(func() error {
		relay.Run(relayLog, events, s.emitter, s.metrics)

		return nil
	})

	return MsgStarted, nil
}

// Shutdown asks the running sidecar to exit.
//
// The handle leaves the slot before the shutdown command is written, so a
// Start issued while the write is in flight may spawn a replacement. The
// handle is never restored: a child whose stdin write failed is killed.
//
// Returns ErrNoActiveProcess if nothing is running, WriteError if the command
// could not be delivered (the child was killed instead), or KillError if the
// kill failed as well.
func (s *Supervisor) Shutdown(ctx context.Context) (string, error) {
	if err := s.validate(); err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	child, ok := s.slot.Take()
	if !ok {
		s.log.Info("No active sidecar process to shutdown")

		return "", errors.ErrNoActiveProcess
	}

	return s.terminate(ctx, child)
}

// Exit performs the exit-time shutdown. It runs once; later calls return the
// first call's result. After Exit begins, Start returns ErrSupervisorClosed.
//
// Exit does not wait for the sidecar to finish; use Wait for that.
func (s *Supervisor) Exit(ctx context.Context) error {
	s.exitOnce.Do(func() {
		if err := s.validate(); err != nil {
			s.exitErr = err

			return
		}

		s.log.Info("Exit requested, shutting down sidecar")

		child, ok := s.slot.Seal()
		if !ok {
			s.log.Info("No active sidecar process found during exit")

			return
		}

		_, s.exitErr = s.terminate(ctx, child)
	})

	return s.exitErr
}

// Running reports whether a sidecar handle is installed.
func (s *Supervisor) Running() bool {
	return s.slot != nil && s.slot.Occupied()
}

// Wait blocks until every relay goroutine has drained its stream, which
// happens once each spawned sidecar has exited. It must not be called
// concurrently with Start.
func (s *Supervisor) Wait() error {
	return s.relays.Wait()
}

// ShutdownMessage returns the status message reported after the shutdown
// command was delivered.
func (s *Supervisor) ShutdownMessage() string {
	return fmt.Sprintf("'%s' command sent.", strings.TrimSpace(string(s.options.Sentinel())))
}

// terminate runs the two-phase shutdown on a child already removed from the slot.
func (s *Supervisor) terminate(ctx context.Context, child config.Child) (string, error) {
	log := s.log
	if h, ok := child.(*handle); ok {
		log = h.log
	}

	pid := child.PID()

	err := child.Write(s.options.Sentinel())
	if err == nil {
		s.metrics.Stopped(metrics.ResultGraceful)
		log.Info("Sent shutdown command to sidecar")

		return s.ShutdownMessage(), nil
	}

	writeErr := &errors.WriteError{PID: pid, Err: err}
	log.Warn("Failed to write shutdown command, killing sidecar", "error", err)

	if killErr := child.Kill(); killErr != nil {
		alive, probeErr := s.probe(ctx, pid)
		log.Error("Failed to kill sidecar, process may be orphaned",
			"error", killErr,
			"write_error", err,
			"alive", alive,
			"probe_error", probeErr,
		)
		s.metrics.Stopped(metrics.ResultOrphaned)

		return "", &errors.KillError{PID: pid, WriteErr: err, Err: killErr}
	}

	s.metrics.Stopped(metrics.ResultKilled)
	log.Info("Sidecar killed after stdin write failure")

	return "", writeErr
}

func (s *Supervisor) probe(ctx context.Context, pid int) (bool, error) {
	if pid <= 0 || s.pidExists == nil {
		return false, nil
	}

	return s.pidExists(ctx, int32(pid)) //nolint:gosec // G115: pids fit in int32
}

func (s *Supervisor) validate() error {
	switch {
	case s.slot == nil:
		return &errors.ConfigurationError{Reason: "handle slot missing"}
	case s.launcher == nil:
		return &errors.ConfigurationError{Reason: "launcher missing"}
	case s.options == nil:
		return &errors.ConfigurationError{Reason: "options missing"}
	default:
		return nil
	}
}
