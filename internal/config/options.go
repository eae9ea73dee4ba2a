package config

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wagiedev/sidecar-go/internal/event"
)

const (
	// DefaultName is the sidecar name used for executable discovery when none is set.
	DefaultName = "api"

	// DefaultShutdownCommand is the line written to the sidecar's stdin to ask
	// it to exit.
	DefaultShutdownCommand = "sidecar shutdown\n"
)

// Options configures the behavior of the supervisor.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// Name is the sidecar's executable name, used for discovery next to the
	// host executable and in PATH. Defaults to DefaultName.
	Name string

	// BinaryPath is an explicit path to the sidecar executable.
	// If set, discovery is skipped.
	BinaryPath string

	// Args are passed to the sidecar executable.
	Args []string

	// Env provides additional environment variables for the sidecar process.
	Env map[string]string

	// Cwd sets the working directory for the sidecar process.
	// If empty, the host's working directory is used.
	Cwd string

	// ShutdownCommand is written to stdin to request a graceful exit.
	// A trailing newline is appended if missing. Defaults to DefaultShutdownCommand.
	ShutdownCommand string

	// Emitter receives sidecar-stdout and sidecar-stderr notifications.
	// If nil, notifications are dropped.
	Emitter event.Emitter `json:"-"`

	// Launcher allows injecting a custom launcher implementation.
	// If nil, the default subprocess launcher is created automatically.
	Launcher Launcher `json:"-"`

	// MetricsRegisterer registers the supervisor's prometheus collectors.
	// If nil, metrics are collected but not registered.
	MetricsRegisterer prometheus.Registerer `json:"-"`
}

// SidecarName returns the configured name or DefaultName.
func (o *Options) SidecarName() string {
	if o.Name == "" {
		return DefaultName
	}

	return o.Name
}

// Sentinel returns the shutdown command, newline terminated.
func (o *Options) Sentinel() []byte {
	cmd := o.ShutdownCommand
	if cmd == "" {
		cmd = DefaultShutdownCommand
	}

	if cmd[len(cmd)-1] != '\n' {
		cmd += "\n"
	}

	return []byte(cmd)
}
