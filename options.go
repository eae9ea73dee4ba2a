package sidecar

import (
	"log/slog"
	"maps"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wagiedev/sidecar-go/internal/config"
)

// Options holds the supervisor configuration built by Option functions.
type Options = config.Options

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to a fresh Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithName sets the sidecar executable name used for discovery (default "api").
func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithBinaryPath sets an explicit path to the sidecar executable, skipping discovery.
func WithBinaryPath(path string) Option {
	return func(o *Options) {
		o.BinaryPath = path
	}
}

// WithArgs sets the arguments passed to the sidecar.
func WithArgs(args ...string) Option {
	return func(o *Options) {
		o.Args = append([]string(nil), args...)
	}
}

// WithEnv adds environment variables for the sidecar process. Repeated calls merge.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string, len(env))
		}

		maps.Copy(o.Env, env)
	}
}

// WithCwd sets the sidecar's working directory.
func WithCwd(cwd string) Option {
	return func(o *Options) {
		o.Cwd = cwd
	}
}

// WithShutdownCommand replaces the line written to stdin on shutdown
// (default "sidecar shutdown"). A trailing newline is added when missing.
func WithShutdownCommand(cmd string) Option {
	return func(o *Options) {
		o.ShutdownCommand = cmd
	}
}

// ===== Host Integration =====

// WithEmitter sets the listener for sidecar-stdout and sidecar-stderr events.
func WithEmitter(emitter Emitter) Option {
	return func(o *Options) {
		o.Emitter = emitter
	}
}

// WithLauncher replaces the subprocess launcher.
func WithLauncher(launcher Launcher) Option {
	return func(o *Options) {
		o.Launcher = launcher
	}
}

// WithMetricsRegisterer registers the supervisor's prometheus collectors with reg.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *Options) {
		o.MetricsRegisterer = reg
	}
}
