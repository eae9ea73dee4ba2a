package sidecar

import (
	"context"
	"fmt"
)

// WithSupervisor manages the sidecar lifecycle with automatic cleanup.
//
// It creates a supervisor, starts the sidecar, runs fn and then performs the
// exit-time shutdown and waits for the sidecar's output to drain. An Exit
// failure is logged and does not override fn's error.
//
// Example usage:
//
//	err := sidecar.WithSupervisor(ctx, func(sup sidecar.Supervisor) error {
//	    // talk to the sidecar...
//	    return nil
//	},
//	    sidecar.WithName("api"),
//	    sidecar.WithLogger(log),
//	)
func WithSupervisor(ctx context.Context, fn func(Supervisor) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	sup, err := New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create supervisor: %w", err)
	}

	if _, err := sup.Start(ctx); err != nil {
		return fmt.Errorf("failed to start sidecar: %w", err)
	}

	defer func() {
		if exitErr := sup.Exit(context.WithoutCancel(ctx)); exitErr != nil {
			log.Warn("failed to shut down sidecar", "error", exitErr)
		}

		if waitErr := sup.Wait(); waitErr != nil {
			log.Warn("failed waiting for sidecar output", "error", waitErr)
		}
	}()

	return fn(sup)
}
