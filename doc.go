// Package sidecar supervises a single long-lived helper process on behalf of
// a hosting application.
//
// The supervisor spawns the helper at most once at a time, relays every line
// the helper writes to stdout and stderr as a named event, and shuts it down
// in two phases: a shutdown command written to the helper's stdin, escalating
// to a forced kill when the command cannot be delivered.
//
// # Basic Usage
//
//	sup, err := sidecar.New(
//	    sidecar.WithName("api"),
//	    sidecar.WithEmitter(sidecar.EmitterFunc(func(name, line string) error {
//	        fmt.Println(name, line)
//	        return nil
//	    })),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	msg, err := sup.Start(ctx)          // "Sidecar spawned and monitoring started."
//	msg, err = sup.Shutdown(ctx)        // "'sidecar shutdown' command sent."
//
// At application exit call Exit once; it seals the supervisor so no new helper
// can start and shuts down any helper still running.
//
// # Executable Discovery
//
// Without WithBinaryPath the helper is looked up next to the host executable
// as <name> or <name>-<target-triple> (for example api-x86_64-unknown-linux-gnu),
// then in PATH.
//
// # Hosts
//
// NewApp binds a supervisor to the commands start_sidecar, shutdown_sidecar and
// sidecar_status and to the Setup and ExitRequested lifecycle hooks.
//
// # Error Handling
//
// Errors are typed; use errors.Is and errors.AsType:
//
//	if errors.Is(err, sidecar.ErrNoActiveProcess) {
//	    // nothing was running
//	}
//
//	if writeErr, ok := errors.AsType[*sidecar.WriteError](err); ok {
//	    log.Printf("sidecar %d was killed", writeErr.PID)
//	}
package sidecar
