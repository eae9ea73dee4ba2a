// Package host binds a sidecar supervisor into a hosting application.
//
// The hosting application exposes named commands to its frontend and raises
// lifecycle hooks at startup and exit. Registry models the command surface and
// App wires the supervisor's operations into it:
//
//	start_sidecar     spawn the sidecar unless one is running
//	shutdown_sidecar  send the shutdown command to the running sidecar
//	sidecar_status    report "running" or "stopped"
//
// Setup spawns the sidecar once at startup and ExitRequested runs the
// exit-time shutdown once.
package host
