// Package supervisor implements the sidecar lifecycle.
//
// A Supervisor keeps at most one sidecar process alive. Start spawns it and
// begins relaying its output, Shutdown asks it to exit over stdin and kills it
// if the request cannot be delivered, and Exit performs the same shutdown once
// at application exit and refuses every later Start.
//
// The slot holding the child is the only shared mutable state. Start holds the
// slot lock across the spawn; Shutdown removes the handle before writing to it,
// so no two operations ever act on the same child.
package supervisor
