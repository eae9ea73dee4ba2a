// Package event defines the events a sidecar produces and the surface used to
// publish them to the hosting application.
//
// A spawned child yields a stream of CommandEvent values, one per output line
// plus a final Terminated event. The relay turns stdout and stderr lines into
// named notifications (StdoutEvent, StderrEvent) delivered through an Emitter.
package event
