package sidecar

import "github.com/wagiedev/sidecar-go/internal/event"

// Event names emitted for sidecar output.
const (
	StdoutEvent = event.StdoutEvent
	StderrEvent = event.StderrEvent
)

// Emitter delivers a named notification to the host's listener.
type Emitter = event.Emitter

// EmitterFunc adapts a function to Emitter.
type EmitterFunc = event.EmitterFunc

// Bus fans notifications out to channel subscribers.
type Bus = event.Bus

// Notification is a single event delivered by a Bus.
type Notification = event.Notification

// CommandEvent is one item of a child's output stream.
type CommandEvent = event.CommandEvent

// EventKind tags a CommandEvent.
type EventKind = event.Kind

// Event kinds.
const (
	KindStdout     = event.KindStdout
	KindStderr     = event.KindStderr
	KindError      = event.KindError
	KindTerminated = event.KindTerminated
)

// NewBus creates an event bus usable as an Emitter.
func NewBus() *Bus {
	return event.NewBus()
}
