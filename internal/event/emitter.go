package event

// Emitter delivers a named notification with a string payload to the host
// application's listener.
type Emitter interface {
	Emit(name, payload string) error
}

// EmitterFunc adapts a plain function to the Emitter interface.
type EmitterFunc func(name, payload string) error

// Emit implements Emitter.
func (f EmitterFunc) Emit(name, payload string) error {
	return f(name, payload)
}

// Discard is an Emitter that drops every notification.
var Discard Emitter = EmitterFunc(func(string, string) error { return nil })
