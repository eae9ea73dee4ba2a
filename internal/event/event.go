package event

import (
	"fmt"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Names of the notifications emitted to the host listener.
const (
	// StdoutEvent carries one decoded line of the sidecar's standard output.
	StdoutEvent = "sidecar-stdout"
	// StderrEvent carries one decoded line of the sidecar's standard error.
	StderrEvent = "sidecar-stderr"
)

// Kind classifies a CommandEvent.
type Kind int

const (
	// KindStdout is a line read from the child's standard output.
	KindStdout Kind = iota
	// KindStderr is a line read from the child's standard error.
	KindStderr
	// KindError reports a read failure on one of the output streams.
	KindError
	// KindTerminated is the last event of a stream; the child has exited.
	KindTerminated
)

func (k Kind) String() string {
	switch k {
	case KindStdout:
		return "stdout"
	case KindStderr:
		return "stderr"
	case KindError:
		return "error"
	case KindTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// CommandEvent is one item of a child's output stream.
type CommandEvent struct {
	Kind Kind

	// Line holds the raw bytes of a stdout or stderr line, without the
	// trailing newline.
	Line []byte

	// Code is the exit code for KindTerminated, or -1 if the child was
	// terminated by a signal.
	Code int

	// Err holds the read failure for KindError, or the wait error for
	// KindTerminated.
	Err error
}

// Stdout builds a KindStdout event.
func Stdout(line []byte) CommandEvent {
	return CommandEvent{Kind: KindStdout, Line: line}
}

// Stderr builds a KindStderr event.
func Stderr(line []byte) CommandEvent {
	return CommandEvent{Kind: KindStderr, Line: line}
}

// Terminated builds a KindTerminated event.
func Terminated(code int, err error) CommandEvent {
	return CommandEvent{Kind: KindTerminated, Code: code, Err: err}
}

// Decode converts a raw output line to text. Ill-formed UTF-8 is replaced with
// U+FFFD so a single bad byte never drops the line.
func Decode(line []byte) string {
	s, _, err := transform.Bytes(runes.ReplaceIllFormed(), line)
	if err != nil {
		// ReplaceIllFormed never fails; keep the line rather than lose it.
		return string(line)
	}

	return string(s)
}
