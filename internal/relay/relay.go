// Package relay forwards a sidecar's output stream to the host as named events.
package relay

import (
	"log/slog"

	"github.com/wagiedev/sidecar-go/internal/event"
	"github.com/wagiedev/sidecar-go/internal/metrics"
)

// Stats summarises one relay run.
type Stats struct {
	Stdout   int
	Stderr   int
	Exited   bool
	ExitCode int
}

// Run drains events until the channel is closed, emitting StdoutEvent and
// StderrEvent for every line. Read errors and the terminated event are logged
// and never emitted. Emitter failures are logged and do not stop the loop.
//
// Run holds no reference to the supervisor; it keeps draining after the child's
// handle has left the slot so the last output of a dying process is delivered.
func Run(log *slog.Logger, events <-chan event.CommandEvent, emitter event.Emitter, m *metrics.Metrics) Stats {
	var stats Stats

	for ev := range events {
		switch ev.Kind {
		case event.KindStdout:
			stats.Stdout++
			forward(log, emitter, m, event.StdoutEvent, ev)
		case event.KindStderr:
			stats.Stderr++
			forward(log, emitter, m, event.StderrEvent, ev)
		case event.KindError:
			log.Warn("Sidecar output read failed", "error", ev.Err)
		case event.KindTerminated:
			stats.Exited = true
			stats.ExitCode = ev.Code
			m.Exited()
			log.Debug("Sidecar output stream terminated", "exit_code", ev.Code)
		}
	}

	log.Debug("Relay stopped", "stdout_lines", stats.Stdout, "stderr_lines", stats.Stderr)

	return stats
}

func forward(log *slog.Logger, emitter event.Emitter, m *metrics.Metrics, name string, ev event.CommandEvent) {
	line := event.Decode(ev.Line)
	m.Line(ev.Kind.String())

	if ev.Kind == event.KindStderr {
		log.Debug("Sidecar stderr", "line", line)
	} else {
		log.Debug("Sidecar stdout", "line", line)
	}

	if err := emitter.Emit(name, line); err != nil {
		log.Warn("Failed to emit sidecar output", "event", name, "error", err)
	}
}
