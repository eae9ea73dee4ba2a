package cmd

import (
	"log/slog"
	"os"
)

// newLogger writes to stderr so stdout stays free for sidecar output and
// JSON-RPC. The "error" key is shortened to "err".
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}

			return a
		},
	}))
}
