package logging

import (
	"log/slog"
	"os"
)

// New creates the process logger. JSON output so the bridge's logs stay
// machine-parseable when it runs under a supervisor.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
