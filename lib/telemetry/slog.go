package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs a text handler on stderr as the default logger.
// Output stays on stderr so scraped records on stdout remain pipeable.
func InitSlog(level slog.Level) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
