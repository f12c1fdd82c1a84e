package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"

	"github.com/lox/weatherdesk/internal/config"
)

// New builds the process logger. Panels print to stdout, so logs go to w
// (stderr in the CLI).
func New(w io.Writer, cfg config.Config) *slog.Logger {
	if cfg.LogFormat == "json" {
		h := slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: cfg.Level(),
		})
		return slog.New(h).With("app", "weatherdesk")
	}

	h := tint.NewHandler(w, &tint.Options{
		Level:      cfg.Level(),
		AddSource:  cfg.Level() == slog.LevelDebug,
		TimeFormat: time.Kitchen,
	})
	return slog.New(h)
}
