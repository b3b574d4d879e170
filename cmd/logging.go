package cmd

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// setupLogger installs a tint handler as the default slog logger.
func setupLogger(w io.Writer, level slog.Level, useColors bool) {
	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !useColors,
	})
	slog.SetDefault(slog.New(handler))
}
