package logger

import (
	"io"
	"log/slog"
	"os"
)

func New(env string) *slog.Logger {
	return NewTo(os.Stdout, env)
}

// NewTo is New writing to w. JSON in prod, text with debug level otherwise.
func NewTo(w io.Writer, env string) *slog.Logger {
	var h slog.Handler
	if env == "prod" {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(h)
}

// Discard is a logger for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Err returns the "error" attribute for err.
//
//	log.Error("save user", logger.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
