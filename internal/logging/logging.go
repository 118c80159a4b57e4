// Package logging vytváří slog logger podle konfigurace služby.
package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// New vrátí logger zapisující do w.
// format "text" = barevný výstup pro lokální vývoj (tint), cokoli jiného = JSON
// (standard pro kontejnery, logy se dají strojově parsovat).
func New(w io.Writer, format, level string) *slog.Logger {
	lvl := ParseLevel(level)

	if strings.EqualFold(format, "text") {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.TimeOnly,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// ParseLevel převede "debug" / "info" / "warn" / "error" na slog.Level.
// Neznámá hodnota = Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
