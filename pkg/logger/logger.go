package logger

import (
	"log/slog"
	"os"
)

// BritishTimeFormat renders timestamps day-first, the format the faucet
// operators read their logs in.
const BritishTimeFormat = "02.01.2006 15:04:05"

// Config carries the logging settings taken from the environment.
// LogLevel is one of "debug", "info", "warn", "error". LogHumanFriendly
// switches from JSON (the default, for log shipping) to text for local runs.
type Config struct {
	LogLevel         string
	LogHumanFriendly bool
}

// ParseLevel converts a level string to slog.Level. An unknown level falls
// back to Info rather than failing startup.
func ParseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// NewFromConfig builds the process logger described by cfg. Timestamps use
// BritishTimeFormat regardless of the output format.
func NewFromConfig(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(cfg.LogLevel),
		ReplaceAttr: britishTimestamps,
	}

	if cfg.LogHumanFriendly {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func britishTimestamps(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.TimeKey {
		return a
	}
	return slog.String(slog.TimeKey, a.Value.Time().Format(BritishTimeFormat))
}
