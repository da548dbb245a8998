// Package commands implements the ifwatch CLI commands.
package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jkoelker/ifwatch/pkg/config"
)

const exitFailure = 1

// ErrUnknownLogLevel indicates the provided log level string is not supported.
var ErrUnknownLogLevel = errors.New("unknown log level")

func parseLevel(value string) (slog.Level, error) {
	switch value {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %s", ErrUnknownLogLevel, value)
	}
}

func newLogger(level string) (*slog.Logger, error) {
	parsed, err := parseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parsed})), nil
}

// loadConfig resolves the effective configuration. An empty path means no
// config file was requested and the built-in defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", path, err)
	}

	return cfg, nil
}
