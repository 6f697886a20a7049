package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/BBMRI-cz/fhir-place/internal/config"
)

// New builds the process logger. An empty level picks debug outside
// production and info in production.
func New(environment string, cfg config.LogConfig) zerolog.Logger {
	return newLogger(os.Stdout, environment, cfg)
}

func newLogger(out io.Writer, environment string, cfg config.LogConfig) zerolog.Logger {
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    environment == "production",
		}
	}

	logger := zerolog.New(out).With().
		Timestamp().
		Str("service", "fhir-place").
		Str("env", environment).
		Logger()

	return logger.Level(level(environment, cfg.Level))
}

func level(environment, configured string) zerolog.Level {
	if configured != "" {
		if lvl, err := zerolog.ParseLevel(configured); err == nil && lvl != zerolog.NoLevel {
			return lvl
		}
	}
	if environment == "production" {
		return zerolog.InfoLevel
	}
	return zerolog.DebugLevel
}
