package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service logger: JSON to stdout, console writer in development.
func New(env string) zerolog.Logger {
	var logger zerolog.Logger
	if env == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.With().Timestamp().Logger()
}
