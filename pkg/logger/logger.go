package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds the bootstrap logger used before configuration is loaded.
// Level comes from LOG_LEVEL (default info); LOG_PRETTY=true switches to
// the human console writer.
func New() zerolog.Logger {
	return build(os.Getenv("LOG_LEVEL"), strings.EqualFold(os.Getenv("LOG_PRETTY"), "true"), false)
}

// NewWithOptions builds the service logger from loaded configuration.
func NewWithOptions(level string, pretty, noColor bool) zerolog.Logger {
	return build(level, pretty, noColor)
}

func build(level string, pretty, noColor bool) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var out = zerolog.New(os.Stdout)
	if pretty {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, NoColor: noColor})
	}

	return out.Level(parseLevel(level)).With().
		Timestamp().
		Str("service", "originality-service").
		Logger()
}

func parseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
