package logger

import (
	"os"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// New builds the process logger. The effective level is set globally once
// the configuration is loaded.
func New() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Str("service", "ringside-bot").
		Logger().
		Level(zerolog.DebugLevel)
}

var Module = fx.Provide(New)
