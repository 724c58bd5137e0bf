package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/gurkanbulca/projecttracker/internal/config"
)

// New builds the application logger for the given environment. Development
// gets a human readable console writer at debug level; everything else logs
// JSON at info level.
func New(env string) zerolog.Logger {
	zerolog.TimestampFieldName = "timestamp"

	var w io.Writer = os.Stdout
	level := zerolog.InfoLevel

	switch env {
	case config.EnvDevelopment:
		level = zerolog.DebugLevel
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}
	case config.EnvTest:
		level = zerolog.WarnLevel
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger()
}
