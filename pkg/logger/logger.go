package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration
type Config struct {
	Level       string // debug, info, warn, error, fatal
	Format      string // json, console
	Output      io.Writer
	EnableColor bool
}

var initialized bool

// Initialize configures the global logger
func Initialize(cfg Config) {
	zerolog.SetGlobalLevel(parseLogLevel(cfg.Level))

	var output io.Writer = os.Stdout
	if cfg.Output != nil {
		output = cfg.Output
	}

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
			NoColor:    !cfg.EnableColor,
		}
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	initialized = true
}

func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

func ensureInitialized() {
	if !initialized {
		Initialize(Config{Level: "info", Format: "console", EnableColor: true})
	}
}

func withFields(event *zerolog.Event, fields []map[string]interface{}) *zerolog.Event {
	if len(fields) > 0 {
		for k, v := range fields[0] {
			event = event.Interface(k, v)
		}
	}
	return event
}

// Debug logs a debug message using the global logger
func Debug(msg string, fields ...map[string]interface{}) {
	ensureInitialized()
	withFields(log.Debug(), fields).Msg(msg)
}

// Info logs an info message using the global logger
func Info(msg string, fields ...map[string]interface{}) {
	ensureInitialized()
	withFields(log.Info(), fields).Msg(msg)
}

// Warn logs a warning message using the global logger
func Warn(msg string, fields ...map[string]interface{}) {
	ensureInitialized()
	withFields(log.Warn(), fields).Msg(msg)
}

// Error logs an error message using the global logger
func Error(msg string, err error, fields ...map[string]interface{}) {
	ensureInitialized()
	withFields(log.Error().Err(err), fields).Msg(msg)
}

// Fatal logs a fatal message using the global logger and exits
func Fatal(msg string, err error, fields ...map[string]interface{}) {
	ensureInitialized()
	withFields(log.Fatal().Err(err), fields).Msg(msg)
}
