package utils

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the global logger. Pretty switches to console output for development.
func InitLogger(level string, pretty bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %v", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

// LogInfo logs an informational message
func LogInfo(format string, v ...interface{}) {
	log.Info().Msgf(format, v...)
}

// LogError logs an error message
func LogError(format string, v ...interface{}) {
	log.Error().Msgf(format, v...)
}

// LogDebug logs a debug message
func LogDebug(format string, v ...interface{}) {
	log.Debug().Msgf(format, v...)
}

// LogWarn logs a warning message
func LogWarn(format string, v ...interface{}) {
	log.Warn().Msgf(format, v...)
}

// LogRequest logs HTTP request details
func LogRequest(requestID, method, path, ip string, status int, duration time.Duration) {
	log.Info().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("latency", duration).
		Str("ip", ip).
		Msg("HTTP Request")
}

// LogErrorWithStack logs an error with stack trace
func LogErrorWithStack(err error, stack []byte) {
	log.Error().Err(err).Bytes("stack", stack).Msg("panic recovered")
}
