package aocdata

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewConsoleLogger creates a zerolog logger with console output on stderr,
// honoring NO_COLOR and disabling color when stderr is not a terminal. The
// library is silent by default; pass the result to New via WithLogger to see
// what the client is doing.
func NewConsoleLogger() zerolog.Logger {
	noColor := os.Getenv("NO_COLOR") != ""
	if fi, err := os.Stderr.Stat(); err == nil && (fi.Mode()&os.ModeCharDevice) == 0 {
		noColor = true
	}

	out := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

// redactToken keeps a short prefix of a session token for log lines. Tokens
// are secrets and never appear verbatim in logs or error messages.
func redactToken(token string) string {
	if token == "" {
		return "<none>"
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****"
}
