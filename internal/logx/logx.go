// Package logx builds the diagnostic logger used by orchestration paths.
package logx

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to stderr so command output on stdout stays
// machine-readable.
func New(level, format string) *log.Logger {
	opts := log.Options{
		ReportTimestamp: false,
		Level:           parseLevel(level),
	}
	if strings.EqualFold(format, "json") {
		opts.Formatter = log.JSONFormatter
	}
	return log.NewWithOptions(os.Stderr, opts)
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
