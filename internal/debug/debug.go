// Package debug provides env-gated stderr tracing and quiet-aware
// informational output for the CLI.
package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

var (
	enabled     = os.Getenv("REVIEWR_DEBUG") != ""
	verboseMode = false
	quietMode   = false

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Enabled reports whether REVIEWR_DEBUG or --verbose is set.
func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables verbose/debug output
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet enables quiet mode (suppress non-essential output)
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quietMode
}

// LogLevel is the level for the reviewr.log handler.
func LogLevel() slog.Level {
	if Enabled() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Logf writes to stderr when debugging is enabled.
func Logf(format string, args ...any) {
	if Enabled() {
		fmt.Fprintf(stderr, format, args...)
	}
}

// PrintNormal prints output unless quiet mode is enabled
func PrintNormal(format string, args ...any) {
	if !quietMode {
		fmt.Fprintf(stdout, format, args...)
	}
}

// PrintlnNormal prints a line unless quiet mode is enabled
func PrintlnNormal(args ...any) {
	if !quietMode {
		fmt.Fprintln(stdout, args...)
	}
}
