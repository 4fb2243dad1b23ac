package debug

import (
	"bytes"
	"log/slog"
	"testing"
)

// capture redirects stdout and stderr for the duration of the test.
func capture(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	oldOut, oldErr := stdout, stderr
	stdout, stderr = out, errOut
	t.Cleanup(func() { stdout, stderr = oldOut, oldErr })
	return out, errOut
}

func reset(t *testing.T) {
	t.Helper()
	oldEnabled, oldVerbose, oldQuiet := enabled, verboseMode, quietMode
	t.Cleanup(func() { enabled, verboseMode, quietMode = oldEnabled, oldVerbose, oldQuiet })
	enabled, verboseMode, quietMode = false, false, false
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		name    string
		env     bool
		verbose bool
		want    bool
	}{
		{"env enables", true, false, true},
		{"verbose enables", false, true, true},
		{"disabled by default", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reset(t)
			enabled = tt.env
			SetVerbose(tt.verbose)

			if got := Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	reset(t)
	if got := LogLevel(); got != slog.LevelInfo {
		t.Errorf("LogLevel() = %v, want INFO", got)
	}
	SetVerbose(true)
	if got := LogLevel(); got != slog.LevelDebug {
		t.Errorf("LogLevel() = %v, want DEBUG", got)
	}
}

func TestLogf(t *testing.T) {
	reset(t)
	_, errOut := capture(t)

	Logf("fetch %s\n", "gerrit")
	if errOut.Len() != 0 {
		t.Errorf("Logf() wrote %q while disabled", errOut.String())
	}

	SetVerbose(true)
	Logf("fetch %s\n", "gerrit")
	if got := errOut.String(); got != "fetch gerrit\n" {
		t.Errorf("Logf() output = %q", got)
	}
}

func TestSetQuietAndIsQuiet(t *testing.T) {
	reset(t)
	SetQuiet(true)
	if !IsQuiet() {
		t.Error("IsQuiet() = false after SetQuiet(true)")
	}
	SetQuiet(false)
	if IsQuiet() {
		t.Error("IsQuiet() = true after SetQuiet(false)")
	}
}

func TestPrintNormal(t *testing.T) {
	tests := []struct {
		name  string
		quiet bool
		want  string
	}{
		{"prints when not quiet", false, "Fetched activity from 2 of 3 platforms\n"},
		{"silent when quiet", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reset(t)
			out, _ := capture(t)
			SetQuiet(tt.quiet)

			PrintNormal("Fetched activity from %d of %d platforms\n", 2, 3)
			if got := out.String(); got != tt.want {
				t.Errorf("PrintNormal() output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintlnNormal(t *testing.T) {
	reset(t)
	out, _ := capture(t)

	PrintlnNormal("a", "b")
	SetQuiet(true)
	PrintlnNormal("c")

	if got := out.String(); got != "a b\n" {
		t.Errorf("PrintlnNormal() output = %q, want %q", got, "a b\n")
	}
}
