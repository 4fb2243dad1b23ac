package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestReviewWithoutPlatformsExits(t *testing.T) {
	// FatalErrorWithHint exits the process. Run the command in a subprocess.
	if dir := os.Getenv("TEST_REVIEW_DATA_PATH"); dir != "" {
		os.Args = []string{"reviewr", "--data-path", dir, "review", "Jane", "--no-tui"}
		main()
		return
	}

	dir := t.TempDir()
	employees := filepath.Join(dir, "employees")
	if err := os.MkdirAll(employees, 0o700); err != nil {
		t.Fatal(err)
	}
	emp := "name = \"Jane\"\ntitle = \"Engineer\"\ncommitter_email = \"jane@example.com\"\n"
	if err := os.WriteFile(filepath.Join(employees, "Jane.toml"), []byte(emp), 0o600); err != nil {
		t.Fatal(err)
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestReviewWithoutPlatformsExits$")
	// Platform settings can also come from REVIEWR_PLATFORMS_* variables.
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "REVIEWR_") {
			cmd.Env = append(cmd.Env, kv)
		}
	}
	cmd.Env = append(cmd.Env, "TEST_REVIEW_DATA_PATH="+dir, "HOME="+t.TempDir())

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("expected *exec.ExitError, got %T: %v\nstderr: %s", err, err, stderr.String())
	}
	if exitErr.ExitCode() != 1 {
		t.Fatalf("exit code = %d, want 1", exitErr.ExitCode())
	}
	if !strings.Contains(stderr.String(), "no platforms configured") {
		t.Errorf("stderr = %q, want no platforms configured", stderr.String())
	}
	if !strings.Contains(stderr.String(), filepath.Join(dir, "config.toml")) {
		t.Errorf("stderr = %q, want hint naming the config file", stderr.String())
	}
}
