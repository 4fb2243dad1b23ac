package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kain88-de/reviewr/internal/errlog"
)

func TestWriteJSONAndYAML(t *testing.T) {
	stats := map[string]errlog.Stats{
		"jira": {TotalErrors: 2, ErrorTypes: map[string]int{"api": 2}},
	}

	var buf bytes.Buffer
	if err := writeJSON(&buf, stats); err != nil {
		t.Fatalf("writeJSON() error = %v", err)
	}
	want := "{\n  \"jira\": {\n    \"total_errors\": 2,\n    \"error_types\": {\n      \"api\": 2\n    }\n  }\n}\n"
	if buf.String() != want {
		t.Errorf("writeJSON() = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := writeYAML(&buf, stats); err != nil {
		t.Fatalf("writeYAML() error = %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "jira:\n  total_errors: 2\n  error_types:\n    api: 2\n") {
		t.Errorf("writeYAML() = %q", got)
	}
}

func TestWriteJSONEmptyRecords(t *testing.T) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, []errlog.Record{}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "[]\n" {
		t.Errorf("writeJSON(empty) = %q, want []", buf.String())
	}
}
