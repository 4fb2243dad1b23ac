package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kain88-de/reviewr/internal/employee"
	"github.com/kain88-de/reviewr/internal/errlog"
)

func TestWriteRecord(t *testing.T) {
	rec := errlog.New("gitlab:company", "fetch_merge_requests_reviewed").
		WithUser("dev@example.com").
		WithError(errlog.TypeAPI, "GitLab API returned 400: bad request").
		WithRequest("https://gitlab.example.com/api/v4/merge_requests", 400, `{"message":"400 Bad request"}`)

	var out bytes.Buffer
	writeRecord(&out, rec)
	text := out.String()

	for _, want := range []string{
		"api_error gitlab:company/fetch_merge_requests_reviewed: GitLab API returned 400",
		"user: dev@example.com",
		"request: https://gitlab.example.com/api/v4/merge_requests (400)",
		`response: {"message":"400 Bad request"}`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestWriteRecordMinimal(t *testing.T) {
	rec := errlog.New("jira", "test_connection").WithError(errlog.TypeNetwork, "connection refused")

	var out bytes.Buffer
	writeRecord(&out, rec)

	if lines := strings.Count(out.String(), "\n"); lines != 1 {
		t.Errorf("got %d lines, want only the headline:\n%s", lines, out.String())
	}
}

func TestFormatStatsTable(t *testing.T) {
	stats := map[string]*errlog.Stats{
		"jira": {TotalErrors: 1, ErrorTypes: map[string]int{errlog.TypeNetwork: 1}, LastErrorTime: "2024-03-01T10:00:00Z"},
		"gerrit": {TotalErrors: 3, ErrorTypes: map[string]int{
			errlog.TypeAuthentication: 1,
			errlog.TypeAPI:            2,
		}},
	}

	lines := strings.Split(strings.TrimSpace(formatStatsTable(stats)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), strings.Join(lines, "\n"))
	}
	if !strings.HasPrefix(lines[1], "gerrit") || !strings.HasPrefix(lines[2], "jira") {
		t.Errorf("rows not sorted by platform:\n%s", strings.Join(lines, "\n"))
	}
	if !strings.HasSuffix(lines[1], "api_error=2, authentication_error=1") {
		t.Errorf("gerrit row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "2024-03-01T10:00:00Z") {
		t.Errorf("jira row = %q, want last error time", lines[2])
	}

	if got := formatStatsTable(nil); got != "No errors recorded.\n" {
		t.Errorf("empty table = %q", got)
	}
}

func TestFormatEmployees(t *testing.T) {
	got := formatEmployees([]*employee.Employee{
		{Name: "Jane Doe", Title: "Engineer", CommitterEmail: "jane@example.com"},
		{Name: "John", Title: "Manager"},
	})
	want := "Jane Doe - Engineer <jane@example.com>\nJohn - Manager\n"
	if got != want {
		t.Errorf("formatEmployees() = %q, want %q", got, want)
	}
}
