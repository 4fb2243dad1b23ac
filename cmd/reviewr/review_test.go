package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/kain88-de/reviewr/internal/activity"
	"github.com/kain88-de/reviewr/internal/config"
	"github.com/kain88-de/reviewr/internal/errlog"
	"github.com/kain88-de/reviewr/internal/platform"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type stubPlatform struct {
	id         string
	configured bool
	detailed   activity.DetailedActivities
	err        error
	status     activity.ConnectionStatus
}

func (s *stubPlatform) ID() string         { return s.id }
func (s *stubPlatform) Name() string       { return "Stub " + s.id }
func (s *stubPlatform) Icon() string       { return "*" }
func (s *stubPlatform) IsConfigured() bool { return s.configured }

func (s *stubPlatform) ActivityMetrics(ctx context.Context, user string, days int) (activity.Metrics, error) {
	d, err := s.DetailedActivities(ctx, user, days)
	return d.Metrics(), err
}

func (s *stubPlatform) DetailedActivities(context.Context, string, int) (activity.DetailedActivities, error) {
	return s.detailed, s.err
}

func (s *stubPlatform) SearchItems(context.Context, string, string) ([]activity.Item, error) {
	return nil, nil
}

func (s *stubPlatform) TestConnection(context.Context) (activity.ConnectionStatus, error) {
	return s.status, nil
}

func (s *stubPlatform) ItemURL(item activity.Item) string { return item.URL }

func detailed(counts map[activity.Category]int) activity.DetailedActivities {
	d := activity.NewDetailed()
	for c, n := range counts {
		items := make([]activity.Item, n)
		for i := range items {
			items[i] = activity.Item{ID: string(c), Category: c}
		}
		d.Set(c, items)
	}
	return d
}

// twoServiceRegistry has gerrit with 3 created and 2 merged changes, and a
// jira adapter whose fetch fails with a network error.
func twoServiceRegistry(t *testing.T) (*platform.Registry, *errlog.Log) {
	t.Helper()
	errs := errlog.Open(t.TempDir())
	reg := platform.NewRegistry(errs, slog.New(slog.DiscardHandler))
	reg.Register(&stubPlatform{
		id:         "gerrit",
		configured: true,
		detailed:   detailed(map[activity.Category]int{activity.ChangesCreated: 3, activity.ChangesMerged: 2}),
	})
	reg.Register(&stubPlatform{
		id:         "jira",
		configured: true,
		err:        platform.TransportError("JIRA", "https://jira.example.com", errors.New("connection refused")),
	})
	reg.Register(&stubPlatform{id: "gitlab:company"})
	return reg, errs
}

func TestFetchWithProgress(t *testing.T) {
	reg, errs := twoServiceRegistry(t)

	var out bytes.Buffer
	results := fetchWithProgress(context.Background(), reg, "dev@example.com", 30, &out)

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if got := results["gerrit"].Total(); got != 5 {
		t.Errorf("gerrit total = %d, want 5", got)
	}

	text := out.String()
	for _, want := range []string{"… Stub gerrit", "✓ Stub gerrit: 5 items", "✗ Stub jira:", "connection refused"} {
		if !strings.Contains(text, want) {
			t.Errorf("progress output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "gitlab:company") {
		t.Errorf("unconfigured platform reported progress:\n%s", text)
	}

	records, err := errs.ReadRecent(-1, "")
	if err != nil {
		t.Fatalf("ReadRecent: %v", err)
	}
	if len(records) != 1 || records[0].PlatformID != "jira" {
		t.Errorf("records = %+v, want one jira record", records)
	}
	if got := fetchSummary(len(results), len(reg.ConfiguredAdapters())); got != "Fetched activity from 1 of 2 platforms" {
		t.Errorf("fetchSummary = %q", got)
	}
}

func TestProgressLine(t *testing.T) {
	tests := []struct {
		name string
		ev   platform.Progress
		want string
	}{
		{"started", platform.Started("gerrit"), "  … Gerrit"},
		{"succeeded", platform.Succeeded("gerrit", 4), "  ✓ Gerrit: 4 items"},
		{"failed", platform.Failed("gerrit", errors.New("boom")), "  ✗ Gerrit: boom"},
		{"cancelled", platform.Failed("gerrit", context.Canceled), "  ✗ Gerrit: cancelled"},
		{"all completed", platform.AllCompleted(), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := progressLine(tt.ev, "Gerrit"); got != tt.want {
				t.Errorf("progressLine() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := progressLine(platform.Started("jira"), ""); got != "  … jira" {
		t.Errorf("progressLine without name = %q", got)
	}
}

func TestWriteMetricsReport(t *testing.T) {
	reg, _ := twoServiceRegistry(t)
	results := map[string]activity.DetailedActivities{
		"gerrit": detailed(map[activity.Category]int{activity.ChangesCreated: 3, activity.ChangesMerged: 2}),
	}

	var out bytes.Buffer
	writeMetricsReport(&out, reg, results, config.UIPreferences{PreferredPlatformOrder: []string{"jira"}})
	text := out.String()

	for _, want := range []string{"Changes Created", "Changes Merged", "Total", "unavailable", "--platform jira"} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
	if strings.Index(strings.ToUpper(text), "STUB JIRA") > strings.Index(strings.ToUpper(text), "STUB GERRIT") {
		t.Errorf("preferred platform not listed first:\n%s", text)
	}
	if strings.Contains(strings.ToUpper(text), "GITLAB") {
		t.Errorf("unconfigured platform listed:\n%s", text)
	}
	if strings.Contains(text, "* ") {
		t.Errorf("icons shown although disabled:\n%s", text)
	}
}

func TestWriteConnections(t *testing.T) {
	errs := errlog.Open(t.TempDir())
	reg := platform.NewRegistry(errs, slog.New(slog.DiscardHandler))
	reg.Register(&stubPlatform{id: "gerrit", configured: true, status: activity.Connected()})
	reg.Register(&stubPlatform{id: "jira", configured: true, status: activity.Error("401 Unauthorized")})
	reg.Register(&stubPlatform{id: "gitlab:company"})

	var out bytes.Buffer
	writeConnections(&out, reg, reg.TestAllConnections(context.Background()), nil)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")

	if len(lines) != 5 {
		t.Fatalf("got %d lines, want header, separator and 3 platforms:\n%s", len(lines), out.String())
	}
	for i, id := range []string{"gerrit", "gitlab:company", "jira"} {
		if !strings.Contains(lines[i+2], "Stub "+id) {
			t.Errorf("line %d = %q, want platform %s", i+2, lines[i+2], id)
		}
	}
	if !strings.Contains(lines[4], "401 Unauthorized") {
		t.Errorf("jira line = %q, want error reason", lines[4])
	}
}

func TestBuildRegistry(t *testing.T) {
	c := config.Default()
	c.Platforms.Gerrit = &config.GerritConfig{URL: "https://gerrit.example.com", Username: "me", HTTPPassword: "secret"}
	c.Platforms.GitLab = map[string]config.GitLabConfig{
		"company": {URL: "https://gitlab.example.com", Token: "glpat"},
		"oss":     {URL: "https://gitlab.com"},
	}

	reg := buildRegistry(c, errlog.Open(t.TempDir()), slog.New(slog.DiscardHandler))

	want := []string{"gerrit", "gitlab:company", "gitlab:oss", "jira"}
	got := reg.List()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("List() = %v, want %v", got, want)
	}

	var configured []string
	for _, p := range reg.ConfiguredAdapters() {
		configured = append(configured, p.ID())
	}
	sort.Strings(configured)
	if strings.Join(configured, ",") != "gerrit,gitlab:company" {
		t.Errorf("ConfiguredAdapters() = %v, want [gerrit gitlab:company]", configured)
	}
}
