package gerrit

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kain88-de/reviewr/internal/activity"
	"github.com/kain88-de/reviewr/internal/config"
	"github.com/kain88-de/reviewr/internal/errlog"
)

const ownedChanges = `)]}'
[
  {
    "id": "proj~main~I1", "project": "proj", "branch": "main", "change_id": "I1",
    "subject": "Add feature", "status": "NEW",
    "created": "2024-03-01 10:00:00.000000000", "updated": "2024-03-02 11:30:00.000000000",
    "insertions": 10, "deletions": 2, "_number": 101,
    "owner": {"_account_id": 1, "name": "Dev", "email": "dev@example.com"},
    "labels": {"Code-Review": {"all": [
      {"_account_id": 1, "value": 0},
      {"_account_id": 2, "name": "Reviewer", "value": 2}
    ]}},
    "messages": [
      {"id": "m1", "author": {"_account_id": 1}, "message": "Uploaded patch set 1.", "tag": "autogenerated:gerrit:newPatchSet"}
    ]
  },
  {
    "id": "proj~main~I2", "project": "proj", "branch": "main", "change_id": "I2",
    "subject": "Fix bug", "status": "NEW",
    "created": "2024-03-03 09:00:00.000000000", "updated": "2024-03-03 09:00:00.000000000",
    "insertions": 1, "deletions": 1, "_number": 102,
    "owner": {"_account_id": 1, "name": "Dev"},
    "messages": [
      {"id": "m2", "author": {"_account_id": 1}, "message": "Uploaded patch set 1."},
      {"id": "m3", "author": {"_account_id": 9, "name": "CI"}, "message": "Build started", "tag": "autogenerated:ci"}
    ]
  },
  {
    "id": "other~main~I3", "project": "other", "branch": "release", "change_id": "I3",
    "subject": "Refactor", "status": "MERGED",
    "created": "2024-03-04 09:00:00.000000000", "updated": "2024-03-05 09:00:00.000000000",
    "insertions": 5, "deletions": 7, "_number": 103,
    "owner": {"_account_id": 1, "name": "Dev"},
    "messages": [
      {"id": "m4", "author": {"_account_id": 3, "name": "Alice"}, "message": "Patch Set 1: looks good"}
    ]
  }
]`

const mergedChanges = `)]}'
[{"project": "other", "subject": "Refactor", "status": "MERGED", "_number": 103, "owner": {"_account_id": 1}}]`

const givenChanges = `)]}'
[{"project": "proj", "subject": "Someone else's change", "status": "NEW", "_number": 200, "owner": {"_account_id": 5, "name": "Bob"}}]`

func newGerritServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(server.Close)
	return server
}

func newTestPlatform(t *testing.T, serverURL string) (*Platform, *errlog.Log) {
	t.Helper()
	log := &errlog.Log{Path: filepath.Join(t.TempDir(), errlog.FileName)}
	cfg := &config.GerritConfig{URL: serverURL + "/", Username: "dev", HTTPPassword: "secret"}
	return New(cfg, log, slog.New(slog.DiscardHandler)), log
}

func activityHandler(t *testing.T) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "dev" || pass != "secret" {
			t.Errorf("BasicAuth = %q/%q/%v, want dev/secret", user, pass, ok)
		}
		if r.URL.Path != "/a/changes/" {
			t.Errorf("path = %q, want /a/changes/", r.URL.Path)
		}
		if got := r.URL.Query()["o"]; len(got) != 3 {
			t.Errorf("options = %v, want 3", got)
		}
		q := r.URL.Query().Get("q")
		switch {
		case strings.HasPrefix(q, "reviewer:"):
			if q != "reviewer:dev@example.com -owner:dev@example.com -age:30d" {
				t.Errorf("reviewer query = %q", q)
			}
			_, _ = w.Write([]byte(givenChanges))
		case strings.Contains(q, "status:merged"):
			_, _ = w.Write([]byte(mergedChanges))
		case q == "owner:dev@example.com -age:30d":
			_, _ = w.Write([]byte(ownedChanges))
		default:
			t.Errorf("unexpected query %q", q)
			w.WriteHeader(http.StatusBadRequest)
		}
	}
}

func TestNewClientTrimsSlash(t *testing.T) {
	c := NewClient("https://gerrit.example.com/", "u", "p")
	if c.URL != "https://gerrit.example.com" {
		t.Errorf("URL = %q, want trailing slash stripped", c.URL)
	}
	if got := c.buildURL("/accounts/self", nil); got != "https://gerrit.example.com/a/accounts/self" {
		t.Errorf("buildURL() = %q", got)
	}
}

func TestStripXSSI(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{")]}'\n[]", "[]"},
		{")]}'\r\n{\"a\":1}", "{\"a\":1}"},
		{"[]", "[]"},
		{"  )]}'\n{}", "{}"},
	}
	for _, tt := range tests {
		if got := string(stripXSSI([]byte(tt.in))); got != tt.want {
			t.Errorf("stripXSSI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDetailedActivities(t *testing.T) {
	server := newGerritServer(t, activityHandler(t))
	p, log := newTestPlatform(t, server.URL)

	d, err := p.DetailedActivities(context.Background(), "dev@example.com", 30)
	if err != nil {
		t.Fatalf("DetailedActivities() error = %v", err)
	}

	if got := len(d.Items(activity.ChangesCreated)); got != 3 {
		t.Errorf("ChangesCreated = %d, want 3", got)
	}
	if got := len(d.Items(activity.ChangesMerged)); got != 1 {
		t.Errorf("ChangesMerged = %d, want 1", got)
	}
	if got := len(d.Items(activity.ReviewsGiven)); got != 1 {
		t.Errorf("ReviewsGiven = %d, want 1", got)
	}

	received := d.Items(activity.ReviewsReceived)
	if len(received) != 2 {
		t.Fatalf("ReviewsReceived = %d, want 2 (change 102 has only autogenerated messages)", len(received))
	}
	if received[0].ID != "101" || received[0].Meta("reviewers") != "Reviewer" {
		t.Errorf("received[0] = %s reviewers %q", received[0].ID, received[0].Meta("reviewers"))
	}
	if received[1].ID != "103" || received[1].Meta("reviewers") != "Alice" {
		t.Errorf("received[1] = %s reviewers %q", received[1].ID, received[1].Meta("reviewers"))
	}

	first := d.Items(activity.ChangesCreated)[0]
	if first.URL != server.URL+"/c/proj/+/101" {
		t.Errorf("URL = %q", first.URL)
	}
	if first.Created != "2024-03-01T10:00:00Z" {
		t.Errorf("Created = %q, want RFC 3339", first.Created)
	}
	if first.Category != activity.ChangesCreated || first.Platform != PlatformID {
		t.Errorf("item category/platform = %s/%s", first.Category, first.Platform)
	}
	if first.Meta("branch") != "main" || first.Meta("change_id") != "I1" || first.Meta("owner") != "Dev" {
		t.Errorf("metadata = %v", first.Metadata)
	}
	if p.ItemURL(first) != first.URL {
		t.Errorf("ItemURL() = %q, want %q", p.ItemURL(first), first.URL)
	}

	recs, _ := log.ReadRecent(-1, "")
	if len(recs) != 0 {
		t.Errorf("error log has %d records, want 0", len(recs))
	}
}

func TestActivityMetricsConsistent(t *testing.T) {
	server := newGerritServer(t, activityHandler(t))
	p, _ := newTestPlatform(t, server.URL)

	m, err := p.ActivityMetrics(context.Background(), "dev@example.com", 30)
	if err != nil {
		t.Fatalf("ActivityMetrics() error = %v", err)
	}
	if !m.Consistent() {
		t.Errorf("metrics inconsistent: %+v", m)
	}
	if m.TotalItems != 7 {
		t.Errorf("TotalItems = %d, want 7", m.TotalItems)
	}
	if m.PlatformSpecific["insertions"] != 16 || m.PlatformSpecific["deletions"] != 10 {
		t.Errorf("PlatformSpecific = %v", m.PlatformSpecific)
	}
}

func TestDetailedActivitiesAuthFailure(t *testing.T) {
	server := newGerritServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Unauthorized"))
	})
	p, log := newTestPlatform(t, server.URL)

	_, err := p.DetailedActivities(context.Background(), "dev@example.com", 30)
	if err == nil {
		t.Fatal("expected error")
	}

	recs, rerr := log.ReadRecent(-1, "")
	if rerr != nil {
		t.Fatal(rerr)
	}
	if len(recs) != 1 {
		t.Fatalf("error log has %d records, want exactly 1", len(recs))
	}
	rec := recs[0]
	if rec.PlatformID != PlatformID || rec.Operation != "fetch_changes_created" {
		t.Errorf("record = %s/%s", rec.PlatformID, rec.Operation)
	}
	if rec.ErrorType != errlog.TypeAuthentication {
		t.Errorf("ErrorType = %q, want %q", rec.ErrorType, errlog.TypeAuthentication)
	}
	if rec.StatusCode == nil || *rec.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %v, want 401", rec.StatusCode)
	}
	if rec.Metadata["query"] != "owner:dev@example.com -age:30d" {
		t.Errorf("query metadata = %q", rec.Metadata["query"])
	}
}

func TestDetailedActivitiesMalformedJSON(t *testing.T) {
	server := newGerritServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(")]}'\n[{not json"))
	})
	p, log := newTestPlatform(t, server.URL)

	if _, err := p.DetailedActivities(context.Background(), "dev@example.com", 7); err == nil {
		t.Fatal("expected parse error")
	}
	recs, _ := log.ReadRecent(-1, "")
	if len(recs) != 1 || recs[0].ErrorType != errlog.TypeParse {
		t.Errorf("records = %+v, want one json_parse_error", recs)
	}
}

func TestNotConfigured(t *testing.T) {
	p := New(nil, nil, nil)
	if p.IsConfigured() {
		t.Error("IsConfigured() = true for nil config")
	}
	status, err := p.TestConnection(context.Background())
	if err != nil || status.State != activity.StateNotConfigured {
		t.Errorf("TestConnection() = %v, %v; want NotConfigured", status, err)
	}
	if _, err := p.DetailedActivities(context.Background(), "u", 30); err == nil {
		t.Error("DetailedActivities() on unconfigured adapter should fail")
	}
}

func TestTestConnection(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   activity.ConnectionState
	}{
		{"ok", http.StatusOK, activity.StateConnected},
		{"unauthorized", http.StatusUnauthorized, activity.StateError},
		{"forbidden", http.StatusForbidden, activity.StateError},
		{"not found", http.StatusNotFound, activity.StateError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newGerritServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/a/accounts/self" {
					t.Errorf("path = %q, want /a/accounts/self", r.URL.Path)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(")]}'\n{\"_account_id\": 1}"))
			})
			p, _ := newTestPlatform(t, server.URL)
			got, err := p.TestConnection(context.Background())
			if err != nil {
				t.Fatalf("TestConnection() error = %v", err)
			}
			if got.State != tt.want {
				t.Errorf("State = %v (%s), want %v", got.State, got.Reason, tt.want)
			}
		})
	}
}

func TestSearchItems(t *testing.T) {
	server := newGerritServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		switch {
		case strings.HasPrefix(q, "reviewer:"):
			_, _ = w.Write([]byte(givenChanges))
		case strings.Contains(q, "status:merged"):
			_, _ = w.Write([]byte(mergedChanges))
		default:
			_, _ = w.Write([]byte(ownedChanges))
		}
	})
	p, _ := newTestPlatform(t, server.URL)

	got, err := p.SearchItems(context.Background(), "FEATURE", "dev@example.com")
	if err != nil {
		t.Fatalf("SearchItems() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("SearchItems() returned %d items, want 2 (created + received)", len(got))
	}
	for _, item := range got {
		if item.ID != "101" {
			t.Errorf("unexpected match %s %q", item.ID, item.Title)
		}
	}
}
