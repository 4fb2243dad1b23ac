package notes

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kain88-de/reviewr/internal/employee"
)

type fakeClipboard struct {
	text string
	err  error
}

func (f fakeClipboard) ReadAll() (string, error) { return f.text, f.err }

func newTestService(t *testing.T, clip string, allowed ...string) *Service {
	t.Helper()
	s := New(t.TempDir(), allowed, nil)
	s.Clipboard = fakeClipboard{text: clip}
	s.now = func() time.Time { return time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC) }
	s.RunEditor = func(context.Context, string) error { return nil }
	return s
}

func TestIsDomainAllowed(t *testing.T) {
	allowed := []string{"company.example.com"}

	tests := []struct {
		domain  string
		allowed []string
		want    bool
	}{
		{"company.example.com", allowed, true},
		{"review.company.example.com", allowed, true},
		{"Review.Company.Example.com", allowed, true},
		{"other.com", allowed, false},
		{"example.com", allowed, false},
		{"evilcompany.example.com", allowed, false},
		{"any.domain.com", nil, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsDomainAllowed(tt.domain, tt.allowed), "domain %q", tt.domain)
	}
}

func TestPrepareCreatesHeader(t *testing.T) {
	s := newTestService(t, "not a url")

	path, err := s.Prepare("Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, s.Path("Jane Doe"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Notes for Jane Doe\n\n## 2024-05-06\n\n", string(data))
}

func TestPrepareKeepsExistingNotes(t *testing.T) {
	s := newTestService(t, "")
	require.NoError(t, os.WriteFile(s.Path("Jane"), []byte("existing\n"), 0o600))

	_, err := s.Prepare("Jane")
	require.NoError(t, err)

	data, _ := os.ReadFile(s.Path("Jane"))
	assert.Equal(t, "existing\n", string(data))
}

func TestPrepareAppendsAllowedEvidence(t *testing.T) {
	s := newTestService(t, " https://gerrit.example.com/c/proj/+/42 \n", "example.com")

	_, err := s.Prepare("Jane")
	require.NoError(t, err)

	data, _ := os.ReadFile(s.Path("Jane"))
	assert.Equal(t, "# Notes for Jane\n\n## 2024-05-06\n\n- Evidence: https://gerrit.example.com/c/proj/+/42\n", string(data))
}

func TestPrepareSkipsDisallowedEvidence(t *testing.T) {
	for _, clip := range []string{"https://other.org/x", "ftp://example.com/file", "just text"} {
		s := newTestService(t, clip, "example.com")
		_, err := s.Prepare("Jane")
		require.NoError(t, err)

		data, _ := os.ReadFile(s.Path("Jane"))
		assert.NotContains(t, string(data), "Evidence", "clipboard %q", clip)
	}
}

func TestPrepareClipboardError(t *testing.T) {
	s := newTestService(t, "")
	s.Clipboard = fakeClipboard{err: errors.New("no display")}

	_, err := s.Prepare("Jane")
	require.NoError(t, err)
}

func TestPrepareRejectsInvalidName(t *testing.T) {
	s := newTestService(t, "")
	_, err := s.Prepare("../etc/passwd")
	assert.ErrorIs(t, err, employee.ErrInvalidName)
}

func TestOpenRunsEditor(t *testing.T) {
	s := newTestService(t, "")
	var opened string
	s.RunEditor = func(_ context.Context, path string) error {
		opened = path
		return nil
	}

	require.NoError(t, s.Open(context.Background(), "Jane"))
	assert.Equal(t, s.Path("Jane"), opened)

	s.RunEditor = func(context.Context, string) error { return errors.New("exit status 1") }
	assert.ErrorContains(t, s.Open(context.Background(), "Jane"), "run editor")
}

func TestRead(t *testing.T) {
	s := newTestService(t, "")
	_, err := s.Read("Jane")
	assert.ErrorIs(t, err, ErrNoNotes)

	_, err = s.Prepare("Jane")
	require.NoError(t, err)
	content, err := s.Read("Jane")
	require.NoError(t, err)
	assert.Contains(t, content, "# Notes for Jane")
}

func TestEditorCommand(t *testing.T) {
	t.Setenv("EDITOR", "")
	assert.Equal(t, []string{"vim"}, editorCommand())

	t.Setenv("EDITOR", "code -w")
	assert.Equal(t, []string{"code", "-w"}, editorCommand())
}
