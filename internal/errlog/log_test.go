package errlog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	return Open(t.TempDir())
}

func TestRecordBuilder(t *testing.T) {
	rec := New("gerrit", "query_changes").
		WithUser("test@example.com").
		WithError(TypeNetwork, "Connection timeout").
		WithRequest("https://gerrit.example.com/api", 500, "Internal Server Error").
		WithMetadata("query", "owner:test@example.com")

	assert.Equal(t, "gerrit", rec.PlatformID)
	assert.Equal(t, "query_changes", rec.Operation)
	require.NotNil(t, rec.User)
	assert.Equal(t, "test@example.com", *rec.User)
	assert.Equal(t, TypeNetwork, rec.ErrorType)
	assert.Equal(t, "Connection timeout", rec.ErrorMessage)
	require.NotNil(t, rec.StatusCode)
	assert.Equal(t, 500, *rec.StatusCode)
	assert.Equal(t, "owner:test@example.com", rec.Metadata["query"])
	assert.False(t, rec.Time().IsZero(), "timestamp should be RFC3339")
}

func TestRecordBuilderOptionalFields(t *testing.T) {
	rec := New("jira", "search").WithUser("").WithRequest("https://x", 0, "")
	assert.Nil(t, rec.User)
	assert.Nil(t, rec.StatusCode)
	assert.Nil(t, rec.ResponseBody)
	require.NotNil(t, rec.RequestURL)
}

func TestRecordBodyTruncated(t *testing.T) {
	body := make([]byte, MaxBodyBytes*2)
	for i := range body {
		body[i] = 'x'
	}
	rec := New("jira", "search").WithRequest("u", 500, string(body))
	require.NotNil(t, rec.ResponseBody)
	assert.Len(t, *rec.ResponseBody, MaxBodyBytes)
}

func TestRoundTrip(t *testing.T) {
	log := newTestLog(t)
	rec := New("gitlab:company", "fetch_authored_mrs").
		WithUser("dev@example.com").
		WithError(TypeAPI, "HTTP 502").
		WithRequest("https://gitlab.example.com/api/v4/merge_requests", 502, "bad gateway").
		WithMetadata("category", "MergeRequestsCreated")

	require.NoError(t, log.Append(rec))

	got, err := log.ReadRecent(1, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec, got[0])
}

func TestReadRecentMissingFile(t *testing.T) {
	log := newTestLog(t)
	got, err := log.ReadRecent(10, "")
	require.NoError(t, err)
	assert.Empty(t, got)

	stats, err := log.Stats()
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestReadRecentOrderAndFilter(t *testing.T) {
	log := newTestLog(t)
	platforms := []string{"gerrit", "jira", "gerrit", "jira", "gerrit"}
	for i, p := range platforms {
		rec := New(p, fmt.Sprintf("op-%d", i)).WithError(TypeNetwork, "boom")
		require.NoError(t, log.Append(rec))
	}

	all, err := log.ReadRecent(10, "")
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "op-4", all[0].Operation, "most recent first")
	assert.Equal(t, "op-0", all[4].Operation)

	gerrit, err := log.ReadRecent(2, "gerrit")
	require.NoError(t, err)
	require.Len(t, gerrit, 2)
	for _, rec := range gerrit {
		assert.Equal(t, "gerrit", rec.PlatformID)
	}
	assert.Equal(t, "op-4", gerrit[0].Operation)
	assert.Equal(t, "op-2", gerrit[1].Operation)

	none, err := log.ReadRecent(0, "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReadRecentSkipsMalformedLines(t *testing.T) {
	log := newTestLog(t)
	require.NoError(t, log.Append(New("gerrit", "first")))

	f, err := os.OpenFile(log.Path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("not json at all\n\n{\"platform_id\": 12}\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, log.Append(New("jira", "second")))

	got, err := log.ReadRecent(10, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Operation)
	assert.Equal(t, "first", got[1].Operation)
}

func TestStats(t *testing.T) {
	log := newTestLog(t)
	require.NoError(t, log.Append(New("gerrit", "a").WithError(TypeNetwork, "x")))
	require.NoError(t, log.Append(New("gerrit", "b").WithError(TypeNetwork, "y")))
	require.NoError(t, log.Append(New("gerrit", "c").WithError(TypeParse, "z")))
	last := New("jira", "d").WithError(TypeAPI, "HTTP 401")
	require.NoError(t, log.Append(last))

	stats, err := log.Stats()
	require.NoError(t, err)
	require.Len(t, stats, 2)

	g := stats["gerrit"]
	require.NotNil(t, g)
	assert.Equal(t, 3, g.TotalErrors)
	assert.Equal(t, 2, g.ErrorTypes[TypeNetwork])
	assert.Equal(t, 1, g.ErrorTypes[TypeParse])

	j := stats["jira"]
	require.NotNil(t, j)
	assert.Equal(t, 1, j.TotalErrors)
	assert.Equal(t, last.Timestamp, j.LastErrorTime)
}

func TestClear(t *testing.T) {
	log := newTestLog(t)
	require.NoError(t, log.Clear(), "clearing a missing log is a no-op")

	require.NoError(t, log.Append(New("gerrit", "a")))
	require.NoError(t, log.Clear())
	_, err := os.Stat(log.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestConcurrentAppend(t *testing.T) {
	log := newTestLog(t)
	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				rec := New(fmt.Sprintf("p%d", w), "op").WithError(TypeNetwork, "x")
				assert.NoError(t, log.Append(rec))
			}
		}(w)
	}
	wg.Wait()

	got, err := log.ReadRecent(-1, "")
	require.NoError(t, err)
	assert.Len(t, got, writers*perWriter)
}

func TestNilLogAppendIsNoop(t *testing.T) {
	var log *Log
	assert.NoError(t, log.Append(New("x", "y")))
}

func TestFollow(t *testing.T) {
	dir := t.TempDir()
	log := &Log{Path: filepath.Join(dir, FileName)}
	require.NoError(t, log.Append(New("old", "before-follow")))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan Record, 4)
	done := make(chan error, 1)
	go func() {
		done <- log.Follow(ctx, func(r Record) { got <- r })
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, log.Append(New("jira", "after-follow")))

	select {
	case rec := <-got:
		assert.Equal(t, "after-follow", rec.Operation)
	case <-ctx.Done():
		t.Fatal("timed out waiting for followed record")
	}

	cancel()
	assert.NoError(t, <-done)
}
