package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStoreInMemory(t *testing.T) {
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NotNil(t, s)

	err = s.Close()
	assert.NoError(t, err)
}

func TestNewStoreCreatesFileAndDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	id, err := s.StartRun("crosslink")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopening keeps the history.
	s, err = NewStore(path)
	require.NoError(t, err)
	defer s.Close()
	run, err := s.GetRun(id)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "crosslink", run.Command)
}

func TestStartAndFinishRun(t *testing.T) {
	s := newTestStore(t)

	id, err := s.StartRun("checklinks")
	require.NoError(t, err)
	assert.Len(t, id, 36)

	run, err := s.GetRun(id)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, StatusRunning, run.Status)
	assert.Nil(t, run.FinishedAt)
	assert.False(t, run.StartedAt.IsZero())

	require.NoError(t, s.FinishRun(id, StatusDone, 12, 3))
	run, err = s.GetRun(id)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, run.Status)
	assert.Equal(t, 12, run.Pages)
	assert.Equal(t, 3, run.Items)
	require.NotNil(t, run.FinishedAt)
}

func TestFinishUnknownRun(t *testing.T) {
	s := newTestStore(t)
	err := s.FinishRun("no-such-run", StatusDone, 0, 0)
	assert.Error(t, err)
}

func TestGetRunMissing(t *testing.T) {
	s := newTestStore(t)
	run, err := s.GetRun("no-such-run")
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestRecentRunsNewestFirst(t *testing.T) {
	s := newTestStore(t)

	var ids []string
	for _, cmd := range []string{"crosslink", "checklinks", "summarize"} {
		id, err := s.StartRun(cmd)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	runs, err := s.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, "summarize", runs[0].Command)
	assert.Equal(t, ids[1], runs[1].ID)
}

func TestRecordAndListCommits(t *testing.T) {
	s := newTestStore(t)
	id, err := s.StartRun("crosslink")
	require.NoError(t, err)
	other, err := s.StartRun("crosslink")
	require.NoError(t, err)

	require.NoError(t, s.RecordCommit(id, "Dorman Long", "Ralph Freeman", "Freeman"))
	require.NoError(t, s.RecordCommit(id, "Dorman Long", "Sydney Harbour Bridge", "the bridge"))
	require.NoError(t, s.RecordCommit(other, "Arrol", "William Arrol", "Arrol"))

	commits, err := s.CommitsForRun(id)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "Ralph Freeman", commits[0].Target)
	assert.Equal(t, "Freeman", commits[0].Label)
	assert.Equal(t, "the bridge", commits[1].Label)
	assert.Equal(t, id, commits[1].RunID)

	none, err := s.CommitsForRun("no-such-run")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecordLinkResults(t *testing.T) {
	s := newTestStore(t)
	id, err := s.StartRun("checklinks")
	require.NoError(t, err)

	require.NoError(t, s.RecordLinkResult(id, "Arrol", "http://ok.example.org", "", false))
	require.NoError(t, s.RecordLinkResult(id, "Arrol", "http://gone.example.org", "404", false))
	require.NoError(t, s.RecordLinkResult(id, "Arrol", "http://slow.example.org", "timeout", true))

	all, err := s.LinkResultsForRun(id, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	failed, err := s.LinkResultsForRun(id, true)
	require.NoError(t, err)
	require.Len(t, failed, 2)
	assert.Equal(t, "404", failed[0].Code)
	assert.False(t, failed[0].Excepted)
	assert.Equal(t, "timeout", failed[1].Code)
	assert.True(t, failed[1].Excepted)
}
