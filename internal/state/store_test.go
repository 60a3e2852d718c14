package state

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	version, err := s.MigrationVersion()
	require.NoError(t, err)
	assert.Greater(t, version, int64(0))
}

func TestRememberInterpreter(t *testing.T) {
	s := openTestStore(t)

	_, found, err := s.RememberedInterpreter("/tmp/nb.py")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.RememberInterpreter("/tmp/nb.py", "/usr/bin/python3"))

	interp, found, err := s.RememberedInterpreter("/tmp/nb.py")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "/usr/bin/python3", interp)

	// Choosing again replaces the remembered path.
	require.NoError(t, s.RememberInterpreter("/tmp/nb.py", "/opt/venv/bin/python"))
	interp, _, err = s.RememberedInterpreter("/tmp/nb.py")
	require.NoError(t, err)
	assert.Equal(t, "/opt/venv/bin/python", interp)
}

func TestTouchNotebookKeepsInterpreter(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.RememberInterpreter("/tmp/nb.py", "/usr/bin/python3"))
	require.NoError(t, s.TouchNotebook("/tmp/nb.py"))

	interp, found, err := s.RememberedInterpreter("/tmp/nb.py")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "/usr/bin/python3", interp)
}

func TestTouchNotebookAloneRemembersNothing(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.TouchNotebook("/tmp/fresh.py"))
	_, found, err := s.RememberedInterpreter("/tmp/fresh.py")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRunLifecycle(t *testing.T) {
	s := openTestStore(t)

	run, err := s.CreateRun("/tmp/nb.py", 5)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.Equal(t, -1, run.FailedCell)

	require.NoError(t, s.FinishRun(run.ID, RunStatusFailed, 2))

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	assert.Equal(t, 2, got.FailedCell)
	assert.Equal(t, 5, got.Cells)
	assert.True(t, got.CompletedAt.Valid)
}

func TestFinishUnknownRun(t *testing.T) {
	s := openTestStore(t)
	require.Error(t, s.FinishRun("nope", RunStatusSucceeded, -1))
}

func TestRecentRunsOrder(t *testing.T) {
	s := openTestStore(t)

	first, err := s.CreateRun("/tmp/nb.py", 1)
	require.NoError(t, err)
	second, err := s.CreateRun("/tmp/nb.py", 2)
	require.NoError(t, err)
	_, err = s.CreateRun("/tmp/other.py", 3)
	require.NoError(t, err)

	runs, err := s.RecentRuns("/tmp/nb.py", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	// Newest first; equal timestamps can tie, so just check membership order
	// by ID set.
	ids := []string{runs[0].ID, runs[1].ID}
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)
}

func TestRecentNotebooks(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.TouchNotebook("/tmp/a.py"))
	require.NoError(t, s.TouchNotebook("/tmp/b.py"))

	paths, err := s.RecentNotebooks(10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/tmp/a.py", "/tmp/b.py"}, paths)
}
