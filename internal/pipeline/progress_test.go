package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/counterflow/internal/storage"
)

func TestProgressTrackerFreshStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")

	tracker, err := NewProgressTracker(path)
	require.NoError(t, err)

	assert.False(t, tracker.IsDone(0))
	assert.Equal(t, 0, tracker.DoneCount())
}

func TestProgressTrackerPersistsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")

	tracker, err := NewProgressTracker(path)
	require.NoError(t, err)
	require.NoError(t, tracker.MarkDone(2))
	require.NoError(t, tracker.MarkDone(0))

	reloaded, err := NewProgressTracker(path)
	require.NoError(t, err)

	assert.True(t, reloaded.IsDone(0))
	assert.False(t, reloaded.IsDone(1))
	assert.True(t, reloaded.IsDone(2))
	assert.Equal(t, 2, reloaded.DoneCount())
}

func TestProgressTrackerStateFileSorted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")

	tracker, err := NewProgressTracker(path)
	require.NoError(t, err)
	require.NoError(t, tracker.MarkDone(5))
	require.NoError(t, tracker.MarkDone(1))
	require.NoError(t, tracker.MarkDone(3))

	var state ProgressState
	require.NoError(t, storage.ReadJSON(path, &state))
	assert.Equal(t, []int{1, 3, 5}, state.DoneBatches)
	assert.NotZero(t, state.Timestamp)
}

func TestProgressTrackerMarkDoneIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")

	tracker, err := NewProgressTracker(path)
	require.NoError(t, err)
	require.NoError(t, tracker.MarkDone(4))
	require.NoError(t, tracker.MarkDone(4))

	assert.Equal(t, 1, tracker.DoneCount())
}
