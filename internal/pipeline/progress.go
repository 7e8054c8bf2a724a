package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/spacesedan/counterflow/internal/storage"
)

// ProgressState is the persisted form of a ProgressTracker.
type ProgressState struct {
	DoneBatches []int `json:"done_batches"`
	Timestamp   int64 `json:"timestamp"`
}

// ProgressTracker records which batches have completed. Every MarkDone
// rewrites the state file through an atomic rename, so a restarted run never
// loses more than the in-flight batch.
type ProgressTracker struct {
	path string
	done map[int]bool
}

// NewProgressTracker loads prior state from path when present, otherwise
// starts empty.
func NewProgressTracker(path string) (*ProgressTracker, error) {
	t := &ProgressTracker{
		path: path,
		done: make(map[int]bool),
	}

	var state ProgressState
	err := storage.ReadJSON(path, &state)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return t, nil
	case err != nil:
		return nil, fmt.Errorf("[ProgressTracker] failed to load state: %w", err)
	}

	for _, idx := range state.DoneBatches {
		t.done[idx] = true
	}
	slog.Info("[ProgressTracker] Loaded prior progress",
		slog.String("path", path),
		slog.Int("done_batches", len(t.done)))
	return t, nil
}

func (t *ProgressTracker) IsDone(batchIndex int) bool {
	return t.done[batchIndex]
}

// MarkDone flags a batch as completed and persists immediately. The write is
// durable before the caller moves on to the next batch.
func (t *ProgressTracker) MarkDone(batchIndex int) error {
	t.done[batchIndex] = true

	indexes := make([]int, 0, len(t.done))
	for idx := range t.done {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	state := ProgressState{
		DoneBatches: indexes,
		Timestamp:   time.Now().Unix(),
	}
	if err := storage.WriteJSONAtomic(t.path, state); err != nil {
		return fmt.Errorf("[ProgressTracker] failed to persist state: %w", err)
	}
	return nil
}

// DoneCount returns how many batches have been marked done.
func (t *ProgressTracker) DoneCount() int {
	return len(t.done)
}
