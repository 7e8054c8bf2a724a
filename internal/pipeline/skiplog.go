package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spacesedan/counterflow/internal/storage"
)

// SkipEntry records one batch that failed and was skipped. Entries are
// append-only and never consulted to block retries: an operator decides
// whether to re-run skipped batches in a later invocation.
type SkipEntry struct {
	BatchIndex int    `json:"batch_index"`
	Reason     string `json:"reason"`
	Timestamp  int64  `json:"timestamp"`
}

// SkipLog persists skipped batches to a JSON file. Re-skipping the same batch
// index appends a new entry rather than replacing the old one.
type SkipLog struct {
	path    string
	entries []SkipEntry
}

func NewSkipLog(path string) (*SkipLog, error) {
	l := &SkipLog{path: path}

	err := storage.ReadJSON(path, &l.entries)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return l, nil
	case err != nil:
		return nil, fmt.Errorf("[SkipLog] failed to load entries: %w", err)
	}
	return l, nil
}

// Record appends a skip entry and persists immediately.
func (l *SkipLog) Record(batchIndex int, reason string) error {
	l.entries = append(l.entries, SkipEntry{
		BatchIndex: batchIndex,
		Reason:     reason,
		Timestamp:  time.Now().Unix(),
	})

	if err := storage.WriteJSONAtomic(l.path, l.entries); err != nil {
		return fmt.Errorf("[SkipLog] failed to persist entries: %w", err)
	}

	slog.Warn("[SkipLog] Recorded skipped batch",
		slog.Int("batch_index", batchIndex),
		slog.String("reason", reason))
	return nil
}

// Entries returns a copy of all recorded skips.
func (l *SkipLog) Entries() []SkipEntry {
	return append([]SkipEntry(nil), l.entries...)
}

func (l *SkipLog) Count() int {
	return len(l.entries)
}
