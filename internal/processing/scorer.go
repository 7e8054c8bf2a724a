package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spacesedan/counterflow/internal/db"
	"github.com/spacesedan/counterflow/internal/models"
	"github.com/spacesedan/counterflow/internal/pipeline"
	"github.com/spacesedan/counterflow/internal/storage"
)

// ScoreFunc scores one piece of text; the Perspective client satisfies it.
type ScoreFunc func(comment string) (models.PerspectiveScores, error)

// Scorer runs automated toxicity scoring over one model's counterspeech
// output. Batches are sized to the periodic-save interval so every completed
// batch is durably on disk.
type Scorer struct {
	ModelName  string
	Score      ScoreFunc
	BatchSize  int
	OutputPath string
	// Pacing is the pause between per-comment scoring calls.
	Pacing time.Duration
	// ArchiveTable enables DynamoDB archiving of scored outputs when set.
	ArchiveTable string
}

// Process implements pipeline.Processor: one score per generated reply. A
// missing credential fails the whole batch into the skip log so the batch can
// be retried once the key is configured.
func (s *Scorer) Process(ctx context.Context, batch pipeline.Batch[models.Counterspeech]) ([]models.ScoredOutput, error) {
	scored := make([]models.ScoredOutput, 0, len(batch.Records))

	for i, record := range batch.Records {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		scores, err := s.Score(record.CounterspeechEnglish)
		if err != nil {
			return nil, fmt.Errorf("[Scorer] %s batch %d: %w", s.ModelName, batch.Index, err)
		}

		scored = append(scored, models.ScoredOutput{
			Comment:           record.CounterspeechEnglish,
			Lang:              record.Language,
			PerspectiveScores: scores,
			Model:             s.ModelName,
		})

		if s.Pacing > 0 && i < len(batch.Records)-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.Pacing):
			}
		}
	}

	return scored, nil
}

// appendOutput merges scored entries into the cumulative per-model file and
// archives them when an archive table is configured.
func (s *Scorer) appendOutput(ctx context.Context, scored []models.ScoredOutput) error {
	var existing []models.ScoredOutput
	err := storage.ReadJSON(s.OutputPath, &existing)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("[Scorer] failed to read existing output: %w", err)
	}

	existing = append(existing, scored...)
	if err := storage.WriteJSONAtomic(s.OutputPath, existing); err != nil {
		return err
	}

	if s.ArchiveTable != "" {
		if err := db.ArchiveScoredOutputs(ctx, s.ArchiveTable, scored); err != nil {
			// Archive failures are logged, not fatal: the file already
			// holds the batch.
			slog.Error("[Scorer] Failed to archive scored outputs",
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// Run executes the checkpointed scoring loop over one model's counterspeech
// output file.
func (s *Scorer) Run(ctx context.Context, inputPath, progressPath, skipPath string) (pipeline.Summary, error) {
	var replies []models.Counterspeech
	if err := storage.ReadJSON(inputPath, &replies); err != nil {
		return pipeline.Summary{}, fmt.Errorf("[Scorer] failed to read counterspeech input: %w", err)
	}

	batches := pipeline.Partition(replies, s.BatchSize)

	slog.Info("[Scorer] Starting toxicity scoring",
		slog.String("model", s.ModelName),
		slog.Int("replies", len(replies)),
		slog.Int("batches", len(batches)))

	tracker, err := pipeline.NewProgressTracker(progressPath)
	if err != nil {
		return pipeline.Summary{}, err
	}
	skips, err := pipeline.NewSkipLog(skipPath)
	if err != nil {
		return pipeline.Summary{}, err
	}

	runner := &pipeline.Runner[models.Counterspeech, models.ScoredOutput]{
		Name:      "score:" + s.ModelName,
		Processor: s,
		Sink:      pipeline.SinkFunc[models.ScoredOutput](s.appendOutput),
		Tracker:   tracker,
		Skips:     skips,
	}

	return runner.Run(ctx, batches)
}
