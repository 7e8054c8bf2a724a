package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spacesedan/counterflow/internal/models"
	"github.com/spacesedan/counterflow/internal/pipeline"
	"github.com/spacesedan/counterflow/internal/storage"
)

// ReplyFunc produces one counterspeech reply; both model clients are wrapped
// into this shape so the generation loop is model-agnostic.
type ReplyFunc func(ctx context.Context, comment string) (string, error)

// Generator runs one counterspeech model over every relevant comment, with
// batch-level checkpointing and a per-model output file.
type Generator struct {
	ModelName  string
	Generate   ReplyFunc
	BatchSize  int
	OutputPath string
}

// Process implements pipeline.Processor: one reply per comment, whole-batch
// failure on any generation error.
func (g *Generator) Process(ctx context.Context, batch pipeline.Batch[models.FilteredComment]) ([]models.Counterspeech, error) {
	replies := make([]models.Counterspeech, 0, len(batch.Records))

	for _, record := range batch.Records {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		reply, err := g.Generate(ctx, record.Comment)
		if err != nil {
			return nil, fmt.Errorf("[Generator] %s batch %d: %w", g.ModelName, batch.Index, err)
		}

		replies = append(replies, models.Counterspeech{
			Comment:              record.Comment,
			Language:             record.Language,
			CounterspeechEnglish: reply,
			Model:                g.ModelName,
		})
	}

	return replies, nil
}

// appendOutput merges new replies into the model's cumulative JSON output
// with an atomic rewrite.
func (g *Generator) appendOutput(_ context.Context, replies []models.Counterspeech) error {
	var existing []models.Counterspeech
	err := storage.ReadJSON(g.OutputPath, &existing)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("[Generator] failed to read existing output: %w", err)
	}

	existing = append(existing, replies...)
	return storage.WriteJSONAtomic(g.OutputPath, existing)
}

// Run executes the checkpointed generation loop over the relevant partition.
func (g *Generator) Run(ctx context.Context, relevantPath, progressPath, skipPath string) (pipeline.Summary, error) {
	records, err := storage.ReadJSONL[models.FilteredComment](relevantPath)
	if err != nil {
		return pipeline.Summary{}, fmt.Errorf("[Generator] failed to read relevant comments: %w", err)
	}

	batches := pipeline.Partition(records, g.BatchSize)

	slog.Info("[Generator] Starting counterspeech generation",
		slog.String("model", g.ModelName),
		slog.Int("comments", len(records)),
		slog.Int("batches", len(batches)))

	tracker, err := pipeline.NewProgressTracker(progressPath)
	if err != nil {
		return pipeline.Summary{}, err
	}
	skips, err := pipeline.NewSkipLog(skipPath)
	if err != nil {
		return pipeline.Summary{}, err
	}

	runner := &pipeline.Runner[models.FilteredComment, models.Counterspeech]{
		Name:      "generate:" + g.ModelName,
		Processor: g,
		Sink:      pipeline.SinkFunc[models.Counterspeech](g.appendOutput),
		Tracker:   tracker,
		Skips:     skips,
	}

	return runner.Run(ctx, batches)
}
