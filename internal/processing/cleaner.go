package processing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spacesedan/counterflow/internal/clients"
	"github.com/spacesedan/counterflow/internal/models"
	"github.com/spacesedan/counterflow/internal/pipeline"
	"github.com/spacesedan/counterflow/internal/storage"
)

const cleaningPrompt = `You are an expert text processor. Your task is to process a JSON array of user comments.

For each comment, determine its ` + "`classification`" + ` and produce its ` + "`cleaned_text`" + ` version based on the following rules:

**Classification Categories:**
* ` + "`rom_hindi`" + `: For comments in Romanized Hindi (Hinglish).
* ` + "`english`" + `: For comments primarily in English.
* ` + "`other`" + `: For all other languages, including Hindi in its native Devanagari script.

**Cleaning Rules:**
* **For ALL comments:** Remove emojis. Do not transliterate native scripts.

Your response must be a single, valid JSON array of objects. Each object must have two keys: "classification" and "cleaned_text". Maintain the original order and include no extra text or explanations.

Comments to process:
`

// SeenTracker suppresses duplicate comment texts across cleaning runs.
// The Valkey client satisfies this; a MemorySeen covers runs without a cache.
type SeenTracker interface {
	IsSeen(ctx context.Context, text string) bool
	MarkSeen(ctx context.Context, text string) error
}

// MemorySeen is the in-process SeenTracker used when no cache is configured.
type MemorySeen struct {
	seen map[string]bool
}

func NewMemorySeen() *MemorySeen {
	return &MemorySeen{seen: make(map[string]bool)}
}

func (m *MemorySeen) IsSeen(_ context.Context, text string) bool {
	return m.seen[text]
}

func (m *MemorySeen) MarkSeen(_ context.Context, text string) error {
	m.seen[text] = true
	return nil
}

// Cleaner sends comment batches to the Gemini cleaning prompt and merges the
// classified, cleaned text into the category-keyed output file.
type Cleaner struct {
	Gemini     *clients.GeminiClient
	Seen       SeenTracker
	BatchSize  int
	BatchDelay time.Duration
	OutputPath string
}

// Process implements pipeline.Processor for one batch of raw comments. A
// response whose length does not match the batch fails the whole batch, since
// items can no longer be paired with their source comments.
func (c *Cleaner) Process(_ context.Context, batch pipeline.Batch[string]) ([]models.CleanedBatchItem, error) {
	payload, err := json.Marshal(batch.Records)
	if err != nil {
		return nil, fmt.Errorf("[Cleaner] failed to marshal batch %d: %w", batch.Index, err)
	}

	raw, err := c.Gemini.GenerateJSON(cleaningPrompt + string(payload))
	if err != nil {
		return nil, fmt.Errorf("[Cleaner] batch %d: %w", batch.Index, err)
	}

	var items []models.CleanedBatchItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("[Cleaner] batch %d returned malformed JSON: %w", batch.Index, err)
	}
	if len(items) != len(batch.Records) {
		return nil, fmt.Errorf("[Cleaner] batch %d returned %d results for %d comments",
			batch.Index, len(items), len(batch.Records))
	}
	return items, nil
}

// Merge folds cleaned items into the cumulative output file, deduplicating on
// exact text, and rewrites the file atomically.
func (c *Cleaner) Merge(ctx context.Context, items []models.CleanedBatchItem) error {
	var existing models.CleanedComments
	err := storage.ReadJSON(c.OutputPath, &existing)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("[Cleaner] failed to read existing output: %w", err)
	}

	// Seed the dedup set from the file so restarts without a cache still
	// converge.
	for _, text := range existing.All() {
		if err := c.Seen.MarkSeen(ctx, text); err != nil {
			return err
		}
	}

	added := 0
	for _, item := range items {
		text := strings.TrimSpace(item.CleanedText)
		if text == "" {
			continue
		}
		if c.Seen.IsSeen(ctx, text) {
			continue
		}

		bucket := existing.Bucket(item.Classification)
		*bucket = append(*bucket, text)
		if err := c.Seen.MarkSeen(ctx, text); err != nil {
			return err
		}
		added++
	}

	if err := storage.WriteJSONAtomic(c.OutputPath, existing); err != nil {
		return err
	}

	slog.Info("[Cleaner] Merged new unique comments",
		slog.Int("added", added),
		slog.String("output", c.OutputPath))
	return nil
}

// FlattenComments produces the ordered record collection for batching: every
// video's comments in input order.
func FlattenComments(videos []models.VideoComments) []string {
	var comments []string
	for _, video := range videos {
		comments = append(comments, video.Comments...)
	}
	return comments
}

// Run executes the checkpointed cleaning loop over the combined raw file.
func (c *Cleaner) Run(ctx context.Context, inputPath, progressPath, skipPath string) (pipeline.Summary, error) {
	var videos []models.VideoComments
	if err := storage.ReadJSON(inputPath, &videos); err != nil {
		return pipeline.Summary{}, fmt.Errorf("[Cleaner] failed to read input: %w", err)
	}

	comments := FlattenComments(videos)
	batches := pipeline.Partition(comments, c.BatchSize)

	slog.Info("[Cleaner] Starting cleaning run",
		slog.Int("videos", len(videos)),
		slog.Int("comments", len(comments)),
		slog.Int("batches", len(batches)))

	tracker, err := pipeline.NewProgressTracker(progressPath)
	if err != nil {
		return pipeline.Summary{}, err
	}
	skips, err := pipeline.NewSkipLog(skipPath)
	if err != nil {
		return pipeline.Summary{}, err
	}

	runner := &pipeline.Runner[string, models.CleanedBatchItem]{
		Name:      "clean",
		Processor: c,
		Sink: pipeline.SinkFunc[models.CleanedBatchItem](func(ctx context.Context, items []models.CleanedBatchItem) error {
			return c.Merge(ctx, items)
		}),
		Tracker: tracker,
		Skips:   skips,
		Delay:   c.BatchDelay,
	}

	return runner.Run(ctx, batches)
}
