package processing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/counterflow/internal/clients"
	"github.com/spacesedan/counterflow/internal/models"
	"github.com/spacesedan/counterflow/internal/pipeline"
	"github.com/spacesedan/counterflow/internal/storage"
)

const relevanceInstruction = `You are analyzing YouTube comments on travel vlogs related to India for a project on societal biases.
Your task is to classify each comment as "relevant" or "irrelevant" based on a strict definition.

Definition of Relevance:
A comment is relevant *only if* it expresses a clear opinion, generalization, or comparison about:
* Broad Societal Topics: Indian culture, society, safety, politics, religion, traditions, or lifestyle (e.g., "India is so unsafe for women," "Indian culture is very spiritual").
* Explicit Judgments: Direct praise, criticism, or controversy about India, its people, or its culture as a whole (e.g., "Indians are the friendliest people," "India is a very dirty country").
* Direct Comparisons: Explicit comparisons between India and other countries (e.g., "It's cleaner here than in Pakistan," "People in Europe are not as welcoming as in India").
* Generalizations from Travel: Travel experiences that are used to make a broader conclusion about the country or its people (e.g., "I got scammed, this happens all the time in India").

Definition of Irrelevance:
A comment is irrelevant if it:
* Is a Personal Anecdote: Describes a simple, personal interaction or a specific event *without* making a broader judgment (e.g., "The lady on the street gave me an apple," "Our guide was very nice").
* Is a Simple Observation: Makes a neutral observation about food, prices, or scenery (e.g., "That food looks delicious," "The mountains are beautiful," "The train was late").
* Focuses on the Creator: Talks about the vlogger, their music, editing, or unrelated topics (e.g., "Love your videos!", "What camera do you use?").
* Is Generic: Contains only emojis, tags, links, timestamps, spam, promotions, or random text.

Output format:
Return results as JSON with two fields:

{
  "comment": "<original comment>",
  "classification": "relevant" or "irrelevant"
}
`

// LanguageComment is one record of the filtering stage: a cleaned comment
// tagged with its language bucket.
type LanguageComment struct {
	Comment  string
	Language string
}

// RoutedComment is a filter decision routed toward one of the three output
// partitions.
type RoutedComment struct {
	models.FilteredComment
	Classification string
}

// Filterer classifies each cleaned comment as relevant or irrelevant for the
// bias study and routes it to the matching JSONL partition. Malformed model
// output routes to the error partition without failing the run.
type Filterer struct {
	Gemini *clients.GeminiClient
	// Pacing is the pause between per-comment classification calls.
	Pacing time.Duration

	RelevantPath   string
	IrrelevantPath string
	ErrorPath      string
}

// classify runs the relevance prompt over one comment and returns the
// lowercase classification, or RelevanceError when the response is unusable.
func (f *Filterer) classify(comment string) (string, error) {
	prompt := relevanceInstruction + "\n\n---\nPlease classify the following comment:\n\"" + comment + "\""

	raw, err := f.Gemini.GenerateJSON(prompt)
	if err != nil {
		return "", err
	}

	var result models.FilterResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		// The model occasionally wraps the object in an array.
		var list []models.FilterResult
		if err := json.Unmarshal([]byte(raw), &list); err != nil || len(list) == 0 {
			slog.Warn("[Filterer] Unexpected response format",
				slog.String("preview", preview(comment)))
			return models.RelevanceError, nil
		}
		result = list[0]
	}

	classification := strings.ToLower(result.Classification)
	if classification != models.RelevanceRelevant && classification != models.RelevanceIrrelevant {
		return models.RelevanceError, nil
	}
	return classification, nil
}

// Process implements pipeline.Processor over a batch of language-tagged
// comments. Only a persistent API failure fails the batch; per-comment
// data-shape problems land in the error partition instead.
func (f *Filterer) Process(ctx context.Context, batch pipeline.Batch[LanguageComment]) ([]RoutedComment, error) {
	routed := make([]RoutedComment, 0, len(batch.Records))

	for i, record := range batch.Records {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		classification := models.RelevanceIrrelevant
		if strings.TrimSpace(record.Comment) == "" {
			slog.Info("[Filterer] Skipping empty comment",
				slog.Int("batch_index", batch.Index))
		} else {
			var err error
			classification, err = f.classify(record.Comment)
			if err != nil {
				return nil, fmt.Errorf("[Filterer] batch %d: %w", batch.Index, err)
			}
		}

		routed = append(routed, RoutedComment{
			FilteredComment: models.FilteredComment{
				Comment:  record.Comment,
				Language: record.Language,
			},
			Classification: classification,
		})

		if f.Pacing > 0 && i < len(batch.Records)-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.Pacing):
			}
		}
	}

	return routed, nil
}

// Route appends each decision to its partition file.
func (f *Filterer) Route(_ context.Context, routed []RoutedComment) error {
	var relevant, irrelevant, errored []models.FilteredComment
	for _, r := range routed {
		switch r.Classification {
		case models.RelevanceRelevant:
			relevant = append(relevant, r.FilteredComment)
		case models.RelevanceIrrelevant:
			irrelevant = append(irrelevant, r.FilteredComment)
		default:
			errored = append(errored, r.FilteredComment)
		}
	}

	if err := storage.AppendJSONL(f.RelevantPath, relevant); err != nil {
		return err
	}
	if err := storage.AppendJSONL(f.IrrelevantPath, irrelevant); err != nil {
		return err
	}
	return storage.AppendJSONL(f.ErrorPath, errored)
}

// CommentsForFiltering builds the ordered record collection from the cleaned
// store. Only the rom_hindi and english buckets feed the study; "other" never
// enters the dataset.
func CommentsForFiltering(cleaned models.CleanedComments) []LanguageComment {
	records := make([]LanguageComment, 0, len(cleaned.RomHindi)+len(cleaned.English))
	for _, c := range cleaned.RomHindi {
		records = append(records, LanguageComment{Comment: c, Language: models.LangRomHindi})
	}
	for _, c := range cleaned.English {
		records = append(records, LanguageComment{Comment: c, Language: models.LangEnglish})
	}
	return records
}

// Run executes the checkpointed filtering loop over the cleaned store.
func (f *Filterer) Run(ctx context.Context, inputPath, progressPath, skipPath string, batchSize int) (pipeline.Summary, error) {
	var cleaned models.CleanedComments
	if err := storage.ReadJSON(inputPath, &cleaned); err != nil {
		return pipeline.Summary{}, fmt.Errorf("[Filterer] failed to read cleaned input: %w", err)
	}

	records := CommentsForFiltering(cleaned)
	batches := pipeline.Partition(records, batchSize)

	slog.Info("[Filterer] Starting relevance filtering",
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

	runner := &pipeline.Runner[LanguageComment, RoutedComment]{
		Name:      "filter",
		Processor: f,
		Sink:      pipeline.SinkFunc[RoutedComment](f.Route),
		Tracker:   tracker,
		Skips:     skips,
	}

	return runner.Run(ctx, batches)
}

func preview(text string) string {
	if len(text) > 50 {
		return text[:50]
	}
	return text
}
