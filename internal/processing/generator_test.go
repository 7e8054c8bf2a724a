package processing

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/counterflow/internal/models"
	"github.com/spacesedan/counterflow/internal/pipeline"
	"github.com/spacesedan/counterflow/internal/storage"
)

func TestGeneratorProcess(t *testing.T) {
	g := &Generator{
		ModelName: "gpt4",
		Generate: func(_ context.Context, comment string) (string, error) {
			return "reply to: " + comment, nil
		},
	}

	batch := pipeline.Batch[models.FilteredComment]{
		Index: 0,
		Records: []models.FilteredComment{
			{Comment: "India is dirty", Language: models.LangEnglish},
			{Comment: "sab chor hain", Language: models.LangRomHindi},
		},
	}

	replies, err := g.Process(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, replies, 2)

	assert.Equal(t, "India is dirty", replies[0].Comment)
	assert.Equal(t, "reply to: India is dirty", replies[0].CounterspeechEnglish)
	assert.Equal(t, models.LangRomHindi, replies[1].Language)
	assert.Equal(t, "gpt4", replies[1].Model)
}

func TestGeneratorProcessAnyFailureFailsBatch(t *testing.T) {
	calls := 0
	g := &Generator{
		ModelName: "ministral",
		Generate: func(context.Context, string) (string, error) {
			calls++
			if calls == 2 {
				return "", errors.New("model unavailable")
			}
			return "ok", nil
		},
	}

	batch := pipeline.Batch[models.FilteredComment]{
		Records: []models.FilteredComment{{Comment: "a"}, {Comment: "b"}, {Comment: "c"}},
	}

	replies, err := g.Process(context.Background(), batch)
	require.Error(t, err)
	assert.Nil(t, replies)
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestGeneratorRunResumable(t *testing.T) {
	dir := t.TempDir()
	relevantPath := filepath.Join(dir, "relevant.jsonl")

	var comments []models.FilteredComment
	for i := 0; i < 5; i++ {
		comments = append(comments, models.FilteredComment{
			Comment:  fmt.Sprintf("comment %d", i),
			Language: models.LangEnglish,
		})
	}
	require.NoError(t, storage.AppendJSONL(relevantPath, comments))

	calls := 0
	g := &Generator{
		ModelName: "gpt4",
		Generate: func(_ context.Context, comment string) (string, error) {
			calls++
			return "countered", nil
		},
		BatchSize:  2,
		OutputPath: filepath.Join(dir, "gpt4_responses.json"),
	}

	progressPath := filepath.Join(dir, "gpt4_progress.json")
	skipPath := filepath.Join(dir, "gpt4_skipped.json")

	summary, err := g.Run(context.Background(), relevantPath, progressPath, skipPath)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 5, summary.Records)
	require.Equal(t, 5, calls)

	// A second run over the same input touches nothing.
	summary, err = g.Run(context.Background(), relevantPath, progressPath, skipPath)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.AlreadyDone)
	assert.Equal(t, 5, calls)

	var out []models.Counterspeech
	require.NoError(t, storage.ReadJSON(g.OutputPath, &out))
	require.Len(t, out, 5)
	assert.Equal(t, "comment 0", out[0].Comment)
	assert.Equal(t, "countered", out[0].CounterspeechEnglish)
}
