package processing

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/counterflow/internal/models"
	"github.com/spacesedan/counterflow/internal/pipeline"
	"github.com/spacesedan/counterflow/internal/storage"
)

func TestFiltererProcessClassifies(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "relevant object",
			response: `{"comment": "x", "classification": "relevant"}`,
			want:     models.RelevanceRelevant,
		},
		{
			name:     "irrelevant object",
			response: `{"comment": "x", "classification": "irrelevant"}`,
			want:     models.RelevanceIrrelevant,
		},
		{
			name:     "uppercase label normalized",
			response: `{"comment": "x", "classification": "RELEVANT"}`,
			want:     models.RelevanceRelevant,
		},
		{
			name:     "array wrapped object",
			response: `[{"comment": "x", "classification": "relevant"}]`,
			want:     models.RelevanceRelevant,
		},
		{
			name:     "unknown label routes to error",
			response: `{"comment": "x", "classification": "maybe"}`,
			want:     models.RelevanceError,
		},
		{
			name:     "unusable shape routes to error",
			response: `"just a string"`,
			want:     models.RelevanceError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Filterer{Gemini: geminiStub(t, func(string) string { return tt.response })}

			batch := pipeline.Batch[LanguageComment]{
				Records: []LanguageComment{{Comment: "India is unsafe", Language: models.LangEnglish}},
			}
			routed, err := f.Process(context.Background(), batch)
			require.NoError(t, err)
			require.Len(t, routed, 1)
			assert.Equal(t, tt.want, routed[0].Classification)
			assert.Equal(t, "India is unsafe", routed[0].Comment)
		})
	}
}

func TestFiltererProcessEmptyCommentIsIrrelevant(t *testing.T) {
	f := &Filterer{Gemini: geminiStub(t, func(string) string {
		t.Error("empty comments must not reach the model")
		return ""
	})}

	batch := pipeline.Batch[LanguageComment]{
		Records: []LanguageComment{{Comment: "   ", Language: models.LangEnglish}},
	}
	routed, err := f.Process(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, routed, 1)
	assert.Equal(t, models.RelevanceIrrelevant, routed[0].Classification)
}

func TestFiltererRoutePartitions(t *testing.T) {
	dir := t.TempDir()
	f := &Filterer{
		RelevantPath:   filepath.Join(dir, "relevant.jsonl"),
		IrrelevantPath: filepath.Join(dir, "irrelevant.jsonl"),
		ErrorPath:      filepath.Join(dir, "error.jsonl"),
	}

	routed := []RoutedComment{
		{FilteredComment: models.FilteredComment{Comment: "a", Language: models.LangEnglish}, Classification: models.RelevanceRelevant},
		{FilteredComment: models.FilteredComment{Comment: "b", Language: models.LangRomHindi}, Classification: models.RelevanceIrrelevant},
		{FilteredComment: models.FilteredComment{Comment: "c", Language: models.LangEnglish}, Classification: models.RelevanceError},
		{FilteredComment: models.FilteredComment{Comment: "d", Language: models.LangRomHindi}, Classification: models.RelevanceRelevant},
	}
	require.NoError(t, f.Route(context.Background(), routed))

	relevant, err := storage.ReadJSONL[models.FilteredComment](f.RelevantPath)
	require.NoError(t, err)
	irrelevant, err := storage.ReadJSONL[models.FilteredComment](f.IrrelevantPath)
	require.NoError(t, err)
	errored, err := storage.ReadJSONL[models.FilteredComment](f.ErrorPath)
	require.NoError(t, err)

	assert.Len(t, relevant, 2)
	assert.Len(t, irrelevant, 1)
	assert.Len(t, errored, 1)
	assert.Equal(t, "d", relevant[1].Comment)
}

func TestCommentsForFiltering(t *testing.T) {
	cleaned := models.CleanedComments{
		RomHindi: []string{"kya scene hai"},
		English:  []string{"too crowded", "lovely people"},
		Other:    []string{"のんびりした旅"},
	}

	records := CommentsForFiltering(cleaned)
	require.Len(t, records, 3, "other bucket stays out of the study")

	assert.Equal(t, LanguageComment{Comment: "kya scene hai", Language: models.LangRomHindi}, records[0])
	assert.Equal(t, LanguageComment{Comment: "too crowded", Language: models.LangEnglish}, records[1])
	assert.Equal(t, LanguageComment{Comment: "lovely people", Language: models.LangEnglish}, records[2])
}
