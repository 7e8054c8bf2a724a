package processing

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/counterflow/internal/models"
	"github.com/spacesedan/counterflow/internal/storage"
)

func TestNormalizeHumanScore(t *testing.T) {
	tests := []struct {
		score int
		want  float64
	}{
		{score: 1, want: 0},
		{score: 2, want: 0.25},
		{score: 3, want: 0.5},
		{score: 4, want: 0.75},
		{score: 5, want: 1},
		{score: 0, want: 0},
		{score: -2, want: 0},
		{score: 9, want: 1},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, NormalizeHumanScore(tt.score), 1e-9,
			"score %d", tt.score)
	}
}

func ptr(v float64) *float64 { return &v }

func TestSummarizeScored(t *testing.T) {
	scored := []models.ScoredOutput{
		{PerspectiveScores: models.PerspectiveScores{
			"TOXICITY": ptr(0.2), "INSULT": ptr(0.1),
		}},
		{PerspectiveScores: models.PerspectiveScores{
			"TOXICITY": ptr(0.6), "INSULT": nil,
		}},
		{PerspectiveScores: models.PerspectiveScores{
			"TOXICITY": ptr(0.4),
		}},
	}

	report := SummarizeScored("gpt4", scored)
	assert.Equal(t, "gpt4", report.Model)
	assert.Equal(t, "perspective", report.Source)

	tox := report.Attributes["TOXICITY"]
	assert.Equal(t, 3, tox.Count)
	assert.InDelta(t, 0.4, tox.Mean, 1e-9)
	assert.InDelta(t, 0.2, tox.Min, 1e-9)
	assert.InDelta(t, 0.6, tox.Max, 1e-9)

	insult := report.Attributes["INSULT"]
	assert.Equal(t, 1, insult.Count, "nil and absent scores are excluded")

	assert.Equal(t, AttributeSummary{}, report.Attributes["PROFANITY"],
		"attributes with no data summarize to zero")
}

func TestSummarizeHuman(t *testing.T) {
	annotated := []models.HumanScored{
		{Scores: map[string]int{"TOXICITY": 1, "INSULT": 5}},
		{Scores: map[string]int{"TOXICITY": 5}},
	}

	report := SummarizeHuman("ministral", annotated)
	assert.Equal(t, "human", report.Source)

	tox := report.Attributes["TOXICITY"]
	assert.Equal(t, 2, tox.Count)
	assert.InDelta(t, 0.5, tox.Mean, 1e-9)
	assert.InDelta(t, 0, tox.Min, 1e-9)
	assert.InDelta(t, 1, tox.Max, 1e-9)

	assert.Equal(t, 1, report.Attributes["INSULT"].Count)
}

func TestVaderOverComments(t *testing.T) {
	comments := []models.FilteredComment{
		{Comment: "This place is wonderful and the people are amazing"},
		{Comment: "This is horrible, disgusting and unsafe"},
	}

	baseline := VaderOverComments(comments)
	assert.Equal(t, 2, baseline.Count)
	assert.Equal(t, 1, baseline.Labels["positive"])
	assert.Equal(t, 1, baseline.Labels["negative"])
}

func TestReporterRun(t *testing.T) {
	dir := t.TempDir()
	outputsDir := filepath.Join(dir, "outputs")

	scored := []models.ScoredOutput{
		{Comment: "reply", PerspectiveScores: models.PerspectiveScores{"TOXICITY": ptr(0.3)}},
	}
	require.NoError(t, storage.WriteJSONAtomic(
		filepath.Join(outputsDir, "gpt4_perspective_scores.json"), scored))

	relevantPath := filepath.Join(dir, "relevant.jsonl")
	require.NoError(t, storage.AppendJSONL(relevantPath, []models.FilteredComment{
		{Comment: "India is great", Language: models.LangEnglish},
	}))

	reporter := &Reporter{
		Models:       []string{"gpt4", "ministral"},
		OutputsDir:   outputsDir,
		RelevantPath: relevantPath,
	}

	reportPath := filepath.Join(dir, "report.json")
	report, err := reporter.Run(reportPath)
	require.NoError(t, err)

	// gpt4 has perspective scores only; ministral has no files at all.
	require.Len(t, report.Models, 1)
	assert.Equal(t, "gpt4", report.Models[0].Model)
	assert.Equal(t, 1, report.Vader.Count)
	assert.False(t, report.GeneratedAt.IsZero())

	var persisted Report
	require.NoError(t, storage.ReadJSON(reportPath, &persisted))
	assert.Len(t, persisted.Models, 1)
}
