package processing

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spacesedan/counterflow/internal/models"
	"github.com/spacesedan/counterflow/internal/sentiment"
	"github.com/spacesedan/counterflow/internal/storage"
)

// AttributeSummary aggregates one toxicity attribute for one model and score
// source. Scores missing from an API response are excluded from Count.
type AttributeSummary struct {
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// ModelReport is the per-attribute summary for one model from one source
// ("perspective" or "human", the latter normalized to 0-1).
type ModelReport struct {
	Model      string                      `json:"model"`
	Source     string                      `json:"source"`
	Attributes map[string]AttributeSummary `json:"attributes"`
}

// VaderBaseline summarizes sentiment of the source comments, as a reference
// point for how hostile the inputs were.
type VaderBaseline struct {
	MeanCompound float64        `json:"mean_compound"`
	Labels       map[string]int `json:"labels"`
	Count        int            `json:"count"`
}

type Report struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Models      []ModelReport `json:"models"`
	Vader       VaderBaseline `json:"vader_baseline"`
}

// NormalizeHumanScore maps the 1-5 annotation scale onto 0-1 so human and
// Perspective scores are comparable. Zero (unannotated) stays zero.
func NormalizeHumanScore(score int) float64 {
	if score <= 0 {
		return 0
	}
	if score > 5 {
		score = 5
	}
	return float64(score-1) / 4
}

// SummarizeScored aggregates automated scores per attribute.
func SummarizeScored(model string, scored []models.ScoredOutput) ModelReport {
	report := ModelReport{
		Model:      model,
		Source:     "perspective",
		Attributes: make(map[string]AttributeSummary, len(models.PerspectiveAttributes)),
	}

	for _, attr := range models.PerspectiveAttributes {
		var values []float64
		for _, entry := range scored {
			if v := entry.PerspectiveScores[attr]; v != nil {
				values = append(values, *v)
			}
		}
		report.Attributes[attr] = summarize(values)
	}
	return report
}

// SummarizeHuman aggregates normalized human annotations per attribute.
func SummarizeHuman(model string, annotated []models.HumanScored) ModelReport {
	report := ModelReport{
		Model:      model,
		Source:     "human",
		Attributes: make(map[string]AttributeSummary, len(models.PerspectiveAttributes)),
	}

	for _, attr := range models.PerspectiveAttributes {
		var values []float64
		for _, entry := range annotated {
			if raw, ok := entry.Scores[attr]; ok {
				values = append(values, NormalizeHumanScore(raw))
			}
		}
		report.Attributes[attr] = summarize(values)
	}
	return report
}

func summarize(values []float64) AttributeSummary {
	if len(values) == 0 {
		return AttributeSummary{}
	}

	s := AttributeSummary{Min: values[0], Max: values[0], Count: len(values)}
	var sum float64
	for _, v := range values {
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = sum / float64(len(values))
	return s
}

// VaderOverComments runs the sentiment baseline over the source comments.
func VaderOverComments(comments []models.FilteredComment) VaderBaseline {
	baseline := VaderBaseline{Labels: make(map[string]int)}

	var sum float64
	for _, c := range comments {
		score, label := sentiment.AnalyzeWithVADER(c.Comment)
		sum += score
		baseline.Labels[label]++
		baseline.Count++
	}
	if baseline.Count > 0 {
		baseline.MeanCompound = sum / float64(baseline.Count)
	}
	return baseline
}

// Reporter assembles the comparative report across models and score sources.
type Reporter struct {
	Models       []string
	OutputsDir   string
	RelevantPath string
}

// Run loads whatever scored and annotated files exist per model and writes
// the combined report. Missing files are reported and skipped, not fatal.
func (r *Reporter) Run(reportPath string) (Report, error) {
	report := Report{GeneratedAt: time.Now().UTC()}

	for _, model := range r.Models {
		scoredPath := fmt.Sprintf("%s/%s_perspective_scores.json", r.OutputsDir, model)
		var scored []models.ScoredOutput
		err := storage.ReadJSON(scoredPath, &scored)
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.Warn("[Reporter] No perspective scores for model",
				slog.String("model", model))
		case err != nil:
			return report, err
		default:
			report.Models = append(report.Models, SummarizeScored(model, scored))
		}

		humanPath := fmt.Sprintf("%s/%s_scored_dataset_human.json", r.OutputsDir, model)
		var annotated []models.HumanScored
		err = storage.ReadJSON(humanPath, &annotated)
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.Warn("[Reporter] No human annotations for model",
				slog.String("model", model))
		case err != nil:
			return report, err
		default:
			report.Models = append(report.Models, SummarizeHuman(model, annotated))
		}
	}

	comments, err := storage.ReadJSONL[models.FilteredComment](r.RelevantPath)
	if err != nil {
		return report, err
	}
	report.Vader = VaderOverComments(comments)

	if err := storage.WriteJSONAtomic(reportPath, report); err != nil {
		return report, err
	}

	slog.Info("[Reporter] Report written",
		slog.String("path", reportPath),
		slog.Int("model_summaries", len(report.Models)),
		slog.Int("baseline_comments", report.Vader.Count))
	return report, nil
}
