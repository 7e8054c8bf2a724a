package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spacesedan/counterflow/config"
	"github.com/spacesedan/counterflow/internal/logging"
	"github.com/spacesedan/counterflow/internal/processing"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	dataDir := config.GetString("DATA_DIR", "data")
	resultsDir := config.GetString("RESULTS_DIR", "results")

	var modelList []string
	for _, m := range strings.Split(config.GetString("GEN_MODELS", "gpt4,ministral"), ",") {
		modelList = append(modelList, strings.TrimSpace(m))
	}

	reporter := &processing.Reporter{
		Models:       modelList,
		OutputsDir:   config.GetString("OUTPUTS_DIR", "outputs"),
		RelevantPath: filepath.Join(dataDir, "clean", "filtered", "relevant.jsonl"),
	}

	report, err := reporter.Run(filepath.Join(resultsDir, "report.json"))
	if err != nil {
		slog.Error("[Main] Report generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("[Main] Report complete",
		slog.Int("model_summaries", len(report.Models)),
		slog.Int("baseline_comments", report.Vader.Count))
}
