package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spacesedan/counterflow/config"
	"github.com/spacesedan/counterflow/internal/clients"
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

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dataDir := config.GetString("DATA_DIR", "data")
	cleanDir := filepath.Join(dataDir, "clean")
	filteredDir := filepath.Join(cleanDir, "filtered")
	inputPath := config.GetString("INPUT_FILE", filepath.Join(cleanDir, "final_API_data.json"))

	filterer := &processing.Filterer{
		Gemini:         clients.GetGeminiClient(),
		Pacing:         time.Duration(config.GetInt("FILTER_PACING_MS", 200)) * time.Millisecond,
		RelevantPath:   filepath.Join(filteredDir, "relevant.jsonl"),
		IrrelevantPath: filepath.Join(filteredDir, "irrelevant.jsonl"),
		ErrorPath:      filepath.Join(filteredDir, "error.jsonl"),
	}

	summary, err := filterer.Run(ctx,
		inputPath,
		filepath.Join(filteredDir, "filter_progress.json"),
		filepath.Join(filteredDir, "filter_skipped.json"),
		config.GetInt("BATCH_SIZE", 25),
	)
	if err != nil {
		slog.Error("[Main] Filtering failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("[Main] Filtering finished",
		slog.Int("processed", summary.Processed),
		slog.Int("skipped", summary.Skipped),
		slog.Int("already_done", summary.AlreadyDone))
}
