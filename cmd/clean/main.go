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
	inputPath := config.GetString("INPUT_FILE", filepath.Join(dataDir, "raw", "youtube_data.json"))
	outputPath := config.GetString("OUTPUT_FILE", filepath.Join(cleanDir, "final_API_data.json"))
	progressPath := filepath.Join(cleanDir, "processing_progress.json")
	skipPath := filepath.Join(cleanDir, "skipped_batches.json")

	var seen processing.SeenTracker = processing.NewMemorySeen()
	if os.Getenv("VALKEY_INIT_ADDRESS") != "" {
		seen = clients.InitValkey()
		defer clients.CloseValkey()
	}

	cleaner := &processing.Cleaner{
		Gemini:     clients.GetGeminiClient(),
		Seen:       seen,
		BatchSize:  config.GetInt("BATCH_SIZE", 25),
		BatchDelay: config.GetDuration("BATCH_DELAY", 15*time.Second),
		OutputPath: outputPath,
	}

	summary, err := cleaner.Run(ctx, inputPath, progressPath, skipPath)
	if err != nil {
		slog.Error("[Main] Cleaning failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("[Main] Cleaning finished",
		slog.Int("processed", summary.Processed),
		slog.Int("skipped", summary.Skipped),
		slog.Int("already_done", summary.AlreadyDone))
}
