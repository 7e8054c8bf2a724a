package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

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
	outputPath := config.GetString("VIDEO_CSV_FILE", filepath.Join(dataDir, "util", "video_ids.csv"))

	discoverer := &processing.Discoverer{
		YouTube: clients.GetYouTubeClient(),
		Target:  config.GetInt("DISCOVER_TARGET", 50),
	}

	if err := discoverer.Run(ctx, outputPath); err != nil {
		slog.Error("[Main] Discovery failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
