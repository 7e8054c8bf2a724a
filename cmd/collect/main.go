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
	videoIDFile := config.GetString("VIDEO_ID_FILE", filepath.Join(dataDir, "video_ids.txt"))
	rawDir := filepath.Join(dataDir, "raw")
	combinedPath := config.GetString("OUTPUT_FILE", filepath.Join(rawDir, "youtube_data.json"))

	collector := &processing.Collector{
		YouTube:     clients.GetYouTubeClient(),
		MaxComments: config.GetInt("MAX_COMMENTS", 20),
	}

	if err := collector.Run(ctx, videoIDFile, rawDir, combinedPath); err != nil {
		slog.Error("[Main] Collection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
