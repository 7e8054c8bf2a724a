package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spacesedan/counterflow/config"
	"github.com/spacesedan/counterflow/internal/clients"
	"github.com/spacesedan/counterflow/internal/db"
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

	outputsDir := config.GetString("OUTPUTS_DIR", "outputs")
	perspective := clients.GetPerspectiveClient()
	modelList := strings.Split(config.GetString("GEN_MODELS", "gpt4,ministral"), ",")

	for _, model := range modelList {
		model = strings.TrimSpace(model)

		scorer := &processing.Scorer{
			ModelName:    model,
			Score:        perspective.ScoreComment,
			BatchSize:    config.GetInt("SCORE_BATCH_SIZE", 25),
			OutputPath:   filepath.Join(outputsDir, model+"_perspective_scores.json"),
			Pacing:       config.GetDuration("SCORE_PACING", time.Second),
			ArchiveTable: db.ArchiveTableName(),
		}

		summary, err := scorer.Run(ctx,
			filepath.Join(outputsDir, model+"_responses.json"),
			filepath.Join(outputsDir, model+"_score_progress.json"),
			filepath.Join(outputsDir, model+"_score_skipped.json"),
		)
		if err != nil {
			slog.Error("[Main] Scoring failed",
				slog.String("model", model),
				slog.String("error", err.Error()))
			os.Exit(1)
		}

		slog.Info("[Main] Scoring finished",
			slog.String("model", model),
			slog.Int("processed", summary.Processed),
			slog.Int("skipped", summary.Skipped),
			slog.Int("already_done", summary.AlreadyDone))
	}
}
