package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spacesedan/counterflow/config"
	"github.com/spacesedan/counterflow/internal/clients"
	"github.com/spacesedan/counterflow/internal/logging"
	"github.com/spacesedan/counterflow/internal/processing"
)

// modelReply returns the generation function for a configured model name.
func modelReply(model string) processing.ReplyFunc {
	switch model {
	case "gpt4":
		client := clients.GetOpenAIClient()
		return client.GenerateCounterspeech
	case "ministral":
		client := clients.GetHuggingFaceClient()
		return func(_ context.Context, comment string) (string, error) {
			return client.GenerateCounterspeech(comment)
		}
	default:
		return nil
	}
}

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
	outputsDir := config.GetString("OUTPUTS_DIR", "outputs")
	relevantPath := config.GetString("INPUT_FILE",
		filepath.Join(dataDir, "clean", "filtered", "relevant.jsonl"))

	modelList := strings.Split(config.GetString("GEN_MODELS", "gpt4,ministral"), ",")

	for _, model := range modelList {
		model = strings.TrimSpace(model)
		generate := modelReply(model)
		if generate == nil {
			slog.Error("[Main] Unknown generation model", slog.String("model", model))
			os.Exit(1)
		}

		generator := &processing.Generator{
			ModelName:  model,
			Generate:   generate,
			BatchSize:  config.GetInt("GEN_BATCH_SIZE", 8),
			OutputPath: filepath.Join(outputsDir, model+"_responses.json"),
		}

		summary, err := generator.Run(ctx,
			relevantPath,
			filepath.Join(outputsDir, model+"_progress.json"),
			filepath.Join(outputsDir, model+"_skipped.json"),
		)
		if err != nil {
			slog.Error("[Main] Generation failed",
				slog.String("model", model),
				slog.String("error", err.Error()))
			os.Exit(1)
		}

		slog.Info("[Main] Generation finished",
			slog.String("model", model),
			slog.Int("processed", summary.Processed),
			slog.Int("skipped", summary.Skipped),
			slog.Int("already_done", summary.AlreadyDone))
	}
}
