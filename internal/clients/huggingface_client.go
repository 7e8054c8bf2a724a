package clients

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"net/http"

	"github.com/spacesedan/counterflow/internal/models"
)

const (
	HF_INFERENCE_API_URL = "https://api-inference.huggingface.co/models"
	HF_DEFAULT_MODEL     = "mistralai/Ministral-3-3B-Instruct-2512-BF16"
)

var (
	huggingFaceInstance *HuggingFaceClient
	huggingFaceOnce     sync.Once
)

// HuggingFaceClient generates counterspeech through a hosted text-generation
// endpoint.
type HuggingFaceClient struct {
	Client  *http.Client
	BaseURL string
	Model   string
	Token   string
}

func GetHuggingFaceClient() *HuggingFaceClient {
	var timeout time.Duration
	env := os.Getenv("APP_ENV")
	if env == "production" {
		timeout = 30 * time.Second
	} else {
		timeout = 120 * time.Second
	}
	huggingFaceOnce.Do(func() {
		token := os.Getenv("HF_API_TOKEN")
		if token == "" {
			slog.Error("[HuggingFaceClient] Missing HF_API_TOKEN in environment variables")
			panic("[HuggingFaceClient] Missing HF_API_TOKEN in environment variables")
		}
		model := os.Getenv("HF_MODEL")
		if model == "" {
			model = HF_DEFAULT_MODEL
		}

		slog.Info("[HuggingFaceClient] Initializing Client",
			slog.Duration("timeout", timeout),
			slog.String("model", model))
		huggingFaceInstance = &HuggingFaceClient{
			Client:  &http.Client{Timeout: timeout},
			BaseURL: HF_INFERENCE_API_URL,
			Model:   model,
			Token:   token,
		}
	})
	return huggingFaceInstance
}

// buildPrompt wraps the shared counterspeech instruction in the instruct
// template the hosted models expect.
func buildPrompt(comment string) string {
	return "<s>[INST]\n" + counterspeechSystemPrompt + "\n\nUser comment: " + comment + "\n[/INST]"
}

// cleanOutput strips any echoed instruction block from the generation.
func cleanOutput(text string) string {
	if _, after, found := strings.Cut(text, "[/INST]"); found {
		text = after
	}
	return strings.TrimSpace(text)
}

// GenerateCounterspeech returns an English counterspeech reply to comment.
func (h *HuggingFaceClient) GenerateCounterspeech(comment string) (string, error) {
	request := models.HFGenerationRequest{
		Inputs: buildPrompt(comment),
		Parameters: models.HFGenerationParams{
			MaxNewTokens:   60,
			Temperature:    0.7,
			TopP:           0.9,
			DoSample:       true,
			ReturnFullText: false,
		},
	}

	endpoint := h.BaseURL + "/" + h.Model
	headers := map[string]string{"Authorization": "Bearer " + h.Token}

	start := time.Now()
	var response models.HFGenerationResponse
	if err := postJSON(h.Client, endpoint, headers, request, &response); err != nil {
		slog.Error("[HuggingFaceClient] Generation request failed",
			slog.Duration("elapsed", time.Since(start)))
		return "", fmt.Errorf("[HuggingFaceClient] generation failed: %w", err)
	}

	if len(response) == 0 {
		return "", fmt.Errorf("[HuggingFaceClient] empty generation response for model %s", h.Model)
	}
	return cleanOutput(response[0].GeneratedText), nil
}
