package clients

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/spacesedan/counterflow/config"
	"github.com/spacesedan/counterflow/internal/models"
)

const (
	GEMINI_API_URL      = "https://generativelanguage.googleapis.com/v1beta/models"
	GEMINI_MODEL_NAME   = "gemini-2.5-flash-lite"
	geminiClientTimeout = 60 * time.Second
)

var (
	geminiInstance *GeminiClient
	geminiOnce     sync.Once
)

// GeminiClient calls the generateContent endpoint in JSON mode, rotating
// across every configured GOOGLE_API_KEY_<N> to spread quota usage.
type GeminiClient struct {
	Client  *http.Client
	BaseURL string
	Model   string

	mu      sync.Mutex
	keys    []string
	nextKey int
}

func GetGeminiClient() *GeminiClient {
	geminiOnce.Do(func() {
		keys := config.GeminiAPIKeys()
		if len(keys) == 0 {
			slog.Error("[GeminiClient] No GOOGLE_API_KEY_<N> keys found in environment")
			panic("[GeminiClient] No GOOGLE_API_KEY_<N> keys found in environment")
		}

		geminiInstance = &GeminiClient{
			Client:  &http.Client{Timeout: geminiClientTimeout},
			BaseURL: GEMINI_API_URL,
			Model:   GEMINI_MODEL_NAME,
			keys:    keys,
		}
		slog.Info("[GeminiClient] Client initialized",
			slog.Int("api_keys", len(keys)))
	})
	return geminiInstance
}

// NewGeminiClient builds a client with explicit keys, used by tests and by
// callers that manage their own key pool.
func NewGeminiClient(baseURL, model string, keys []string) *GeminiClient {
	return &GeminiClient{
		Client:  &http.Client{Timeout: geminiClientTimeout},
		BaseURL: baseURL,
		Model:   model,
		keys:    keys,
	}
}

func (gc *GeminiClient) rotateKey() string {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	key := gc.keys[gc.nextKey]
	gc.nextKey = (gc.nextKey + 1) % len(gc.keys)
	return key
}

// GenerateJSON sends prompt with response_mime_type application/json and
// returns the raw JSON text of the first candidate.
func (gc *GeminiClient) GenerateJSON(prompt string) (string, error) {
	request := models.GeminiRequest{
		Contents: []models.GeminiContent{
			{Parts: []models.GeminiPart{{Text: prompt}}},
		},
		GenerationConfig: &models.GeminiGenerationConfig{
			ResponseMimeType: "application/json",
		},
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", gc.BaseURL, gc.Model, gc.rotateKey())

	start := time.Now()
	var response models.GeminiResponse
	if err := postJSON(gc.Client, endpoint, nil, request, &response); err != nil {
		slog.Error("[GeminiClient] generateContent request failed",
			slog.Duration("elapsed", time.Since(start)))
		return "", fmt.Errorf("[GeminiClient] generateContent failed: %w", err)
	}

	text := response.Text()
	if text == "" {
		return "", fmt.Errorf("[GeminiClient] empty response from model %s", gc.Model)
	}
	return text, nil
}
