package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openAIRequestTimeout = 60 * time.Second // Timeout for individual OpenAI API requests
	openAIModel          = openai.GPT4oMini
)

// counterspeechSystemPrompt mirrors the instruction used for every generation
// model, so outputs stay comparable across models.
const counterspeechSystemPrompt = "You are a counterspeech generator.\n" +
	"You MUST reply ONLY to the user's comment.\n\n" +
	"Rules:\n" +
	"- English only.\n" +
	"- Stay on-topic.\n" +
	"- Rebut or de-escalate, never insult.\n" +
	"- No advice, no explanations, no unrelated content.\n" +
	"- 1-2 sentences maximum."

var (
	openAIClientInstance *OpenAIClient
	openAIOnce           sync.Once
)

type OpenAIClient struct {
	Client *openai.Client
}

func GetOpenAIClient() *OpenAIClient {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		slog.Error("[OpenAIClient] Missing OPENAI_API_KEY in environment variables")
		panic("[OpenAIClient] Missing OPENAI_API_KEY in environment variables")
	}
	openAIOnce.Do(func() {
		config := openai.DefaultConfig(apiKey)
		httpClient := &http.Client{
			Timeout: openAIRequestTimeout,
		}
		config.HTTPClient = httpClient

		openAIClientInstance = &OpenAIClient{
			Client: openai.NewClientWithConfig(config),
		}
		slog.Info("[OpenAIClient] OpenAI client initialized with custom HTTP timeout", slog.Duration("timeout", openAIRequestTimeout))
	})
	return openAIClientInstance
}

// GenerateCounterspeech returns an English counterspeech reply to comment,
// retrying transient failures with backoff.
func (c *OpenAIClient) GenerateCounterspeech(ctx context.Context, comment string) (string, error) {
	request := openai.ChatCompletionRequest{
		Model: openAIModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: counterspeechSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "User comment: " + comment},
		},
		Temperature: 0.7,
		MaxTokens:   120,
	}

	var resp openai.ChatCompletionResponse
	var err error
	backoff := INITIAL_BACKOFF

	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		resp, err = c.Client.CreateChatCompletion(ctx, request)
		if err == nil {
			break
		}

		slog.Warn("[OpenAIClient] Chat completion failed, will retry",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > MAX_BACKOFF {
			backoff = MAX_BACKOFF
		}
	}
	if err != nil {
		return "", fmt.Errorf("[OpenAIClient] chat completion failed after retries: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("[OpenAIClient] no choices in completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
