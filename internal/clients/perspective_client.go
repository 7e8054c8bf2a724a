package clients

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/counterflow/internal/models"
)

const (
	PERSPECTIVE_API_URL      = "https://commentanalyzer.googleapis.com/v1alpha1/comments:analyze"
	PERSPECTIVE_RATE_WAIT    = 3 * time.Second
	perspectiveClientTimeout = 30 * time.Second
)

var (
	perspectiveInstance *PerspectiveClient
	perspectiveOnce     sync.Once

	controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)
)

// ErrMissingPerspectiveKey is returned when scoring is attempted without a
// configured credential, so the whole batch lands in the skip log and can be
// retried once the key is supplied.
var ErrMissingPerspectiveKey = errors.New("PERSPECTIVE_API_KEY is not set")

type PerspectiveClient struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
	// RateWait is how long to pause after a 429 before retrying.
	RateWait time.Duration
}

func GetPerspectiveClient() *PerspectiveClient {
	perspectiveOnce.Do(func() {
		perspectiveInstance = &PerspectiveClient{
			Client:   &http.Client{Timeout: perspectiveClientTimeout},
			BaseURL:  PERSPECTIVE_API_URL,
			APIKey:   os.Getenv("PERSPECTIVE_API_KEY"),
			RateWait: PERSPECTIVE_RATE_WAIT,
		}
		slog.Info("[PerspectiveClient] Client initialized",
			slog.Bool("key_present", perspectiveInstance.APIKey != ""))
	})
	return perspectiveInstance
}

// cleanText strips control characters that the analyze endpoint rejects.
func cleanText(text string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(text, ""))
}

// ScoreComment requests the five toxicity attributes for one comment.
// Rate limiting waits and retries indefinitely; other non-200 responses yield
// nil per-attribute scores, matching how downstream analysis treats gaps.
func (pc *PerspectiveClient) ScoreComment(comment string) (models.PerspectiveScores, error) {
	if pc.APIKey == "" {
		return nil, ErrMissingPerspectiveKey
	}

	attrs := make(map[string]struct{}, len(models.PerspectiveAttributes))
	for _, a := range models.PerspectiveAttributes {
		attrs[a] = struct{}{}
	}

	request := models.PerspectiveRequest{
		Comment:             models.PerspectiveComment{Text: cleanText(comment)},
		Languages:           []string{"en"},
		RequestedAttributes: attrs,
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("[PerspectiveClient] failed to marshal request: %w", err)
	}

	endpoint := pc.BaseURL + "?key=" + pc.APIKey

	for {
		req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("[PerspectiveClient] failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", USER_AGENT)

		resp, err := pc.Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("[PerspectiveClient] request failed: %w", err)
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("[PerspectiveClient] failed to read response: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			var parsed models.PerspectiveResponse
			if err := json.Unmarshal(respBody, &parsed); err != nil {
				return nil, fmt.Errorf("[PerspectiveClient] failed to unmarshal response: %w", err)
			}

			scores := make(models.PerspectiveScores, len(models.PerspectiveAttributes))
			for _, attr := range models.PerspectiveAttributes {
				if got, ok := parsed.AttributeScores[attr]; ok {
					v := got.SummaryScore.Value
					scores[attr] = &v
				} else {
					scores[attr] = nil
				}
			}
			return scores, nil

		case http.StatusTooManyRequests:
			slog.Warn("[PerspectiveClient] Rate limit exceeded, waiting before retry",
				slog.Duration("wait", pc.RateWait))
			time.Sleep(pc.RateWait)

		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("[PerspectiveClient] invalid API key (status %d): %s",
				resp.StatusCode, getPreview(respBody))

		default:
			slog.Error("[PerspectiveClient] API error, returning null scores",
				slog.Int("status", resp.StatusCode),
				slog.String("body", getPreview(respBody)))
			scores := make(models.PerspectiveScores, len(models.PerspectiveAttributes))
			for _, attr := range models.PerspectiveAttributes {
				scores[attr] = nil
			}
			return scores, nil
		}
	}
}
