package clients

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/spacesedan/counterflow/internal/models"
)

const (
	YOUTUBE_API_URL      = "https://www.googleapis.com/youtube/v3"
	YOUTUBE_PAGE_SIZE    = 100 // commentThreads.list hard limit per request
	youtubeClientTimeout = 30 * time.Second
)

var (
	youtubeInstance *YouTubeClient
	youtubeOnce     sync.Once
)

type YouTubeClient struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
}

func GetYouTubeClient() *YouTubeClient {
	youtubeOnce.Do(func() {
		apiKey := os.Getenv("YOUTUBE_API_KEY")
		if apiKey == "" {
			slog.Error("[YouTubeClient] Missing YOUTUBE_API_KEY in environment variables")
			panic("[YouTubeClient] Missing YOUTUBE_API_KEY in environment variables")
		}

		youtubeInstance = &YouTubeClient{
			Client:  &http.Client{Timeout: youtubeClientTimeout},
			BaseURL: YOUTUBE_API_URL,
			APIKey:  apiKey,
		}
		slog.Info("[YouTubeClient] Client initialized")
	})
	return youtubeInstance
}

// GetVideoTitle fetches the title of a video, or "" when the video is gone.
func (yc *YouTubeClient) GetVideoTitle(videoID string) (string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("id", videoID)

	var resp models.YouTubeVideoListResponse
	if err := yc.getJSON("/videos", params, &resp); err != nil {
		return "", fmt.Errorf("[YouTubeClient] videos.list failed for %s: %w", videoID, err)
	}

	if len(resp.Items) == 0 {
		return "", nil
	}
	return resp.Items[0].Snippet.Title, nil
}

// GetVideoComments retrieves up to maxComments top-level comments, following
// pagination until the cap or the last page.
func (yc *YouTubeClient) GetVideoComments(videoID string, maxComments int) ([]string, error) {
	var comments []string
	pageToken := ""

	for {
		params := url.Values{}
		params.Set("part", "snippet")
		params.Set("videoId", videoID)
		params.Set("textFormat", "plainText")
		pageSize := maxComments - len(comments)
		if pageSize > YOUTUBE_PAGE_SIZE {
			pageSize = YOUTUBE_PAGE_SIZE
		}
		params.Set("maxResults", strconv.Itoa(pageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp models.YouTubeCommentThreadsResponse
		if err := yc.getJSON("/commentThreads", params, &resp); err != nil {
			return nil, fmt.Errorf("[YouTubeClient] commentThreads.list failed for %s: %w", videoID, err)
		}

		for _, item := range resp.Items {
			comments = append(comments, item.Snippet.TopLevelComment.Snippet.TextDisplay)
			if len(comments) >= maxComments {
				return comments, nil
			}
		}

		if resp.NextPageToken == "" {
			return comments, nil
		}
		pageToken = resp.NextPageToken
	}
}

// SearchVideos runs a search query and returns (videoID, channelID) pairs.
func (yc *YouTubeClient) SearchVideos(query string, maxResults int) ([][2]string, error) {
	params := url.Values{}
	params.Set("part", "id,snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("regionCode", "IN")
	params.Set("relevanceLanguage", "en")
	params.Set("videoDuration", "medium")
	params.Set("order", "relevance")

	var resp models.YouTubeSearchResponse
	if err := yc.getJSON("/search", params, &resp); err != nil {
		return nil, fmt.Errorf("[YouTubeClient] search.list failed for %q: %w", query, err)
	}

	pairs := make([][2]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		pairs = append(pairs, [2]string{item.ID.VideoID, item.Snippet.ChannelID})
	}
	return pairs, nil
}

// GetChannelCountry fetches a channel's declared country, or "" when the
// channel does not publish one.
func (yc *YouTubeClient) GetChannelCountry(channelID string) (string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("id", channelID)

	var resp models.YouTubeVideoListResponse
	if err := yc.getJSON("/channels", params, &resp); err != nil {
		return "", fmt.Errorf("[YouTubeClient] channels.list failed for %s: %w", channelID, err)
	}

	if len(resp.Items) == 0 {
		return "", nil
	}
	return resp.Items[0].Snippet.Country, nil
}

func (yc *YouTubeClient) getJSON(path string, params url.Values, output any) error {
	params.Set("key", yc.APIKey)

	req, err := http.NewRequest(http.MethodGet, yc.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := doWithRetry(yc.Client, req)
	if err != nil {
		return fmt.Errorf("request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.New("invalid API key or quota exceeded, check credentials")
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, getPreview(body))
	}

	if err := json.Unmarshal(body, output); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
