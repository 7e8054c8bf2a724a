package processing

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spacesedan/counterflow/internal/clients"
	"github.com/spacesedan/counterflow/internal/models"
	"github.com/spacesedan/counterflow/internal/storage"
)

// Collector fetches video titles and top-level comments for every video ID in
// the input file, writing one raw JSON document per video plus a combined
// file consumed by the cleaning stage.
type Collector struct {
	YouTube     *clients.YouTubeClient
	MaxComments int
}

// ReadVideoIDs reads one video ID per line, skipping blanks.
func ReadVideoIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("[Collector] failed to open video ID file: %w", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" {
			ids = append(ids, id)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("[Collector] failed to read video ID file: %w", err)
	}
	return ids, nil
}

// Run collects every video and writes raw artifacts under rawDir. The
// combined file holds all videos in input order.
func (c *Collector) Run(ctx context.Context, videoIDFile, rawDir, combinedPath string) error {
	videoIDs, err := ReadVideoIDs(videoIDFile)
	if err != nil {
		return err
	}

	slog.Info("[Collector] Starting collection",
		slog.Int("videos", len(videoIDs)),
		slog.Int("max_comments", c.MaxComments))

	var collected []models.VideoComments
	for _, videoID := range videoIDs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		slog.Info("[Collector] Processing video", slog.String("video_id", videoID))

		title, err := c.YouTube.GetVideoTitle(videoID)
		if err != nil {
			slog.Error("[Collector] Failed to fetch title, skipping video",
				slog.String("video_id", videoID),
				slog.String("error", err.Error()))
			continue
		}

		comments, err := c.YouTube.GetVideoComments(videoID, c.MaxComments)
		if err != nil {
			slog.Error("[Collector] Failed to fetch comments, skipping video",
				slog.String("video_id", videoID),
				slog.String("error", err.Error()))
			continue
		}

		video := models.VideoComments{
			VideoID:  videoID,
			Title:    title,
			Comments: comments,
		}

		videoPath := filepath.Join(rawDir, "youtube_"+videoID+".json")
		if err := storage.WriteJSONAtomic(videoPath, video); err != nil {
			return err
		}

		collected = append(collected, video)
	}

	if err := storage.WriteJSONAtomic(combinedPath, collected); err != nil {
		return err
	}

	slog.Info("[Collector] Collection complete",
		slog.Int("videos_collected", len(collected)),
		slog.String("output", combinedPath))
	return nil
}
