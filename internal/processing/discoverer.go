package processing

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spacesedan/counterflow/internal/clients"
	"github.com/spacesedan/counterflow/internal/models"
)

// searchQueries target travel vlogs about India from both domestic and
// foreign creators.
var searchQueries = []string{
	"travel vlog India",
	"exploring India travel",
	"foreigners in India vlog",
	"Indian travel vlog",
	"backpacking India vlog",
}

const (
	discoverTarget   = 50
	discoverPageSize = 10
	discoverPacing   = 300 * time.Millisecond
)

// Discoverer searches for travel vlogs and labels each by the channel's
// declared country. Videos from channels without a country are dropped.
type Discoverer struct {
	YouTube *clients.YouTubeClient
	Target  int
}

func labelCountry(country string) string {
	if country == "" {
		return "unknown"
	}
	if strings.EqualFold(country, "IN") {
		return "indian"
	}
	return "foreign"
}

// Run collects labeled videos until the target count and writes them as CSV.
func (d *Discoverer) Run(ctx context.Context, outputPath string) error {
	target := d.Target
	if target <= 0 {
		target = discoverTarget
	}

	var collected []models.LabeledVideo
	seen := make(map[string]bool)

	for len(collected) < target {
		progressed := false
		for _, query := range searchQueries {
			pairs, err := d.YouTube.SearchVideos(query, discoverPageSize)
			if err != nil {
				return fmt.Errorf("[Discoverer] search failed: %w", err)
			}

			for _, pair := range pairs {
				videoID, channelID := pair[0], pair[1]
				if seen[videoID] {
					continue
				}

				country, err := d.YouTube.GetChannelCountry(channelID)
				if err != nil {
					slog.Warn("[Discoverer] Failed to fetch channel country",
						slog.String("channel_id", channelID),
						slog.String("error", err.Error()))
					continue
				}

				label := labelCountry(country)
				if label != "unknown" {
					collected = append(collected, models.LabeledVideo{VideoID: videoID, Type: label})
					seen[videoID] = true
					progressed = true
				}

				if len(collected) >= target {
					break
				}

				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(discoverPacing):
				}
			}
			if len(collected) >= target {
				break
			}
		}
		// All queries exhausted without a new labeled video; stop rather
		// than loop forever on a saturated result set.
		if !progressed {
			break
		}
	}

	if err := writeLabeledCSV(outputPath, collected); err != nil {
		return err
	}

	slog.Info("[Discoverer] Saved labeled travel vlogs",
		slog.Int("count", len(collected)),
		slog.String("output", outputPath))
	return nil
}

func writeLabeledCSV(path string, videos []models.LabeledVideo) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("[Discoverer] failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[Discoverer] failed to create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"video_id", "type"}); err != nil {
		return fmt.Errorf("[Discoverer] failed to write CSV header: %w", err)
	}
	for _, v := range videos {
		if err := w.Write([]string{v.VideoID, v.Type}); err != nil {
			return fmt.Errorf("[Discoverer] failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
