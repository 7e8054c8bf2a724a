package models

// VideoComments is the raw collection unit: one video with its title and
// top-level comment texts, exactly as fetched. Immutable once written.
type VideoComments struct {
	VideoID  string   `json:"video_id"`
	Title    string   `json:"title"`
	Comments []string `json:"comments"`
}

// LabeledVideo is one row of the discovery output CSV.
type LabeledVideo struct {
	VideoID string `json:"video_id"`
	Type    string `json:"type"` // "indian" or "foreign"
}

type YouTubeVideoListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title     string `json:"title"`
			ChannelID string `json:"channelId"`
			Country   string `json:"country,omitempty"`
		} `json:"snippet"`
	} `json:"items"`
}

type YouTubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			ChannelID string `json:"channelId"`
		} `json:"snippet"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

type YouTubeCommentThreadsResponse struct {
	Items []struct {
		Snippet struct {
			TopLevelComment struct {
				Snippet struct {
					TextDisplay string `json:"textDisplay"`
					Author      string `json:"authorDisplayName"`
					PublishedAt string `json:"publishedAt"`
				} `json:"snippet"`
			} `json:"topLevelComment"`
		} `json:"snippet"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}
