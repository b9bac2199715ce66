package creators

import "time"

// CandidateVideo is a search hit from the candidate source. It is never
// persisted as-is; accepted candidates become a CreatorVideo.
type CandidateVideo struct {
	VideoID      string    `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnail"`
	ChannelTitle string    `json:"channel_title"`
	ChannelID    string    `json:"channel_id"`
	PublishedAt  time.Time `json:"published_at"`
	Views        int64     `json:"views"`
	Likes        int64     `json:"likes"`
	Comments     int64     `json:"comments"`
	Email        string    `json:"email,omitempty"`
}

// SearchRequest asks the candidate source for recent short-form videos.
type SearchRequest struct {
	Keyword            string
	MaxResults         int
	PublishedAfterDays int
	Order              string // "viewCount" unless set
}
