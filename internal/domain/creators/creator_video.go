package creators

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CreatorVideo is the indexed form of a discovered video. One row per
// external video id; rows are written once and never re-classified.
type CreatorVideo struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	VideoID      string     `gorm:"column:video_id;not null;uniqueIndex" json:"video_id"`
	URL          string     `gorm:"column:url" json:"url"`
	Title        string     `gorm:"column:title" json:"title"`
	Description  string     `gorm:"column:description" json:"description"`
	Thumbnail    string     `gorm:"column:thumbnail" json:"thumbnail"`
	ChannelTitle string     `gorm:"column:channel_title" json:"channel_title"`
	ChannelID    string     `gorm:"column:channel_id;index" json:"channel_id"`
	Email        string     `gorm:"column:email" json:"email,omitempty"`
	PublishedAt  *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
	Views        int64      `gorm:"column:views;not null;default:0" json:"views"`
	Likes        int64      `gorm:"column:likes;not null;default:0" json:"likes"`
	Comments     int64      `gorm:"column:comments;not null;default:0" json:"comments"`

	Analysis datatypes.JSON `gorm:"column:analysis;type:jsonb" json:"analysis,omitempty"`
	VectorID string         `gorm:"column:pinecone_id" json:"pinecone_id,omitempty"`

	IndexedAt time.Time `gorm:"column:indexed_at;not null" json:"indexed_at"`
}

func (CreatorVideo) TableName() string { return "creator_videos" }

// StoredAnalysis decodes the persisted classifier output, tolerating bad JSON.
func (v *CreatorVideo) StoredAnalysis() Analysis {
	if v == nil {
		return Analysis{}
	}
	return ParseAnalysis(v.Analysis)
}
