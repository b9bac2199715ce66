package creators

import (
	"time"

	"github.com/google/uuid"
)

// ProductCreatorMatch links a product to an indexed creator video.
type ProductCreatorMatch struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_video" json:"product_id"`
	VideoID            string    `gorm:"column:video_id;not null;uniqueIndex:idx_product_video;index" json:"video_id"`
	SourceKeyword      string    `gorm:"column:source_keyword" json:"source_keyword"`
	RelevanceScore     float64   `gorm:"column:relevance_score;not null" json:"relevance_score"`
	RelevanceReasoning string    `gorm:"column:relevance_reasoning" json:"relevance_reasoning"`
	CreatedAt          time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (ProductCreatorMatch) TableName() string { return "product_creator_matches" }
