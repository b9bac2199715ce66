package creators

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventMatchCreated   = "match.created"
	EventCycleCompleted = "cycle.completed"
)

// DiscoveryEvent is published when discovery persists a link or finishes a
// pass. Fields not relevant to Type are left zero.
type DiscoveryEvent struct {
	Type      string         `json:"type"`
	ProductID uuid.UUID      `json:"product_id,omitempty"`
	VideoID   string         `json:"video_id,omitempty"`
	Score     float64        `json:"score,omitempty"`
	Keyword   string         `json:"keyword,omitempty"`
	Stats     map[string]int `json:"stats,omitempty"`
	At        time.Time      `json:"at"`
}
