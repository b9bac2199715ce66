package redis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	types "github.com/maatchaa/maatchaa-backend/internal/domain"
	"github.com/maatchaa/maatchaa-backend/internal/domain/creators"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

func TestEncodeEventStampsTime(t *testing.T) {
	pid := uuid.New()
	raw, err := encodeEvent(types.DiscoveryEvent{Type: creators.EventMatchCreated, ProductID: pid, VideoID: "abc", Score: 7.5})
	if err != nil {
		t.Fatalf("encodeEvent: %v", err)
	}
	var got types.DiscoveryEvent
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "match.created" || got.ProductID != pid || got.VideoID != "abc" || got.At.IsZero() {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestEncodeEventRequiresType(t *testing.T) {
	if _, err := encodeEvent(types.DiscoveryEvent{}); err == nil {
		t.Fatalf("want error for empty type")
	}
}

func TestNewEventBusRequiresAddr(t *testing.T) {
	if _, err := NewEventBus(context.Background(), logger.Nop(), Config{}); err == nil {
		t.Fatalf("want error for missing addr")
	}
}
