package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/maatchaa/maatchaa-backend/internal/domain"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

type EventBus interface {
	Publish(ctx context.Context, ev types.DiscoveryEvent) error
	Close() error
}

type Config struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type eventBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewEventBus connects and pings before returning.
func NewEventBus(ctx context.Context, log *logger.Logger, cfg Config) (EventBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(cfg.Channel)
	if ch == "" {
		ch = "discovery"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &eventBus{
		log:     log.With("service", "RedisEventBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *eventBus) Publish(ctx context.Context, ev types.DiscoveryEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis event bus not initialized")
	}
	raw, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *eventBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

func encodeEvent(ev types.DiscoveryEvent) ([]byte, error) {
	if ev.Type == "" {
		return nil, fmt.Errorf("event type required")
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	return json.Marshal(ev)
}
