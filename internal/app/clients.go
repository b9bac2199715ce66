package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/maatchaa/maatchaa-backend/internal/classifier"
	"github.com/maatchaa/maatchaa-backend/internal/clients/gcp"
	"github.com/maatchaa/maatchaa-backend/internal/clients/openai"
	"github.com/maatchaa/maatchaa-backend/internal/clients/pinecone"
	"github.com/maatchaa/maatchaa-backend/internal/clients/redis"
	"github.com/maatchaa/maatchaa-backend/internal/clients/youtube"
	"github.com/maatchaa/maatchaa-backend/internal/discovery"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

var (
	newOpenAIClient  = openai.NewClient
	newYouTubeClient = youtube.NewClient
	newVisionClient  = gcp.NewVision
	newEventBus      = redis.NewEventBus
)

type Clients struct {
	OpenAI     openai.Client
	YouTube    youtube.Source
	Vision     gcp.Vision
	EventBus   redis.EventBus
	Vectors    pinecone.VectorStore
	Classifier discovery.Classifier
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var c Clients

	openaiClient, err := newOpenAIClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}
	c.OpenAI = openaiClient

	if cfg.UseMockYouTube {
		log.Warn("USE_MOCK_YOUTUBE set; candidate videos are fabricated")
		c.YouTube = youtube.NewMock(cfg.DefaultEmail)
	} else {
		yt, err := newYouTubeClient(ctx, log, youtube.Config{
			APIKey:            cfg.YouTubeAPIKey,
			MinViews:          cfg.YouTubeMinViews,
			DefaultEmail:      cfg.DefaultEmail,
			LookupEmails:      cfg.LookupEmails,
			RelevanceLanguage: cfg.RelevanceLanguage,
			RegionCode:        cfg.RegionCode,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init youtube client: %w", err)
		}
		c.YouTube = yt
	}

	switch cfg.ClassifierProvider {
	case ClassifierOpenAI, "":
		c.Classifier = classifier.NewOpenAI(log, c.OpenAI)
	case ClassifierVision:
		vision, err := newVisionClient(ctx, log, gcp.ClientOptionsFromEnv()...)
		if err != nil {
			return Clients{}, fmt.Errorf("init vision client: %w", err)
		}
		c.Vision = vision
		c.Classifier = classifier.NewVision(log, vision)
	case ClassifierMock:
		log.Warn("CLASSIFIER_PROVIDER=mock; analyses are fabricated")
		c.Classifier = classifier.NewMock()
	default:
		return Clients{}, fmt.Errorf("unsupported CLASSIFIER_PROVIDER %q", cfg.ClassifierProvider)
	}

	vs, err := resolveVectorStoreProvider(ctx, log, cfg)
	if err != nil {
		c.Close()
		return Clients{}, err
	}
	c.Vectors = vs

	if strings.TrimSpace(cfg.RedisAddr) != "" {
		bus, err := newEventBus(ctx, log, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Channel:  cfg.RedisChannel,
		})
		if err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("init redis event bus: %w", err)
		}
		c.EventBus = bus
	} else {
		log.Info("REDIS_ADDR not set; discovery events are not published")
	}

	return c, nil
}

// events returns the bus as a publisher, or nil so the worker skips publishing.
func (c *Clients) events() discovery.EventPublisher {
	if c.EventBus == nil {
		return nil
	}
	return c.EventBus
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.EventBus != nil {
		_ = c.EventBus.Close()
	}
	if c.Vision != nil {
		_ = c.Vision.Close()
	}
}
