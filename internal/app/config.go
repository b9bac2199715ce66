package app

import (
	"strings"
	"time"

	"github.com/maatchaa/maatchaa-backend/internal/discovery"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/envutil"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

type ClassifierProvider string

const (
	ClassifierOpenAI ClassifierProvider = "openai"
	ClassifierVision ClassifierProvider = "gcp_vision"
	ClassifierMock   ClassifierProvider = "mock"
)

type Config struct {
	HTTPAddr        string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	CORSOrigins     []string
	OtelServiceName string
	MetricsAddr     string

	RunWorker bool

	UseMockYouTube    bool
	YouTubeAPIKey     string
	YouTubeMinViews   int64
	DefaultEmail      string
	LookupEmails      bool
	RelevanceLanguage string
	RegionCode        string

	ClassifierProvider ClassifierProvider

	VectorProvider        string
	PineconeIndexName     string
	PineconeIndexHost     string
	PineconeNamespace     string
	QdrantURL             string
	QdrantAPIKey          string
	QdrantCollection      string
	QdrantNamespacePrefix string
	QdrantVectorDim       int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	Discovery discovery.Config
}

func LoadConfig(log *logger.Logger) (Config, error) {
	discoveryCfg, err := discovery.LoadConfig(log)
	if err != nil {
		return Config{}, err
	}
	return Config{
		HTTPAddr:        ":" + envutil.GetEnv("PORT", "8080", log),
		JWTSecretKey:    envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL:  time.Duration(envutil.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)) * time.Second,
		CORSOrigins:     splitList(envutil.GetEnv("CORS_ALLOWED_ORIGINS", "", log)),
		OtelServiceName: envutil.GetEnv("OTEL_SERVICE_NAME", "maatchaa-api", log),
		MetricsAddr:     envutil.GetEnv("METRICS_ADDR", ":9090", log),

		RunWorker: envutil.GetEnvAsBool("RUN_DISCOVERY_WORKER", true, log),

		UseMockYouTube:    envutil.GetEnvAsBool("USE_MOCK_YOUTUBE", false, log),
		YouTubeAPIKey:     envutil.GetEnv("YOUTUBE_API_KEY", "", log),
		YouTubeMinViews:   int64(envutil.GetEnvAsInt("YOUTUBE_MIN_VIEWS", 1000, log)),
		DefaultEmail:      envutil.GetEnv("DEFAULT_EMAIL", "", log),
		LookupEmails:      envutil.GetEnvAsBool("YOUTUBE_LOOKUP_EMAILS", true, log),
		RelevanceLanguage: envutil.GetEnv("YOUTUBE_RELEVANCE_LANGUAGE", "en", log),
		RegionCode:        envutil.GetEnv("YOUTUBE_REGION_CODE", "", log),

		ClassifierProvider: ClassifierProvider(strings.ToLower(envutil.GetEnv("CLASSIFIER_PROVIDER", string(ClassifierOpenAI), log))),

		VectorProvider:        strings.ToLower(envutil.GetEnv("VECTOR_PROVIDER", string(VectorProviderPinecone), log)),
		PineconeIndexName:     envutil.GetEnv("PINECONE_INDEX_NAME", "creator-videos", log),
		PineconeIndexHost:     envutil.GetEnv("PINECONE_INDEX_HOST", "", log),
		PineconeNamespace:     envutil.GetEnv("PINECONE_NAMESPACE_PREFIX", "", log),
		QdrantURL:             envutil.GetEnv("QDRANT_URL", "", log),
		QdrantAPIKey:          envutil.GetEnv("QDRANT_API_KEY", "", log),
		QdrantCollection:      envutil.GetEnv("QDRANT_COLLECTION", "creator_videos", log),
		QdrantNamespacePrefix: envutil.GetEnv("QDRANT_NAMESPACE_PREFIX", "", log),
		QdrantVectorDim:       envutil.GetEnvAsInt("QDRANT_VECTOR_DIM", 0, log),

		RedisAddr:     envutil.GetEnv("REDIS_ADDR", "", log),
		RedisPassword: envutil.GetEnv("REDIS_PASSWORD", "", log),
		RedisDB:       envutil.GetEnvAsInt("REDIS_DB", 0, log),
		RedisChannel:  envutil.GetEnv("REDIS_DISCOVERY_CHANNEL", "discovery", log),

		Discovery: discoveryCfg,
	}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
