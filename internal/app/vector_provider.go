package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	neturl "net/url"
	"os"
	"strings"
	"time"

	"github.com/maatchaa/maatchaa-backend/internal/clients/pinecone"
	"github.com/maatchaa/maatchaa-backend/internal/clients/qdrant"
	"github.com/maatchaa/maatchaa-backend/internal/observability"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

type VectorProvider string

const (
	VectorProviderPinecone VectorProvider = "pinecone"
	VectorProviderQdrant   VectorProvider = "qdrant"
)

var (
	newPineconeClient      = pinecone.New
	newPineconeVectorStore = pinecone.NewVectorStore
	newQdrantVectorStore   = qdrant.NewVectorStore
)

type VectorProviderBootstrapErrorCode string

const (
	VectorProviderBootstrapErrorInvalidProvider     VectorProviderBootstrapErrorCode = "invalid_provider"
	VectorProviderBootstrapErrorMissingAPIKey       VectorProviderBootstrapErrorCode = "missing_api_key"
	VectorProviderBootstrapErrorMissingQdrantURL    VectorProviderBootstrapErrorCode = "missing_qdrant_url"
	VectorProviderBootstrapErrorInvalidQdrantURL    VectorProviderBootstrapErrorCode = "invalid_qdrant_url"
	VectorProviderBootstrapErrorMissingQdrantColl   VectorProviderBootstrapErrorCode = "missing_qdrant_collection"
	VectorProviderBootstrapErrorInvalidQdrantVector VectorProviderBootstrapErrorCode = "invalid_qdrant_vector_dim"
	VectorProviderBootstrapErrorQdrantConfigFailed  VectorProviderBootstrapErrorCode = "qdrant_config_failed"
	VectorProviderBootstrapErrorConnectFailed       VectorProviderBootstrapErrorCode = "connect_failed"
	VectorProviderBootstrapErrorProviderInitFailed  VectorProviderBootstrapErrorCode = "provider_init_failed"
)

// VectorProviderBootstrapError is returned when the configured vector index
// cannot be brought up. Discovery cannot run without one, so it is fatal.
type VectorProviderBootstrapError struct {
	Code     VectorProviderBootstrapErrorCode
	Provider string
	Cause    error
}

func (e *VectorProviderBootstrapError) Error() string {
	if e == nil {
		return "vector provider bootstrap failed"
	}
	return fmt.Sprintf("vector provider bootstrap failed (code=%s provider=%q): %v", e.Code, e.Provider, e.Cause)
}

func (e *VectorProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func resolveVectorStoreProvider(ctx context.Context, log *logger.Logger, cfg Config) (pinecone.VectorStore, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.VectorProvider))
	metrics := observability.Current()

	vs, err := openVectorStore(ctx, log, provider, cfg)
	if err != nil {
		classified := classifyVectorProviderBootstrapError(provider, err)
		code := vectorProviderBootstrapErrorCode(classified)
		metrics.ObserveVectorStoreBootstrap(provider, "error", string(code))
		log.Error("Vector store provider bootstrap failed",
			"provider", provider,
			"error_code", code,
			"error", classified,
		)
		return nil, classified
	}
	metrics.ObserveVectorStoreBootstrap(provider, "success", "none")
	return instrumentVectorStore(provider, vs, metrics), nil
}

func openVectorStore(ctx context.Context, log *logger.Logger, provider string, cfg Config) (pinecone.VectorStore, error) {
	switch provider {
	case string(VectorProviderQdrant):
		log.Info("Selecting vector store provider",
			"provider", provider,
			"qdrant_url", cfg.QdrantURL,
			"qdrant_collection", cfg.QdrantCollection,
			"qdrant_namespace_prefix", cfg.QdrantNamespacePrefix,
			"qdrant_vector_dim", cfg.QdrantVectorDim,
		)
		return newQdrantVectorStore(ctx, log, qdrant.Config{
			URL:             strings.TrimSpace(cfg.QdrantURL),
			APIKey:          strings.TrimSpace(cfg.QdrantAPIKey),
			Collection:      strings.TrimSpace(cfg.QdrantCollection),
			NamespacePrefix: strings.TrimSpace(cfg.QdrantNamespacePrefix),
			VectorDim:       cfg.QdrantVectorDim,
		})

	case string(VectorProviderPinecone):
		log.Info("Selecting vector store provider",
			"provider", provider,
			"pinecone_index", cfg.PineconeIndexName,
		)
		apiKey := strings.TrimSpace(os.Getenv("PINECONE_API_KEY"))
		if apiKey == "" {
			return nil, &VectorProviderBootstrapError{
				Code:     VectorProviderBootstrapErrorMissingAPIKey,
				Provider: provider,
				Cause:    fmt.Errorf("PINECONE_API_KEY is required"),
			}
		}
		pc, err := newPineconeClient(log, pinecone.Config{
			APIKey:     apiKey,
			APIVersion: strings.TrimSpace(os.Getenv("PINECONE_API_VERSION")),
			BaseURL:    strings.TrimSpace(os.Getenv("PINECONE_BASE_URL")),
			Timeout:    30 * time.Second,
		})
		if err != nil {
			return nil, err
		}
		return newPineconeVectorStore(log, pc, pinecone.StoreConfig{
			IndexName:       cfg.PineconeIndexName,
			IndexHost:       cfg.PineconeIndexHost,
			NamespacePrefix: cfg.PineconeNamespace,
		})

	default:
		return nil, &VectorProviderBootstrapError{
			Code:     VectorProviderBootstrapErrorInvalidProvider,
			Provider: provider,
			Cause:    fmt.Errorf("unsupported vector provider %q", provider),
		}
	}
}

func classifyVectorProviderBootstrapError(provider string, err error) error {
	var bootstrapErr *VectorProviderBootstrapError
	if errors.As(err, &bootstrapErr) {
		return err
	}
	wrap := func(code VectorProviderBootstrapErrorCode) error {
		return &VectorProviderBootstrapError{Code: code, Provider: provider, Cause: err}
	}

	var cfgErr *qdrant.ConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case qdrant.ConfigErrorMissingURL:
			return wrap(VectorProviderBootstrapErrorMissingQdrantURL)
		case qdrant.ConfigErrorInvalidURL:
			return wrap(VectorProviderBootstrapErrorInvalidQdrantURL)
		case qdrant.ConfigErrorMissingCollection:
			return wrap(VectorProviderBootstrapErrorMissingQdrantColl)
		case qdrant.ConfigErrorInvalidVectorDim:
			return wrap(VectorProviderBootstrapErrorInvalidQdrantVector)
		default:
			return wrap(VectorProviderBootstrapErrorQdrantConfigFailed)
		}
	}

	var urlErr *neturl.Error
	if errors.As(err, &urlErr) {
		return wrap(VectorProviderBootstrapErrorConnectFailed)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return wrap(VectorProviderBootstrapErrorConnectFailed)
	}
	errLower := strings.ToLower(err.Error())
	if strings.Contains(errLower, "ready check failed") || strings.Contains(errLower, "connection refused") {
		return wrap(VectorProviderBootstrapErrorConnectFailed)
	}
	return wrap(VectorProviderBootstrapErrorProviderInitFailed)
}

func vectorProviderBootstrapErrorCode(err error) VectorProviderBootstrapErrorCode {
	var bootstrapErr *VectorProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return VectorProviderBootstrapErrorConnectFailed
}
