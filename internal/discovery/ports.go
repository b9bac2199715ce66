package discovery

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maatchaa/maatchaa-backend/internal/clients/pinecone"
	types "github.com/maatchaa/maatchaa-backend/internal/domain"
)

// CandidateSource returns short-form videos for a keyword. No results is an
// empty slice, not an error.
type CandidateSource interface {
	Search(ctx context.Context, req types.SearchRequest) ([]types.CandidateVideo, error)
}

// Classifier never returns an error; failures are carried in the result.
type Classifier interface {
	Classify(ctx context.Context, video types.CandidateVideo) types.ClassifyResult
}

// ProductStore, VideoStore and MatchStore are satisfied by the GORM repos.
// A nil tx uses the repo's own handle.
type ProductStore interface {
	ListForDiscovery(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.Product, error)
	ListByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID, shopDomain string, limit int) ([]*types.Product, error)
	UpdateSearchKeywords(ctx context.Context, tx *gorm.DB, id uuid.UUID, keywords []string) error
}

type VideoStore interface {
	GetByVideoID(ctx context.Context, tx *gorm.DB, videoID string) (*types.CreatorVideo, error)
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, v *types.CreatorVideo) (bool, error)
}

type MatchStore interface {
	Exists(ctx context.Context, tx *gorm.DB, productID uuid.UUID, videoID string) (bool, error)
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, m *types.ProductCreatorMatch) (bool, error)
}

// VectorIndex is the write side of the vector store.
type VectorIndex interface {
	Upsert(ctx context.Context, namespace string, vectors []pinecone.Vector) error
}

type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// KeywordModel is the generative call behind keyword generation.
type KeywordModel interface {
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, ev types.DiscoveryEvent) error
}
