package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/maatchaa/maatchaa-backend/internal/clients/pinecone"
	"github.com/maatchaa/maatchaa-backend/internal/discovery"
	apperrors "github.com/maatchaa/maatchaa-backend/internal/pkg/errors"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

const (
	DefaultSearchTopK = 10
	MaxSearchTopK     = 100
)

type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

type SearchHit struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// SearchService runs similarity queries over indexed creator videos.
type SearchService interface {
	TextSearch(ctx context.Context, query string, topK int) ([]SearchHit, error)
	RemoveVideo(ctx context.Context, videoID string) error
}

type searchService struct {
	log       *logger.Logger
	embedder  Embedder
	index     pinecone.VectorStore
	namespace string
}

func NewSearchService(log *logger.Logger, embedder Embedder, index pinecone.VectorStore, namespace string) SearchService {
	return &searchService{
		log:       log.With("service", "SearchService"),
		embedder:  embedder,
		index:     index,
		namespace: namespace,
	}
}

func (s *searchService) TextSearch(ctx context.Context, query string, topK int) ([]SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required: %w", apperrors.ErrInvalidArgument)
	}
	if s.index == nil {
		return nil, fmt.Errorf("vector search disabled")
	}
	switch {
	case topK <= 0:
		topK = DefaultSearchTopK
	case topK > MaxSearchTopK:
		topK = MaxSearchTopK
	}

	vecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("embed query: empty embedding")
	}
	matches, err := s.index.QueryMatches(ctx, s.namespace, vecs[0], topK, nil)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	out := make([]SearchHit, 0, len(matches))
	for _, m := range matches {
		md := m.Metadata
		if md == nil {
			md = map[string]any{}
		}
		out = append(out, SearchHit{ID: m.ID, Score: m.Score, Metadata: md})
	}
	s.log.Debug("text search", "top_k", topK, "hits", len(out))
	return out, nil
}

// RemoveVideo drops a video's vector from the index. The relational rows are
// left alone, so the video is still treated as already indexed by discovery.
func (s *searchService) RemoveVideo(ctx context.Context, videoID string) error {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return fmt.Errorf("video id required: %w", apperrors.ErrInvalidArgument)
	}
	if s.index == nil {
		return fmt.Errorf("vector search disabled")
	}
	return s.index.DeleteIDs(ctx, s.namespace, []string{discovery.VectorID(videoID)})
}
