package pinecone

import (
	"context"
	"fmt"
	"strings"

	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

// VectorStore is the provider-neutral vector index used by discovery and
// search. The qdrant package implements it as well.
type VectorStore interface {
	Upsert(ctx context.Context, namespace string, vectors []Vector) error
	// QueryMatches returns matches best-first with their stored metadata.
	QueryMatches(ctx context.Context, namespace string, q []float32, topK int, filter map[string]any) ([]VectorMatch, error)
	DeleteIDs(ctx context.Context, namespace string, ids []string) error
}

type VectorMatch struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

type StoreConfig struct {
	IndexName       string
	IndexHost       string
	NamespacePrefix string
}

type vectorStore struct {
	log       *logger.Logger
	pc        Client
	indexName string
	indexHost string
	nsPrefix  string
}

func NewVectorStore(log *logger.Logger, pc Client, cfg StoreConfig) (VectorStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if pc == nil {
		return nil, fmt.Errorf("pinecone client required")
	}
	indexName := strings.TrimSpace(cfg.IndexName)
	if indexName == "" {
		return nil, fmt.Errorf("missing PINECONE_INDEX_NAME")
	}
	nsPrefix := strings.TrimSpace(cfg.NamespacePrefix)

	host := strings.TrimSpace(cfg.IndexHost)
	if host == "" {
		desc, err := pc.DescribeIndex(context.Background(), indexName)
		if err != nil {
			return nil, fmt.Errorf("pinecone describe_index failed: %w", err)
		}
		host = strings.TrimSpace(desc.Host)
		log.Warn("PINECONE_INDEX_HOST not set; resolved via describe_index",
			"index_name", indexName,
			"index_host", host,
		)
	}

	return &vectorStore{
		log:       log.With("service", "PineconeVectorStore"),
		pc:        pc,
		indexName: indexName,
		indexHost: host,
		nsPrefix:  nsPrefix,
	}, nil
}

func (s *vectorStore) Upsert(ctx context.Context, namespace string, vectors []Vector) error {
	if s == nil || s.pc == nil {
		return nil
	}
	_, err := s.pc.UpsertVectors(ctx, s.indexHost, UpsertRequest{
		Namespace: s.qualifyNamespace(namespace),
		Vectors:   vectors,
	})
	return err
}

func (s *vectorStore) QueryMatches(ctx context.Context, namespace string, q []float32, topK int, filter map[string]any) ([]VectorMatch, error) {
	if s == nil || s.pc == nil {
		return nil, fmt.Errorf("vector store unavailable")
	}
	resp, err := s.pc.Query(ctx, s.indexHost, QueryRequest{
		Namespace:       s.qualifyNamespace(namespace),
		Vector:          q,
		TopK:            topK,
		Filter:          filter,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, err
	}
	out := make([]VectorMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if strings.TrimSpace(m.ID) == "" {
			continue
		}
		out = append(out, VectorMatch{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}
	return out, nil
}

func (s *vectorStore) DeleteIDs(ctx context.Context, namespace string, ids []string) error {
	if s == nil || s.pc == nil {
		return nil
	}
	return s.pc.DeleteVectors(ctx, s.indexHost, DeleteRequest{
		Namespace: s.qualifyNamespace(namespace),
		IDs:       ids,
	})
}

// An empty prefix keeps namespaces as given, so indexes shared with other
// writers stay readable.
func (s *vectorStore) qualifyNamespace(ns string) string {
	ns = strings.TrimSpace(ns)
	switch {
	case s.nsPrefix == "":
		return ns
	case ns == "":
		return s.nsPrefix
	default:
		return s.nsPrefix + ":" + ns
	}
}
