package app

import (
	"context"
	"time"

	"github.com/maatchaa/maatchaa-backend/internal/clients/pinecone"
	"github.com/maatchaa/maatchaa-backend/internal/observability"
)

// instrumentedVectorStore records per-call latency and status for whichever
// provider backs the index.
type instrumentedVectorStore struct {
	provider string
	inner    pinecone.VectorStore
	metrics  *observability.Metrics
}

func instrumentVectorStore(provider string, inner pinecone.VectorStore, m *observability.Metrics) pinecone.VectorStore {
	if inner == nil || m == nil {
		return inner
	}
	return &instrumentedVectorStore{provider: provider, inner: inner, metrics: m}
}

func (s *instrumentedVectorStore) Upsert(ctx context.Context, namespace string, vectors []pinecone.Vector) error {
	start := time.Now()
	err := s.inner.Upsert(ctx, namespace, vectors)
	s.observe("upsert", err, start)
	return err
}

func (s *instrumentedVectorStore) QueryMatches(ctx context.Context, namespace string, q []float32, topK int, filter map[string]any) ([]pinecone.VectorMatch, error) {
	start := time.Now()
	out, err := s.inner.QueryMatches(ctx, namespace, q, topK, filter)
	s.observe("query_matches", err, start)
	return out, err
}

func (s *instrumentedVectorStore) DeleteIDs(ctx context.Context, namespace string, ids []string) error {
	start := time.Now()
	err := s.inner.DeleteIDs(ctx, namespace, ids)
	s.observe("delete_ids", err, start)
	return err
}

func (s *instrumentedVectorStore) observe(operation string, err error, start time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.ObserveVectorStoreOperation(s.provider, operation, status, time.Since(start))
}
