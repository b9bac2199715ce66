package pinecone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maatchaa/maatchaa-backend/internal/pkg/httpx"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

func TestVectorStoreUpsertAndQuery(t *testing.T) {
	var upserted UpsertRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Api-Key") != "pc-key" {
			t.Errorf("missing api key header")
		}
		switch r.URL.Path {
		case "/vectors/upsert":
			_ = json.NewDecoder(r.Body).Decode(&upserted)
			_, _ = w.Write([]byte(`{"upsertedCount":1}`))
		case "/query":
			var q QueryRequest
			_ = json.NewDecoder(r.Body).Decode(&q)
			if !q.IncludeMetadata || q.Namespace != "mt:creator_videos" {
				t.Errorf("query: got=%+v", q)
			}
			_, _ = w.Write([]byte(`{"matches":[{"id":"video_abc","score":0.91,"metadata":{"title":"Snowboard"}}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	pc, err := New(logger.Nop(), Config{APIKey: "pc-key"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	vs, err := NewVectorStore(logger.Nop(), pc, StoreConfig{IndexName: "creators", IndexHost: srv.URL, NamespacePrefix: "mt"})
	if err != nil {
		t.Fatalf("NewVectorStore: %v", err)
	}

	err = vs.Upsert(context.Background(), "creator_videos", []Vector{{
		ID:       "video_abc",
		Values:   []float32{0.1, 0.2},
		Metadata: map[string]any{"video_id": "abc"},
	}})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if upserted.Namespace != "mt:creator_videos" || len(upserted.Vectors) != 1 || upserted.Vectors[0].ID != "video_abc" {
		t.Fatalf("upsert body: got=%+v", upserted)
	}

	matches, err := vs.QueryMatches(context.Background(), "creator_videos", []float32{0.1, 0.2}, 5, nil)
	if err != nil {
		t.Fatalf("QueryMatches: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "video_abc" || matches[0].Metadata["title"] != "Snowboard" {
		t.Fatalf("matches: got=%+v", matches)
	}
}

func TestClientSurfacesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	pc, _ := New(logger.Nop(), Config{APIKey: "k"})
	_, err := pc.UpsertVectors(context.Background(), srv.URL, UpsertRequest{Vectors: []Vector{{ID: "a", Values: []float32{1}}}})
	if !httpx.IsRateLimited(err) {
		t.Fatalf("want rate limited, got=%v", err)
	}
}

func TestNamespaceWithoutPrefix(t *testing.T) {
	s := &vectorStore{}
	if got := s.qualifyNamespace("creator_videos"); got != "creator_videos" {
		t.Fatalf("got=%q", got)
	}
}

func TestVectorStoreDeleteIDs(t *testing.T) {
	var deleted DeleteRequest
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/vectors/delete" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&deleted)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	pc, _ := New(logger.Nop(), Config{APIKey: "pc-key"})
	vs, err := NewVectorStore(logger.Nop(), pc, StoreConfig{IndexName: "creators", IndexHost: srv.URL})
	if err != nil {
		t.Fatalf("NewVectorStore: %v", err)
	}
	if err := vs.DeleteIDs(context.Background(), "creator_videos", []string{"video_abc"}); err != nil {
		t.Fatalf("DeleteIDs: %v", err)
	}
	if deleted.Namespace != "creator_videos" || len(deleted.IDs) != 1 || deleted.IDs[0] != "video_abc" {
		t.Fatalf("delete body: got=%+v", deleted)
	}
	if err := vs.DeleteIDs(context.Background(), "creator_videos", nil); err != nil {
		t.Fatalf("DeleteIDs(nil): %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls: want=1 got=%d", calls)
	}
}
