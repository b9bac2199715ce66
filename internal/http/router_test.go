package http

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/maatchaa/maatchaa-backend/internal/classifier"
	"github.com/maatchaa/maatchaa-backend/internal/clients/pinecone"
	"github.com/maatchaa/maatchaa-backend/internal/clients/youtube"
	"github.com/maatchaa/maatchaa-backend/internal/data/repos"
	"github.com/maatchaa/maatchaa-backend/internal/data/repos/testutil"
	"github.com/maatchaa/maatchaa-backend/internal/discovery"
	httpH "github.com/maatchaa/maatchaa-backend/internal/http/handlers"
	httpMW "github.com/maatchaa/maatchaa-backend/internal/http/middleware"
	"github.com/maatchaa/maatchaa-backend/internal/services"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

type stubIndex struct {
	deleted []string
}

func (s *stubIndex) Upsert(ctx context.Context, namespace string, vectors []pinecone.Vector) error {
	return nil
}

func (s *stubIndex) QueryMatches(ctx context.Context, namespace string, q []float32, topK int, filter map[string]any) ([]pinecone.VectorMatch, error) {
	return []pinecone.VectorMatch{{ID: "video_mock1", Score: 0.8, Metadata: map[string]any{"title": "Mock"}}}, nil
}

func (s *stubIndex) DeleteIDs(ctx context.Context, namespace string, ids []string) error {
	s.deleted = append(s.deleted, ids...)
	return nil
}

type testAPI struct {
	router *gin.Engine
	token  string
	index  *stubIndex
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	productRepo := repos.NewProductRepo(gdb, log)
	videoRepo := repos.NewCreatorVideoRepo(gdb, log)
	matchRepo := repos.NewProductCreatorMatchRepo(gdb, log)
	index := &stubIndex{}

	cfg := discovery.DefaultConfig()
	cfg.VideoDelay, cfg.KeywordDelay, cfg.ProductDelay = 0, 0, 0
	cfg.CallTimeout = 5 * time.Second
	worker, err := discovery.NewWorker(log, cfg, discovery.Deps{
		Source:     youtube.NewMock(""),
		Classifier: classifier.NewMock(),
		Products:   productRepo,
		Videos:     videoRepo,
		Matches:    matchRepo,
		Vectors:    index,
		Embedder:   stubEmbedder{},
	})
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	auth := services.NewAuthService(log, "test-secret", time.Hour)
	token, err := auth.IssueToken("ops-1")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	router := NewRouter(RouterConfig{
		Log:              log,
		AuthMiddleware:   httpMW.NewAuthMiddleware(log, auth),
		HealthHandler:    httpH.NewHealthHandler(),
		DiscoveryHandler: httpH.NewDiscoveryHandler(context.Background(), log, worker),
		ProductHandler: httpH.NewProductHandler(
			services.NewProductService(log, productRepo),
			services.NewMatchService(log, productRepo, videoRepo, matchRepo),
		),
		SearchHandler: httpH.NewSearchHandler(services.NewSearchService(log, stubEmbedder{}, index, cfg.VectorNamespace)),
	})

	// seed after wiring so the trigger test has a product to process
	testutil.SeedProduct(t, context.Background(), gdb, triggerCompany, "Ski Goggles", "anti-fog lens", time.Now(), "ski goggles")
	return &testAPI{router: router, token: token, index: index}
}

var triggerCompany = uuid.MustParse("4f6b7a9e-0000-4000-8000-000000000001")

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.token)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthcheckIsPublic(t *testing.T) {
	api := newTestAPI(t)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/healthcheck", nil))
	if rec.Code != nethttp.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: want=200 ok got=%d %q", rec.Code, rec.Body.String())
	}
}

func TestAPIRequiresToken(t *testing.T) {
	api := newTestAPI(t)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/api/products", nil))
	if rec.Code != nethttp.StatusUnauthorized {
		t.Fatalf("no token: want=401 got=%d", rec.Code)
	}
}

func TestTriggerAcceptsAndCompletes(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, nethttp.MethodPost, "/api/discovery/trigger", map[string]string{"company_id": triggerCompany.String()})
	if rec.Code != nethttp.StatusAccepted {
		t.Fatalf("trigger: want=202 got=%d body=%s", rec.Code, rec.Body.String())
	}
	taskID, _ := decode(t, rec)["task_id"].(string)
	if taskID == "" {
		t.Fatalf("trigger: missing task_id")
	}

	deadline := time.Now().Add(10 * time.Second)
	for {
		rec = api.do(t, nethttp.MethodGet, "/api/discovery/tasks/"+taskID, nil)
		if rec.Code != nethttp.StatusOK {
			t.Fatalf("task: want=200 got=%d", rec.Code)
		}
		body := decode(t, rec)
		if body["status"] == "done" {
			stats, _ := body["stats"].(map[string]any)
			if stats["products"] != float64(1) {
				t.Fatalf("stats.products: want=1 got=%v", stats["products"])
			}
			return
		}
		if body["status"] == "failed" {
			t.Fatalf("task failed: %v", body["error"])
		}
		if time.Now().After(deadline) {
			t.Fatalf("task did not finish")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestTriggerRejectsBadCompany(t *testing.T) {
	api := newTestAPI(t)
	for _, body := range []any{
		map[string]string{},
		map[string]string{"company_id": "not-a-uuid"},
	} {
		if rec := api.do(t, nethttp.MethodPost, "/api/discovery/trigger", body); rec.Code != nethttp.StatusBadRequest {
			t.Fatalf("trigger %v: want=400 got=%d", body, rec.Code)
		}
	}
	if rec := api.do(t, nethttp.MethodGet, "/api/discovery/tasks/"+uuid.NewString(), nil); rec.Code != nethttp.StatusNotFound {
		t.Fatalf("unknown task: want=404 got=%d", rec.Code)
	}
}

func TestProductEndpoints(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, nethttp.MethodGet, "/api/products?limit=5", nil)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("products: want=200 got=%d", rec.Code)
	}
	if total := decode(t, rec)["total"]; total != float64(1) {
		t.Fatalf("products total: want=1 got=%v", total)
	}
	if rec := api.do(t, nethttp.MethodGet, "/api/products/"+uuid.NewString()+"/matches", nil); rec.Code != nethttp.StatusNotFound {
		t.Fatalf("unknown product matches: want=404 got=%d", rec.Code)
	}
	if rec := api.do(t, nethttp.MethodGet, "/api/products/nope/matches", nil); rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("bad product id: want=400 got=%d", rec.Code)
	}
}

func TestSearchEndpoints(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, nethttp.MethodPost, "/api/search/text", map[string]any{"query": "ski goggles", "top_k": 3})
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("search: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	results, _ := decode(t, rec)["results"].([]any)
	if len(results) != 1 {
		t.Fatalf("search results: want=1 got=%d", len(results))
	}
	if rec := api.do(t, nethttp.MethodPost, "/api/search/text", map[string]any{"query": ""}); rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("empty query: want=400 got=%d", rec.Code)
	}
	if rec := api.do(t, nethttp.MethodDelete, "/api/videos/abc/vector", nil); rec.Code != nethttp.StatusOK {
		t.Fatalf("remove vector: want=200 got=%d", rec.Code)
	}
	if len(api.index.deleted) != 1 || api.index.deleted[0] != "video_abc" {
		t.Fatalf("deleted ids: want=[video_abc] got=%v", api.index.deleted)
	}
}
