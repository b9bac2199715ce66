package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maatchaa/maatchaa-backend/internal/pkg/ctxutil"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
	"github.com/maatchaa/maatchaa-backend/internal/services"
)

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://dash.maatchaa.test"}))
	r.OPTIONS("/api/discovery/trigger", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodOptions, "/api/discovery/trigger", nil)
	req.Header.Set("Origin", "https://dash.maatchaa.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.maatchaa.test" {
		t.Fatalf("allow-origin: want=https://dash.maatchaa.test got=%q", got)
	}
}

func TestCORSDefaultsToLocalOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(nil))
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow-origin: want=http://localhost:5173 got=%q", got)
	}
}

func TestAttachRequestContextHonorsHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var seen *ctxutil.TraceData
	r := gin.New()
	r.Use(AttachRequestContext())
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil || seen.RequestID != "req-1" {
		t.Fatalf("request id: want=req-1 got=%+v", seen)
	}
	if seen.TraceID != "req-1" {
		t.Fatalf("trace id fallback: want=req-1 got=%q", seen.TraceID)
	}
	if rec.Header().Get(HeaderRequestID) != "req-1" {
		t.Fatalf("response header: got=%q", rec.Header().Get(HeaderRequestID))
	}
}

func newAuthRouter(t *testing.T) (*gin.Engine, services.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth := services.NewAuthService(logger.Nop(), "test-secret", time.Hour)
	mw := NewAuthMiddleware(logger.Nop(), auth)
	r := gin.New()
	r.Use(mw.RequireAuth())
	r.GET("/secure", func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.String(http.StatusOK, rd.OperatorID)
	})
	return r, auth
}

func TestRequireAuth(t *testing.T) {
	r, auth := newAuthRouter(t)
	tok, err := auth.IssueToken("ops-7")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"basic scheme", "Basic " + tok, http.StatusUnauthorized},
		{"valid", "Bearer " + tok, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: want=%d got=%d", tc.name, tc.want, rec.Code)
		}
		if tc.want == http.StatusOK && rec.Body.String() != "ops-7" {
			t.Fatalf("%s: operator want=ops-7 got=%q", tc.name, rec.Body.String())
		}
	}
}

func TestMetricsNilPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(nil), RequestLogger(logger.Nop()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	req := httptest.NewRequest(http.MethodGet, "/x", nil).WithContext(context.Background())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status: want=%d got=%d", http.StatusTeapot, rec.Code)
	}
}
