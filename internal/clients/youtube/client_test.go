package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/option"

	types "github.com/maatchaa/maatchaa-backend/internal/domain"
	apperrors "github.com/maatchaa/maatchaa-backend/internal/pkg/errors"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

const searchJSON = `{"items":[
 {"id":{"videoId":"vid1"},"snippet":{"title":"Snowboard review","description":"d1","channelId":"UC1","channelTitle":"Rider","publishedAt":"2025-01-02T03:04:05Z","thumbnails":{"high":{"url":"https://img/1.jpg"}}}},
 {"id":{"videoId":"vid2"},"snippet":{"title":"Tiny","description":"d2","channelId":"UC2","channelTitle":"Small","publishedAt":"2025-01-02T03:04:05Z","thumbnails":{"default":{"url":"https://img/2.jpg"}}}}
]}`

const videosJSON = `{"items":[
 {"id":"vid1","statistics":{"viewCount":"50000","likeCount":"1200","commentCount":"40"}},
 {"id":"vid2","statistics":{"viewCount":"200"}}
]}`

const channelsJSON = `{"items":[{"id":"UC1","snippet":{"description":"Business: rider@example.com"}}]}`

func newTestServer(t *testing.T, searchStatus int) (*httptest.Server, *string) {
	t.Helper()
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/search"):
			query = r.URL.Query().Get("q")
			if searchStatus != http.StatusOK {
				w.WriteHeader(searchStatus)
				_, _ = w.Write([]byte(`{"error":{"code":403,"message":"quota","errors":[{"reason":"quotaExceeded"}]}}`))
				return
			}
			_, _ = w.Write([]byte(searchJSON))
		case strings.HasSuffix(r.URL.Path, "/videos"):
			_, _ = w.Write([]byte(videosJSON))
		case strings.HasSuffix(r.URL.Path, "/channels"):
			_, _ = w.Write([]byte(channelsJSON))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &query
}

func TestSearchFiltersLowViewsAndFindsEmail(t *testing.T) {
	srv, query := newTestServer(t, http.StatusOK)
	src, err := NewClient(context.Background(), logger.Nop(),
		Config{MinViews: 1000, DefaultEmail: "fallback@example.com", LookupEmails: true},
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	videos, err := src.Search(context.Background(), types.SearchRequest{Keyword: "snowboard review", MaxResults: 5, PublishedAfterDays: 30})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if *query != "snowboard review #shorts" {
		t.Fatalf("query: got=%q", *query)
	}
	if len(videos) != 1 {
		t.Fatalf("want 1 video after view filter, got=%d", len(videos))
	}
	v := videos[0]
	if v.VideoID != "vid1" || v.Views != 50000 || v.Likes != 1200 || v.Comments != 40 {
		t.Fatalf("unexpected video: %+v", v)
	}
	if v.URL != "https://www.youtube.com/watch?v=vid1" || v.ThumbnailURL != "https://img/1.jpg" {
		t.Fatalf("url/thumbnail: %+v", v)
	}
	if v.Email != "rider@example.com" {
		t.Fatalf("email: got=%q", v.Email)
	}
	if v.PublishedAt.IsZero() {
		t.Fatalf("published_at not parsed")
	}
}

func TestSearchQuotaIsRateLimited(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusForbidden)
	src, err := NewClient(context.Background(), logger.Nop(), Config{},
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = src.Search(context.Background(), types.SearchRequest{Keyword: "snowboard"})
	if !errors.Is(err, apperrors.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got=%v", err)
	}
}

func TestMockIsDeterministic(t *testing.T) {
	src := NewMock("")
	req := types.SearchRequest{Keyword: "snowboard review", MaxResults: 10}
	a, err := src.Search(context.Background(), req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	b, _ := src.Search(context.Background(), req)
	if len(a) != 6 {
		t.Fatalf("mock caps at 6 creators, got=%d", len(a))
	}
	for i := range a {
		if a[i].VideoID != b[i].VideoID || a[i].Views != b[i].Views {
			t.Fatalf("mock not deterministic at %d", i)
		}
		if a[i].Views < 1000 {
			t.Fatalf("mock views too low: %d", a[i].Views)
		}
	}
	if a[0].Title != "Snowboard Review Review - TechReviews" {
		t.Fatalf("title: got=%q", a[0].Title)
	}
	if a[0].Email != "creator@example.com" {
		t.Fatalf("email: got=%q", a[0].Email)
	}
}
