package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	types "github.com/maatchaa/maatchaa-backend/internal/domain"
	apperrors "github.com/maatchaa/maatchaa-backend/internal/pkg/errors"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

// Source finds recent short-form videos for a keyword.
type Source interface {
	Search(ctx context.Context, req types.SearchRequest) ([]types.CandidateVideo, error)
}

type Config struct {
	APIKey            string
	MinViews          int64
	DefaultEmail      string
	LookupEmails      bool
	RelevanceLanguage string
	RegionCode        string
}

type client struct {
	log *logger.Logger
	svc *yt.Service
	cfg Config

	emailMu sync.Mutex
	emails  map[string]string
}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

func NewClient(ctx context.Context, log *logger.Logger, cfg Config, opts ...option.ClientOption) (Source, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if len(opts) == 0 {
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("missing YOUTUBE_API_KEY")
		}
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return &client{
		log:    log.With("client", "YouTube"),
		svc:    svc,
		cfg:    cfg,
		emails: map[string]string{},
	}, nil
}

// Search runs search.list for "<keyword> #shorts" then batches statistics
// through videos.list. Videos below MinViews are dropped as likely private
// or deleted.
func (c *client) Search(ctx context.Context, req types.SearchRequest) ([]types.CandidateVideo, error) {
	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		return nil, apperrors.ErrInvalidArgument
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	order := req.Order
	if order == "" {
		order = "viewCount"
	}
	days := req.PublishedAfterDays
	if days <= 0 {
		days = 7
	}
	publishedAfter := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)

	call := c.svc.Search.List([]string{"snippet"}).
		Q(keyword + " #shorts").
		Type("video").
		MaxResults(int64(maxResults)).
		Order(order).
		PublishedAfter(publishedAfter).
		Context(ctx)
	if c.cfg.RelevanceLanguage != "" {
		call = call.RelevanceLanguage(c.cfg.RelevanceLanguage)
	}
	if c.cfg.RegionCode != "" {
		call = call.RegionCode(c.cfg.RegionCode)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("youtube search %q: %w", keyword, classify(err))
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	if len(ids) == 0 {
		return []types.CandidateVideo{}, nil
	}

	stats, err := c.svc.Videos.List([]string{"statistics", "contentDetails"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube videos.list: %w", classify(err))
	}
	statsByID := make(map[string]*yt.VideoStatistics, len(stats.Items))
	for _, v := range stats.Items {
		if v != nil && v.Statistics != nil {
			statsByID[v.Id] = v.Statistics
		}
	}

	out := make([]types.CandidateVideo, 0, len(ids))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		videoID := item.Id.VideoId
		st := statsByID[videoID]
		var views, likes, comments int64
		if st != nil {
			views, likes, comments = int64(st.ViewCount), int64(st.LikeCount), int64(st.CommentCount)
		}
		if views < c.cfg.MinViews {
			continue
		}
		sn := item.Snippet
		published, _ := time.Parse(time.RFC3339, sn.PublishedAt)
		out = append(out, types.CandidateVideo{
			VideoID:      videoID,
			URL:          "https://www.youtube.com/watch?v=" + videoID,
			Title:        sn.Title,
			Description:  sn.Description,
			ThumbnailURL: thumbnailURL(sn.Thumbnails),
			ChannelTitle: sn.ChannelTitle,
			ChannelID:    sn.ChannelId,
			PublishedAt:  published,
			Views:        views,
			Likes:        likes,
			Comments:     comments,
			Email:        c.channelEmail(ctx, sn.ChannelId),
		})
	}
	return out, nil
}

// channelEmail never fails the search; lookups that error fall back to the
// configured default.
func (c *client) channelEmail(ctx context.Context, channelID string) string {
	if !c.cfg.LookupEmails || channelID == "" {
		return c.cfg.DefaultEmail
	}
	c.emailMu.Lock()
	cached, ok := c.emails[channelID]
	c.emailMu.Unlock()
	if ok {
		return cached
	}

	email := c.cfg.DefaultEmail
	resp, err := c.svc.Channels.List([]string{"snippet"}).Id(channelID).Context(ctx).Do()
	if err != nil {
		c.log.Warn("Channel lookup failed, using default email", "channel_id", channelID, "error", err)
		return email
	}
	if len(resp.Items) > 0 && resp.Items[0].Snippet != nil {
		if m := emailPattern.FindString(resp.Items[0].Snippet.Description); m != "" {
			email = m
		}
	}
	c.emailMu.Lock()
	c.emails[channelID] = email
	c.emailMu.Unlock()
	return email
}

func thumbnailURL(t *yt.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*yt.Thumbnail{t.High, t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}

// classify tags quota rejections with ErrRateLimited.
func classify(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	if gerr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", apperrors.ErrRateLimited, err)
	}
	if gerr.Code == http.StatusForbidden {
		for _, e := range gerr.Errors {
			if e.Reason == "quotaExceeded" || e.Reason == "rateLimitExceeded" {
				return fmt.Errorf("%w: %v", apperrors.ErrRateLimited, err)
			}
		}
	}
	return err
}
