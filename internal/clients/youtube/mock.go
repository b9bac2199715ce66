package youtube

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/maatchaa/maatchaa-backend/internal/domain"
)

type mockCreator struct {
	name string
	id   string
}

var mockCreators = []mockCreator{
	{"TechReviews", "UCmock001"},
	{"ProductSpotlight", "UCmock002"},
	{"UnboxingPro", "UCmock003"},
	{"DailyDeals", "UCmock004"},
	{"TheBestProducts", "UCmock005"},
	{"ReviewMaster", "UCmock006"},
}

type mockSource struct {
	defaultEmail string
	now          func() time.Time
}

// NewMock returns a Source that fabricates at most six videos per keyword.
// IDs and view counts derive from the keyword, so repeated searches return
// the same videos.
func NewMock(defaultEmail string) Source {
	if defaultEmail == "" {
		defaultEmail = "creator@example.com"
	}
	return &mockSource{defaultEmail: defaultEmail, now: time.Now}
}

func (m *mockSource) Search(ctx context.Context, req types.SearchRequest) ([]types.CandidateVideo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keyword := strings.TrimSpace(req.Keyword)
	n := req.MaxResults
	if n > len(mockCreators) {
		n = len(mockCreators)
	}
	title := titleCase(strings.ReplaceAll(keyword, `"`, ""))
	out := make([]types.CandidateVideo, 0, n)
	for i := 0; i < n; i++ {
		creator := mockCreators[i]
		seed := uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", strings.ToLower(keyword), i)))
		videoID := "mock" + strings.ReplaceAll(seed.String(), "-", "")[:8]
		views := int64(seed[0])*1000 + int64(seed[1])*10 + 1000
		out = append(out, types.CandidateVideo{
			VideoID:      videoID,
			URL:          "https://www.youtube.com/watch?v=" + videoID,
			Title:        fmt.Sprintf("%s Review - %s", title, creator.name),
			Description:  fmt.Sprintf("Check out this awesome %s! Full review and unboxing.", keyword),
			ThumbnailURL: fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID),
			ChannelTitle: creator.name,
			ChannelID:    creator.id,
			PublishedAt:  m.now().UTC().Truncate(time.Second),
			Views:        views,
			Likes:        views / 20,
			Comments:     views / 200,
			Email:        m.defaultEmail,
		})
	}
	return out, nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
