package classifier

import (
	"context"
	"encoding/json"
	"strings"

	types "github.com/maatchaa/maatchaa-backend/internal/domain"
	"github.com/maatchaa/maatchaa-backend/internal/domain/creators"
)

// Mock returns a fixed-shape analysis built from the video title.
type Mock struct{}

func NewMock() *Mock { return &Mock{} }

func (Mock) Classify(ctx context.Context, video types.CandidateVideo) types.ClassifyResult {
	if err := ctx.Err(); err != nil {
		return creators.ClassifyFailure(err.Error())
	}
	var objects []string
	for _, w := range strings.Fields(strings.ToLower(video.Title)) {
		w = strings.Trim(w, `"'!?.,:;-`)
		if len(w) > 2 {
			objects = append(objects, w)
		}
	}
	raw, _ := json.Marshal(map[string]any{
		"title_summary":        video.Title,
		"objects_actions":      [][]string{objects, {"reviewing", "demonstrating"}},
		"aesthetic":            "bright, clean product shots",
		"tone_vibe":            "informative, upbeat",
		"potential_categories": []string{"lifestyle", "shopping"},
	})
	return creators.Classified(string(raw))
}
