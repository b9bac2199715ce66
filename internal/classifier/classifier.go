package classifier

import (
	"context"
	"errors"

	types "github.com/maatchaa/maatchaa-backend/internal/domain"
	"github.com/maatchaa/maatchaa-backend/internal/domain/creators"
	apperrors "github.com/maatchaa/maatchaa-backend/internal/pkg/errors"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/httpx"
)

const analysisPrompt = `You are analyzing a short-form video for brand sponsorship matching.
Summarize the video with the following outputs:
- title_summary: short descriptive title of what happens in the video
- objects_actions: two lists, first the main objects/products/brands seen, then the key actions shown
- aesthetic: the visual style in 5-10 words (e.g. bright, dark, colorful, minimalist, vintage)
- tone_vibe: the tone in 5-10 words (e.g. funny, educational, edgy, relaxing)
- potential_categories: lowercase topical categories (e.g. fitness, beauty, gaming, food, tech, sports)
Keep responses concise and focused on the actual video content, not speculation. Do not hallucinate.`

// failureResult maps a call error onto the tagged result. Quota rejections
// are reported as rate limited so the video is retried in a later cycle.
func failureResult(ctx context.Context, err error) types.ClassifyResult {
	switch {
	case errors.Is(err, apperrors.ErrRateLimited), httpx.IsRateLimited(err):
		return creators.RateLimited(err.Error())
	case ctx.Err() != nil:
		return creators.ClassifyFailure("timeout: " + ctx.Err().Error())
	default:
		return creators.ClassifyFailure(err.Error())
	}
}
