package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/maatchaa/maatchaa-backend/internal/clients/openai"
	types "github.com/maatchaa/maatchaa-backend/internal/domain"
	"github.com/maatchaa/maatchaa-backend/internal/domain/creators"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

var analysisSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"title_summary", "objects_actions", "aesthetic", "tone_vibe", "potential_categories"},
	"properties": map[string]any{
		"title_summary": map[string]any{"type": "string"},
		"objects_actions": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"aesthetic":            map[string]any{"type": "string"},
		"tone_vibe":            map[string]any{"type": "string"},
		"potential_categories": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
}

// OpenAI classifies a video from its metadata and thumbnail with a
// structured-output multimodal call.
type OpenAI struct {
	log    *logger.Logger
	client openai.Client
}

func NewOpenAI(log *logger.Logger, client openai.Client) *OpenAI {
	return &OpenAI{log: log.With("classifier", "openai"), client: client}
}

func (c *OpenAI) Classify(ctx context.Context, video types.CandidateVideo) types.ClassifyResult {
	if c.client == nil {
		return creators.ClassifyFailure("openai client not configured")
	}
	var user strings.Builder
	fmt.Fprintf(&user, "Video URL: %s\nTitle: %s\nChannel: %s\n", video.URL, video.Title, video.ChannelTitle)
	if d := strings.TrimSpace(video.Description); d != "" {
		fmt.Fprintf(&user, "Description: %s\n", truncate(d, 1500))
	}
	if video.ThumbnailURL != "" {
		user.WriteString("The attached image is the video thumbnail.\n")
	}

	system := analysisPrompt
	var obj map[string]any
	var err error
	if video.ThumbnailURL != "" {
		var text string
		text, err = c.client.GenerateTextWithImages(ctx, system+"\nReturn only a JSON object with those keys.", user.String(),
			[]openai.ImageInput{{ImageURL: video.ThumbnailURL, Detail: "low"}})
		if err == nil {
			return creators.Classified(text)
		}
	} else {
		obj, err = c.client.GenerateJSON(ctx, system, user.String(), "video_analysis", analysisSchema)
		if err == nil {
			raw, mErr := json.Marshal(obj)
			if mErr != nil {
				return creators.ClassifyFailure(mErr.Error())
			}
			return creators.Classified(string(raw))
		}
	}
	c.log.Warn("Classification call failed", "video_id", video.VideoID, "error", err)
	return failureResult(ctx, err)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
