package classifier

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/maatchaa/maatchaa-backend/internal/clients/gcp"
	types "github.com/maatchaa/maatchaa-backend/internal/domain"
	"github.com/maatchaa/maatchaa-backend/internal/domain/creators"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

// labelCategories maps Vision labels onto the topical categories the scorer
// compares against.
var labelCategories = map[string][]string{
	"snowboard":          {"sports", "winter sports", "outdoors"},
	"snowboarding":       {"sports", "winter sports", "outdoors"},
	"ski":                {"sports", "winter sports", "outdoors"},
	"skiing":             {"sports", "winter sports", "outdoors"},
	"snow":               {"winter sports", "outdoors"},
	"outdoor recreation": {"outdoors"},
	"sports equipment":   {"sports"},
	"gift":               {"gifts", "shopping", "lifestyle"},
	"gift card":          {"gifts", "shopping"},
	"shopping":           {"shopping", "lifestyle"},
	"gadget":             {"tech", "technology", "gadgets"},
	"electronics":        {"tech", "technology", "gadgets"},
	"electronic device":  {"tech", "technology", "gadgets"},
	"mobile phone":       {"tech", "technology", "gadgets"},
	"cosmetics":          {"beauty"},
	"food":               {"food"},
	"fitness":            {"fitness"},
	"video game":         {"gaming"},
}

// Vision derives an analysis from thumbnail label and object detection.
// It sees one frame, so tone is left empty.
type Vision struct {
	log    *logger.Logger
	vision gcp.Vision
}

func NewVision(log *logger.Logger, v gcp.Vision) *Vision {
	return &Vision{log: log.With("classifier", "gcp_vision"), vision: v}
}

func (c *Vision) Classify(ctx context.Context, video types.CandidateVideo) types.ClassifyResult {
	if c.vision == nil {
		return creators.ClassifyFailure("vision client not configured")
	}
	if strings.TrimSpace(video.ThumbnailURL) == "" {
		return creators.ClassifyFailure("video has no thumbnail")
	}
	ann, err := c.vision.AnnotateImageURI(ctx, video.ThumbnailURL)
	if err != nil {
		c.log.Warn("Thumbnail annotation failed", "video_id", video.VideoID, "error", err)
		return failureResult(ctx, err)
	}

	objects := make([]string, 0, len(ann.Objects))
	for _, o := range ann.Objects {
		objects = append(objects, o.Name)
	}
	labels := make([]string, 0, len(ann.Labels))
	seen := map[string]bool{}
	var categories []string
	for _, l := range ann.Labels {
		labels = append(labels, l.Name)
		for _, cat := range labelCategories[strings.ToLower(l.Name)] {
			if !seen[cat] {
				seen[cat] = true
				categories = append(categories, cat)
			}
		}
	}

	aesthetic := "balanced lighting"
	switch {
	case ann.Brightness < 0:
		aesthetic = ""
	case ann.Brightness >= 0.65:
		aesthetic = "bright, high-key visuals"
	case ann.Brightness <= 0.3:
		aesthetic = "dark, moody visuals"
	}

	raw, err := json.Marshal(map[string]any{
		"title_summary":        video.Title,
		"objects_actions":      [][]string{objects, labels},
		"aesthetic":            aesthetic,
		"tone_vibe":            "",
		"potential_categories": categories,
	})
	if err != nil {
		return creators.ClassifyFailure(err.Error())
	}
	return creators.Classified(string(raw))
}
