package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/maatchaa/maatchaa-backend/internal/pkg/ctxutil"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

const (
	MaxKeywords   = 8
	MinAIKeywords = 3
)

// Boilerplate prefixes that Shopify development stores put on sample products.
var testPrefixes = []string{
	"selling plans",
	"the 3p fulfilled",
	"the archived",
	"the collection",
	"the complete",
	"the multi-location",
	"the hidden",
	"the out of stock",
}

var (
	leadingArticleRe = regexp.MustCompile(`(?i)^(the|a|an)\s+`)
	separatorRe      = regexp.MustCompile(`[:\-_]+`)
	spaceRe          = regexp.MustCompile(`\s+`)
)

const keywordSystemPrompt = `You generate realistic YouTube search keywords for a product so that creator content about it can be found.
Focus on generic, searchable terms that content creators actually use.
Avoid overly specific product names; focus on product types and categories.
Include variations like "review", "unboxing", "comparison", "guide".
For multi-word product types wrap the phrase in double quotes (e.g. "ski wax" not just wax) so searches do not match the wrong category ("ski wax" must not match "hair wax").

Examples:
Product: The Collection Snowboard: Hydrogen
Keywords: ["snowboard review", "all mountain snowboard", "best snowboards 2024", "snowboard gear guide", "beginner snowboard", "snowboard unboxing"]

Product: Selling Plans Ski Wax
Keywords: ["\"ski wax\" tutorial", "\"ski wax\" application", "how to wax skis", "\"ski wax\" review", "ski tuning", "snowboard wax"]`

var keywordSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"keywords"},
	"properties": map[string]any{
		"keywords": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
}

// KeywordGenerator derives search phrases for a product. It never fails:
// model errors fall back to string extraction from the title.
type KeywordGenerator struct {
	log   *logger.Logger
	model KeywordModel
	useAI bool
}

// NewKeywordGenerator returns a generator. A nil model disables the AI path.
func NewKeywordGenerator(log *logger.Logger, model KeywordModel) *KeywordGenerator {
	return &KeywordGenerator{
		log:   log.With("component", "KeywordGenerator"),
		model: model,
		useAI: model != nil,
	}
}

// Generate returns up to MaxKeywords phrases, or an empty slice when the title
// has nothing left after cleaning.
func (g *KeywordGenerator) Generate(ctx context.Context, title, description, category string) []string {
	fallback := SimpleKeywords(title)
	if !g.useAI || (strings.TrimSpace(description) == "" && strings.TrimSpace(category) == "") {
		return fallback
	}

	ai, err := g.generateAI(ctx, title, description, category)
	if err != nil {
		g.log.Warn("AI keyword generation failed, using fallback", "title", title, "error", err)
		return fallback
	}
	if len(ai) == 0 {
		return fallback
	}
	if len(ai) < MinAIKeywords {
		return mergeKeywords(ai, fallback)
	}
	return mergeKeywords(ai, nil)
}

func (g *KeywordGenerator) generateAI(ctx context.Context, title, description, category string) ([]string, error) {
	user := fmt.Sprintf("Generate 6 search keywords.\nProduct Title: %s\nDescription: %s\nProduct Type: %s",
		title, orNA(truncateRunes(description, 1000)), orNA(category))
	obj, err := g.model.GenerateJSON(ctxutil.Default(ctx), keywordSystemPrompt, user, "product_keywords", keywordSchema)
	if err != nil {
		return nil, err
	}
	raw, _ := obj["keywords"].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// SimpleKeywords is the deterministic fallback. Multi-word core terms are
// quoted so searches keep the words together.
func SimpleKeywords(title string) []string {
	core := CoreTerm(title)
	if core == "" {
		return []string{}
	}
	if len(strings.Fields(core)) >= 2 {
		q := `"` + core + `"`
		return []string{
			q + " review",
			q + " tutorial",
			"how to use " + q,
			"best " + q,
			q + " guide",
			q + " unboxing",
		}
	}
	return []string{
		core + " review",
		core + " unboxing",
		"best " + core,
		core + " guide",
		core + " comparison",
		core + " haul",
	}
}

// CoreTerm strips store boilerplate and punctuation from a product title and
// lowercases what is left.
func CoreTerm(title string) string {
	t := strings.TrimSpace(title)
	lower := strings.ToLower(t)
	for _, p := range testPrefixes {
		if strings.HasPrefix(lower, p) {
			t = strings.TrimSpace(t[len(p):])
			break
		}
	}
	t = leadingArticleRe.ReplaceAllString(t, "")
	t = separatorRe.ReplaceAllString(t, " ")
	t = spaceRe.ReplaceAllString(t, " ")
	return strings.ToLower(strings.TrimSpace(t))
}

// mergeKeywords keeps order, drops blanks and case-insensitive duplicates,
// and caps the result at MaxKeywords.
func mergeKeywords(lists ...[]string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, MaxKeywords)
	for _, l := range lists {
		for _, k := range l {
			k = strings.TrimSpace(k)
			key := strings.ToLower(k)
			if k == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, k)
			if len(out) == MaxKeywords {
				return out
			}
		}
	}
	return out
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
