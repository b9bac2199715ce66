package discovery

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	types "github.com/maatchaa/maatchaa-backend/internal/domain"
)

const (
	MaxScore        = 10.0
	DefaultMinScore = 5.0
	DefaultMinViews = int64(5000)
)

var titleStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "for": true,
}

// Words that only appear in sample-store product titles and never in
// detected objects.
var objectStopwords = map[string]bool{
	"selling": true, "plans": true, "3p": true, "fulfilled": true, "archived": true, "collection": true,
}

var contentMarkers = []string{
	"review", "unboxing", "haul", "try on", "test", "first impressions",
	"tutorial", "how to", "guide", "demonstration", "setup", "tips",
}

type categoryRule struct {
	terms      []string
	categories []string
}

var categoryRules = []categoryRule{
	{terms: []string{"snowboard", "ski"}, categories: []string{"sports", "outdoors", "winter sports"}},
	{terms: []string{"gift", "card"}, categories: []string{"gifts", "shopping", "lifestyle"}},
	{terms: []string{"tech", "gadget"}, categories: []string{"tech", "technology", "gadgets"}},
}

// Relevance is a score in [0, MaxScore] with the factors that produced it.
type Relevance struct {
	Score     float64
	Reasoning string
}

// Score combines five independently capped factors. Every factor that fires
// contributes one entry to Reasoning.
func Score(product *types.Product, video types.CandidateVideo, analysis types.Analysis, sourceKeyword string) Relevance {
	var productTitle string
	if product != nil {
		productTitle = strings.ToLower(product.Title)
	}
	videoTitle := strings.ToLower(video.Title)
	videoDesc := strings.ToLower(video.Description)

	score := 0.0
	var reasons []string

	if kw := strings.ToLower(strings.TrimSpace(sourceKeyword)); kw != "" {
		if strings.Contains(videoTitle, kw) {
			score += 2.0
			reasons = append(reasons, "keyword in title")
		}
		if strings.Contains(videoDesc, kw) {
			score += 1.0
			reasons = append(reasons, "keyword in description")
		}
	}

	terms := titleTerms(productTitle, titleStopwords)
	matches := 0
	for _, w := range terms {
		if strings.Contains(videoTitle, w) || strings.Contains(videoDesc, w) {
			matches++
		}
	}
	if matches > 0 {
		score += min(3.0, float64(matches)*1.5)
		reasons = append(reasons, fmt.Sprintf("%d product terms matched", matches))
	}

	for _, m := range contentMarkers {
		if strings.Contains(videoTitle, m) {
			score += 2.0
			reasons = append(reasons, "review/tutorial content")
			break
		}
	}

	if overlap := categoryOverlap(productTitle, analysis.PotentialCategories); overlap > 0 {
		score += min(2.0, float64(overlap))
		reasons = append(reasons, fmt.Sprintf("category match: %d", overlap))
	}

	if len(analysis.ObjectsActions) > 0 {
		objects := strings.ToLower(strings.Join(analysis.ObjectsActions, " "))
		objMatches := 0
		for _, w := range terms {
			if objectStopwords[w] {
				continue
			}
			if strings.Contains(objects, w) {
				objMatches++
			}
		}
		if objMatches > 0 {
			score += min(3.0, float64(objMatches)*1.5)
			reasons = append(reasons, fmt.Sprintf("%d objects matched", objMatches))
		}
	}

	score = max(0, min(MaxScore, score))
	reasoning := "low relevance"
	if len(reasons) > 0 {
		reasoning = strings.Join(reasons, "; ")
	}
	return Relevance{Score: score, Reasoning: reasoning}
}

// Admit applies the admission filter. The reason explains the decision either
// way.
func Admit(score float64, views int64, minScore float64, minViews int64) (bool, string) {
	if score < minScore {
		return false, fmt.Sprintf("low relevance score: %.1f < %.1f", score, minScore)
	}
	if views < minViews {
		return false, fmt.Sprintf("low view count: %s < %s", humanize.Comma(views), humanize.Comma(minViews))
	}
	return true, fmt.Sprintf("score: %.1f, views: %s", score, humanize.Comma(views))
}

// titleTerms returns the distinct whitespace tokens of title minus stop.
func titleTerms(title string, stop map[string]bool) []string {
	seen := map[string]bool{}
	var out []string
	for _, w := range strings.Fields(title) {
		if stop[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

func productCategories(productTitle string) map[string]bool {
	cats := map[string]bool{}
	for _, r := range categoryRules {
		for _, t := range r.terms {
			if strings.Contains(productTitle, t) {
				for _, c := range r.categories {
					cats[c] = true
				}
				break
			}
		}
	}
	return cats
}

func categoryOverlap(productTitle string, videoCategories []string) int {
	want := productCategories(productTitle)
	if len(want) == 0 {
		return 0
	}
	seen := map[string]bool{}
	n := 0
	for _, c := range videoCategories {
		c = strings.ToLower(strings.TrimSpace(c))
		if want[c] && !seen[c] {
			seen[c] = true
			n++
		}
	}
	return n
}
