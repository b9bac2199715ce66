package discovery

import (
	"math/rand"
	"strings"
	"testing"

	types "github.com/maatchaa/maatchaa-backend/internal/domain"
	"github.com/maatchaa/maatchaa-backend/internal/domain/creators"
)

func snowboardKit() *types.Product {
	return &types.Product{Title: "Snowboard Complete Kit"}
}

func TestScoreKeywordTermsAndContentType(t *testing.T) {
	video := types.CandidateVideo{
		Title:       "Snowboard Review 2024",
		Description: "Testing my new board on fresh powder",
		Views:       50000,
	}
	rel := Score(snowboardKit(), video, types.Analysis{}, "snowboard review")
	if rel.Score != 5.5 {
		t.Fatalf("score: want=5.5 got=%v", rel.Score)
	}
	want := "keyword in title; 1 product terms matched; review/tutorial content"
	if rel.Reasoning != want {
		t.Fatalf("reasoning: want=%q got=%q", want, rel.Reasoning)
	}
	ok, reason := Admit(rel.Score, video.Views, DefaultMinScore, DefaultMinViews)
	if !ok || reason != "score: 5.5, views: 50,000" {
		t.Fatalf("admit: ok=%v reason=%q", ok, reason)
	}
}

func TestAdmitRejectsLowViews(t *testing.T) {
	ok, reason := Admit(5.5, 200, DefaultMinScore, DefaultMinViews)
	if ok {
		t.Fatalf("admit: want rejection")
	}
	if reason != "low view count: 200 < 5,000" {
		t.Fatalf("reason: got=%q", reason)
	}
}

func TestAdmitRejectsLowScore(t *testing.T) {
	ok, reason := Admit(4.5, 50000, DefaultMinScore, DefaultMinViews)
	if ok || reason != "low relevance score: 4.5 < 5.0" {
		t.Fatalf("admit: ok=%v reason=%q", ok, reason)
	}
}

func TestScoreDescriptionKeywordAndNoFactors(t *testing.T) {
	rel := Score(&types.Product{Title: "Gift Card"}, types.CandidateVideo{
		Title:       "My morning",
		Description: "using a gift card",
	}, types.Analysis{}, "gift card")
	// "gift" and "card" both appear in the description
	if rel.Score != 4.0 {
		t.Fatalf("score: want=4.0 got=%v (%s)", rel.Score, rel.Reasoning)
	}
	if !strings.HasPrefix(rel.Reasoning, "keyword in description") {
		t.Fatalf("reasoning: got=%q", rel.Reasoning)
	}

	none := Score(&types.Product{Title: "Gift Card"}, types.CandidateVideo{Title: "cats"}, types.Analysis{}, "gift card")
	if none.Score != 0 || none.Reasoning != "low relevance" {
		t.Fatalf("no factors: got=%+v", none)
	}
}

func TestScoreUsesCategoriesAndObjects(t *testing.T) {
	analysis := creators.ParseAnalysis([]byte(`{
		"objects_actions": [["Snowboard", "goggles"], ["riding"]],
		"potential_categories": ["Sports", "winter sports", "travel"]
	}`))
	rel := Score(snowboardKit(), types.CandidateVideo{Title: "Day on the mountain"}, analysis, "snowboard review")
	// 1 product term in title? no; categories 2; objects 1 -> 2.0 + 1.5
	if rel.Score != 3.5 {
		t.Fatalf("score: want=3.5 got=%v (%s)", rel.Score, rel.Reasoning)
	}
	if rel.Reasoning != "category match: 2; 1 objects matched" {
		t.Fatalf("reasoning: got=%q", rel.Reasoning)
	}
}

func TestScoreObjectOverlapIgnoresStoreBoilerplate(t *testing.T) {
	analysis := types.Analysis{ObjectsActions: []string{"collection of plans", "selling"}}
	rel := Score(&types.Product{Title: "Selling Plans Collection"}, types.CandidateVideo{Title: "x"}, analysis, "")
	if strings.Contains(rel.Reasoning, "objects matched") {
		t.Fatalf("boilerplate words should not match objects: %q", rel.Reasoning)
	}
}

func TestScoreMalformedAnalysisContributesNothing(t *testing.T) {
	analysis := creators.ParseAnalysis([]byte("Sorry, I can't analyze this {"))
	if !analysis.IsEmpty() {
		t.Fatalf("malformed output should parse to empty analysis: %+v", analysis)
	}
	rel := Score(snowboardKit(), types.CandidateVideo{Title: "Snowboard Review 2024"}, analysis, "snowboard review")
	if rel.Score != 5.5 {
		t.Fatalf("score: want=5.5 got=%v", rel.Score)
	}
}

func TestScoreIsBounded(t *testing.T) {
	analysis := types.Analysis{
		ObjectsActions:      []string{"ski snowboard tech gadget gift card"},
		PotentialCategories: []string{"sports", "outdoors", "winter sports", "gifts", "tech"},
	}
	video := types.CandidateVideo{
		Title:       "ski snowboard tech gadget gift card review",
		Description: "ski snowboard tech gadget gift card review",
	}
	rel := Score(&types.Product{Title: "Ski Snowboard Tech Gadget Gift Card"}, video, analysis, "review")
	if rel.Score != MaxScore {
		t.Fatalf("score: want=%v got=%v", MaxScore, rel.Score)
	}

	r := rand.New(rand.NewSource(7))
	words := []string{"ski", "wax", "review", "gift", "card", "tech", "the", "unboxing", "how to", ""}
	pick := func(n int) string {
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteString(words[r.Intn(len(words))])
			b.WriteString(" ")
		}
		return b.String()
	}
	for i := 0; i < 500; i++ {
		rel := Score(&types.Product{Title: pick(4)},
			types.CandidateVideo{Title: pick(6), Description: pick(10)},
			types.Analysis{ObjectsActions: []string{pick(3)}, PotentialCategories: []string{"sports", "tech", "gifts"}},
			pick(2))
		if rel.Score < 0 || rel.Score > MaxScore {
			t.Fatalf("score out of range: %v", rel.Score)
		}
	}
}

func TestAdmitIsMonotonic(t *testing.T) {
	prev := false
	for s := 0.0; s <= MaxScore; s += 0.25 {
		ok, _ := Admit(s, 10000, DefaultMinScore, DefaultMinViews)
		if prev && !ok {
			t.Fatalf("admission flipped back to rejection at score %v", s)
		}
		prev = ok
	}
	if !prev {
		t.Fatalf("max score should be admitted")
	}

	prev = false
	for v := int64(0); v <= 20000; v += 250 {
		ok, _ := Admit(7.0, v, DefaultMinScore, DefaultMinViews)
		if prev && !ok {
			t.Fatalf("admission flipped back to rejection at views %d", v)
		}
		if ok != (v >= DefaultMinViews) {
			t.Fatalf("views %d: want admitted=%v", v, v >= DefaultMinViews)
		}
		prev = ok
	}
}
