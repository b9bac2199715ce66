package creators

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
)

// Analysis is the structured output of the content classifier.
type Analysis struct {
	TitleSummary        string   `json:"title_summary,omitempty"`
	ObjectsActions      []string `json:"objects_actions,omitempty"`
	Aesthetic           string   `json:"aesthetic,omitempty"`
	ToneVibe            string   `json:"tone_vibe,omitempty"`
	PotentialCategories []string `json:"potential_categories,omitempty"`
}

// IsEmpty reports whether nothing usable was extracted.
func (a Analysis) IsEmpty() bool {
	return a.TitleSummary == "" && len(a.ObjectsActions) == 0 && a.Aesthetic == "" &&
		a.ToneVibe == "" && len(a.PotentialCategories) == 0
}

// JSON renders the analysis for the analysis column.
func (a Analysis) JSON() datatypes.JSON {
	b, err := json.Marshal(a)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(b)
}

type rawAnalysis struct {
	TitleSummary        any `json:"title_summary"`
	ObjectsActions      any `json:"objects_actions"`
	Aesthetic           any `json:"aesthetic"`
	ToneVibe            any `json:"tone_vibe"`
	PotentialCategories any `json:"potential_categories"`
}

// ParseAnalysis decodes classifier output. Markdown code fences are
// stripped; anything that is not a JSON object yields an empty Analysis.
// objects_actions may be a flat list or a list of lists and is flattened.
func ParseAnalysis(raw []byte) Analysis {
	s := stripFences(string(raw))
	if s == "" {
		return Analysis{}
	}
	var r rawAnalysis
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return Analysis{}
	}
	return Analysis{
		TitleSummary:        asString(r.TitleSummary),
		ObjectsActions:      flattenStrings(r.ObjectsActions),
		Aesthetic:           asString(r.Aesthetic),
		ToneVibe:            asString(r.ToneVibe),
		PotentialCategories: flattenStrings(r.PotentialCategories),
	}
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []any:
		return strings.Join(flattenStrings(t), ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func flattenStrings(v any) []string {
	var out []string
	var walk func(any)
	walk = func(x any) {
		switch t := x.(type) {
		case nil:
		case string:
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, s)
			}
		case []any:
			for _, e := range t {
				walk(e)
			}
		case float64, bool:
			out = append(out, fmt.Sprint(t))
		}
	}
	walk(v)
	return out
}
