package catalog

import (
	"reflect"
	"testing"
)

func TestKeywordsRoundTripDropsBlanks(t *testing.T) {
	p := &Product{SearchKeywords: EncodeKeywords([]string{"snowboard review", "  ", "best snowboard"})}
	got := p.Keywords()
	want := []string{"snowboard review", "best snowboard"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("keywords: want=%v got=%v", want, got)
	}
}

func TestKeywordsMalformed(t *testing.T) {
	p := &Product{SearchKeywords: []byte(`{"a":1}`)}
	if got := p.Keywords(); got != nil {
		t.Fatalf("want nil got=%v", got)
	}
	var nilProduct *Product
	if nilProduct.Keywords() != nil {
		t.Fatalf("nil product should yield nil")
	}
}
