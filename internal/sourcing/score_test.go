package sourcing

import (
	"math"
	"testing"
)

func TestScoreFullSignalsClampsToOne(t *testing.T) {
	r := Result{
		Title:    "Red Running Shoes",
		ImageURL: "https://img.example.com/1.jpg",
		Rating:   fptr(4.8),
		Reviews:  iptr(200),
		Price:    fptr(49.99),
	}
	q := Query{Text: "red shoes"}
	// 0.4*(2/2) + 0.15*4 = 1.0 exactly, clamped at the bound.
	if got := Score(r, q); got != 1.0 {
		t.Fatalf("score = %v, want 1.0", got)
	}
}

func TestScoreTitleOverlapOnly(t *testing.T) {
	r := Result{Title: "Blue Suede Shoes"}
	q := Query{Text: "red shoes"}
	want := 0.4 * 0.5 // one of two distinct query words
	if got := Score(r, q); math.Abs(got-want) > 1e-9 {
		t.Fatalf("score = %v, want %v", got, want)
	}
}

func TestScoreRepeatedQueryWordsCountOnce(t *testing.T) {
	r := Result{Title: "red shoes"}
	if got := Score(r, Query{Text: "red red shoes"}); got != 0.4 {
		t.Fatalf("score = %v, want 0.4 (distinct words only)", got)
	}
}

func TestScoreEmptyishQuery(t *testing.T) {
	// Query validation precedes scoring in the pipeline, but the
	// scorer itself must not divide by zero.
	if got := Score(Result{Title: "x"}, Query{Text: "   "}); got != 0 {
		t.Fatalf("score = %v, want 0", got)
	}
}

func TestScoreZeroValuedSignalsDontCount(t *testing.T) {
	r := Result{
		Title:   "thing",
		Rating:  fptr(0),
		Reviews: iptr(0),
		Price:   fptr(0),
	}
	if got := Score(r, Query{Text: "unrelated"}); got != 0 {
		t.Fatalf("score = %v, want 0", got)
	}
}

func TestScoreBounds(t *testing.T) {
	results := []Result{
		{},
		{Title: "a b c d e f", ImageURL: "x", Rating: fptr(5), Reviews: iptr(9999), Price: fptr(1)},
	}
	for _, r := range results {
		got := Score(r, Query{Text: "a b c d e f"})
		if got < 0 || got > 1 {
			t.Fatalf("score %v out of [0,1]", got)
		}
	}
}

func TestApplyStrongMatch(t *testing.T) {
	r := Result{MatchScore: 0.71, Provenance: Provenance{MatchedFeatures: []string{}}}
	applyStrongMatch(&r)
	if len(r.Provenance.MatchedFeatures) != 1 || r.Provenance.MatchedFeatures[0] != "Strong match" {
		t.Fatalf("features = %v", r.Provenance.MatchedFeatures)
	}

	// Exactly at the threshold does not qualify.
	r = Result{MatchScore: 0.7, Provenance: Provenance{MatchedFeatures: []string{}}}
	applyStrongMatch(&r)
	if len(r.Provenance.MatchedFeatures) != 0 {
		t.Fatalf("features = %v, want none at threshold", r.Provenance.MatchedFeatures)
	}
}
