package sourcing

import "strings"

// Score weights and provenance thresholds. These values have no
// tuning rationale beyond parity with long-observed ranking behavior;
// change them and every stored ranking silently reshuffles.
const (
	weightTitleOverlap = 0.4
	weightHasImage     = 0.15
	weightHasRating    = 0.15
	weightHasReviews   = 0.15
	weightHasPrice     = 0.15

	ratingFeatureThreshold  = 4.0
	reviewsFeatureThreshold = 100
	strongMatchThreshold    = 0.7
)

// Score computes a bounded relevance score for one result against the
// query. Deterministic and pure; each term contributes independently
// and the sum is clamped to 1.
func Score(r Result, q Query) float64 {
	score := 0.0

	queryWords := wordSet(q.Text)
	if len(queryWords) > 0 {
		titleWords := wordSet(r.Title)
		overlap := 0
		for w := range queryWords {
			if _, ok := titleWords[w]; ok {
				overlap++
			}
		}
		score += weightTitleOverlap * float64(overlap) / float64(len(queryWords))
	}

	if r.ImageURL != "" {
		score += weightHasImage
	}
	if r.Rating != nil && *r.Rating > 0 {
		score += weightHasRating
	}
	if r.Reviews != nil && *r.Reviews > 0 {
		score += weightHasReviews
	}
	if r.Price != nil && *r.Price > 0 {
		score += weightHasPrice
	}

	if score > 1 {
		return 1
	}
	return score
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}

// applyStrongMatch appends the score-dependent provenance feature.
// Only callable after scoring; provenance features are append-only.
func applyStrongMatch(r *Result) {
	if r.MatchScore > strongMatchThreshold {
		r.Provenance.MatchedFeatures = append(r.Provenance.MatchedFeatures, "Strong match")
	}
}
