package sourcing

import (
	"errors"
	"strings"
)

// ErrEmptyQuery is returned when a query has no text after trimming.
// It is the only call-level failure the aggregator produces; provider
// failures are always recovered into outcomes.
var ErrEmptyQuery = errors.New("sourcing: empty search query")

// Query is the immutable input to one aggregation call. The caller is
// responsible for sanitizing the text (price-pattern stripping,
// length limits); this layer only rejects emptiness.
type Query struct {
	// Text is the free-text search string. Required.
	Text string

	// Country and Language are locale hints passed through to
	// providers that support them (gl/hl style parameters).
	Country  string
	Language string

	// MinPrice and MaxPrice bound the acceptable price range.
	// When both are set and inverted they are swapped, not rejected.
	MinPrice *float64
	MaxPrice *float64

	// Providers restricts dispatch to the named provider ids.
	// Empty means all registered providers. Unknown names select
	// nothing and are silently ignored.
	Providers []string

	// IntentQuery optionally carries an upstream-extracted clean
	// intent ("Private jet charter" for "private jet charter san
	// diego nashville"). Only the vendor directory provider consumes
	// it, blending it with Text for embedding lookup.
	IntentQuery string
}

// Normalized returns a copy with trimmed text and ordered price
// bounds, or ErrEmptyQuery when no text remains.
func (q Query) Normalized() (Query, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return q, ErrEmptyQuery
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		q.MinPrice, q.MaxPrice = q.MaxPrice, q.MinPrice
	}
	return q, nil
}
