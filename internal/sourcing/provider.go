package sourcing

import "context"

// Hit is one raw listing as a provider returned it, before
// normalization. Adapters fill whichever fields their upstream API
// exposes and leave the rest zero; the normalizer derives everything
// else. A Hit never reaches callers directly.
type Hit struct {
	Title string

	// Price carries a numeric price when the upstream API provides
	// one. PriceText carries the provider-native textual form
	// ("$1,299.99", "USD 500 - 800"); the normalizer parses it when
	// Price is absent. Both empty means the offer is quote-based.
	Price     *float64
	PriceText string
	Currency  string

	Merchant       string
	MerchantDomain string

	URL      string
	ImageURL string

	Rating   *float64
	Reviews  *int
	Shipping string

	// Similarity is set only by directory-style providers that
	// already computed a semantic match score for this hit; it is
	// preserved in provenance, not used as the relevance score.
	Similarity float64
}

// Provider is one external search integration. Implementations must
// honor ctx cancellation — the aggregator imposes a per-provider
// timeout through it — and may retry internally within that budget.
// A provider that is not applicable to a query (wrong vertical)
// returns an empty slice, not an error.
type Provider interface {
	// ID returns the stable provider identifier used in outcomes,
	// provenance, and caller-side subset selection.
	ID() string

	Search(ctx context.Context, q Query) ([]Hit, error)
}
