package sourcing

// ProductInfo echoes what is known about the product itself inside
// the provenance bag.
type ProductInfo struct {
	Title string            `json:"title"`
	Brand string            `json:"brand,omitempty"`
	Specs map[string]string `json:"specs,omitempty"`
}

// Provenance explains why a result matched. It is populated once by
// the normalizer; downstream enrichment may append matched features
// but never removes them.
type Provenance struct {
	ProductInfo     ProductInfo `json:"product_info"`
	MatchedFeatures []string    `json:"matched_features"`
	SourceProvider  string      `json:"source_provider"`

	// VectorSimilarity preserves a directory provider's cosine
	// similarity for this hit, when one was computed.
	VectorSimilarity float64 `json:"vector_similarity,omitempty"`
}

// Result is the canonical, provider-independent representation of one
// offer.
type Result struct {
	Title string `json:"title"`

	// Price is the USD-converted price. nil means quote-based or
	// unknown — never zero. The original provider figures are kept
	// alongside.
	Price            *float64 `json:"price,omitempty"`
	Currency         string   `json:"currency"`
	PriceOriginal    *float64 `json:"price_original,omitempty"`
	CurrencyOriginal string   `json:"currency_original,omitempty"`

	Merchant       string `json:"merchant"`
	MerchantDomain string `json:"merchant_domain"`

	URL          string `json:"url"`
	CanonicalURL string `json:"canonical_url"`
	ClickURL     string `json:"click_url,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`

	Rating   *float64 `json:"rating,omitempty"`
	Reviews  *int     `json:"reviews_count,omitempty"`
	Shipping string   `json:"shipping_info,omitempty"`

	Source     string     `json:"source"`
	MatchScore float64    `json:"match_score"`
	Provenance Provenance `json:"provenance"`
}

// Response is the collect-all return value of one aggregation call.
type Response struct {
	// Results is deduplicated and sorted by MatchScore descending.
	Results []Result `json:"results"`

	// Outcomes holds one entry per dispatched provider, in
	// registration order.
	Outcomes []Outcome `json:"provider_statuses"`

	// AllFailed is true iff every outcome is non-ok.
	AllFailed bool `json:"all_providers_failed"`

	// Message is the optional caller-facing explanation produced by
	// the status reporter. Empty means none.
	Message string `json:"user_message,omitempty"`
}
