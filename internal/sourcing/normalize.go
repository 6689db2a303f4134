package sourcing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kayz/dealhound/internal/currency"
	"github.com/kayz/dealhound/internal/urlx"
)

// firstNumber pulls the first numeric component out of a price string,
// tolerating currency symbols, thousands separators, and ranges
// ("$1,299.99", "USD 500 - 800" → 1299.99, 500).
var firstNumber = regexp.MustCompile(`(\d[\d,]*\.?\d*)`)

// Normalize converts a provider's raw hits into canonical results.
// Pure function of its inputs: no I/O, no shared state. Hits whose
// URL does not resolve to http, https, or mailto are dropped.
func Normalize(hits []Hit, providerID string) []Result {
	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		u := urlx.Normalize(h.URL)
		if !urlx.AllowedScheme(u) {
			continue
		}

		domain := h.MerchantDomain
		if domain == "" {
			domain = urlx.MerchantDomain(u)
		}

		origCurrency := currency.NormalizeCode(h.Currency)
		if origCurrency == "" {
			origCurrency = "USD"
		}
		price := parsePrice(h)

		r := Result{
			Title:            h.Title,
			Currency:         origCurrency,
			CurrencyOriginal: origCurrency,
			Merchant:         h.Merchant,
			MerchantDomain:   domain,
			URL:              u,
			CanonicalURL:     urlx.Canonicalize(u),
			ImageURL:         h.ImageURL,
			Rating:           h.Rating,
			Reviews:          h.Reviews,
			Shipping:         h.Shipping,
			Source:           providerID,
		}
		if price != nil {
			orig := *price
			r.PriceOriginal = &orig
			usd, converted := currency.ToUSD(orig, origCurrency)
			r.Price = &usd
			if converted {
				r.Currency = "USD"
			}
		}
		r.Provenance = buildProvenance(r, providerID, h.Similarity)
		results = append(results, r)
	}
	return results
}

// parsePrice resolves the raw hit's price to a single numeric value.
// Unparseable or non-positive prices yield nil — an unknown price is
// never zero.
func parsePrice(h Hit) *float64 {
	if h.Price != nil {
		if *h.Price > 0 {
			v := *h.Price
			return &v
		}
		return nil
	}
	text := strings.TrimSpace(h.PriceText)
	if text == "" {
		return nil
	}
	m := firstNumber.FindString(text)
	if m == "" {
		return nil
	}
	var v float64
	if _, err := fmt.Sscanf(strings.ReplaceAll(m, ",", ""), "%f", &v); err != nil || v <= 0 {
		return nil
	}
	return &v
}

// buildProvenance derives the matched-feature signals from a result's
// fields. The "Strong match" feature depends on the relevance score
// and is appended after scoring, not here. A result with no signals
// gets an empty list, not a nil one.
func buildProvenance(r Result, providerID string, similarity float64) Provenance {
	features := []string{}
	if r.Rating != nil && *r.Rating > ratingFeatureThreshold {
		features = append(features, fmt.Sprintf("Highly rated (%.1f★)", *r.Rating))
	}
	if r.Reviews != nil && *r.Reviews > reviewsFeatureThreshold {
		features = append(features, fmt.Sprintf("Popular (%d+ reviews)", *r.Reviews))
	}
	if r.Shipping != "" {
		features = append(features, r.Shipping)
	}

	p := Provenance{
		ProductInfo:     ProductInfo{Title: r.Title},
		MatchedFeatures: features,
		SourceProvider:  providerID,
	}
	if similarity > 0 {
		p.VectorSimilarity = similarity
	}
	return p
}
