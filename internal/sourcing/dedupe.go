package sourcing

import "strings"

// dedupeKey is the identity under which two offers count as the same
// listing: the canonical URL, lowercased, trailing slash stripped.
func dedupeKey(r Result) string {
	key := r.CanonicalURL
	if key == "" {
		key = r.URL
	}
	return strings.TrimRight(strings.ToLower(key), "/")
}

// Dedupe collapses results that resolve to the same canonical URL.
// First occurrence wins; later duplicates are discarded entirely,
// provenance included. Idempotent. Input order therefore decides
// which provider owns a duplicate, which is why the aggregator merges
// in registration order rather than completion order.
func Dedupe(results []Result) []Result {
	seen := make(map[string]struct{}, len(results))
	out := make([]Result, 0, len(results))
	for _, r := range results {
		key := dedupeKey(r)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
