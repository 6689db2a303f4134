// Package urlx contains the URL normalization helpers shared by the
// sourcing pipeline: absolute-form repair for provider links, merchant
// domain extraction, and canonicalization for dedup keys.
package urlx

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// trackingKeys are query parameters dropped during canonicalization.
// They carry attribution state, not identity.
var trackingKeys = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"gclid":        {},
	"fbclid":       {},
	"msclkid":      {},
	"yclid":        {},
	"mc_eid":       {},
	"mc_cid":       {},
	"igshid":       {},
	"spm":          {},
	"ref":          {},
	"affid":        {},
	"affidname":    {},
}

var trackingPrefixes = []string{"utm", "ga_", "icid", "mkt_"}

var multiSlash = regexp.MustCompile(`/{2,}`)

// Normalize repairs the partial URLs shopping APIs hand back
// (protocol-relative, bare www., site-relative Google links) into an
// absolute form. An empty input stays empty.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lowered := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lowered, "http://"), strings.HasPrefix(lowered, "https://"), strings.HasPrefix(lowered, "mailto:"):
		return raw
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "www."):
		return "https://" + raw
	case strings.HasPrefix(raw, "/"):
		// Site-relative links from Google SERP payloads.
		return "https://www.google.com" + raw
	case !strings.Contains(raw, "://"):
		return "https://" + raw
	}
	return raw
}

// MerchantDomain extracts the merchant domain from a listing URL:
// host only, lowercased, leading www. stripped. Returns "unknown"
// when the URL has no parseable host.
func MerchantDomain(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "unknown"
	}
	host := strings.ToLower(u.Host)
	if host == "" {
		return "unknown"
	}
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "unknown"
	}
	return host
}

// AllowedScheme reports whether the (normalized) URL uses one of the
// schemes results are allowed to carry: http, https, or mailto.
func AllowedScheme(raw string) bool {
	lowered := strings.ToLower(Normalize(raw))
	return strings.HasPrefix(lowered, "http://") ||
		strings.HasPrefix(lowered, "https://") ||
		strings.HasPrefix(lowered, "mailto:")
}

// Canonicalize produces the stable form used for offer deduplication:
// https scheme, lowercased www-stripped host, default ports and
// fragments removed, repeated slashes collapsed, trailing slash
// trimmed, tracking params dropped, remaining query params
// deduplicated and sorted. mailto: URLs are lowercased and returned
// as-is. Unparseable input falls back to the normalized form.
func Canonicalize(raw string) string {
	abs := Normalize(raw)
	if abs == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(abs), "mailto:") {
		return strings.ToLower(abs)
	}

	u, err := url.Parse(abs)
	if err != nil || u.Host == "" {
		return abs
	}

	u.Scheme = "https"
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	if h, port, ok := strings.Cut(host, ":"); ok && (port == "443" || port == "80") {
		host = h
	}
	u.Host = host

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	path = multiSlash.ReplaceAllString(path, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if path != "/" {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	u.RawPath = ""
	u.Path = path
	u.Fragment = ""

	u.RawQuery = cleanQuery(u.Query())
	return u.String()
}

func cleanQuery(values url.Values) string {
	type pair struct{ k, v string }
	seen := make(map[pair]struct{})
	var kept []pair

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		lk := strings.ToLower(k)
		if _, drop := trackingKeys[lk]; drop {
			continue
		}
		if hasTrackingPrefix(lk) {
			continue
		}
		for _, v := range values[k] {
			if v == "" {
				continue
			}
			sig := pair{lk, v}
			if _, dup := seen[sig]; dup {
				continue
			}
			seen[sig] = struct{}{}
			kept = append(kept, pair{k, v})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return strings.ToLower(kept[i].k) < strings.ToLower(kept[j].k)
	})

	q := url.Values{}
	for _, p := range kept {
		q.Add(p.k, p.v)
	}
	return q.Encode()
}

func hasTrackingPrefix(key string) bool {
	for _, p := range trackingPrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
