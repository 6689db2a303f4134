package sourcing

import (
	"net/url"
	"strconv"
)

// ClickoutURL builds the default redirect-tracking path for a result:
// deterministic in the result's index in the final list, its source
// provider, and its canonical URL. Downstream layers that know the
// owning record may rebuild it with their own context.
func ClickoutURL(index int, r Result) string {
	target := r.CanonicalURL
	if target == "" {
		target = r.URL
	}
	v := url.Values{}
	v.Set("url", target)
	v.Set("idx", strconv.Itoa(index))
	v.Set("source", r.Source)
	return "/api/out?" + v.Encode()
}
