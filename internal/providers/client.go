package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kayz/dealhound/internal/sourcing"
)

const userAgent = "Dealhound/1.0"

// maxErrBody caps how much of an upstream error body is carried in a
// StatusError. Bodies can echo request URLs, which embed API keys.
const maxErrBody = 256

// getJSON performs a GET with query parameters and decodes the JSON
// body into out. Non-2xx responses become *sourcing.StatusError so the
// aggregator can classify them by code.
func getJSON(ctx context.Context, client *http.Client, rawURL string, params url.Values, headers http.Header, out interface{}) error {
	u := rawURL
	if len(params) > 0 {
		u = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b := string(body)
		if len(b) > maxErrBody {
			b = b[:maxErrBody]
		}
		return &sourcing.StatusError{Code: resp.StatusCode, Body: b}
	}

	return json.Unmarshal(body, out)
}

// flexString accepts a JSON string or number. Shopping APIs are not
// consistent about which one a price field is.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) Float() (float64, bool) {
	v, err := strconv.ParseFloat(string(f), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func fptr(v float64) *float64 { return &v }

func iptr(v int) *int { return &v }
