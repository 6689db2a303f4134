package providers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kayz/dealhound/internal/sourcing"
)

// tokenSource caches an OAuth2 client-credentials access token and
// refreshes it shortly before expiry. Concurrent refreshes collapse
// into a single upstream request.
type tokenSource struct {
	tokenURL     string
	clientID     string
	clientSecret string
	scope        string
	client       *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	group singleflight.Group
}

// refreshMargin is how early a cached token is considered stale.
const refreshMargin = 60 * time.Second

func newTokenSource(tokenURL, clientID, clientSecret, scope string, client *http.Client) *tokenSource {
	return &tokenSource{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		scope:        scope,
		client:       client,
	}
}

func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	if ts.token != "" && time.Now().Before(ts.expiresAt.Add(-refreshMargin)) {
		tok := ts.token
		ts.mu.Unlock()
		return tok, nil
	}
	ts.mu.Unlock()

	v, err, _ := ts.group.Do("token", func() (interface{}, error) {
		return ts.fetch(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (ts *tokenSource) fetch(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	if ts.scope != "" {
		form.Set("scope", ts.scope)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", ts.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(ts.clientID + ":" + ts.clientSecret))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("User-Agent", userAgent)

	resp, err := ts.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b := string(body)
		if len(b) > maxErrBody {
			b = b[:maxErrBody]
		}
		return "", &sourcing.StatusError{Code: resp.StatusCode, Body: b}
	}

	var payload struct {
		AccessToken string      `json:"access_token"`
		ExpiresIn   json.Number `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	expiresIn := 7200.0
	if v, err := payload.ExpiresIn.Float64(); err == nil && v > 0 {
		expiresIn = v
	}

	ts.mu.Lock()
	ts.token = payload.AccessToken
	ts.expiresAt = time.Now().Add(time.Duration(expiresIn * float64(time.Second)))
	ts.mu.Unlock()

	return payload.AccessToken, nil
}
