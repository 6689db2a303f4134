package providers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/kayz/dealhound/internal/config"
	"github.com/kayz/dealhound/internal/sourcing"
)

// SerpAPI is the alternative Google Shopping proxy at serpapi.com.
// Same engine as SearchAPI but the merchant lives in "source" and the
// listing URL in "link".
type SerpAPI struct {
	id      string
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewSerpAPI(pc config.ProviderConfig, _ config.SearchConfig) (sourcing.Provider, error) {
	baseURL := pc.BaseURL
	if baseURL == "" {
		baseURL = "https://serpapi.com/search"
	}

	return &SerpAPI{
		id:      pc.Name,
		apiKey:  pc.APIKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (p *SerpAPI) ID() string {
	return p.id
}

func (p *SerpAPI) Search(ctx context.Context, q sourcing.Query) ([]sourcing.Hit, error) {
	params := url.Values{}
	params.Set("engine", "google_shopping")
	params.Set("q", q.Text)
	params.Set("api_key", p.apiKey)
	params.Set("gl", localeOr(q.Country, "us"))
	params.Set("hl", localeOr(q.Language, "en"))
	if tbs := shoppingTBS(q); tbs != "" {
		params.Set("tbs", tbs)
	}

	var data struct {
		ShoppingResults []shoppingItem `json:"shopping_results"`
	}
	if err := getJSON(ctx, p.client, p.baseURL, params, nil, &data); err != nil {
		return nil, err
	}

	hits := make([]sourcing.Hit, 0, len(data.ShoppingResults))
	for _, item := range data.ShoppingResults {
		hits = append(hits, sourcing.Hit{
			Title:     item.Title,
			PriceText: string(item.Price),
			Merchant:  item.Source,
			URL:       item.Link,
			ImageURL:  item.Thumbnail,
			Rating:    item.Rating,
			Reviews:   item.Reviews,
			Shipping:  item.Delivery,
		})
	}
	return hits, nil
}
