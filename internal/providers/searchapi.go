package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kayz/dealhound/internal/config"
	"github.com/kayz/dealhound/internal/sourcing"
)

// SearchAPI queries Google Shopping through searchapi.io.
type SearchAPI struct {
	id      string
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewSearchAPI(pc config.ProviderConfig, _ config.SearchConfig) (sourcing.Provider, error) {
	baseURL := pc.BaseURL
	if baseURL == "" {
		baseURL = "https://www.searchapi.io/api/v1/search"
	}

	return &SearchAPI{
		id:      pc.Name,
		apiKey:  pc.APIKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (p *SearchAPI) ID() string {
	return p.id
}

// shoppingItem is the result shape shared by the Google Shopping
// proxies (searchapi.io and SerpAPI return near-identical JSON).
type shoppingItem struct {
	Title       string     `json:"title"`
	Price       flexString `json:"price"`
	Seller      string     `json:"seller"`
	Source      string     `json:"source"`
	Link        string     `json:"link"`
	ProductLink string     `json:"product_link"`
	OffersLink  string     `json:"offers_link"`
	Thumbnail   string     `json:"thumbnail"`
	Rating      *float64   `json:"rating"`
	Reviews     *int       `json:"reviews"`
	Delivery    string     `json:"delivery"`
}

func (p *SearchAPI) Search(ctx context.Context, q sourcing.Query) ([]sourcing.Hit, error) {
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
		merchant := item.Seller
		if merchant == "" {
			merchant = item.Source
		}
		u := item.ProductLink
		if u == "" {
			u = item.OffersLink
		}
		if u == "" {
			u = item.Link
		}

		hits = append(hits, sourcing.Hit{
			Title:     item.Title,
			PriceText: string(item.Price),
			Merchant:  merchant,
			URL:       u,
			ImageURL:  item.Thumbnail,
			Rating:    item.Rating,
			Reviews:   item.Reviews,
			Shipping:  item.Delivery,
		})
	}
	return hits, nil
}

func localeOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// shoppingTBS builds the Google Shopping price filter, in cents
// ("mr:1,price:1,ppr_min:5000,ppr_max:20000").
func shoppingTBS(q sourcing.Query) string {
	if q.MinPrice == nil && q.MaxPrice == nil {
		return ""
	}
	parts := []string{"mr:1", "price:1"}
	if q.MinPrice != nil {
		parts = append(parts, fmt.Sprintf("ppr_min:%d", int(*q.MinPrice*100)))
	}
	if q.MaxPrice != nil {
		parts = append(parts, fmt.Sprintf("ppr_max:%d", int(*q.MaxPrice*100)))
	}
	return strings.Join(parts, ",")
}
