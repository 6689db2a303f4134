package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kayz/dealhound/internal/config"
	"github.com/kayz/dealhound/internal/sourcing"
)

const rainforestMaxResults = 20

// Rainforest searches Amazon through the Rainforest API. Price
// constraints are passed upstream best-effort and enforced locally as
// well; zero-priced listings are dropped because they bypass the
// minimum-price bound and render as $0.00 offers.
type Rainforest struct {
	id           string
	apiKey       string
	baseURL      string
	amazonDomain string
	client       *http.Client
}

func NewRainforest(pc config.ProviderConfig, _ config.SearchConfig) (sourcing.Provider, error) {
	baseURL := pc.BaseURL
	if baseURL == "" {
		baseURL = "https://api.rainforestapi.com/request"
	}
	amazonDomain := pc.Options["amazon_domain"]
	if amazonDomain == "" {
		amazonDomain = "amazon.com"
	}

	return &Rainforest{
		id:           pc.Name,
		apiKey:       pc.APIKey,
		baseURL:      baseURL,
		amazonDomain: amazonDomain,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (p *Rainforest) ID() string {
	return p.id
}

type rainforestItem struct {
	Title        string                     `json:"title"`
	Link         string                     `json:"link"`
	Image        string                     `json:"image"`
	Rating       *float64                   `json:"rating"`
	RatingsTotal *int                       `json:"ratings_total"`
	Price        *rainforestPrice           `json:"price"`
	Prices       map[string]rainforestPrice `json:"prices"`
	Delivery     struct {
		Tagline string `json:"tagline"`
	} `json:"delivery"`
}

type rainforestPrice struct {
	Value *float64   `json:"value"`
	Raw   flexString `json:"raw"`
}

// amount prefers the numeric value, falling back to the raw text.
func (rp rainforestPrice) amount() (float64, string) {
	if rp.Value != nil {
		return *rp.Value, ""
	}
	return 0, string(rp.Raw)
}

func (p *Rainforest) Search(ctx context.Context, q sourcing.Query) ([]sourcing.Hit, error) {
	items, err := p.request(ctx, q, q.Text)
	if err != nil {
		return nil, err
	}

	// An over-specific query can return nothing at all; retry once
	// with the first few words before giving up.
	if len(items) == 0 {
		words := strings.Fields(q.Text)
		if len(words) > 4 {
			simplified := strings.Join(words[:4], " ")
			items, err = p.request(ctx, q, simplified)
			if err != nil {
				return nil, err
			}
		}
	}

	if len(items) > rainforestMaxResults {
		items = items[:rainforestMaxResults]
	}

	hits := make([]sourcing.Hit, 0, len(items))
	for _, item := range items {
		value, raw := p.itemPrice(item)
		if raw != "" {
			value = parseRawPrice(raw)
		}
		if value <= 0 {
			continue
		}
		if q.MinPrice != nil && value < *q.MinPrice {
			continue
		}
		if q.MaxPrice != nil && value > *q.MaxPrice {
			continue
		}

		hits = append(hits, sourcing.Hit{
			Title:    item.Title,
			Price:    fptr(value),
			Currency: "USD",
			Merchant: "Amazon",
			URL:      item.Link,
			ImageURL: item.Image,
			Rating:   item.Rating,
			Reviews:  item.RatingsTotal,
			Shipping: item.Delivery.Tagline,
		})
	}
	return hits, nil
}

func (p *Rainforest) request(ctx context.Context, q sourcing.Query, term string) ([]rainforestItem, error) {
	params := url.Values{}
	params.Set("api_key", p.apiKey)
	params.Set("type", "search")
	params.Set("amazon_domain", p.amazonDomain)
	params.Set("search_term", term)
	if q.MinPrice != nil {
		params.Set("min_price", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		params.Set("max_price", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}

	var data struct {
		SearchResults []rainforestItem `json:"search_results"`
	}
	if err := getJSON(ctx, p.client, p.baseURL, params, nil, &data); err != nil {
		return nil, err
	}
	return data.SearchResults, nil
}

// itemPrice resolves the price object, falling back through the
// alternate keys some response shapes use.
func (p *Rainforest) itemPrice(item rainforestItem) (float64, string) {
	if item.Price != nil {
		return item.Price.amount()
	}
	for _, key := range []string{"current_price", "buybox_price", "price", "current", "main_price", "list_price"} {
		if rp, ok := item.Prices[key]; ok {
			return rp.amount()
		}
	}
	return 0, ""
}

// parseRawPrice extracts the first numeric component from a textual
// price ("$1,299.99", "USD 500 - 800").
func parseRawPrice(raw string) float64 {
	start := -1
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			start = i
			break
		}
	}
	if start < 0 {
		return 0
	}
	end := start
	for end < len(raw) {
		c := raw[end]
		if (c >= '0' && c <= '9') || c == ',' || c == '.' {
			end++
			continue
		}
		break
	}
	num := strings.ReplaceAll(raw[start:end], ",", "")
	v, err := strconv.ParseFloat(strings.TrimSuffix(num, "."), 64)
	if err != nil {
		return 0
	}
	return v
}
