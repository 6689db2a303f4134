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

const ebayScope = "https://api.ebay.com/oauth/api_scope"

// Ebay queries the official eBay Browse API using OAuth2
// client-credentials.
type Ebay struct {
	id            string
	marketplaceID string
	baseURL       string
	tokens        *tokenSource
	client        *http.Client
}

func NewEbay(pc config.ProviderConfig, _ config.SearchConfig) (sourcing.Provider, error) {
	baseURL := pc.BaseURL
	if baseURL == "" {
		baseURL = "https://api.ebay.com/buy/browse/v1/item_summary/search"
	}
	tokenURL := pc.Options["token_url"]
	if tokenURL == "" {
		tokenURL = "https://api.ebay.com/identity/v1/oauth2/token"
	}
	marketplaceID := pc.Options["marketplace_id"]
	if marketplaceID == "" {
		marketplaceID = "EBAY-US"
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	return &Ebay{
		id:            pc.Name,
		marketplaceID: marketplaceID,
		baseURL:       baseURL,
		tokens:        newTokenSource(tokenURL, pc.ClientID, pc.ClientSecret, ebayScope, client),
		client:        client,
	}, nil
}

func (p *Ebay) ID() string {
	return p.id
}

type ebayItem struct {
	Title string `json:"title"`
	Price struct {
		Value    flexString `json:"value"`
		Currency string     `json:"currency"`
	} `json:"price"`
	ItemWebURL string `json:"itemWebUrl"`
	Seller     struct {
		Username string `json:"username"`
	} `json:"seller"`
	Image struct {
		ImageURL string `json:"imageUrl"`
	} `json:"image"`
	ShippingOptions []struct {
		ShippingCostType string `json:"shippingCostType"`
		ShippingCost     struct {
			Value    flexString `json:"value"`
			Currency string     `json:"currency"`
		} `json:"shippingCost"`
	} `json:"shippingOptions"`
}

func (p *Ebay) Search(ctx context.Context, q sourcing.Query) ([]sourcing.Hit, error) {
	token, err := p.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("limit", "20")

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)
	headers.Set("X-EBAY-C-MARKETPLACE-ID", p.marketplaceID)

	var data struct {
		ItemSummaries []ebayItem `json:"itemSummaries"`
	}
	if err := getJSON(ctx, p.client, p.baseURL, params, headers, &data); err != nil {
		return nil, err
	}

	hits := make([]sourcing.Hit, 0, len(data.ItemSummaries))
	for _, item := range data.ItemSummaries {
		currency := item.Price.Currency
		if currency == "" {
			currency = "USD"
		}
		merchant := item.Seller.Username
		if merchant == "" {
			merchant = "eBay"
		}

		hit := sourcing.Hit{
			Title:    item.Title,
			Currency: currency,
			Merchant: merchant,
			URL:      item.ItemWebURL,
			ImageURL: item.Image.ImageURL,
			Shipping: ebayShipping(item, currency),
		}
		if v, ok := item.Price.Value.Float(); ok && v > 0 {
			hit.Price = fptr(v)
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func ebayShipping(item ebayItem, currency string) string {
	if len(item.ShippingOptions) == 0 {
		return ""
	}
	first := item.ShippingOptions[0]
	if strings.EqualFold(first.ShippingCostType, "free") {
		return "Free shipping"
	}
	if v, ok := first.ShippingCost.Value.Float(); ok {
		c := first.ShippingCost.Currency
		if c == "" {
			c = currency
		}
		return fmt.Sprintf("Shipping %s %.2f", c, v)
	}
	return ""
}
