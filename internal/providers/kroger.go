package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kayz/dealhound/internal/config"
	"github.com/kayz/dealhound/internal/sourcing"
)

// Keywords that signal a grocery or household query. Kroger only gets
// dispatched real searches for these; anything else returns no hits
// without an upstream call.
var groceryKeywords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"milk", "eggs", "bread", "butter", "cheese", "chicken", "beef", "pork",
		"rice", "pasta", "cereal", "yogurt", "juice", "water", "soda", "coffee",
		"tea", "sugar", "flour", "oil", "sauce", "ketchup", "mustard", "mayo",
		"salt", "pepper", "spice", "snack", "chips", "crackers", "cookies",
		"fruit", "apple", "banana", "orange", "grape", "berry", "strawberry",
		"vegetable", "tomato", "potato", "onion", "lettuce", "carrot", "broccoli",
		"frozen", "pizza", "soup", "canned", "beans", "corn",
		"detergent", "soap", "shampoo", "toothpaste",
		"diaper", "wipes", "foil", "wrap", "bag", "napkin",
		"grocery", "food", "drink", "beverage", "organic",
	} {
		groceryKeywords[w] = struct{}{}
	}
}

// Kroger searches the Kroger Product API for grocery items with
// store-local pricing. Location ids are resolved from ZIP codes and
// cached per ZIP.
type Kroger struct {
	id           string
	productsURL  string
	locationsURL string
	locationID   string
	zipCode      string
	tokens       *tokenSource
	client       *http.Client

	mu            sync.Mutex
	zipToLocation map[string]string
}

func NewKroger(pc config.ProviderConfig, _ config.SearchConfig) (sourcing.Provider, error) {
	base := pc.BaseURL
	if base == "" {
		base = "https://api.kroger.com/v1"
	}
	base = strings.TrimRight(base, "/")

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	return &Kroger{
		id:            pc.Name,
		productsURL:   base + "/products",
		locationsURL:  base + "/locations",
		locationID:    pc.Options["location_id"],
		zipCode:       pc.Options["zip_code"],
		tokens:        newTokenSource(base+"/connect/oauth2/token", pc.ClientID, pc.ClientSecret, "product.compact", client),
		client:        client,
		zipToLocation: make(map[string]string),
	}, nil
}

func (p *Kroger) ID() string {
	return p.id
}

func isGroceryQuery(text string) bool {
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if _, ok := groceryKeywords[w]; ok {
			return true
		}
	}
	return false
}

type krogerProduct struct {
	ProductID   string `json:"productId"`
	Description string `json:"description"`
	Brand       string `json:"brand"`
	Items       []struct {
		Size  string `json:"size"`
		Price struct {
			Regular float64 `json:"regular"`
			Promo   float64 `json:"promo"`
		} `json:"price"`
	} `json:"items"`
	Images []struct {
		Sizes []struct {
			Size string `json:"size"`
			URL  string `json:"url"`
		} `json:"sizes"`
	} `json:"images"`
}

func (p *Kroger) Search(ctx context.Context, q sourcing.Query) ([]sourcing.Hit, error) {
	if !isGroceryQuery(q.Text) {
		return nil, nil
	}

	token, err := p.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	locationID := p.resolveLocation(ctx, token)

	params := url.Values{}
	params.Set("filter.term", q.Text)
	params.Set("filter.limit", "20")
	if locationID != "" {
		params.Set("filter.locationId", locationID)
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)

	var data struct {
		Data []krogerProduct `json:"data"`
	}
	if err := getJSON(ctx, p.client, p.productsURL, params, headers, &data); err != nil {
		return nil, err
	}

	hits := make([]sourcing.Hit, 0, len(data.Data))
	for _, item := range data.Data {
		title := item.Description
		if item.Brand != "" {
			title = strings.TrimSpace(item.Brand + " " + item.Description)
		}

		var regular, promo float64
		var size string
		if len(item.Items) > 0 {
			regular = item.Items[0].Price.Regular
			promo = item.Items[0].Price.Promo
			size = item.Items[0].Size
		}
		price := regular
		if promo > 0 {
			price = promo
		}
		if price <= 0 {
			continue
		}

		var parts []string
		if size != "" {
			parts = append(parts, size)
		}
		if promo > 0 && promo < regular {
			parts = append(parts, fmt.Sprintf("Save $%.2f", regular-promo))
		}

		hits = append(hits, sourcing.Hit{
			Title:          title,
			Price:          fptr(price),
			Currency:       "USD",
			Merchant:       "Kroger",
			MerchantDomain: "kroger.com",
			URL:            "https://www.kroger.com/p/" + item.ProductID,
			ImageURL:       krogerImage(item),
			Shipping:       strings.Join(parts, " · "),
		})
	}
	return hits, nil
}

// resolveLocation returns the configured location id, or looks one up
// by ZIP code. Lookup failures are non-fatal: search proceeds with
// national pricing.
func (p *Kroger) resolveLocation(ctx context.Context, token string) string {
	if p.locationID != "" {
		return p.locationID
	}
	if p.zipCode == "" {
		return ""
	}

	p.mu.Lock()
	if id, ok := p.zipToLocation[p.zipCode]; ok {
		p.mu.Unlock()
		return id
	}
	p.mu.Unlock()

	params := url.Values{}
	params.Set("filter.zipCode.near", p.zipCode)
	params.Set("filter.limit", "1")

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)

	var data struct {
		Data []struct {
			LocationID string `json:"locationId"`
		} `json:"data"`
	}
	if err := getJSON(ctx, p.client, p.locationsURL, params, headers, &data); err != nil {
		return ""
	}
	if len(data.Data) == 0 || data.Data[0].LocationID == "" {
		return ""
	}

	p.mu.Lock()
	p.zipToLocation[p.zipCode] = data.Data[0].LocationID
	p.mu.Unlock()
	return data.Data[0].LocationID
}

// krogerImage picks the largest available product image.
func krogerImage(item krogerProduct) string {
	for _, group := range item.Images {
		for _, preferred := range []string{"large", "medium", "small", "thumbnail"} {
			for _, s := range group.Sizes {
				if s.Size == preferred && s.URL != "" {
					return s.URL
				}
			}
		}
	}
	return ""
}
