package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kayz/dealhound/internal/config"
	"github.com/kayz/dealhound/internal/sourcing"
	"github.com/kayz/dealhound/internal/urlx"
)

// GoogleCSE queries Google Custom Search as a last-resort web
// fallback. It returns no prices, so a price hint is folded into the
// query text instead, and images come from the pagemap.
type GoogleCSE struct {
	id      string
	apiKey  string
	cx      string
	baseURL string
	client  *http.Client
}

func NewGoogleCSE(pc config.ProviderConfig, _ config.SearchConfig) (sourcing.Provider, error) {
	if pc.Options["cx"] == "" {
		return nil, fmt.Errorf("google_cse requires options.cx")
	}
	baseURL := pc.BaseURL
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/customsearch/v1"
	}

	return &GoogleCSE{
		id:      pc.Name,
		apiKey:  pc.APIKey,
		cx:      pc.Options["cx"],
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (p *GoogleCSE) ID() string {
	return p.id
}

type cseImage struct {
	Src string `json:"src"`
}

type cseItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Pagemap struct {
		CSEImage     []cseImage `json:"cse_image"`
		CSEThumbnail []cseImage `json:"cse_thumbnail"`
	} `json:"pagemap"`
}

func (p *GoogleCSE) Search(ctx context.Context, q sourcing.Query) ([]sourcing.Hit, error) {
	params := url.Values{}
	params.Set("key", p.apiKey)
	params.Set("cx", p.cx)
	params.Set("q", q.Text+" buy price"+priceHint(q))
	params.Set("num", "10")

	var data struct {
		Items []cseItem `json:"items"`
	}
	if err := getJSON(ctx, p.client, p.baseURL, params, nil, &data); err != nil {
		return nil, err
	}

	hits := make([]sourcing.Hit, 0, len(data.Items))
	for _, item := range data.Items {
		image := ""
		if len(item.Pagemap.CSEImage) > 0 {
			image = item.Pagemap.CSEImage[0].Src
		} else if len(item.Pagemap.CSEThumbnail) > 0 {
			image = item.Pagemap.CSEThumbnail[0].Src
		}

		merchant := urlx.MerchantDomain(urlx.Normalize(item.Link))
		if merchant == "unknown" {
			merchant = "Web"
		}

		hits = append(hits, sourcing.Hit{
			Title:    item.Title,
			Merchant: merchant,
			URL:      item.Link,
			ImageURL: image,
		})
	}
	return hits, nil
}

// priceHint phrases the price bounds as query words, since CSE has no
// structured price filter.
func priceHint(q sourcing.Query) string {
	switch {
	case q.MinPrice != nil && q.MaxPrice != nil:
		return fmt.Sprintf(" $%d-$%d", int(*q.MinPrice), int(*q.MaxPrice))
	case q.MinPrice != nil:
		return fmt.Sprintf(" over $%d", int(*q.MinPrice))
	case q.MaxPrice != nil:
		return fmt.Sprintf(" under $%d", int(*q.MaxPrice))
	}
	return ""
}
