package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/kayz/dealhound/internal/config"
	"github.com/kayz/dealhound/internal/sourcing"
)

// Keywords that suggest the user is shopping for event tickets.
var eventKeywords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"ticket", "tickets", "concert", "concerts", "show", "shows",
		"game", "games", "match", "event", "events", "tour",
		"festival", "stadium", "arena", "theater", "theatre",
		"live", "performance", "nba", "nfl", "mlb", "nhl",
		"mls", "ncaa", "ufc", "wwe", "broadway",
	} {
		eventKeywords[w] = struct{}{}
	}
}

// Ticketmaster searches the Discovery API for event tickets. Queries
// without an event keyword skip the upstream call entirely.
type Ticketmaster struct {
	id      string
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewTicketmaster(pc config.ProviderConfig, _ config.SearchConfig) (sourcing.Provider, error) {
	baseURL := pc.BaseURL
	if baseURL == "" {
		baseURL = "https://app.ticketmaster.com/discovery/v2/events.json"
	}

	return &Ticketmaster{
		id:      pc.Name,
		apiKey:  pc.APIKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (p *Ticketmaster) ID() string {
	return p.id
}

func isEventQuery(text string) bool {
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if _, ok := eventKeywords[w]; ok {
			return true
		}
	}
	return false
}

type tmEvent struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	PriceRanges []struct {
		Min      float64 `json:"min"`
		Currency string  `json:"currency"`
	} `json:"priceRanges"`
	Dates struct {
		Start struct {
			LocalDate string `json:"localDate"`
			LocalTime string `json:"localTime"`
		} `json:"start"`
	} `json:"dates"`
	Images []struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"images"`
	Embedded struct {
		Venues []struct {
			Name string `json:"name"`
		} `json:"venues"`
	} `json:"_embedded"`
}

func (p *Ticketmaster) Search(ctx context.Context, q sourcing.Query) ([]sourcing.Hit, error) {
	if !isEventQuery(q.Text) {
		return nil, nil
	}

	country := q.Country
	if country == "" {
		country = "us"
	}

	params := url.Values{}
	params.Set("apikey", p.apiKey)
	params.Set("keyword", q.Text)
	params.Set("size", "20")
	params.Set("countryCode", strings.ToUpper(country))

	var data struct {
		Embedded struct {
			Events []tmEvent `json:"events"`
		} `json:"_embedded"`
	}
	if err := getJSON(ctx, p.client, p.baseURL, params, nil, &data); err != nil {
		return nil, err
	}

	hits := make([]sourcing.Hit, 0, len(data.Embedded.Events))
	for _, event := range data.Embedded.Events {
		if event.URL == "" {
			continue
		}

		venue := "Venue TBA"
		if len(event.Embedded.Venues) > 0 && event.Embedded.Venues[0].Name != "" {
			venue = event.Embedded.Venues[0].Name
		}

		date := strings.TrimSpace(event.Dates.Start.LocalDate + " " + event.Dates.Start.LocalTime)

		title := event.Name + " - " + venue
		shipping := ""
		if date != "" {
			title += fmt.Sprintf(" (%s)", date)
			shipping = "Event: " + date
		}

		hit := sourcing.Hit{
			Title:          title,
			Currency:       "USD",
			Merchant:       "Ticketmaster",
			MerchantDomain: "ticketmaster.com",
			URL:            event.URL,
			ImageURL:       largestImage(event),
			Shipping:       shipping,
		}
		if len(event.PriceRanges) > 0 {
			pr := event.PriceRanges[0]
			if pr.Min > 0 {
				hit.Price = fptr(pr.Min)
			}
			if pr.Currency != "" {
				hit.Currency = pr.Currency
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func largestImage(event tmEvent) string {
	if len(event.Images) == 0 {
		return ""
	}
	images := append([]struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	}(nil), event.Images...)
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].Width*images[i].Height > images[j].Width*images[j].Height
	})
	return images[0].URL
}
