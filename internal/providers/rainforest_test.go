package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/kayz/dealhound/internal/config"
	"github.com/kayz/dealhound/internal/sourcing"
)

func TestParseRawPrice(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"$1,299.99", 1299.99},
		{"1,299", 1299},
		{"USD 1299", 1299},
		{"$500 - $800", 500},
		{"free", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := parseRawPrice(tc.raw); got != tc.want {
			t.Errorf("parseRawPrice(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestRainforestDropsZeroPricedAndEnforcesBounds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("type") != "search" || q.Get("amazon_domain") != "amazon.com" {
			t.Errorf("params = %v", q)
		}
		if q.Get("min_price") != "50" || q.Get("max_price") != "200" {
			t.Errorf("price params = %q/%q", q.Get("min_price"), q.Get("max_price"))
		}
		fmt.Fprint(w, `{
			"search_results": [
				{"title": "In Range", "link": "https://amazon.com/dp/1", "price": {"value": 99.99}},
				{"title": "No Price", "link": "https://amazon.com/dp/2"},
				{"title": "Too Cheap", "link": "https://amazon.com/dp/3", "price": {"value": 10}},
				{"title": "Too Dear", "link": "https://amazon.com/dp/4", "price": {"raw": "$999.00"}},
				{"title": "Raw In Range", "link": "https://amazon.com/dp/5", "price": {"raw": "$149.50"}},
				{"title": "Alt Key", "link": "https://amazon.com/dp/6", "prices": {"buybox_price": {"value": 75}}}
			]
		}`)
	}))
	defer srv.Close()

	p, err := NewRainforest(config.ProviderConfig{Name: "amazon", APIKey: "k", BaseURL: srv.URL}, config.SearchConfig{})
	if err != nil {
		t.Fatal(err)
	}

	min, max := 50.0, 200.0
	hits, err := p.Search(context.Background(), sourcing.Query{Text: "widget", MinPrice: &min, MaxPrice: &max})
	if err != nil {
		t.Fatal(err)
	}

	if len(hits) != 3 {
		t.Fatalf("hits = %d, want 3", len(hits))
	}
	for i, want := range []struct {
		title string
		price float64
	}{
		{"In Range", 99.99},
		{"Raw In Range", 149.50},
		{"Alt Key", 75},
	} {
		if hits[i].Title != want.title || hits[i].Price == nil || *hits[i].Price != want.price {
			t.Errorf("hit %d = %q %v", i, hits[i].Title, hits[i].Price)
		}
	}
	if hits[0].Merchant != "Amazon" {
		t.Errorf("merchant = %q", hits[0].Merchant)
	}
}

func TestRainforestRetriesWithSimplifiedQuery(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		term := r.URL.Query().Get("search_term")
		if n == 1 {
			if term != "noise cancelling headphones with long battery life" {
				t.Errorf("first term = %q", term)
			}
			fmt.Fprint(w, `{"search_results": []}`)
			return
		}
		if term != "noise cancelling headphones with" {
			t.Errorf("retry term = %q", term)
		}
		fmt.Fprint(w, `{"search_results": [{"title": "Headphones", "link": "https://amazon.com/dp/9", "price": {"value": 59}}]}`)
	}))
	defer srv.Close()

	p, _ := NewRainforest(config.ProviderConfig{Name: "amazon", APIKey: "k", BaseURL: srv.URL}, config.SearchConfig{})

	hits, err := p.Search(context.Background(), sourcing.Query{Text: "noise cancelling headphones with long battery life"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d", len(hits))
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("calls = %d, want 2", n)
	}
}
