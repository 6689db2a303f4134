package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kayz/dealhound/internal/config"
	"github.com/kayz/dealhound/internal/sourcing"
)

const shoppingPayload = `{
	"shopping_results": [
		{
			"title": "Red Running Shoes",
			"price": "$59.99",
			"seller": "ShoeMart",
			"source": "Google Shopping",
			"product_link": "https://shoemart.example/red-shoes",
			"thumbnail": "https://img.example/shoes.jpg",
			"rating": 4.4,
			"reviews": 812,
			"delivery": "Free delivery"
		},
		{
			"title": "Blue Running Shoes",
			"price": 45,
			"source": "SneakerHub",
			"link": "https://sneakerhub.example/blue"
		}
	]
}`

func TestSearchAPIParsesShoppingResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("engine") != "google_shopping" {
			t.Errorf("engine = %q", q.Get("engine"))
		}
		if q.Get("api_key") != "key-1" {
			t.Errorf("api_key = %q", q.Get("api_key"))
		}
		if q.Get("gl") != "de" || q.Get("hl") != "de" {
			t.Errorf("locale = %q/%q", q.Get("gl"), q.Get("hl"))
		}
		fmt.Fprint(w, shoppingPayload)
	}))
	defer srv.Close()

	p, err := NewSearchAPI(config.ProviderConfig{
		Name: "searchapi", APIKey: "key-1", BaseURL: srv.URL,
	}, config.SearchConfig{})
	if err != nil {
		t.Fatal(err)
	}

	hits, err := p.Search(context.Background(), sourcing.Query{Text: "running shoes", Country: "de", Language: "de"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d", len(hits))
	}

	first := hits[0]
	if first.PriceText != "$59.99" {
		t.Errorf("price text = %q", first.PriceText)
	}
	if first.Merchant != "ShoeMart" {
		t.Errorf("merchant = %q", first.Merchant)
	}
	if first.URL != "https://shoemart.example/red-shoes" {
		t.Errorf("url = %q", first.URL)
	}
	if first.Rating == nil || *first.Rating != 4.4 {
		t.Errorf("rating = %v", first.Rating)
	}
	if first.Reviews == nil || *first.Reviews != 812 {
		t.Errorf("reviews = %v", first.Reviews)
	}
	if first.Shipping != "Free delivery" {
		t.Errorf("shipping = %q", first.Shipping)
	}

	// Numeric price arrives as text too; merchant and URL fall back
	// to source and link.
	second := hits[1]
	if second.PriceText != "45" {
		t.Errorf("price text = %q", second.PriceText)
	}
	if second.Merchant != "SneakerHub" {
		t.Errorf("merchant = %q", second.Merchant)
	}
	if second.URL != "https://sneakerhub.example/blue" {
		t.Errorf("url = %q", second.URL)
	}
}

func TestSearchAPIQuotaError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	p, _ := NewSearchAPI(config.ProviderConfig{Name: "searchapi", APIKey: "k", BaseURL: srv.URL}, config.SearchConfig{})

	_, err := p.Search(context.Background(), sourcing.Query{Text: "shoes"})
	var se *sourcing.StatusError
	if !errors.As(err, &se) || se.Code != 402 {
		t.Fatalf("err = %v, want StatusError 402", err)
	}
	if status, _ := sourcing.Classify(err); status != sourcing.StatusExhausted {
		t.Fatalf("classified as %s", status)
	}
}

func TestSerpAPIParsesShoppingResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, shoppingPayload)
	}))
	defer srv.Close()

	p, err := NewSerpAPI(config.ProviderConfig{Name: "serpapi", APIKey: "k", BaseURL: srv.URL}, config.SearchConfig{})
	if err != nil {
		t.Fatal(err)
	}

	hits, err := p.Search(context.Background(), sourcing.Query{Text: "running shoes"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d", len(hits))
	}
	// SerpAPI reads merchant from "source" and URL from "link".
	if hits[0].Merchant != "Google Shopping" {
		t.Errorf("merchant = %q", hits[0].Merchant)
	}
	if hits[0].URL != "" {
		t.Errorf("url = %q, want empty (no link field)", hits[0].URL)
	}
	if hits[1].URL != "https://sneakerhub.example/blue" {
		t.Errorf("url = %q", hits[1].URL)
	}
}
