package intent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kayz/dealhound/internal/config"
)

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		body := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Fatal(err)
		}
	}))
}

func TestExtract(t *testing.T) {
	srv := completionServer(t, `{"product_name":"Private jet charter","keywords":["one way"],"min_price":null,"max_price":15000}`)
	defer srv.Close()

	e := NewExtractor(config.IntentConfig{APIKey: "k", BaseURL: srv.URL, Model: "test-model"})

	got, err := e.Extract(context.Background(), "private jet charter san diego to aspen under 15k")
	if err != nil {
		t.Fatal(err)
	}
	if got.ProductName != "Private jet charter" {
		t.Errorf("product name = %q", got.ProductName)
	}
	if len(got.Keywords) != 1 || got.Keywords[0] != "one way" {
		t.Errorf("keywords = %v", got.Keywords)
	}
	if got.MinPrice != nil {
		t.Errorf("min price = %v", got.MinPrice)
	}
	if got.MaxPrice == nil || *got.MaxPrice != 15000 {
		t.Errorf("max price = %v", got.MaxPrice)
	}
}

func TestExtractStripsCodeFence(t *testing.T) {
	srv := completionServer(t, "```json\n{\"product_name\":\"Espresso machine\"}\n```")
	defer srv.Close()

	e := NewExtractor(config.IntentConfig{APIKey: "k", BaseURL: srv.URL, Model: "test-model"})

	got, err := e.Extract(context.Background(), "espresso machine")
	if err != nil {
		t.Fatal(err)
	}
	if got.ProductName != "Espresso machine" {
		t.Errorf("product name = %q", got.ProductName)
	}
}

func TestExtractSwapsInvertedBounds(t *testing.T) {
	srv := completionServer(t, `{"product_name":"Watch","min_price":500,"max_price":100}`)
	defer srv.Close()

	e := NewExtractor(config.IntentConfig{APIKey: "k", BaseURL: srv.URL, Model: "test-model"})

	got, err := e.Extract(context.Background(), "watch between 500 and 100")
	if err != nil {
		t.Fatal(err)
	}
	if *got.MinPrice != 100 || *got.MaxPrice != 500 {
		t.Errorf("bounds = %v..%v", *got.MinPrice, *got.MaxPrice)
	}
}

func TestExtractRejectsMissingProductName(t *testing.T) {
	srv := completionServer(t, `{"keywords":["stuff"]}`)
	defer srv.Close()

	e := NewExtractor(config.IntentConfig{APIKey: "k", BaseURL: srv.URL, Model: "test-model"})

	if _, err := e.Extract(context.Background(), "stuff"); err == nil {
		t.Fatal("expected error")
	}
}

func TestStripFence(t *testing.T) {
	cases := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripFence(tc.in); got != tc.want {
			t.Errorf("stripFence(%q) = %q", tc.in, got)
		}
	}
}
