package providers

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"

	"github.com/kayz/dealhound/internal/config"
	"github.com/kayz/dealhound/internal/sourcing"
)

var mockMerchants = []string{
	"Amazon", "Walmart", "Target", "eBay", "Best Buy", "Costco", "Kohl's", "Macy's",
}

// Mock returns sample listings derived deterministically from the
// query text. It needs no credentials and is the default provider in
// a fresh configuration.
type Mock struct {
	id string
}

func NewMock(pc config.ProviderConfig, _ config.SearchConfig) (sourcing.Provider, error) {
	return &Mock{id: pc.Name}, nil
}

func (p *Mock) ID() string {
	return p.id
}

func (p *Mock) Search(_ context.Context, q sourcing.Query) ([]sourcing.Hit, error) {
	sum := md5.Sum([]byte(q.Text))
	seed := binary.BigEndian.Uint32(sum[:4])
	rng := rand.New(rand.NewSource(int64(seed)))

	n := 8 + rng.Intn(8)
	hits := make([]sourcing.Hit, 0, n)
	for i := 0; i < n; i++ {
		edition := "Standard"
		if i%3 == 0 {
			edition = "Premium"
		}
		price := math.Round((15+rng.Float64()*135)*100) / 100
		rating := math.Round((3.5+rng.Float64()*1.5)*10) / 10
		reviews := 10 + rng.Intn(4991)
		shipping := "Ships in 2-3 days"
		if rng.Float64() > 0.3 {
			shipping = "Free shipping"
		}

		hits = append(hits, sourcing.Hit{
			Title:    fmt.Sprintf("%s - Style %c %s Edition", q.Text, 'A'+i, edition),
			Price:    fptr(price),
			Currency: "USD",
			Merchant: mockMerchants[rng.Intn(len(mockMerchants))],
			URL:      fmt.Sprintf("https://example.com/product/%d", uint64(seed)+uint64(i)),
			ImageURL: fmt.Sprintf("https://picsum.photos/seed/%d/300/300", uint64(seed)+uint64(i)),
			Rating:   fptr(rating),
			Reviews:  iptr(reviews),
			Shipping: shipping,
		})
	}
	return hits, nil
}
