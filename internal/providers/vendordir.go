package providers

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	_ "modernc.org/sqlite"

	"github.com/kayz/dealhound/internal/config"
	"github.com/kayz/dealhound/internal/sourcing"
)

// defaultDistanceThreshold is the cosine distance cutoff for vendor
// matches: 0 is identical, 2 is opposite.
const defaultDistanceThreshold = 0.45

const vendorLimit = 15

// Platform domains that say nothing about the vendor itself; a vendor
// whose website is its Yelp page gets no merchant domain.
var aggregatorDomains = map[string]struct{}{
	"google.com":      {},
	"maps.google.com": {},
	"yelp.com":        {},
	"facebook.com":    {},
	"linkedin.com":    {},
	"instagram.com":   {},
	"twitter.com":     {},
	"x.com":           {},
	"youtube.com":     {},
}

// Embedder turns texts into embedding vectors. Wrapped in an interface
// so tests can substitute a deterministic implementation.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type openAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
}

func newOpenAIEmbedder(ec config.EmbeddingConfig) *openAIEmbedder {
	cfg := openai.DefaultConfig(ec.APIKey)
	if ec.BaseURL != "" {
		cfg.BaseURL = ec.BaseURL
	}
	return &openAIEmbedder{
		client:     openai.NewClientWithConfig(cfg),
		model:      ec.Model,
		dimensions: ec.Dimensions,
	}
}

func (e *openAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dimensions,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	vecs := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vecs[i] = d.Embedding
	}
	return vecs, nil
}

// VendorDirectory searches the local vendor database by embedding
// similarity. It runs alongside the web providers and its hits merge
// into the same result list; a computed similarity rides along in
// provenance.
type VendorDirectory struct {
	id        string
	db        *sql.DB
	embedder  Embedder
	threshold float64
}

func NewVendorDirectory(pc config.ProviderConfig, sc config.SearchConfig) (sourcing.Provider, error) {
	if pc.DBPath == "" {
		return nil, fmt.Errorf("vendor_directory requires db_path")
	}

	db, err := sql.Open("sqlite", pc.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open vendor db: %w", err)
	}
	if err := ensureVendorSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	threshold := defaultDistanceThreshold
	if raw := pc.Options["distance_threshold"]; raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("invalid distance_threshold %q: %w", raw, err)
		}
		threshold = v
	}

	var embedder Embedder
	if sc.Embedding.APIKey != "" {
		embedder = newOpenAIEmbedder(sc.Embedding)
	}

	return &VendorDirectory{
		id:        pc.Name,
		db:        db,
		embedder:  embedder,
		threshold: threshold,
	}, nil
}

func ensureVendorSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS vendor (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			description TEXT,
			tagline     TEXT,
			website     TEXT,
			email       TEXT,
			phone       TEXT,
			image_url   TEXT,
			category    TEXT,
			embedding   BLOB
		)`)
	if err != nil {
		return fmt.Errorf("create vendor table: %w", err)
	}
	return nil
}

func (p *VendorDirectory) ID() string {
	return p.id
}

func (p *VendorDirectory) Close() error {
	return p.db.Close()
}

type vendorRow struct {
	name     string
	website  string
	email    string
	imageURL string
	category string
	distance float64
}

func (p *VendorDirectory) Search(ctx context.Context, q sourcing.Query) ([]sourcing.Hit, error) {
	if p.embedder == nil {
		return nil, nil
	}

	embedding, err := p.queryEmbedding(ctx, q)
	if err != nil {
		return nil, err
	}

	rows, err := p.nearest(ctx, embedding)
	if err != nil {
		return nil, err
	}

	hits := make([]sourcing.Hit, 0, len(rows))
	for _, r := range rows {
		u := r.website
		if u == "" && r.email != "" {
			u = "mailto:" + r.email
		}
		domain := vendorDomain(r.website)

		image := r.imageURL
		if image == "" && domain != "" {
			image = "https://www.google.com/s2/favicons?domain=" + domain + "&sz=128"
		}

		shipping := ""
		if r.category != "" {
			shipping = "Category: " + r.category
		}

		hits = append(hits, sourcing.Hit{
			Title:          r.name,
			Merchant:       r.name,
			MerchantDomain: domain,
			URL:            u,
			ImageURL:       image,
			Shipping:       shipping,
			Similarity:     1 - r.distance,
		})
	}
	return hits, nil
}

// queryEmbedding embeds the query. When an extracted intent is
// present and differs from the raw text, both are embedded in one
// batched call and blended 70/30 in favor of intent, keeping intent
// dominant while context still counts.
func (p *VendorDirectory) queryEmbedding(ctx context.Context, q sourcing.Query) ([]float32, error) {
	intent := strings.TrimSpace(q.IntentQuery)
	if intent != "" && !strings.EqualFold(intent, strings.TrimSpace(q.Text)) {
		vecs, err := p.embedder.Embed(ctx, []string{intent, q.Text})
		if err != nil {
			return nil, err
		}
		return blendVectors(vecs, []float32{0.7, 0.3}), nil
	}

	vecs, err := p.embedder.Embed(ctx, []string{q.Text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// nearest scans vendors with embeddings and returns those within the
// distance threshold, closest first.
func (p *VendorDirectory) nearest(ctx context.Context, query []float32) ([]vendorRow, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT name, COALESCE(website, ''), COALESCE(email, ''),
		       COALESCE(image_url, ''), COALESCE(category, ''), embedding
		FROM vendor
		WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("query vendors: %w", err)
	}
	defer rows.Close()

	var matched []vendorRow
	for rows.Next() {
		var r vendorRow
		var blob []byte
		if err := rows.Scan(&r.name, &r.website, &r.email, &r.imageURL, &r.category, &blob); err != nil {
			return nil, err
		}
		vec, err := decodeVector(blob)
		if err != nil {
			continue
		}
		r.distance = cosineDistance(query, vec)
		if r.distance > p.threshold {
			continue
		}
		matched = append(matched, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].distance < matched[j].distance
	})
	if len(matched) > vendorLimit {
		matched = matched[:vendorLimit]
	}
	return matched, nil
}

func vendorDomain(website string) string {
	if website == "" {
		return ""
	}
	d := strings.TrimPrefix(website, "https://")
	d = strings.TrimPrefix(d, "http://")
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	d = strings.ToLower(d)
	if _, ok := aggregatorDomains[strings.TrimPrefix(d, "www.")]; ok {
		return ""
	}
	return d
}

// blendVectors mixes vectors by weight and L2-normalizes the result so
// cosine distance stays meaningful.
func blendVectors(vecs [][]float32, weights []float32) []float32 {
	out := make([]float32, len(vecs[0]))
	for k, vec := range vecs {
		for i, v := range vec {
			out[i] += v * weights[k]
		}
	}
	var norm float64
	for _, v := range out {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range out {
			out[i] = float32(float64(out[i]) / norm)
		}
	}
	return out
}

func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// Embedding blobs are little-endian float32 sequences.

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil, fmt.Errorf("malformed embedding blob of %d bytes", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}
