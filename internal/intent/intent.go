// Package intent extracts a clean product intent from a raw user
// query with an LLM. Extraction is optional: the search pipeline
// works on the raw text alone, and callers treat any failure here as
// "no intent available".
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kayz/dealhound/internal/config"
)

const systemPrompt = `You extract shopping intent from a search query.
Return JSON with exactly these fields:
  "product_name": the core product or service being sought, without locations, qualifiers, or price talk
  "keywords": array of extra search keywords worth keeping (may be empty)
  "min_price": minimum acceptable price as a number, or null
  "max_price": maximum acceptable price as a number, or null
Return only the JSON object.`

// Intent is the cleaned-up shape of a shopping query.
type Intent struct {
	ProductName string   `json:"product_name"`
	Keywords    []string `json:"keywords"`
	MinPrice    *float64 `json:"min_price"`
	MaxPrice    *float64 `json:"max_price"`
}

// Extractor calls a chat model to derive Intent from query text.
type Extractor struct {
	client *openai.Client
	model  string
}

func NewExtractor(ic config.IntentConfig) *Extractor {
	cfg := openai.DefaultConfig(ic.APIKey)
	if ic.BaseURL != "" {
		cfg.BaseURL = ic.BaseURL
	}
	return &Extractor{
		client: openai.NewClientWithConfig(cfg),
		model:  ic.Model,
	}
}

// Extract derives intent from one query. The returned product name is
// never empty on success; a response the model garbles is an error,
// not a half-filled Intent.
func (e *Extractor) Extract(ctx context.Context, query string) (Intent, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
	})
	if err != nil {
		return Intent{}, err
	}
	if len(resp.Choices) == 0 {
		return Intent{}, fmt.Errorf("intent: empty completion")
	}

	var out Intent
	content := stripFence(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return Intent{}, fmt.Errorf("intent: parse completion: %w", err)
	}
	out.ProductName = strings.TrimSpace(out.ProductName)
	if out.ProductName == "" {
		return Intent{}, fmt.Errorf("intent: completion missing product_name")
	}
	if out.MinPrice != nil && out.MaxPrice != nil && *out.MinPrice > *out.MaxPrice {
		out.MinPrice, out.MaxPrice = out.MaxPrice, out.MinPrice
	}
	return out, nil
}

// stripFence removes a markdown code fence some models wrap JSON in
// despite the response format hint.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
