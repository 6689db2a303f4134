package sourcing

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Status classifies how one provider's execution ended.
type Status string

const (
	StatusOK          Status = "ok"
	StatusFailed      Status = "error"
	StatusTimeout     Status = "timeout"
	StatusExhausted   Status = "exhausted"
	StatusRateLimited Status = "rate_limited"
)

// Outcome records one dispatched provider's execution. Created at
// dispatch, finalized exactly once when the task completes or times
// out, immutable after that.
type Outcome struct {
	Provider    string `json:"provider_id"`
	Status      Status `json:"status"`
	ResultCount int    `json:"result_count"`
	LatencyMS   int64  `json:"latency_ms"`
	Message     string `json:"message,omitempty"`
}

// StatusError is returned by adapters for non-2xx upstream responses
// so failures can be classified by HTTP status instead of by string
// sniffing.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("upstream status %d: %s", e.Code, e.Body)
	}
	return fmt.Sprintf("upstream status %d", e.Code)
}

// Classify maps a provider error to an outcome status and a terse
// caller-safe message. Messages stay generic on purpose: raw provider
// error strings can embed API keys in URLs.
func Classify(err error) (Status, string) {
	if err == nil {
		return StatusOK, ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return StatusTimeout, "Search timed out"
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case 402:
			return StatusExhausted, "API quota exhausted"
		case 429:
			return StatusRateLimited, "Rate limit exceeded"
		}
	}

	// Fallback for errors that only carry the upstream status in
	// their text (wrapped client errors, proxied providers).
	text := err.Error()
	switch {
	case strings.Contains(text, "402"), strings.Contains(text, "Payment Required"):
		return StatusExhausted, "API quota exhausted"
	case strings.Contains(text, "429"), strings.Contains(text, "Too Many Requests"):
		return StatusRateLimited, "Rate limit exceeded"
	}
	return StatusFailed, "Search failed"
}
