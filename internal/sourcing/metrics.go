package sourcing

import (
	"time"

	"github.com/rs/zerolog"
)

// logProviderComplete emits one structured event per finished
// provider task.
func logProviderComplete(log zerolog.Logger, searchID string, o Outcome) {
	log.Info().
		Str("event", "provider_complete").
		Str("search_id", searchID).
		Str("provider_id", o.Provider).
		Str("status", string(o.Status)).
		Int("result_count", o.ResultCount).
		Int64("latency_ms", o.LatencyMS).
		Msg("provider completed")
}

// logSearchComplete emits the per-search summary event. The level
// tracks the outcome: error when every provider failed, warn on
// partial failure or an empty result set, info otherwise.
func logSearchComplete(log zerolog.Logger, searchID string, q Query, streaming bool, elapsed time.Duration, total, unique int, outcomes []Outcome, allFailed bool) {
	succeeded := 0
	for _, o := range outcomes {
		if o.Status == StatusOK {
			succeeded++
		}
	}
	failed := len(outcomes) - succeeded
	rate := 0.0
	if len(outcomes) > 0 {
		rate = float64(succeeded) / float64(len(outcomes))
	}

	details := zerolog.Arr()
	for _, o := range outcomes {
		details.Dict(zerolog.Dict().
			Str("id", o.Provider).
			Str("status", string(o.Status)).
			Int("results", o.ResultCount).
			Int64("latency_ms", o.LatencyMS))
	}

	ev := log.Info()
	switch {
	case allFailed && len(outcomes) > 0:
		ev = log.Error()
	case failed > 0 || unique == 0:
		ev = log.Warn()
	}
	ev.
		Str("event", "search_complete").
		Str("search_id", searchID).
		Int("query_length", len(q.Text)).
		Bool("is_streaming", streaming).
		Int("total_results", total).
		Int("unique_results", unique).
		Int("providers_called", len(outcomes)).
		Int("providers_succeeded", succeeded).
		Int("providers_failed", failed).
		Float64("success_rate", rate).
		Array("providers", details).
		Int64("latency_ms", elapsed.Milliseconds()).
		Msg("search completed")
}
