// Package sourcing aggregates product search results from many
// independent external providers into one ranked, deduplicated result
// set within a bounded time budget. It is an in-process library: the
// HTTP or worker layer owns endpoints, persistence, and credentials,
// and hands this package a ready-made query plus a configured
// provider registry.
package sourcing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kayz/dealhound/internal/logger"
)

// DefaultProviderTimeout bounds a single provider call when the
// aggregator is built without an explicit budget.
const DefaultProviderTimeout = 5 * time.Second

// Aggregator fans one query out to every active provider and merges
// whatever comes back. Safe for concurrent use; each call constructs
// fresh state.
type Aggregator struct {
	registry *Registry
	timeout  time.Duration
	log      zerolog.Logger
}

func NewAggregator(registry *Registry, timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &Aggregator{
		registry: registry,
		timeout:  timeout,
		log:      logger.With("sourcing"),
	}
}

// providerRun is one task's write-once result slot.
type providerRun struct {
	hits    []Hit
	outcome Outcome
}

// Run dispatches the query to all selected providers concurrently and
// returns the merged response once every task has finished or timed
// out. The only error path is a malformed query; provider failures of
// any kind are recovered into outcomes. Termination is bounded by the
// per-provider timeout regardless of provider behavior.
func (a *Aggregator) Run(ctx context.Context, q Query) (*Response, error) {
	q, err := q.Normalized()
	if err != nil {
		return nil, err
	}

	searchID := uuid.NewString()
	started := time.Now()
	active := a.registry.Select(q.Providers)

	// One write-once slot per provider, indexed by registration
	// order, so the merge below is deterministic no matter which
	// task finishes first.
	runs := make([]providerRun, len(active))
	var wg sync.WaitGroup
	for i, p := range active {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			runs[i] = a.runProvider(ctx, p, q)
			logProviderComplete(a.log, searchID, runs[i].outcome)
		}(i, p)
	}
	wg.Wait()

	total := 0
	var merged []Result
	outcomes := make([]Outcome, 0, len(runs))
	for _, run := range runs {
		outcomes = append(outcomes, run.outcome)
		if run.outcome.Status != StatusOK {
			continue
		}
		total += len(run.hits)
		merged = append(merged, Normalize(run.hits, run.outcome.Provider)...)
	}

	results := Dedupe(merged)
	for i := range results {
		results[i].MatchScore = Score(results[i], q)
		applyStrongMatch(&results[i])
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
	for i := range results {
		results[i].ClickURL = ClickoutURL(i, results[i])
	}

	allFailed, message := Summarize(outcomes, len(results))
	logSearchComplete(a.log, searchID, q, false, time.Since(started), total, len(results), outcomes, allFailed)

	return &Response{
		Results:   results,
		Outcomes:  outcomes,
		AllFailed: allFailed,
		Message:   message,
	}, nil
}

// runProvider executes one provider task raced against the
// per-provider timeout. The inner goroutine guarantees the outcome is
// finalized on schedule even if the provider ignores cancellation;
// a late result is simply dropped.
func (a *Aggregator) runProvider(ctx context.Context, p Provider, q Query) providerRun {
	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	started := time.Now()
	type searchResult struct {
		hits []Hit
		err  error
	}
	done := make(chan searchResult, 1)
	go func() {
		hits, err := p.Search(cctx, q)
		done <- searchResult{hits, err}
	}()

	outcome := Outcome{Provider: p.ID()}
	select {
	case r := <-done:
		outcome.LatencyMS = time.Since(started).Milliseconds()
		if r.err != nil {
			outcome.Status, outcome.Message = Classify(r.err)
			return providerRun{outcome: outcome}
		}
		outcome.Status = StatusOK
		outcome.ResultCount = len(r.hits)
		return providerRun{hits: r.hits, outcome: outcome}
	case <-cctx.Done():
		outcome.LatencyMS = time.Since(started).Milliseconds()
		outcome.Status, outcome.Message = Classify(cctx.Err())
		return providerRun{outcome: outcome}
	}
}
