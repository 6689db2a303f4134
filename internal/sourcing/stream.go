package sourcing

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Batch is one streamed unit: everything one provider contributed,
// emitted as soon as that provider finished. Remaining counts the
// providers still outstanding and reaches 0 on the final batch.
type Batch struct {
	Provider  string   `json:"provider_id"`
	Results   []Result `json:"results"`
	Outcome   Outcome  `json:"status"`
	Remaining int      `json:"providers_remaining"`
}

// Stream dispatches exactly like Run but yields each provider's
// processed batch in completion order instead of waiting for the full
// set. A dedup set persists across the whole stream, so a duplicate
// from a later provider is suppressed while nothing already emitted
// is ever retracted. Provider failures arrive as empty batches with a
// classified outcome, never as a closed-early channel. The channel is
// closed after the last batch, or when ctx is cancelled.
func (a *Aggregator) Stream(ctx context.Context, q Query) (<-chan Batch, error) {
	q, err := q.Normalized()
	if err != nil {
		return nil, err
	}

	searchID := uuid.NewString()
	started := time.Now()
	active := a.registry.Select(q.Providers)

	type completion struct {
		index int
		run   providerRun
	}
	completions := make(chan completion, len(active))
	for i, p := range active {
		go func(i int, p Provider) {
			run := a.runProvider(ctx, p, q)
			logProviderComplete(a.log, searchID, run.outcome)
			completions <- completion{i, run}
		}(i, p)
	}

	out := make(chan Batch)
	go func() {
		defer close(out)

		seen := make(map[string]struct{})
		outcomes := make([]Outcome, 0, len(active))
		total, unique, emitted := 0, 0, 0

		for emitted < len(active) {
			var ready []completion
			select {
			case c := <-completions:
				ready = append(ready, c)
			case <-ctx.Done():
				return
			}
			// Drain whatever else already finished and order the
			// burst by registration index, so simultaneous
			// completions resolve deterministically.
			for drained := true; drained; {
				select {
				case c := <-completions:
					ready = append(ready, c)
				default:
					drained = false
				}
			}
			sort.Slice(ready, func(i, j int) bool { return ready[i].index < ready[j].index })

			for _, c := range ready {
				emitted++
				outcomes = append(outcomes, c.run.outcome)
				batch := Batch{
					Provider:  c.run.outcome.Provider,
					Results:   []Result{},
					Outcome:   c.run.outcome,
					Remaining: len(active) - emitted,
				}
				if c.run.outcome.Status == StatusOK {
					total += len(c.run.hits)
					for _, r := range Normalize(c.run.hits, c.run.outcome.Provider) {
						key := dedupeKey(r)
						if _, dup := seen[key]; dup {
							continue
						}
						seen[key] = struct{}{}
						r.MatchScore = Score(r, q)
						applyStrongMatch(&r)
						batch.Results = append(batch.Results, r)
					}
					sort.SliceStable(batch.Results, func(i, j int) bool {
						return batch.Results[i].MatchScore > batch.Results[j].MatchScore
					})
					unique += len(batch.Results)
				}
				select {
				case out <- batch:
				case <-ctx.Done():
					return
				}
			}
		}

		allFailed, _ := Summarize(outcomes, unique)
		logSearchComplete(a.log, searchID, q, true, time.Since(started), total, unique, outcomes, allFailed)
	}()

	return out, nil
}
