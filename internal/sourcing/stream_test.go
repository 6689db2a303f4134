package sourcing

import (
	"context"
	"errors"
	"testing"
	"time"
)

func collect(t *testing.T, ch <-chan Batch) []Batch {
	t.Helper()
	var batches []Batch
	timeout := time.After(5 * time.Second)
	for {
		select {
		case b, ok := <-ch:
			if !ok {
				return batches
			}
			batches = append(batches, b)
		case <-timeout:
			t.Fatalf("stream did not complete; got %d batches", len(batches))
		}
	}
}

func TestStreamCompletionOrderAndRemaining(t *testing.T) {
	reg := newTestRegistry(t,
		&fakeProvider{id: "slow", delay: 250 * time.Millisecond, hits: []Hit{hit("s", "https://s.example.com/1")}},
		&fakeProvider{id: "medium", delay: 100 * time.Millisecond, hits: []Hit{hit("m", "https://m.example.com/1")}},
		&fakeProvider{id: "fast", delay: 20 * time.Millisecond, hits: []Hit{hit("f", "https://f.example.com/1")}},
	)
	agg := NewAggregator(reg, time.Second)

	ch, err := agg.Stream(context.Background(), Query{Text: "x"})
	if err != nil {
		t.Fatal(err)
	}
	batches := collect(t, ch)

	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}
	wantOrder := []string{"fast", "medium", "slow"}
	wantRemaining := []int{2, 1, 0}
	for i := range batches {
		if batches[i].Provider != wantOrder[i] {
			t.Errorf("batch[%d] from %q, want %q", i, batches[i].Provider, wantOrder[i])
		}
		if batches[i].Remaining != wantRemaining[i] {
			t.Errorf("batch[%d] remaining = %d, want %d", i, batches[i].Remaining, wantRemaining[i])
		}
	}
}

func TestStreamRunningDedupAcrossBatches(t *testing.T) {
	sharedURL := "https://shop.example.com/p/1"
	reg := newTestRegistry(t,
		&fakeProvider{id: "first", delay: 10 * time.Millisecond, hits: []Hit{hit("original", sharedURL)}},
		&fakeProvider{id: "second", delay: 80 * time.Millisecond, hits: []Hit{
			hit("dup", sharedURL),
			hit("fresh", "https://shop.example.com/p/2"),
		}},
	)
	agg := NewAggregator(reg, time.Second)

	ch, err := agg.Stream(context.Background(), Query{Text: "p"})
	if err != nil {
		t.Fatal(err)
	}
	batches := collect(t, ch)

	if len(batches) != 2 {
		t.Fatalf("got %d batches", len(batches))
	}
	if len(batches[0].Results) != 1 || batches[0].Results[0].Title != "original" {
		t.Fatalf("first batch = %+v", batches[0].Results)
	}
	// The later provider's duplicate is suppressed; nothing emitted
	// earlier is retracted.
	if len(batches[1].Results) != 1 || batches[1].Results[0].Title != "fresh" {
		t.Fatalf("second batch = %+v", batches[1].Results)
	}
}

func TestStreamFailureBecomesEmptyBatch(t *testing.T) {
	reg := newTestRegistry(t,
		&fakeProvider{id: "broken", err: &StatusError{Code: 429}},
		&fakeProvider{id: "healthy", delay: 30 * time.Millisecond, hits: []Hit{hit("h", "https://h.example.com/1")}},
	)
	agg := NewAggregator(reg, time.Second)

	ch, err := agg.Stream(context.Background(), Query{Text: "x"})
	if err != nil {
		t.Fatal(err)
	}
	batches := collect(t, ch)

	if len(batches) != 2 {
		t.Fatalf("got %d batches", len(batches))
	}
	first := batches[0]
	if first.Provider != "broken" || len(first.Results) != 0 {
		t.Fatalf("failed batch = %+v", first)
	}
	if first.Outcome.Status != StatusRateLimited {
		t.Fatalf("failed batch status = %s", first.Outcome.Status)
	}
	if first.Results == nil {
		t.Fatal("failed batch results must be empty, not nil")
	}
}

func TestStreamEmptyQueryFailsFast(t *testing.T) {
	agg := NewAggregator(newTestRegistry(t), time.Second)
	if _, err := agg.Stream(context.Background(), Query{Text: ""}); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("err = %v, want ErrEmptyQuery", err)
	}
}

func TestStreamStopsOnContextCancel(t *testing.T) {
	reg := newTestRegistry(t,
		&fakeProvider{id: "slow", delay: 300 * time.Millisecond, hits: []Hit{hit("s", "https://s.example.com/1")}},
	)
	agg := NewAggregator(reg, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := agg.Stream(ctx, Query{Text: "x"})
	if err != nil {
		t.Fatal(err)
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			// A batch may have raced the cancel; the channel must
			// still close promptly afterwards.
			select {
			case _, ok := <-ch:
				if ok {
					t.Fatal("stream kept emitting after cancel")
				}
			case <-time.After(2 * time.Second):
				t.Fatal("stream not closed after cancel")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed after cancel")
	}
}
