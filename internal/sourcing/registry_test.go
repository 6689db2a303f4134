package sourcing

import (
	"context"
	"reflect"
	"testing"
)

type stubProvider struct{ id string }

func (s stubProvider) ID() string { return s.id }

func (s stubProvider) Search(context.Context, Query) ([]Hit, error) { return nil, nil }

func TestRegistryOrderAndSelect(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"amazon", "ebay", "vendor_directory"} {
		if err := r.Register(stubProvider{id}); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}

	if got := r.IDs(); !reflect.DeepEqual(got, []string{"amazon", "ebay", "vendor_directory"}) {
		t.Fatalf("IDs = %v", got)
	}

	// Subset selection keeps registration order, not request order.
	sel := r.Select([]string{"vendor_directory", "amazon"})
	if len(sel) != 2 || sel[0].ID() != "amazon" || sel[1].ID() != "vendor_directory" {
		t.Fatalf("Select order wrong: %v", ids(sel))
	}

	// Unknown names select nothing, silently.
	if sel := r.Select([]string{"nope"}); len(sel) != 0 {
		t.Fatalf("unknown id selected %v", ids(sel))
	}

	// Empty filter means everything.
	if sel := r.Select(nil); len(sel) != 3 {
		t.Fatalf("empty filter selected %d", len(sel))
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(stubProvider{"amazon"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(stubProvider{"amazon"}); err == nil {
		t.Fatal("duplicate registration accepted")
	}
	if err := r.Register(stubProvider{""}); err == nil {
		t.Fatal("empty id accepted")
	}
}

func ids(ps []Provider) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID())
	}
	return out
}
