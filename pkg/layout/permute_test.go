package layout

import (
	"context"
	"fmt"
	"testing"
)

func TestPermute(t *testing.T) {
	for n, want := range []int{1, 1, 2, 6, 24} {
		seen := map[string]bool{}

		s := make([]int, n)
		for i := range s {
			s[i] = i
		}
		permute(s, func(p []int) bool {
			seen[fmt.Sprint(p)] = true
			return true
		})
		if len(seen) != want {
			t.Errorf("permute(%d) produced %d distinct orders, want %d", n, len(seen), want)
		}
	}
}

func TestPermuteStops(t *testing.T) {
	calls := 0
	permute([]int{0, 1, 2, 3}, func([]int) bool {
		calls++
		return calls < 3
	})
	if calls != 3 {
		t.Errorf("permute called fn %d times after stop, want 3", calls)
	}
}

func TestRefineLayers(t *testing.T) {
	l := &layered{layers: [][]int{{0, 1}, {2, 3}}}
	succs := [][]int{{3}, {2}, nil, nil}
	cc := newCrossingCounter(len(succs))

	got, err := l.refineLayers(context.Background(), cc, succs, cc.count(l.layers, succs))
	if err != nil {
		t.Fatalf("refineLayers() error = %v", err)
	}
	if got != 0 {
		t.Errorf("refineLayers() = %d crossings, want 0", got)
	}
	if c := cc.count(l.layers, succs); c != got {
		t.Errorf("layers have %d crossings, refineLayers reported %d", c, got)
	}
}

func TestRefineLayersCancelled(t *testing.T) {
	l := &layered{layers: [][]int{{0, 1}, {2, 3}}}
	succs := [][]int{{3}, {2}, nil, nil}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := l.refineLayers(ctx, newCrossingCounter(4), succs, 1); err == nil {
		t.Error("refineLayers() with cancelled context: expected error")
	}
}
