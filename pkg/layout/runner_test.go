package layout

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	perrors "github.com/matzehuels/possible/pkg/errors"
	"github.com/matzehuels/possible/pkg/graph"
)

// gateEngine blocks every layout until release is closed.
type gateEngine struct {
	started chan struct{}
	release chan struct{}
}

func newGateEngine() *gateEngine {
	return &gateEngine{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gateEngine) Name() string { return "gate" }

func (g *gateEngine) Layout(ctx context.Context, in Input) (Result, error) {
	select {
	case g.started <- struct{}{}:
	default:
	}
	<-g.release
	return (&rowEngine{}).Layout(ctx, in)
}

func quietRunner(e Engine) *Runner {
	r := NewRunner(log.New(io.Discard))
	r.Engine = e
	return r
}

func simpleData() graph.Data {
	return graph.Data{Nodes: []graph.Node{{ID: "a"}, {ID: "b"}}}
}

func TestRunnerRun(t *testing.T) {
	r := NewRunner(log.New(io.Discard))
	out, err := r.Run(context.Background(), simpleData(), Options{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(out.Nodes) != 2 || r.Pending() {
		t.Errorf("Run() = %d nodes, pending %v", len(out.Nodes), r.Pending())
	}
}

func TestRunnerRejectsConcurrentRuns(t *testing.T) {
	gate := newGateEngine()
	r := quietRunner(gate)

	results := make(chan error, 1)
	if err := r.Start(context.Background(), simpleData(), Options{}, func(_ graph.Data, err error) {
		results <- err
	}); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	<-gate.started

	_, err := r.Run(context.Background(), simpleData(), Options{})
	if !perrors.Is(err, perrors.ErrCodeLayoutPending) || !errors.Is(err, ErrLayoutPending) {
		t.Errorf("Run() while pending = %v, want LAYOUT_PENDING", err)
	}

	close(gate.release)
	select {
	case err := <-results:
		if err != nil {
			t.Errorf("async layout error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("async layout did not finish")
	}
}

func TestRunnerDiscardsStaleResults(t *testing.T) {
	gate := newGateEngine()
	r := quietRunner(gate)

	var called atomic.Bool
	if err := r.Start(context.Background(), simpleData(), Options{}, func(graph.Data, error) {
		called.Store(true)
	}); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	<-gate.started
	r.Invalidate()
	close(gate.release)

	deadline := time.Now().Add(2 * time.Second)
	for r.Pending() {
		if time.Now().After(deadline) {
			t.Fatal("runner still pending")
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	if called.Load() {
		t.Error("callback invoked for a stale layout")
	}

	if _, err := r.Run(context.Background(), simpleData(), Options{}); err != nil {
		t.Errorf("Run() after stale run = %v, want nil", err)
	}
}
