package layout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	perrors "github.com/matzehuels/possible/pkg/errors"
	"github.com/matzehuels/possible/pkg/graph"
	"github.com/matzehuels/possible/pkg/observability"
)

var (
	// ErrLayoutPending is returned when a layout is requested while another
	// one is still running on the same [Runner].
	ErrLayoutPending = errors.New("layout already in progress")

	// ErrStaleLayout is returned for a run invalidated while in flight.
	ErrStaleLayout = errors.New("layout result is stale")
)

// Runner serializes layout runs and reports them to the logger and the
// layout hooks. Use one Runner per displayed graph.
type Runner struct {
	Logger *log.Logger

	// Engine overrides the engine named in Options when set.
	Engine Engine

	mu         sync.Mutex
	pending    bool
	generation uint64
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Pending reports whether a run is in flight.
func (r *Runner) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// Invalidate marks any in-flight run as stale. Its result is discarded.
func (r *Runner) Invalidate() {
	r.mu.Lock()
	r.generation++
	r.mu.Unlock()
}

// Run lays out data synchronously. It fails with a LAYOUT_PENDING error
// when another run is in flight and with [ErrStaleLayout] when
// [Runner.Invalidate] was called during the run.
func (r *Runner) Run(ctx context.Context, data graph.Data, opts Options) (graph.Data, error) {
	gen, err := r.begin()
	if err != nil {
		return graph.Data{}, err
	}
	defer r.end()
	return r.run(ctx, gen, data, opts)
}

// Start lays out data on a new goroutine and calls done with the result
// unless the run went stale. It returns a LAYOUT_PENDING error without
// starting anything when another run is in flight.
func (r *Runner) Start(ctx context.Context, data graph.Data, opts Options, done func(graph.Data, error)) error {
	gen, err := r.begin()
	if err != nil {
		return err
	}
	go func() {
		out, err := r.run(ctx, gen, data, opts)
		r.end()
		if errors.Is(err, ErrStaleLayout) {
			return
		}
		done(out, err)
	}()
	return nil
}

func (r *Runner) begin() (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending {
		return 0, perrors.Wrap(perrors.ErrCodeLayoutPending, ErrLayoutPending, "cannot start layout")
	}
	r.pending = true
	r.generation++
	return r.generation, nil
}

func (r *Runner) end() {
	r.mu.Lock()
	r.pending = false
	r.mu.Unlock()
}

func (r *Runner) run(ctx context.Context, gen uint64, data graph.Data, opts Options) (graph.Data, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return graph.Data{}, err
	}
	engine := r.Engine
	if engine == nil {
		var err error
		if engine, err = NewEngine(opts.Engine); err != nil {
			return graph.Data{}, err
		}
	}
	name := engine.Name()
	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, name, len(data.Nodes))

	start := time.Now()
	out, err := ExecuteWith(ctx, engine, data, opts)
	elapsed := time.Since(start)
	hooks.OnLayoutComplete(ctx, name, elapsed, err)
	if err != nil {
		r.Logger.Warn("layout failed", "engine", name, "error", err)
		return graph.Data{}, err
	}

	r.mu.Lock()
	stale := gen != r.generation
	r.mu.Unlock()
	if stale {
		r.Logger.Debug("discarding stale layout", "engine", name)
		return graph.Data{}, ErrStaleLayout
	}

	r.Logger.Info("computed layout",
		"engine", name,
		"nodes", len(out.Nodes),
		"duration", elapsed)
	return out, nil
}
