package store

import (
	"cmp"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/possible/pkg/dag"
	"github.com/matzehuels/possible/pkg/observability"
	"github.com/matzehuels/possible/pkg/storage"
)

// Options selects the follow-up work a mutation performs when it changes
// the model.
type Options uint8

const (
	// BuildRoots recomputes the graph's RootNodeIDs.
	BuildRoots Options = 1 << iota
	// Touch sets the graph's UpdatedAt to the current time.
	Touch
	// Persist schedules a debounced save.
	Persist
)

// Default is the option set interactive callers use for single edits.
const Default = BuildRoots | Touch | Persist

// Has reports whether all flags in f are set.
func (o Options) Has(f Options) bool { return o&f == f }

// DefaultSaveDebounce is the window in which persisted edits coalesce.
const DefaultSaveDebounce = time.Second

// Config configures a [Store].
type Config struct {
	// RejectCycles makes AddEdge refuse edges that would close a cycle in
	// the sequence relation.
	RejectCycles bool

	// SaveDebounce is the autosave window. Zero selects
	// DefaultSaveDebounce; a negative value saves synchronously on every
	// persisted edit.
	SaveDebounce time.Duration

	// Backend receives saves. Nil disables persistence.
	Backend storage.Backend

	// Logger receives save and load diagnostics. Nil discards them.
	Logger *log.Logger

	// Now returns the current time. Nil uses time.Now.
	Now func() time.Time
}

// Store owns all graphs and serializes every edit.
type Store struct {
	mu     sync.Mutex
	graphs map[string]*dag.Graph

	rejectCycles bool
	debounce     time.Duration
	backend      storage.Backend
	logger       *log.Logger
	now          func() time.Time

	timer *time.Timer
	dirty bool
	gen   uint64

	saveMu    sync.Mutex
	savedHash string
	savedGen  uint64
}

// New creates an empty store.
func New(cfg Config) *Store {
	if cfg.SaveDebounce == 0 {
		cfg.SaveDebounce = DefaultSaveDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Store{
		graphs:       make(map[string]*dag.Graph),
		rejectCycles: cfg.RejectCycles,
		debounce:     cfg.SaveDebounce,
		backend:      cfg.Backend,
		logger:       cfg.Logger,
		now:          cfg.Now,
	}
}

func (s *Store) millis() int64 { return s.now().UnixMilli() }

// finish applies opts to g after a mutation and reports it to the hooks.
// It must be called with s.mu held.
func (s *Store) finish(op string, g *dag.Graph, changed bool, opts Options) bool {
	observability.Store().OnMutation(op, graphID(g), changed)
	if !changed {
		return false
	}
	if g != nil && opts.Has(BuildRoots) {
		g.BuildRoots()
	}
	if g != nil && opts.Has(Touch) {
		g.UpdatedAt = s.millis()
	}
	if opts.Has(Persist) {
		s.scheduleSaveLocked()
	}
	return true
}

func graphID(g *dag.Graph) string {
	if g == nil {
		return ""
	}
	return g.ID
}

// =============================================================================
// Graph-level Operations
// =============================================================================

// GraphMeta summarizes a graph for listings.
type GraphMeta struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Priority  int    `json:"priority"`
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// GraphPatch lists the graph fields [Store.UpdateGraph] may change. Nil
// fields are left alone.
type GraphPatch struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=256"`
	HideCompleted *bool   `json:"hideCompleted,omitempty"`
	Priority      *int    `json:"priority,omitempty"`
}

// Graph returns a deep copy of the graph with the given ID.
func (s *Store) Graph(id string) (*dag.Graph, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.graphs[id]
	if !ok {
		return nil, false
	}
	return g.Clone(), true
}

// HasGraph reports whether a graph with the given ID exists.
func (s *Store) HasGraph(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.graphs[id]
	return ok
}

// Node returns a copy of a node.
func (s *Store) Node(graphID, nodeID string) (*dag.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.graphs[graphID]
	if !ok {
		return nil, false
	}
	n, ok := g.Node(nodeID)
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// Graphs lists all graphs ordered by priority (highest first), then name,
// then ID. Graphs without a priority sort as priority zero.
func (s *Store) Graphs() []GraphMeta {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]GraphMeta, 0, len(s.graphs))
	for _, g := range s.graphs {
		m := GraphMeta{
			ID:        g.ID,
			Name:      g.Name,
			Nodes:     g.NodeCount(),
			Edges:     g.EdgeCount(),
			CreatedAt: g.CreatedAt,
			UpdatedAt: g.UpdatedAt,
		}
		if g.Priority != nil {
			m.Priority = *g.Priority
		}
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b GraphMeta) int {
		return cmp.Or(
			cmp.Compare(b.Priority, a.Priority),
			cmp.Compare(a.Name, b.Name),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return out
}

// AddGraph stores a copy of g, replacing any graph with the same ID. The
// copy is normalized and must pass [dag.Graph.Validate].
func (s *Store) AddGraph(g *dag.Graph, opts Options) error {
	if g == nil || g.ID == "" {
		return dag.ErrInvalidNodeID
	}
	c := g.Clone()
	c.Normalize()
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[c.ID] = c
	s.finish("add_graph", c, true, opts)
	return nil
}

// CreateGraph creates an empty graph and returns its ID.
func (s *Store) CreateGraph(name string, opts Options) string {
	g := dag.NewGraph(name)
	now := s.millis()
	g.CreatedAt, g.UpdatedAt = now, now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[g.ID] = g
	s.finish("create_graph", g, true, opts)
	return g.ID
}

// UpdateGraph applies a patch to a graph.
func (s *Store) UpdateGraph(id string, p GraphPatch, opts Options) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.graphs[id]
	if !ok {
		return s.finish("update_graph", nil, false, opts)
	}
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.HideCompleted != nil {
		g.HideCompleted = *p.HideCompleted
	}
	if p.Priority != nil {
		prio := *p.Priority
		g.Priority = &prio
	}
	return s.finish("update_graph", g, true, opts)
}

// RemoveGraph deletes a graph and all of its nodes.
func (s *Store) RemoveGraph(id string, opts Options) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.graphs[id]; !ok {
		return s.finish("remove_graph", nil, false, opts)
	}
	delete(s.graphs, id)
	return s.finish("remove_graph", nil, true, opts)
}

// Clear removes every graph.
func (s *Store) Clear(opts Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := len(s.graphs) > 0
	clear(s.graphs)
	s.finish("clear", nil, changed, opts)
}

// =============================================================================
// Node Patches
// =============================================================================

// NodePatch lists the node fields [Store.UpdateNode] may change. Relations
// are not patchable; use the structural operations instead.
type NodePatch struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=1024"`
	Description *string `json:"description,omitempty"`
	Record      *string `json:"record,omitempty"`
	StartAt     *int64  `json:"startAt,omitempty" validate:"omitempty,gte=0"`
	EndAt       *int64  `json:"endAt,omitempty" validate:"omitempty,gte=0"`
	Completed   *bool   `json:"completed,omitempty"`
	Expanded    *bool   `json:"expanded,omitempty"`
	Priority    *int    `json:"priority,omitempty"`
	IsFollowed  *bool   `json:"isFollowed,omitempty"`
}

// UpdateNode applies a patch to a node and stamps its UpdatedAt.
// Completing a node stamps CompletedAt; reopening it clears CompletedAt.
func (s *Store) UpdateNode(graphID, nodeID string, p NodePatch, opts Options) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, n, ok := s.lookup(graphID, nodeID)
	if !ok {
		return s.finish("update_node", g, false, opts)
	}

	now := s.millis()
	if p.Name != nil {
		n.Name = *p.Name
	}
	if p.Description != nil {
		n.Description = *p.Description
	}
	if p.Record != nil {
		n.Record = *p.Record
	}
	if p.StartAt != nil {
		n.StartAt = *p.StartAt
	}
	if p.EndAt != nil {
		n.EndAt = *p.EndAt
	}
	if p.Completed != nil && *p.Completed != n.Completed {
		n.Completed = *p.Completed
		if n.Completed {
			n.CompletedAt = now
		} else {
			n.CompletedAt = 0
		}
	}
	if p.Expanded != nil {
		n.Expanded = *p.Expanded
	}
	if p.Priority != nil {
		prio := *p.Priority
		n.Priority = &prio
	}
	if p.IsFollowed != nil {
		n.IsFollowed = *p.IsFollowed
	}
	n.UpdatedAt = now
	return s.finish("update_node", g, true, opts)
}

// lookup returns the live graph and node. The graph is returned even when
// the node is missing.
func (s *Store) lookup(graphID, nodeID string) (*dag.Graph, *dag.Node, bool) {
	g, ok := s.graphs[graphID]
	if !ok {
		return nil, nil, false
	}
	n, ok := g.Node(nodeID)
	return g, n, ok
}
