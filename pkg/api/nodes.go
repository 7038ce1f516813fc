package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/possible/pkg/dag/transform"
	perrors "github.com/matzehuels/possible/pkg/errors"
	"github.com/matzehuels/possible/pkg/graph"
	"github.com/matzehuels/possible/pkg/store"
)

// Node positions accepted by createNode, relative to the anchor node.
const (
	positionAfter        = "after"
	positionBefore       = "before"
	positionInsertAfter  = "insertAfter"
	positionInsertBefore = "insertBefore"
)

type createNodeRequest struct {
	Name        string `json:"name,omitempty" validate:"max=1024"`
	Description string `json:"description,omitempty"`

	// Parent places the node under a group. Ignored when Anchor is set.
	Parent string `json:"parent,omitempty"`

	Anchor   string `json:"anchor,omitempty" validate:"required_with=Position"`
	Position string `json:"position,omitempty" validate:"omitempty,oneof=after before insertAfter insertBefore"`
}

type edgeRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

type parentRequest struct {
	Parent string `json:"parent" validate:"required"`
}

func graphNotFound(id string) error {
	return perrors.New(perrors.ErrCodeGraphNotFound, "graph %q not found", id)
}

// explain returns the not-found error for the first missing reference, or
// nil when the graph and every non-empty node ID exist.
func (s *Server) explain(graphID string, nodeIDs ...string) error {
	g, ok := s.store.Graph(graphID)
	if !ok {
		return graphNotFound(graphID)
	}
	for _, id := range nodeIDs {
		if id != "" && !g.HasNode(id) {
			return perrors.New(perrors.ErrCodeNodeNotFound, "node %q not found", id)
		}
	}
	return nil
}

// rejected explains why a store operation returned false.
func (s *Server) rejected(op, graphID string, nodeIDs ...string) error {
	if err := s.explain(graphID, nodeIDs...); err != nil {
		return err
	}
	return perrors.New(perrors.ErrCodeConflict, "%s rejected", op)
}

func cycleError(err error) error {
	if errors.Is(err, transform.ErrGraphHasCycle) {
		return perrors.Wrap(perrors.ErrCodeCycle, err, "graph has a cycle")
	}
	return err
}

// changed invalidates in-flight layouts after a successful edit.
func (s *Server) changed(w http.ResponseWriter, status int, body any) {
	s.runner.Invalidate()
	if body == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, body)
}

func (s *Server) createNode(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")
	var req createNodeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	opts := store.BuildRoots | store.Touch
	var id string
	switch {
	case req.Anchor == "" && req.Parent == "":
		id = s.store.AddNewNode(graphID, opts)
	case req.Anchor == "":
		id = s.store.AddNewChildNode(graphID, req.Parent, opts)
	case req.Position == positionBefore:
		id = s.store.AddFrontNewNode(graphID, req.Anchor, opts)
	case req.Position == positionInsertAfter:
		id = s.store.InsertNewNode(graphID, req.Anchor, opts)
	case req.Position == positionInsertBefore:
		id = s.store.InsertFrontNewNode(graphID, req.Anchor, opts)
	default:
		id = s.store.AppendNewNode(graphID, req.Anchor, opts)
	}
	if id == "" {
		s.writeError(w, s.rejected("create node", graphID, req.Anchor, req.Parent))
		return
	}

	// Naming the node schedules the save for both edits.
	s.store.UpdateNode(graphID, id, store.NodePatch{Name: &req.Name, Description: &req.Description}, store.Default)
	n, _ := s.store.Node(graphID, id)
	s.changed(w, http.StatusCreated, n)
}

func (s *Server) getNode(w http.ResponseWriter, r *http.Request) {
	graphID, nodeID := chi.URLParam(r, "graphID"), chi.URLParam(r, "nodeID")
	n, ok := s.store.Node(graphID, nodeID)
	if !ok {
		s.writeError(w, s.rejected("get node", graphID, nodeID))
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) updateNode(w http.ResponseWriter, r *http.Request) {
	graphID, nodeID := chi.URLParam(r, "graphID"), chi.URLParam(r, "nodeID")
	var p store.NodePatch
	if err := decode(w, r, &p); err != nil {
		s.writeError(w, err)
		return
	}
	if !s.store.UpdateNode(graphID, nodeID, p, store.Default) {
		s.writeError(w, s.rejected("update node", graphID, nodeID))
		return
	}
	n, _ := s.store.Node(graphID, nodeID)
	s.changed(w, http.StatusOK, n)
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	graphID, nodeID := chi.URLParam(r, "graphID"), chi.URLParam(r, "nodeID")
	var ok bool
	if r.URL.Query().Get("keepEdges") == "true" {
		ok = s.store.DeleteNodeKeepEdges(graphID, nodeID, store.Default)
	} else {
		ok = s.store.RemoveNode(graphID, nodeID, store.Default)
	}
	if !ok {
		s.writeError(w, s.rejected("delete node", graphID, nodeID))
		return
	}
	s.changed(w, http.StatusNoContent, nil)
}

func (s *Server) toggleNode(w http.ResponseWriter, r *http.Request) {
	graphID, nodeID := chi.URLParam(r, "graphID"), chi.URLParam(r, "nodeID")
	if !s.store.ToggleNodeExpanded(graphID, nodeID, store.Default) {
		s.writeError(w, s.rejected("toggle node", graphID, nodeID))
		return
	}
	n, _ := s.store.Node(graphID, nodeID)
	s.changed(w, http.StatusOK, n)
}

func (s *Server) reduceNode(w http.ResponseWriter, r *http.Request) {
	graphID, nodeID := chi.URLParam(r, "graphID"), chi.URLParam(r, "nodeID")
	if err := s.explain(graphID, nodeID); err != nil {
		s.writeError(w, err)
		return
	}
	n, err := s.store.Reduce(graphID, nodeID, store.Default)
	if err != nil {
		s.writeError(w, cycleError(err))
		return
	}
	s.changed(w, http.StatusOK, countResponse{Removed: n})
}

func (s *Server) deletePrevs(w http.ResponseWriter, r *http.Request) {
	graphID, nodeID := chi.URLParam(r, "graphID"), chi.URLParam(r, "nodeID")
	if !s.store.DeletePrevEdges(graphID, nodeID, store.Default) {
		if err := s.explain(graphID, nodeID); err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.changed(w, http.StatusNoContent, nil)
}

func (s *Server) deleteNexts(w http.ResponseWriter, r *http.Request) {
	graphID, nodeID := chi.URLParam(r, "graphID"), chi.URLParam(r, "nodeID")
	if !s.store.DeleteNextEdges(graphID, nodeID, store.Default) {
		if err := s.explain(graphID, nodeID); err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.changed(w, http.StatusNoContent, nil)
}

func (s *Server) setParent(w http.ResponseWriter, r *http.Request) {
	graphID, nodeID := chi.URLParam(r, "graphID"), chi.URLParam(r, "nodeID")
	var req parentRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if !s.store.SetChild(graphID, req.Parent, nodeID, store.Default) {
		s.writeError(w, s.rejected("set parent", graphID, req.Parent, nodeID))
		return
	}
	s.changed(w, http.StatusNoContent, nil)
}

func (s *Server) detachParent(w http.ResponseWriter, r *http.Request) {
	graphID, nodeID := chi.URLParam(r, "graphID"), chi.URLParam(r, "nodeID")
	n, ok := s.store.Node(graphID, nodeID)
	if !ok {
		s.writeError(w, s.rejected("detach", graphID, nodeID))
		return
	}
	if n.Parent == "" || !s.store.DetachChild(graphID, n.Parent, nodeID, store.Default) {
		s.writeError(w, perrors.New(perrors.ErrCodeConflict, "node %q has no parent", nodeID))
		return
	}
	s.changed(w, http.StatusNoContent, nil)
}

func (s *Server) addEdge(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")
	var req edgeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if !s.store.AddEdge(graphID, req.From, req.To, store.Default) {
		if err := s.explain(graphID, req.From, req.To); err != nil {
			s.writeError(w, err)
			return
		}
		if g, ok := s.store.Graph(graphID); ok && transform.WouldCreateCycle(g, req.From, req.To) {
			s.writeError(w, perrors.New(perrors.ErrCodeCycle, "edge %s -> %s would create a cycle", req.From, req.To))
			return
		}
		s.writeError(w, perrors.New(perrors.ErrCodeConflict, "edge %s -> %s rejected", req.From, req.To))
		return
	}
	s.changed(w, http.StatusCreated, idResponse{ID: graph.EdgeID(req.From, req.To)})
}

func (s *Server) removeEdge(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")
	from, to := chi.URLParam(r, "from"), chi.URLParam(r, "to")
	if !s.store.RemoveEdge(graphID, from, to, store.Default) {
		if err := s.explain(graphID, from, to); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeError(w, perrors.New(perrors.ErrCodeNotFound, "edge %s -> %s not found", from, to))
		return
	}
	s.changed(w, http.StatusNoContent, nil)
}
