package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	perrors "github.com/matzehuels/possible/pkg/errors"
	"github.com/matzehuels/possible/pkg/layout"
	"github.com/matzehuels/possible/pkg/render/nodelink"
	"github.com/matzehuels/possible/pkg/render/svg"
	"github.com/matzehuels/possible/pkg/session"
	"github.com/matzehuels/possible/pkg/store"
)

type createGraphRequest struct {
	Name     string `json:"name" validate:"required,max=256"`
	Priority *int   `json:"priority,omitempty"`
}

type idResponse struct {
	ID string `json:"id"`
}

type countResponse struct {
	Removed int `json:"removed"`
}

func (s *Server) listGraphs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Graphs())
}

func (s *Server) createGraph(w http.ResponseWriter, r *http.Request) {
	var req createGraphRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	id := s.store.CreateGraph(req.Name, store.Default)
	if req.Priority != nil {
		s.store.UpdateGraph(id, store.GraphPatch{Priority: req.Priority}, store.Default)
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "graphID")
	g, ok := s.store.Graph(id)
	if !ok {
		s.writeError(w, graphNotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) updateGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "graphID")
	var p store.GraphPatch
	if err := decode(w, r, &p); err != nil {
		s.writeError(w, err)
		return
	}
	if !s.store.UpdateGraph(id, p, store.Default) {
		s.writeError(w, graphNotFound(id))
		return
	}
	s.runner.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "graphID")
	if !s.store.RemoveGraph(id, store.Default) {
		s.writeError(w, graphNotFound(id))
		return
	}
	s.runner.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) viewGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "graphID")
	d, ok := s.store.Project(id)
	if !ok {
		s.writeError(w, graphNotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// layoutOptions returns the server defaults overridden by query parameters.
func (s *Server) layoutOptions(r *http.Request) layout.Options {
	opts := s.layout
	q := r.URL.Query()
	if v := q.Get("engine"); v != "" {
		opts.Engine = v
	}
	if v := q.Get("rankDir"); v != "" {
		opts.RankDir = v
	}
	if v := q.Get("align"); v != "" {
		opts.Align = v
	}
	return opts
}

func (s *Server) layoutGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "graphID")
	d, ok := s.store.Project(id)
	if !ok {
		s.writeError(w, graphNotFound(id))
		return
	}
	out, err := s.runner.Run(r.Context(), d, s.layoutOptions(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) renderGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "graphID")
	d, ok := s.store.Project(id)
	if !ok {
		s.writeError(w, graphNotFound(id))
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "svg":
		out, err := s.runner.Run(r.Context(), d, s.layoutOptions(r))
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg.Render(out))
	case "dot":
		opts := s.layoutOptions(r)
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(nodelink.ToDOT(d, nodelink.Options{Detailed: true, RankDir: opts.RankDir})))
	default:
		s.writeError(w, perrors.New(perrors.ErrCodeUnsupported, "unsupported format %q", format))
	}
}

func (s *Server) validateGraph(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Validate(chi.URLParam(r, "graphID")); err != nil {
		if perrors.GetCode(err) == "" {
			err = perrors.Wrap(perrors.ErrCodeConflict, err, "graph is inconsistent")
		}
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (s *Server) reduceGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "graphID")
	if !s.store.HasGraph(id) {
		s.writeError(w, graphNotFound(id))
		return
	}
	n, err := s.store.ReduceGraph(id, store.Default)
	if err != nil {
		s.writeError(w, cycleError(err))
		return
	}
	if n > 0 {
		s.runner.Invalidate()
	}
	writeJSON(w, http.StatusOK, countResponse{Removed: n})
}

func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Save(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Selection
// =============================================================================

type selectionRequest struct {
	GraphID string `json:"graph_id" validate:"required"`
	NodeID  string `json:"node_id,omitempty"`
}

func (s *Server) getSelection(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection.Get(r.Context(), session.DefaultName)
	if err != nil {
		s.writeError(w, perrors.Wrap(perrors.ErrCodeInternal, err, "read selection"))
		return
	}
	if sel == nil {
		s.writeError(w, perrors.New(perrors.ErrCodeNotFound, "nothing selected"))
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

func (s *Server) putSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.explain(req.GraphID, req.NodeID); err != nil {
		s.writeError(w, err)
		return
	}
	sel := session.Select(req.GraphID)
	if req.NodeID != "" {
		sel = sel.WithNode(req.NodeID)
	}
	if err := s.selection.Set(r.Context(), session.DefaultName, sel); err != nil {
		s.writeError(w, perrors.Wrap(perrors.ErrCodeInternal, err, "write selection"))
		return
	}
	writeJSON(w, http.StatusOK, sel)
}
