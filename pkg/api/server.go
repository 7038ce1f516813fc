package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	perrors "github.com/matzehuels/possible/pkg/errors"
	"github.com/matzehuels/possible/pkg/layout"
	"github.com/matzehuels/possible/pkg/observability"
	"github.com/matzehuels/possible/pkg/session"
	"github.com/matzehuels/possible/pkg/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Config configures a [Server].
type Config struct {
	// Layout holds the default layout options; requests may override them.
	Layout layout.Options

	// AllowedOrigins enables CORS for the listed origins.
	AllowedOrigins []string

	// Logger receives request logs. Nil uses log.Default().
	Logger *log.Logger
}

// Server is the HTTP front end of a store.
type Server struct {
	store     *store.Store
	runner    *layout.Runner
	layout    layout.Options
	selection session.Store
	logger    *log.Logger
	router    chi.Router
}

// NewServer builds the router for st.
func NewServer(st *store.Store, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		store:     st,
		runner:    layout.NewRunner(logger),
		layout:    cfg.Layout,
		selection: session.NewMemoryStore(),
		logger:    logger,
	}
	s.router = s.routes(cfg.AllowedOrigins)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and flushes pending saves.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.store.Flush(shutdownCtx)
}

func (s *Server) routes(origins []string) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	if len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/save", s.save)
		r.Get("/selection", s.getSelection)
		r.Put("/selection", s.putSelection)

		r.Route("/graphs", func(r chi.Router) {
			r.Get("/", s.listGraphs)
			r.Post("/", s.createGraph)

			r.Route("/{graphID}", func(r chi.Router) {
				r.Get("/", s.getGraph)
				r.Patch("/", s.updateGraph)
				r.Delete("/", s.deleteGraph)
				r.Get("/view", s.viewGraph)
				r.Get("/layout", s.layoutGraph)
				r.Get("/render", s.renderGraph)
				r.Get("/validate", s.validateGraph)
				r.Post("/reduce", s.reduceGraph)

				r.Post("/nodes", s.createNode)
				r.Route("/nodes/{nodeID}", func(r chi.Router) {
					r.Get("/", s.getNode)
					r.Patch("/", s.updateNode)
					r.Delete("/", s.deleteNode)
					r.Post("/toggle", s.toggleNode)
					r.Post("/reduce", s.reduceNode)
					r.Delete("/prevs", s.deletePrevs)
					r.Delete("/nexts", s.deleteNexts)
					r.Put("/parent", s.setParent)
					r.Delete("/parent", s.detachParent)
				})

				r.Post("/edges", s.addEdge)
				r.Delete("/edges/{from}/{to}", s.removeEdge)
			})
		})
	})
	return r
}

// =============================================================================
// Middleware
// =============================================================================

// requestLogger logs every request and reports it to the HTTP hooks.
func requestLogger(logger *log.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			hooks := observability.HTTP()
			hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", elapsed,
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    perrors.Code `json:"code"`
	Message string       `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := perrors.HTTPStatus(err)
	code := perrors.GetCode(err)
	if code == "" {
		code = perrors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: perrors.UserMessage(err)}})
}

// decode reads a JSON body into v and validates its struct tags.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return perrors.ValidateStruct(perrors.ErrCodeInvalidInput, v)
}
