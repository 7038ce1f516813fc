package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug lines to a
// logger. Failed saves and loads are logged at warn level.
type LogHooks struct {
	logger *log.Logger
}

var (
	_ StoreHooks  = (*LogHooks)(nil)
	_ LayoutHooks = (*LogHooks)(nil)
	_ HTTPHooks   = (*LogHooks)(nil)
)

// NewLogHooks returns hooks that log through logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnMutation(op, graphID string, changed bool) {
	h.logger.Debug("mutation", "op", op, "graph", graphID, "changed", changed)
}

func (h *LogHooks) OnLoad(_ context.Context, backend string, graphs int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("load failed", "backend", backend, "error", err)
		return
	}
	h.logger.Debug("loaded", "backend", backend, "graphs", graphs, "elapsed", d.Round(time.Millisecond))
}

func (h *LogHooks) OnSave(_ context.Context, backend string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("save failed", "backend", backend, "error", err)
		return
	}
	h.logger.Debug("saved", "backend", backend, "bytes", size, "elapsed", d.Round(time.Millisecond))
}

func (h *LogHooks) OnLayoutStart(_ context.Context, engine string, nodeCount int) {
	h.logger.Debug("layout started", "engine", engine, "nodes", nodeCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, engine string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("layout failed", "engine", engine, "error", err)
		return
	}
	h.logger.Debug("layout complete", "engine", engine, "elapsed", d.Round(time.Millisecond))
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Info("response", "method", method, "path", path, "status", status, "elapsed", d.Round(time.Millisecond))
}
