package nodelink

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/possible/pkg/graph"
	"github.com/matzehuels/possible/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds description, priority and state lines to node labels.
	// When false, only the node label is shown.
	Detailed bool

	// RankDir is the Graphviz rank direction. Empty means "LR".
	RankDir string
}

// ToDOT converts projected graph data to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Nodes with visible children become clusters. Edges that start or end at a
// cluster are drawn to its border.
func ToDOT(d graph.Data, opts Options) string {
	w := dotWriter{d: d, opts: opts, children: make(map[string][]string)}
	idx := d.Index()
	for _, n := range d.Nodes {
		if _, ok := idx[n.Parent]; ok {
			w.children[n.Parent] = append(w.children[n.Parent], n.ID)
		} else {
			w.roots = append(w.roots, n.ID)
		}
	}
	w.idx = idx

	buf := &w.buf
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(buf, "  rankdir=%s;\n", cmp.Or(opts.RankDir, "LR"))
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	visited := make(map[string]bool, len(d.Nodes))
	for _, id := range w.roots {
		w.writeNode(id, 1, visited)
	}
	// Nodes on a parent cycle are never reached from a root.
	for _, n := range d.Nodes {
		if !visited[n.ID] {
			w.writeNode(n.ID, 1, visited)
		}
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		w.writeEdge(e)
	}

	buf.WriteString("}\n")
	return buf.String()
}

type dotWriter struct {
	buf      bytes.Buffer
	d        graph.Data
	opts     Options
	idx      map[string]int
	children map[string][]string
	roots    []string
}

func (w *dotWriter) isCluster(id string) bool {
	return len(w.children[id]) > 0
}

func (w *dotWriter) writeNode(id string, depth int, visited map[string]bool) {
	if visited[id] {
		return
	}
	visited[id] = true
	n := &w.d.Nodes[w.idx[id]]
	indent := strings.Repeat("  ", depth)

	if !w.isCluster(id) {
		fmt.Fprintf(&w.buf, "%s%q [%s];\n", indent, id, strings.Join(fmtAttrs(n, fmtLabel(n, w.opts.Detailed)), ", "))
		return
	}

	fmt.Fprintf(&w.buf, "%ssubgraph %q {\n", indent, clusterName(id))
	fmt.Fprintf(&w.buf, "%s  label=%q;\n", indent, fmtLabel(n, w.opts.Detailed))
	fmt.Fprintf(&w.buf, "%s  style=%q;\n", indent, clusterStyle(n))
	fmt.Fprintf(&w.buf, "%s  %q [shape=point, style=invis, width=0, height=0];\n", indent, anchorName(id))
	for _, c := range w.children[id] {
		w.writeNode(c, depth+1, visited)
	}
	fmt.Fprintf(&w.buf, "%s}\n", indent)
}

func (w *dotWriter) writeEdge(e graph.Edge) {
	if _, ok := w.idx[e.Source]; !ok {
		return
	}
	if _, ok := w.idx[e.Target]; !ok {
		return
	}
	from, to := e.Source, e.Target
	var attrs []string
	if w.isCluster(from) {
		attrs = append(attrs, fmt.Sprintf("ltail=%q", clusterName(from)))
		from = anchorName(from)
	}
	if w.isCluster(to) {
		attrs = append(attrs, fmt.Sprintf("lhead=%q", clusterName(to)))
		to = anchorName(to)
	}
	if len(attrs) == 0 {
		fmt.Fprintf(&w.buf, "  %q -> %q;\n", from, to)
		return
	}
	fmt.Fprintf(&w.buf, "  %q -> %q [%s];\n", from, to, strings.Join(attrs, ", "))
}

func clusterName(id string) string { return "cluster_" + id }
func anchorName(id string) string  { return "anchor_" + id }

func fmtLabel(n *graph.Node, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed || n.Data == nil {
		return label
	}

	var parts []string
	if n.Data.Description != "" {
		parts = append(parts, n.Data.Description)
	}
	if n.Data.Priority != nil {
		parts = append(parts, fmt.Sprintf("priority: %d", *n.Data.Priority))
	}
	if n.Data.Completed {
		parts = append(parts, "completed")
	}
	if len(parts) == 0 {
		return label
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *graph.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.HasState(graph.StateCompleted) {
		attrs = append(attrs, "fillcolor=lightgrey", "fontcolor=dimgrey")
	}
	if n.HasState(graph.StateFollowed) {
		attrs = append(attrs, "color=orange", "penwidth=3")
	}
	return attrs
}

func clusterStyle(n *graph.Node) string {
	if n.HasState(graph.StateCompleted) {
		return "rounded,dashed"
	}
	return "rounded"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
