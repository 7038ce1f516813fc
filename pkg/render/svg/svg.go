package svg

import (
	"bytes"
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/possible/pkg/graph"
)

// Theme holds the colours used by [Render].
type Theme struct {
	Background string
	NodeFill   string
	NodeStroke string
	GroupFill  string
	Text       string
	Edge       string
	Accent     string // outline of followed nodes
	Muted      string // fill of completed nodes
}

// Built-in themes.
var (
	Light = Theme{
		Background: "#ffffff",
		NodeFill:   "#ffffff",
		NodeStroke: "#333333",
		GroupFill:  "#f3f4f6",
		Text:       "#111111",
		Edge:       "#666666",
		Accent:     "#d97706",
		Muted:      "#e5e7eb",
	}
	Dark = Theme{
		Background: "#1f2937",
		NodeFill:   "#374151",
		NodeStroke: "#9ca3af",
		GroupFill:  "#111827",
		Text:       "#f9fafb",
		Edge:       "#9ca3af",
		Accent:     "#f59e0b",
		Muted:      "#4b5563",
	}
)

// Option configures [Render].
type Option func(*renderer)

type renderer struct {
	theme   Theme
	padding float64
	edges   bool
}

// WithTheme selects the colour theme.
func WithTheme(t Theme) Option { return func(r *renderer) { r.theme = t } }

// WithPadding sets the blank border around the drawing.
func WithPadding(p float64) Option { return func(r *renderer) { r.padding = p } }

// WithoutEdges omits sequence edges.
func WithoutEdges() Option { return func(r *renderer) { r.edges = false } }

// Render draws d as a standalone SVG document.
func Render(d graph.Data, opts ...Option) []byte {
	r := renderer{theme: Light, padding: 10, edges: true}
	for _, opt := range opts {
		opt(&r)
	}

	x0, y0, x1, y1 := d.Extent()
	x0, y0 = x0-r.padding, y0-r.padding
	w, h := x1-x0+r.padding, y1-y0+r.padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		x0, y0, w, h, w, h)
	r.renderDefs(&buf)
	fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
		x0, y0, w, h, r.theme.Background)

	nodes := drawOrder(d)
	for _, n := range nodes {
		if n.Group {
			r.renderGroup(&buf, n)
		}
	}
	if r.edges {
		idx := d.Index()
		for _, e := range d.Edges {
			si, ok1 := idx[e.Source]
			ti, ok2 := idx[e.Target]
			if ok1 && ok2 {
				r.renderEdge(&buf, e, &d.Nodes[si], &d.Nodes[ti])
			}
		}
	}
	for _, n := range nodes {
		if !n.Group {
			r.renderNode(&buf, n)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// drawOrder returns nodes sorted so containers come before their contents.
func drawOrder(d graph.Data) []*graph.Node {
	idx := d.Index()
	depth := func(n *graph.Node) int {
		k := 0
		for p := n.Parent; p != "" && k <= len(d.Nodes); k++ {
			i, ok := idx[p]
			if !ok {
				break
			}
			p = d.Nodes[i].Parent
		}
		return k
	}
	out := make([]*graph.Node, len(d.Nodes))
	depths := make(map[string]int, len(d.Nodes))
	for i := range d.Nodes {
		out[i] = &d.Nodes[i]
		depths[out[i].ID] = depth(out[i])
	}
	slices.SortStableFunc(out, func(a, b *graph.Node) int {
		return cmp.Compare(depths[a.ID], depths[b.ID])
	})
	return out
}

func (r *renderer) renderDefs(buf *bytes.Buffer) {
	fmt.Fprintf(buf, `  <defs>
    <marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="8" markerHeight="8" orient="auto-start-reverse">
      <path d="M 0 0 L 10 5 L 0 10 z" fill="%s"/>
    </marker>
  </defs>
`, r.theme.Edge)
}

func (r *renderer) renderGroup(buf *bytes.Buffer, n *graph.Node) {
	x0, y0, _, _ := n.Bounds()
	fill := r.theme.GroupFill
	fmt.Fprintf(buf, `  <rect id="group-%s" class="group" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="8" fill="%s" stroke="%s" stroke-dasharray="4 3"%s/>`+"\n",
		escapeXML(n.ID), x0, y0, n.Width, n.Height, fill, r.stroke(n), r.strokeWidth(n))
	size := fontSizeMin + 3
	label := truncate(n.DisplayLabel(), n.Width-16, size)
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="%.1f" fill="%s">%s</text>`+"\n",
		x0+8, y0+size+4, size, r.theme.Text, escapeXML(label))
}

func (r *renderer) renderNode(buf *bytes.Buffer, n *graph.Node) {
	x0, y0, _, _ := n.Bounds()
	fill := r.theme.NodeFill
	if n.HasState(graph.StateCompleted) {
		fill = r.theme.Muted
	}
	fmt.Fprintf(buf, `  <rect id="node-%s" class="node" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" fill="%s" stroke="%s"%s/>`+"\n",
		escapeXML(n.ID), x0, y0, n.Width, n.Height, fill, r.stroke(n), r.strokeWidth(n))

	label := n.DisplayLabel()
	size := fontSize(n.Width, n.Height, len([]rune(label)))
	label = truncate(label, n.Width, size)
	decoration := ""
	if n.HasState(graph.StateCompleted) {
		decoration = ` text-decoration="line-through"`
	}
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" font-family="sans-serif" font-size="%.1f" fill="%s"%s>%s</text>`+"\n",
		n.X, n.Y, size, r.theme.Text, decoration, escapeXML(label))
}

func (r *renderer) stroke(n *graph.Node) string {
	if n.HasState(graph.StateFollowed) {
		return r.theme.Accent
	}
	return r.theme.NodeStroke
}

func (r *renderer) strokeWidth(n *graph.Node) string {
	if n.HasState(graph.StateFollowed) {
		return ` stroke-width="3"`
	}
	return ""
}

func (r *renderer) renderEdge(buf *bytes.Buffer, e graph.Edge, src, dst *graph.Node) {
	x1, y1 := clip(src, dst.X, dst.Y)
	x2, y2 := clip(dst, src.X, src.Y)
	fmt.Fprintf(buf, `  <line id="edge-%s" class="edge" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1.5" marker-end="url(#arrow)"/>`+"\n",
		escapeXML(e.ID), x1, y1, x2, y2, r.theme.Edge)
}

// clip returns the point where the segment from n's centre towards (tx, ty)
// leaves n's box.
func clip(n *graph.Node, tx, ty float64) (float64, float64) {
	dx, dy := tx-n.X, ty-n.Y
	if dx == 0 && dy == 0 {
		return n.X, n.Y
	}
	t := math.Inf(1)
	if dx != 0 {
		t = min(t, n.Width/2/math.Abs(dx))
	}
	if dy != 0 {
		t = min(t, n.Height/2/math.Abs(dy))
	}
	t = min(t, 1)
	return n.X + t*dx, n.Y + t*dy
}
