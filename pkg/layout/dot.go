package layout

import (
	"bufio"
	"bytes"
	"cmp"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// pointsPerInch converts between Graphviz inches and layout units.
const pointsPerInch = 72.0

// Dot lays out sub-graphs with Graphviz dot. Node sizes are fixed, so
// results are directly comparable with [Layered]. Align is ignored.
type Dot struct{}

// Name returns "dot".
func (Dot) Name() string { return EngineDot }

// Layout implements [Engine].
func (Dot) Layout(ctx context.Context, in Input) (Result, error) {
	if len(in.Nodes) == 0 {
		return Result{Positions: map[string]Point{}}, nil
	}
	src, names := toDOT(in)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return Result{}, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.Format("plain"), &buf); err != nil {
		return Result{}, fmt.Errorf("render: %w", err)
	}
	return parsePlain(buf.Bytes(), names)
}

// toDOT builds the dot source for in. Nodes get short synthetic names so
// IDs never need quoting in the plain output; names maps them back.
func toDOT(in Input) (string, map[string]string) {
	names := make(map[string]string, len(in.Nodes))
	ids := make(map[string]string, len(in.Nodes))

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", cmp.Or(in.Options.RankDir, DefaultRankDir))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(in.Options.RankSep))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(in.Options.NodeSep))
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n\n")

	for _, b := range in.Nodes {
		if _, dup := ids[b.ID]; dup {
			continue
		}
		name := "n" + strconv.Itoa(len(names))
		names[name] = b.ID
		ids[b.ID] = name
		fmt.Fprintf(&buf, "  %s [width=%s, height=%s];\n", name, inches(b.Width), inches(b.Height))
	}
	buf.WriteString("\n")
	for _, e := range in.Edges {
		from, ok1 := ids[e[0]]
		to, ok2 := ids[e[1]]
		if ok1 && ok2 && from != to {
			fmt.Fprintf(&buf, "  %s -> %s;\n", from, to)
		}
	}
	buf.WriteString("}\n")
	return buf.String(), names
}

func inches(points float64) string {
	return strconv.FormatFloat(points/pointsPerInch, 'f', 4, 64)
}

// parsePlain reads node centres from Graphviz "plain" output. Plain
// coordinates are inches with the origin at the bottom left.
func parsePlain(out []byte, names map[string]string) (Result, error) {
	res := Result{Positions: make(map[string]Point, len(names))}
	var height float64
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) == 0 {
			continue
		}
		switch f[0] {
		case "graph":
			if len(f) < 4 {
				return Result{}, fmt.Errorf("malformed graph line: %q", sc.Text())
			}
			w, err1 := strconv.ParseFloat(f[2], 64)
			h, err2 := strconv.ParseFloat(f[3], 64)
			if err1 != nil || err2 != nil {
				return Result{}, fmt.Errorf("malformed graph line: %q", sc.Text())
			}
			res.Width, res.Height = w*pointsPerInch, h*pointsPerInch
			height = h
		case "node":
			if len(f) < 4 {
				return Result{}, fmt.Errorf("malformed node line: %q", sc.Text())
			}
			id, ok := names[f[1]]
			if !ok {
				continue
			}
			x, err1 := strconv.ParseFloat(f[2], 64)
			y, err2 := strconv.ParseFloat(f[3], 64)
			if err1 != nil || err2 != nil {
				return Result{}, fmt.Errorf("malformed node line: %q", sc.Text())
			}
			res.Positions[id] = Point{X: x * pointsPerInch, Y: (height - y) * pointsPerInch}
		case "stop":
			return res, nil
		}
	}
	if err := sc.Err(); err != nil {
		return Result{}, err
	}
	return res, nil
}

var _ Engine = Dot{}
