// Package nodelink renders task graphs as Graphviz node-link diagrams.
//
// Unlike the layout package, which positions nodes itself, nodelink hands the
// whole projected graph to Graphviz. Nodes with visible children become
// clusters, so nested work reads as boxes inside boxes.
//
//	dot := nodelink.ToDOT(view.Project(g), nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)
//
// PDF and PNG conversion require rsvg-convert on PATH.
package nodelink
