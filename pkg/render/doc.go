// Package render turns laid-out task graphs into images.
//
// # Overview
//
// Two renderers are provided:
//
//   - [svg]: draws a [graph.Data] produced by the layout package as SVG,
//     with nested groups as containers and sequence edges as arrows
//   - [nodelink]: converts projected data to Graphviz DOT with one cluster
//     per group and renders it with Graphviz
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). Both renderers use them.
//
//	svg := svg.Render(data)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [svg]: github.com/matzehuels/possible/pkg/render/svg
// [nodelink]: github.com/matzehuels/possible/pkg/render/nodelink
// [graph.Data]: github.com/matzehuels/possible/pkg/graph.Data
package render
