// Package svg draws laid-out task graphs as SVG.
//
// [Render] expects data whose nodes carry positions and sizes, as returned
// by layout.Execute. Group nodes are drawn as labelled containers behind
// their children, leaf nodes as rounded boxes and sequence edges as arrows
// clipped to the node borders. Completed nodes are dimmed and followed
// nodes get an accent outline.
//
//	out, _ := layout.Execute(ctx, view.Project(g), layout.Options{})
//	img := svg.Render(out, svg.WithTheme(svg.Dark))
package svg
