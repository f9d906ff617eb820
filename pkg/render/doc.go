// Package render draws resolved dependency trees.
//
// # Node-Link Diagrams
//
// [ToDOT] turns a [resolve.Result] into Graphviz DOT source with one box
// per chosen artifact and one arrow per retained edge. [RenderSVG] lays it
// out in-process with go-graphviz:
//
//	dot := render.ToDOT(result, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(dot)
//
// [ToPDF] and [ToPNG] pipe the SVG through the external rsvg-convert tool
// from librsvg. Without it on PATH they fail with UNSUPPORTED:
//
//	png, err := render.ToPNG(ctx, svg, 2)
//
// # Text Trees
//
// [WriteTree] prints the same tree as indented text, one artifact per
// line, for terminals.
//
// [resolve.Result]: github.com/matzehuels/mavenresolve/pkg/resolve.Result
package render
