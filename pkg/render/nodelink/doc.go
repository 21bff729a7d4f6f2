// Package nodelink renders diagrams as Graphviz node-link drawings.
//
// # Overview
//
// [ToDOT] converts a laid-out diagram into Graphviz DOT source. Ovals become
// ellipses, rectangles become rounded boxes, and each node keeps its stroke
// and fill colors. Relations become edges labeled with their rel.
//
// # Usage
//
//	dot := nodelink.ToDOT(d, nodelink.Options{Pinned: true})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.EngineNeato)
//
// The SVG can be converted further with render.ToPDF or render.ToPNG.
//
// # Options
//
//   - Pinned: emit each node's computed position as a pinned pos attribute,
//     so the neato engine reproduces the diagram's own layout. Without it
//     Graphviz lays the graph out from scratch.
//   - Labels: label edges with the relation type when no rel is set.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
