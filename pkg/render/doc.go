// Package render provides output formats for laid-out OCIF diagrams.
//
// # Overview
//
// Every renderer consumes a [diagram.Diagram] produced by the layout engine:
//
//   - [svg]: standalone SVG drawing, the primary visual output
//   - [tldraw]: tldraw (.tldr) whiteboard file
//   - [jsoncanvas]: JSON Canvas 1.0 file
//   - [nodelink]: Graphviz DOT source, rendered in-process by go-graphviz
//   - [layoutjson]: the computed layout itself as JSON
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	out := svg.Render(d)
//	pdf, err := render.ToPDF(ctx, out)
//	png, err := render.ToPNG(ctx, out, 2.0)  // 2x scale
//
// [diagram.Diagram]: github.com/ocifkit/ocifkit/pkg/diagram
// [svg]: github.com/ocifkit/ocifkit/pkg/render/svg
// [tldraw]: github.com/ocifkit/ocifkit/pkg/render/tldraw
// [jsoncanvas]: github.com/ocifkit/ocifkit/pkg/render/jsoncanvas
// [nodelink]: github.com/ocifkit/ocifkit/pkg/render/nodelink
// [layoutjson]: github.com/ocifkit/ocifkit/pkg/render/layoutjson
package render
