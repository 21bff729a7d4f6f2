// Package svg renders laid-out diagrams as standalone SVG documents.
//
// The canvas matches the diagram bounds exactly: width, height and viewBox
// are taken from [diagram.Bounds]. Relations are drawn before nodes so that
// connectors sit behind shapes, and directed relations end in an arrowhead.
//
//	d := diagram.Layout(doc, diagram.DefaultOptions())
//	out := svg.Render(d, svg.WithFontSize(12))
//
// All text and attribute values are XML-escaped. Node colors that are not
// hex codes or CSS color names fall back to the diagram defaults.
package svg

import (
	"bytes"
	"fmt"
	"html"

	"github.com/ocifkit/ocifkit/pkg/diagram"
	"github.com/ocifkit/ocifkit/pkg/errors"
)

const (
	defaultBackground = "#ffffff"
	defaultEdgeColor  = "#94a3b8"
	defaultTextColor  = "#1e293b"
	defaultFontFamily = "Arial"
	defaultFontSize   = 14.0
	cornerRadius      = 8
	markerID          = "arrowhead"
)

// Option configures rendering.
type Option func(*renderer)

type renderer struct {
	background string
	edgeColor  string
	textColor  string
	fontFamily string
	fontSize   float64
}

func WithBackground(color string) Option { return func(r *renderer) { r.background = color } }
func WithEdgeColor(color string) Option  { return func(r *renderer) { r.edgeColor = color } }
func WithTextColor(color string) Option  { return func(r *renderer) { r.textColor = color } }
func WithFontFamily(f string) Option     { return func(r *renderer) { r.fontFamily = f } }
func WithFontSize(size float64) Option   { return func(r *renderer) { r.fontSize = size } }

func newRenderer(opts ...Option) renderer {
	r := renderer{
		background: defaultBackground,
		edgeColor:  defaultEdgeColor,
		textColor:  defaultTextColor,
		fontFamily: defaultFontFamily,
		fontSize:   defaultFontSize,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Render draws d as an SVG document.
func Render(d *diagram.Diagram, opts ...Option) []byte {
	r := newRenderer(opts...)
	b := d.Bounds

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="%s %s %s %s">`+"\n",
		num(b.Width), num(b.Height), num(b.MinX), num(b.MinY), num(b.Width), num(b.Height))
	fmt.Fprintf(&buf, `  <rect x="%s" y="%s" width="100%%" height="100%%" fill="%s"/>`+"\n",
		num(b.MinX), num(b.MinY), attr(r.background))

	r.renderDefs(&buf)

	buf.WriteString(`  <g class="relations">` + "\n")
	for _, rel := range d.Relations {
		r.renderRelation(&buf, rel)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, n := range d.Nodes {
		r.renderNode(&buf, n)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r renderer) renderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	fmt.Fprintf(buf, `    <marker id="%s" markerWidth="10" markerHeight="7" refX="9" refY="3.5" orient="auto">`+"\n", markerID)
	fmt.Fprintf(buf, `      <polygon points="0 0, 10 3.5, 0 7" fill="%s"/>`+"\n", attr(r.edgeColor))
	buf.WriteString("    </marker>\n")
	buf.WriteString("  </defs>\n")
}

func (r renderer) renderRelation(buf *bytes.Buffer, rel diagram.Relation) {
	marker := ""
	if rel.Directed {
		marker = fmt.Sprintf(` marker-end="url(#%s)"`, markerID)
	}
	fmt.Fprintf(buf, `    <path id="relation-%s" d="%s" stroke="%s" stroke-width="2" fill="none"%s>`,
		attr(rel.ID), rel.Path.D(), attr(r.edgeColor), marker)
	fmt.Fprintf(buf, "<title>%s</title></path>\n", html.EscapeString(rel.Title()))
}

func (r renderer) renderNode(buf *bytes.Buffer, n diagram.Node) {
	c := n.Center()
	stroke := color(n.Style.StrokeColor, diagram.DefaultStrokeColor)
	fill := color(n.Style.FillColor, diagram.DefaultFillColor)

	fmt.Fprintf(buf, `    <g id="node-%s">`+"\n", attr(n.ID))
	switch n.Kind {
	case diagram.KindOval:
		fmt.Fprintf(buf, `      <ellipse cx="%s" cy="%s" rx="%s" ry="%s" fill="%s" stroke="%s" stroke-width="%s"/>`+"\n",
			num(c.X), num(c.Y), num(n.Width/2), num(n.Height/2), fill, stroke, num(n.Style.StrokeWidth))
	default:
		fmt.Fprintf(buf, `      <rect x="%s" y="%s" width="%s" height="%s" rx="%d" ry="%d" fill="%s" stroke="%s" stroke-width="%s"/>`+"\n",
			num(n.X), num(n.Y), num(n.Width), num(n.Height), cornerRadius, cornerRadius, fill, stroke, num(n.Style.StrokeWidth))
	}
	fmt.Fprintf(buf, `      <text x="%s" y="%s" font-family="%s" font-size="%s" fill="%s" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		num(c.X), num(c.Y), attr(r.fontFamily), num(r.fontSize), attr(r.textColor), html.EscapeString(n.Text))
	buf.WriteString("    </g>\n")
}

func color(c, fallback string) string {
	if errors.ValidateColor(c) != nil {
		return fallback
	}
	return c
}

func attr(s string) string { return html.EscapeString(s) }

func num(v float64) string { return diagram.Num(v) }
