package diagram

import (
	"math"
	"strconv"
)

// =============================================================================
// Nodes
// =============================================================================

// Kind is the drawn shape of a node.
type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindOval      Kind = "oval"
)

// Style holds the stroke and fill of a node.
type Style struct {
	StrokeWidth float64 `json:"strokeWidth" bson:"stroke_width"`
	StrokeColor string  `json:"strokeColor" bson:"stroke_color"`
	FillColor   string  `json:"fillColor" bson:"fill_color"`
}

// Node is a positioned shape. X and Y are the top-left corner.
type Node struct {
	ID     string  `json:"id" bson:"id"`
	Kind   Kind    `json:"kind" bson:"kind"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Text   string  `json:"text" bson:"text"`
	Style  Style   `json:"style" bson:"style"`
}

// Center returns the center of the node's box.
func (n Node) Center() Point { return Point{n.X + n.Width/2, n.Y + n.Height/2} }

// Right returns the x coordinate of the node's right edge.
func (n Node) Right() float64 { return n.X + n.Width }

// Bottom returns the y coordinate of the node's bottom edge.
func (n Node) Bottom() float64 { return n.Y + n.Height }

// =============================================================================
// Relations
// =============================================================================

// RawRelation is a relation that still references its endpoints by id.
type RawRelation struct {
	ID       string `json:"id" bson:"id"`
	From     string `json:"from" bson:"from"`
	To       string `json:"to" bson:"to"`
	Type     string `json:"type" bson:"type"`
	Rel      string `json:"rel,omitempty" bson:"rel,omitempty"`
	Directed bool   `json:"directed" bson:"directed"`
}

// Relation is a RawRelation whose endpoints both resolved, with its
// connector geometry.
type Relation struct {
	RawRelation `bson:",inline"`
	Path        Path `json:"path" bson:"path"`
}

// Title is the hover label of a relation: "type (rel)", or just the type
// when the relation has no rel.
func (r Relation) Title() string {
	if r.Rel == "" {
		return r.Type
	}
	return r.Type + " (" + r.Rel + ")"
}

// =============================================================================
// Geometry
// =============================================================================

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// PathKind selects how a connector is drawn.
type PathKind string

const (
	PathStraight PathKind = "straight"
	PathCurved   PathKind = "curved"
)

// Path is a connector between two nodes. C1 and C2 are the Bézier control
// points and are only meaningful for curved paths.
type Path struct {
	Kind  PathKind `json:"kind" bson:"kind"`
	Start Point    `json:"start" bson:"start"`
	End   Point    `json:"end" bson:"end"`
	C1    Point    `json:"c1" bson:"c1,omitempty"`
	C2    Point    `json:"c2" bson:"c2,omitempty"`
}

// D returns the path as SVG path data.
func (p Path) D() string {
	if p.Kind == PathCurved {
		return "M " + Num(p.Start.X) + " " + Num(p.Start.Y) +
			" C " + Num(p.C1.X) + " " + Num(p.C1.Y) +
			", " + Num(p.C2.X) + " " + Num(p.C2.Y) +
			", " + Num(p.End.X) + " " + Num(p.End.Y)
	}
	return "M " + Num(p.Start.X) + " " + Num(p.Start.Y) + " L " + Num(p.End.X) + " " + Num(p.End.Y)
}

// Bounds is the axis-aligned canvas extent of a diagram.
type Bounds struct {
	MinX   float64 `json:"minX" bson:"min_x"`
	MinY   float64 `json:"minY" bson:"min_y"`
	MaxX   float64 `json:"maxX" bson:"max_x"`
	MaxY   float64 `json:"maxY" bson:"max_y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Num formats a coordinate rounded to two decimals without trailing zeros.
func Num(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// =============================================================================
// Diagram
// =============================================================================

// Model is the output of [Build]: nodes plus unresolved relations.
type Model struct {
	Nodes     []Node        `json:"nodes"`
	Relations []RawRelation `json:"relations"`
	Warnings  []string      `json:"warnings,omitempty"`
}

// Diagram is a fully laid-out document ready for rendering.
type Diagram struct {
	Nodes     []Node     `json:"nodes" bson:"nodes"`
	Relations []Relation `json:"relations" bson:"relations"`
	Bounds    Bounds     `json:"bounds" bson:"bounds"`
	Warnings  []string   `json:"warnings,omitempty" bson:"warnings,omitempty"`
}

// Node looks up a node by id.
func (d *Diagram) Node(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
