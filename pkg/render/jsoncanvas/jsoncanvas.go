// Package jsoncanvas exports laid-out diagrams in the JSON Canvas 1.0 format
// (https://jsoncanvas.org), as read by Obsidian and other canvas tools.
//
// Nodes become text nodes with integer geometry. Relations become edges whose
// fromSide/toSide are taken from the direction between the node centers.
// Edge ids are name-based UUIDs, so exporting the same diagram twice yields
// the same file.
package jsoncanvas

import (
	"fmt"
	"math"
	"regexp"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/ocifkit/ocifkit/pkg/diagram"
)

// Side names a node edge an edge attaches to.
type Side string

const (
	SideTop    Side = "top"
	SideRight  Side = "right"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
)

// Canvas is a JSON Canvas document.
type Canvas struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a JSON Canvas text node.
type Node struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Text   string `json:"text"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Color  string `json:"color,omitempty"`
}

// Edge is a JSON Canvas edge.
type Edge struct {
	ID       string `json:"id"`
	FromNode string `json:"fromNode"`
	FromSide Side   `json:"fromSide,omitempty"`
	FromEnd  string `json:"fromEnd,omitempty"`
	ToNode   string `json:"toNode"`
	ToSide   Side   `json:"toSide,omitempty"`
	ToEnd    string `json:"toEnd,omitempty"`
	Label    string `json:"label,omitempty"`
}

// edgeNamespace scopes the name-based edge ids.
var edgeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://jsoncanvas.org/edge"))

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Build converts d into a Canvas.
func Build(d *diagram.Diagram) Canvas {
	c := Canvas{
		Nodes: make([]Node, 0, len(d.Nodes)),
		Edges: make([]Edge, 0, len(d.Relations)),
	}
	byID := make(map[string]diagram.Node, len(d.Nodes))
	for _, n := range d.Nodes {
		byID[n.ID] = n
		node := Node{
			ID:     n.ID,
			Type:   "text",
			Text:   n.Text,
			X:      round(n.X),
			Y:      round(n.Y),
			Width:  round(n.Width),
			Height: round(n.Height),
		}
		// JSON Canvas accepts preset numbers or 6-digit hex only.
		if hexColor.MatchString(n.Style.StrokeColor) {
			node.Color = n.Style.StrokeColor
		}
		c.Nodes = append(c.Nodes, node)
	}

	for _, r := range d.Relations {
		from, to := byID[r.From], byID[r.To]
		fc, tc := from.Center(), to.Center()
		e := Edge{
			ID:       uuid.NewSHA1(edgeNamespace, []byte(r.ID+"\x00"+r.From+"\x00"+r.To)).String(),
			FromNode: r.From,
			FromSide: facing(fc, tc),
			ToNode:   r.To,
			ToSide:   facing(tc, fc),
			ToEnd:    "arrow",
			Label:    r.Title(),
		}
		if !r.Directed {
			e.ToEnd = "none"
		}
		c.Edges = append(c.Edges, e)
	}
	return c
}

// Render returns the indented JSON encoding of [Build].
func Render(d *diagram.Diagram) ([]byte, error) {
	data, err := json.MarshalIndent(Build(d), "", "\t")
	if err != nil {
		return nil, fmt.Errorf("encode canvas: %w", err)
	}
	return data, nil
}

// facing returns the side of a node centered at from that faces to.
// Coincident centers face right.
func facing(from, to diagram.Point) Side {
	dx, dy := to.X-from.X, to.Y-from.Y
	if math.Abs(dx) >= math.Abs(dy) {
		if dx < 0 {
			return SideLeft
		}
		return SideRight
	}
	if dy < 0 {
		return SideTop
	}
	return SideBottom
}

func round(v float64) int { return int(math.Round(v)) }
