// Package layoutjson serializes computed diagram layouts.
//
// The output carries every node's final geometry and style, every resolved
// relation with its connector path and SVG path data, the canvas bounds and
// any layout warnings. Other tools can draw the diagram from it without
// re-implementing placement or boundary clipping, and [Unmarshal] reads it
// back for rendering later.
package layoutjson

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/ocifkit/ocifkit/pkg/diagram"
)

// Version is the layout file format version.
const Version = 1

// Layout is the serialized form of a diagram.
type Layout struct {
	Version   int            `json:"version"`
	Nodes     []diagram.Node `json:"nodes"`
	Relations []Relation     `json:"relations"`
	Bounds    diagram.Bounds `json:"bounds"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// Relation adds rendered path data to a diagram relation.
type Relation struct {
	diagram.Relation
	D string `json:"d"`
}

// Export converts a diagram into its serializable layout.
func Export(d *diagram.Diagram) Layout {
	l := Layout{
		Version:   Version,
		Nodes:     d.Nodes,
		Relations: make([]Relation, len(d.Relations)),
		Bounds:    d.Bounds,
		Warnings:  d.Warnings,
	}
	if l.Nodes == nil {
		l.Nodes = []diagram.Node{}
	}
	for i, r := range d.Relations {
		l.Relations[i] = Relation{Relation: r, D: r.Path.D()}
	}
	return l
}

// Diagram converts a layout back into a diagram.
func (l Layout) Diagram() *diagram.Diagram {
	d := &diagram.Diagram{
		Nodes:     l.Nodes,
		Relations: make([]diagram.Relation, len(l.Relations)),
		Bounds:    l.Bounds,
		Warnings:  l.Warnings,
	}
	for i, r := range l.Relations {
		d.Relations[i] = r.Relation
	}
	return d
}

// Render returns the pretty-printed JSON layout of d.
func Render(d *diagram.Diagram) ([]byte, error) {
	data, err := json.MarshalIndent(Export(d), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a layout and checks that every relation references
// known nodes.
func Unmarshal(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.Version != Version {
		return Layout{}, fmt.Errorf("unsupported layout version %d", l.Version)
	}

	ids := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		ids[n.ID] = true
	}
	for _, r := range l.Relations {
		if !ids[r.From] || !ids[r.To] {
			return Layout{}, fmt.Errorf("relation %q references unknown node", r.ID)
		}
	}
	return l, nil
}
