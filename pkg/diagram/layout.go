package diagram

import (
	"fmt"
	"math"

	"github.com/ocifkit/ocifkit/pkg/ocif"
)

// BoundsPadding is added around the node extent on every side.
const BoundsPadding = 50.0

// DefaultBounds is the canvas used for a diagram without nodes.
var DefaultBounds = Bounds{MinX: 0, MinY: 0, MaxX: 800, MaxY: 600, Width: 800, Height: 600}

// ComputeBounds returns the smallest box containing every node, expanded by
// [BoundsPadding]. No nodes yields [DefaultBounds].
func ComputeBounds(nodes []Node) Bounds {
	if len(nodes) == 0 {
		return DefaultBounds
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.X)
		minY = math.Min(minY, n.Y)
		maxX = math.Max(maxX, n.Right())
		maxY = math.Max(maxY, n.Bottom())
	}
	b := Bounds{
		MinX: minX - BoundsPadding,
		MinY: minY - BoundsPadding,
		MaxX: maxX + BoundsPadding,
		MaxY: maxY + BoundsPadding,
	}
	b.Width = b.MaxX - b.MinX
	b.Height = b.MaxY - b.MinY
	return b
}

// ResolveRelations attaches geometry to every relation whose endpoints are
// both present in nodes. Relations with a dangling endpoint are dropped and
// described in the returned warnings.
func ResolveRelations(raw []RawRelation, nodes []Node, c Connector) ([]Relation, []string) {
	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var (
		out      = make([]Relation, 0, len(raw))
		warnings []string
	)
	for _, r := range raw {
		from, okFrom := byID[r.From]
		to, okTo := byID[r.To]
		switch {
		case !okFrom:
			warnings = append(warnings, fmt.Sprintf("relation %q dropped: unknown start node %q", r.ID, r.From))
			continue
		case !okTo:
			warnings = append(warnings, fmt.Sprintf("relation %q dropped: unknown end node %q", r.ID, r.To))
			continue
		}
		out = append(out, Relation{RawRelation: r, Path: Connect(from, to, c)})
	}
	return out, warnings
}

// Layout builds, connects and bounds a document in one step.
func Layout(doc *ocif.Document, opts Options) *Diagram {
	opts = opts.withDefaults()
	m := Build(doc, opts)
	rels, warnings := ResolveRelations(m.Relations, m.Nodes, opts.Connector)
	return &Diagram{
		Nodes:     m.Nodes,
		Relations: rels,
		Bounds:    ComputeBounds(m.Nodes),
		Warnings:  append(m.Warnings, warnings...),
	}
}
