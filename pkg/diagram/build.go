package diagram

import (
	"fmt"

	"github.com/ocifkit/ocifkit/pkg/ocif"
)

// Defaults applied by [Build] and [ComputeBounds].
const (
	DefaultWidth       = 120.0
	DefaultHeight      = 60.0
	DefaultGridPadding = 100.0
	DefaultGridSpacing = 100.0
	DefaultStrokeWidth = 2.0
	DefaultStrokeColor = "#64748b"
	DefaultFillColor   = "#f8fafc"
	DefaultText        = "Node"

	// gridColumns is the number of auto-placed nodes per row.
	gridColumns = 3
)

// Connector selects the connector strategy used by [ResolveRelations].
type Connector string

const (
	// ConnectorStraight draws a segment clipped at both shape boundaries.
	ConnectorStraight Connector = "straight"
	// ConnectorCurved draws a cubic Bézier between the unclipped centers.
	ConnectorCurved Connector = "curved"
)

// ParseConnector validates a connector name. The empty string selects
// [ConnectorStraight].
func ParseConnector(s string) (Connector, error) {
	switch Connector(s) {
	case "", ConnectorStraight:
		return ConnectorStraight, nil
	case ConnectorCurved:
		return ConnectorCurved, nil
	}
	return "", fmt.Errorf("unknown connector %q (want straight or curved)", s)
}

// Options configures diagram construction. Zero values select the defaults.
type Options struct {
	GridPadding float64
	GridSpacing float64
	Connector   Connector
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		GridPadding: DefaultGridPadding,
		GridSpacing: DefaultGridSpacing,
		Connector:   ConnectorStraight,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.GridPadding > 0 {
		d.GridPadding = o.GridPadding
	}
	if o.GridSpacing > 0 {
		d.GridSpacing = o.GridSpacing
	}
	if o.Connector != "" {
		d.Connector = o.Connector
	}
	return d
}

// Build converts a document into diagram nodes and unresolved relations.
//
// Nodes keep document order. Arrow pseudo-nodes are skipped, as are later
// entries reusing an id already taken; the latter produce a warning.
func Build(doc *ocif.Document, opts Options) Model {
	opts = opts.withDefaults()
	var m Model
	if doc == nil {
		return m
	}

	seen := make(map[string]bool, len(doc.Nodes))
	for i := range doc.Nodes {
		src := &doc.Nodes[i]
		if src.IsArrow() {
			continue
		}
		if seen[src.ID] {
			m.Warnings = append(m.Warnings, fmt.Sprintf("duplicate node id %q at /nodes/%d ignored", src.ID, i))
			continue
		}
		seen[src.ID] = true
		m.Nodes = append(m.Nodes, buildNode(doc, src, i, opts))
	}

	for g, group := range doc.Relations {
		for i, entry := range group.Data {
			from, _ := entry.String("start")
			to, _ := entry.String("end")
			if from == "" || to == "" {
				continue
			}
			rel, _ := entry.String("rel")
			directed := true
			if d, ok := entry["directed"].(bool); ok {
				directed = d
			}
			m.Relations = append(m.Relations, RawRelation{
				ID:       relationID(group, entry, g, i),
				From:     from,
				To:       to,
				Type:     entry.Type(),
				Rel:      rel,
				Directed: directed,
			})
		}
	}
	return m
}

func buildNode(doc *ocif.Document, src *ocif.Node, index int, opts Options) Node {
	w, h := DefaultWidth, DefaultHeight
	if len(src.Size) >= 2 {
		if src.Size[0] > 0 {
			w = src.Size[0]
		}
		if src.Size[1] > 0 {
			h = src.Size[1]
		}
	}

	var x, y float64
	if len(src.Position) >= 2 {
		x, y = src.Position[0], src.Position[1]
	} else {
		col, row := index%gridColumns, index/gridColumns
		x = opts.GridPadding + float64(col)*(w+opts.GridSpacing)
		y = opts.GridPadding + float64(row)*(h+opts.GridSpacing)
	}

	kind, style := nodeStyle(src.Primary())
	return Node{
		ID:     src.ID,
		Kind:   kind,
		X:      x,
		Y:      y,
		Width:  w,
		Height: h,
		Text:   nodeText(doc, src),
		Style:  style,
	}
}

// nodeText resolves display text: inline text, then the referenced
// resource's text/plain representation, then a placeholder.
func nodeText(doc *ocif.Document, n *ocif.Node) string {
	if n.Text != nil {
		return *n.Text
	}
	if r, ok := doc.Resource(n.Resource); ok {
		if text, ok := r.PlainText(); ok {
			return text
		}
	}
	return DefaultText
}

func nodeStyle(data ocif.Extension) (Kind, Style) {
	kind := KindRectangle
	if ocif.Is(data.Type(), ocif.TypeOval) {
		kind = KindOval
	}
	style := Style{
		StrokeWidth: DefaultStrokeWidth,
		StrokeColor: DefaultStrokeColor,
		FillColor:   DefaultFillColor,
	}
	if w, ok := data.Number("strokeWidth"); ok && w >= 0 {
		style.StrokeWidth = w
	}
	if c, ok := data.String("strokeColor"); ok && c != "" {
		style.StrokeColor = c
	}
	if c, ok := data.String("fillColor"); ok && c != "" {
		style.FillColor = c
	}
	return kind, style
}

func relationID(group ocif.Relation, entry ocif.Extension, g, i int) string {
	if id, ok := entry.String("node"); ok && id != "" {
		return id
	}
	if group.ID == "" {
		return fmt.Sprintf("relation-%d-%d", g, i)
	}
	if len(group.Data) == 1 {
		return group.ID
	}
	return fmt.Sprintf("%s-%d", group.ID, i)
}
