// Package tldraw exports laid-out diagrams as tldraw (.tldr) files.
//
// Every node becomes a group shape holding one geo shape (rectangle or
// ellipse) with the node's text as label; the node's original style is kept
// in the group's meta. Every relation becomes an arrow shape plus two arrow
// bindings that attach its start and end terminals to the endpoint shapes.
//
// Only the records tldraw needs to open the file are emitted. Session state
// such as cursor, menus and presence uses fixed defaults.
package tldraw

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/ocifkit/ocifkit/pkg/diagram"
)

// FileFormatVersion is the tldrawFileFormatVersion written to the envelope.
const FileFormatVersion = 1

const (
	pageID = "page:page"

	shapeTypeName   = "shape"
	bindingTypeName = "binding"
)

// sequences lists the record schema versions the export conforms to.
var sequences = map[string]int{
	"com.tldraw.store":               4,
	"com.tldraw.asset":               1,
	"com.tldraw.camera":              1,
	"com.tldraw.document":            2,
	"com.tldraw.instance":            25,
	"com.tldraw.instance_page_state": 5,
	"com.tldraw.page":                1,
	"com.tldraw.instance_presence":   5,
	"com.tldraw.pointer":             1,
	"com.tldraw.shape":               4,
	"com.tldraw.asset.bookmark":      1,
	"com.tldraw.asset.image":         3,
	"com.tldraw.asset.video":         3,
	"com.tldraw.shape.group":         0,
	"com.tldraw.shape.text":          2,
	"com.tldraw.shape.bookmark":      2,
	"com.tldraw.shape.draw":          1,
	"com.tldraw.shape.geo":           8,
	"com.tldraw.shape.note":          6,
	"com.tldraw.shape.line":          4,
	"com.tldraw.shape.frame":         0,
	"com.tldraw.shape.arrow":         4,
	"com.tldraw.shape.highlight":     0,
	"com.tldraw.shape.embed":         4,
	"com.tldraw.shape.image":         3,
	"com.tldraw.shape.video":         2,
	"com.tldraw.binding.arrow":       0,
}

// Options configures the export.
type Options struct {
	// Timestamp is written as the pointer's lastActivityTimestamp (Unix ms).
	// Zero keeps the output reproducible.
	Timestamp int64
	// PageName names the single page. Defaults to "Page 1".
	PageName string
}

// File is the .tldr envelope.
type File struct {
	TldrawFileFormatVersion int    `json:"tldrawFileFormatVersion"`
	Schema                  Schema `json:"schema"`
	Records                 []any  `json:"records"`
}

// Schema identifies record versions.
type Schema struct {
	SchemaVersion int            `json:"schemaVersion"`
	Sequences     map[string]int `json:"sequences"`
}

type meta map[string]any

type vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type shape struct {
	ID       string  `json:"id"`
	TypeName string  `json:"typeName"`
	Type     string  `json:"type"`
	ParentID string  `json:"parentId"`
	Index    string  `json:"index"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	IsLocked bool    `json:"isLocked"`
	Opacity  float64 `json:"opacity"`
	Meta     meta    `json:"meta"`
	Props    any     `json:"props"`
}

type geoProps struct {
	W             float64 `json:"w"`
	H             float64 `json:"h"`
	Geo           string  `json:"geo"`
	Color         string  `json:"color"`
	LabelColor    string  `json:"labelColor"`
	Fill          string  `json:"fill"`
	Dash          string  `json:"dash"`
	Size          string  `json:"size"`
	Font          string  `json:"font"`
	Text          string  `json:"text"`
	Align         string  `json:"align"`
	VerticalAlign string  `json:"verticalAlign"`
	GrowY         float64 `json:"growY"`
	URL           string  `json:"url"`
}

type arrowProps struct {
	Dash           string  `json:"dash"`
	Size           string  `json:"size"`
	Fill           string  `json:"fill"`
	Color          string  `json:"color"`
	LabelColor     string  `json:"labelColor"`
	Bend           float64 `json:"bend"`
	Start          vec     `json:"start"`
	End            vec     `json:"end"`
	ArrowheadStart string  `json:"arrowheadStart"`
	ArrowheadEnd   string  `json:"arrowheadEnd"`
	Text           string  `json:"text"`
	LabelPosition  float64 `json:"labelPosition"`
	Font           string  `json:"font"`
}

type binding struct {
	ID       string       `json:"id"`
	TypeName string       `json:"typeName"`
	Type     string       `json:"type"`
	FromID   string       `json:"fromId"`
	ToID     string       `json:"toId"`
	Meta     meta         `json:"meta"`
	Props    bindingProps `json:"props"`
}

type bindingProps struct {
	IsPrecise        bool   `json:"isPrecise"`
	IsExact          bool   `json:"isExact"`
	NormalizedAnchor vec    `json:"normalizedAnchor"`
	Terminal         string `json:"terminal"`
}

// Build assembles the tldraw file for d.
func Build(d *diagram.Diagram, opts Options) File {
	if opts.PageName == "" {
		opts.PageName = "Page 1"
	}
	f := File{
		TldrawFileFormatVersion: FileFormatVersion,
		Schema:                  Schema{SchemaVersion: 2, Sequences: sequences},
		Records:                 baseRecords(opts),
	}

	shapeIDs := make(map[string]bool, len(d.Nodes))
	for i, n := range d.Nodes {
		id := ShapeID(n.ID)
		shapeIDs[id] = true
		f.Records = append(f.Records, nodeGroup(n, id, i), nodeGeo(n, id))
	}

	for i, r := range d.Relations {
		id := ShapeID(r.ID)
		if shapeIDs[id] {
			id = ShapeID(r.ID + "_arrow")
		}
		shapeIDs[id] = true
		f.Records = append(f.Records, arrow(r, id, len(d.Nodes)+i))
		f.Records = append(f.Records,
			arrowBinding(id, ShapeID(r.From), "start"),
			arrowBinding(id, ShapeID(r.To), "end"))
	}
	return f
}

// Render returns the indented JSON encoding of [Build].
func Render(d *diagram.Diagram, opts Options) ([]byte, error) {
	data, err := json.MarshalIndent(Build(d, opts), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tldraw file: %w", err)
	}
	return data, nil
}

// ShapeID returns the record id of the shape created for a node id.
func ShapeID(id string) string { return "shape:" + id }

func nodeGroup(n diagram.Node, shapeID string, i int) shape {
	return shape{
		ID:       shapeID + "_group",
		TypeName: shapeTypeName,
		Type:     "group",
		ParentID: pageID,
		Index:    Index(i),
		X:        n.X,
		Y:        n.Y,
		Opacity:  1,
		Meta: meta{
			"isOCIFNode": true,
			"nodeInfo": meta{
				"id":          n.ID,
				"kind":        string(n.Kind),
				"strokeColor": n.Style.StrokeColor,
				"fillColor":   n.Style.FillColor,
				"strokeWidth": n.Style.StrokeWidth,
				"text":        n.Text,
			},
		},
		Props: meta{},
	}
}

func nodeGeo(n diagram.Node, shapeID string) shape {
	geo := "rectangle"
	if n.Kind == diagram.KindOval {
		geo = "ellipse"
	}
	return shape{
		ID:       shapeID,
		TypeName: shapeTypeName,
		Type:     "geo",
		ParentID: shapeID + "_group",
		Index:    Index(0),
		Opacity:  1,
		Meta:     meta{},
		Props: geoProps{
			W:             n.Width,
			H:             n.Height,
			Geo:           geo,
			Color:         "black",
			LabelColor:    "black",
			Fill:          "none",
			Dash:          "draw",
			Size:          "s",
			Font:          "draw",
			Text:          n.Text,
			Align:         "middle",
			VerticalAlign: "middle",
		},
	}
}

func arrow(r diagram.Relation, shapeID string, i int) shape {
	start, end := r.Path.Start, r.Path.End
	head := "arrow"
	if !r.Directed {
		head = "none"
	}
	return shape{
		ID:       shapeID,
		TypeName: shapeTypeName,
		Type:     "arrow",
		ParentID: pageID,
		Index:    Index(i),
		X:        start.X,
		Y:        start.Y,
		Opacity:  1,
		Meta:     meta{"relation": meta{"id": r.ID, "type": r.Type, "rel": r.Rel}},
		Props: arrowProps{
			Dash:           "draw",
			Size:           "m",
			Fill:           "none",
			Color:          "black",
			LabelColor:     "black",
			End:            vec{end.X - start.X, end.Y - start.Y},
			ArrowheadStart: "none",
			ArrowheadEnd:   head,
			LabelPosition:  0.5,
			Font:           "draw",
		},
	}
}

func arrowBinding(arrowID, targetID, terminal string) binding {
	return binding{
		ID:       "binding:" + arrowID[len("shape:"):] + "_" + terminal,
		TypeName: bindingTypeName,
		Type:     "arrow",
		FromID:   arrowID,
		ToID:     targetID,
		Meta:     meta{},
		Props: bindingProps{
			IsPrecise:        true,
			NormalizedAnchor: vec{0.5, 0.5},
			Terminal:         terminal,
		},
	}
}

func baseRecords(opts Options) []any {
	return []any{
		meta{"id": "document:document", "typeName": "document", "gridSize": 10, "name": "", "meta": meta{}},
		meta{"id": "pointer:pointer", "typeName": "pointer", "x": 0, "y": 0, "lastActivityTimestamp": opts.Timestamp, "meta": meta{}},
		meta{"id": pageID, "typeName": "page", "name": opts.PageName, "index": "a1", "meta": meta{}},
		meta{
			"id":                  "instance:instance",
			"typeName":            "instance",
			"currentPageId":       pageID,
			"followingUserId":     nil,
			"opacityForNextShape": 1,
			"stylesForNextShape":  meta{},
			"brush":               nil,
			"scribbles":           []any{},
			"cursor":              meta{"type": "default", "rotation": 0},
			"isFocusMode":         false,
			"exportBackground":    true,
			"isDebugMode":         false,
			"isToolLocked":        false,
			"screenBounds":        meta{"x": 0, "y": 0, "w": 1280, "h": 800},
			"insets":              []bool{false, false, false, false},
			"zoomBrush":           nil,
			"isGridMode":          false,
			"isPenMode":           false,
			"chatMessage":         "",
			"isChatting":          false,
			"highlightedUserIds":  []string{},
			"isFocused":           true,
			"devicePixelRatio":    2,
			"isCoarsePointer":     false,
			"isHoveringCanvas":    nil,
			"openMenus":           []string{},
			"isChangingStyle":     false,
			"isReadonly":          false,
			"duplicateProps":      nil,
			"meta":                meta{},
		},
		meta{
			"id":               "instance_page_state:" + pageID,
			"typeName":         "instance_page_state",
			"pageId":           pageID,
			"editingShapeId":   nil,
			"croppingShapeId":  nil,
			"selectedShapeIds": []string{},
			"hoveredShapeId":   nil,
			"erasingShapeIds":  []string{},
			"hintingShapeIds":  []string{},
			"focusedGroupId":   nil,
			"meta":             meta{},
		},
		meta{"id": "camera:" + pageID, "typeName": "camera", "x": 0, "y": 0, "z": 1, "meta": meta{}},
	}
}

const indexDigits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Index returns the i-th (0-based) tldraw fractional index key: "a1", "a2",
// ... "az", "b10", ... Keys sort lexicographically in creation order.
func Index(i int) string {
	n := i + 1
	base := len(indexDigits)
	width, head := 1, byte('a')
	for limit := base; n >= limit; limit *= base {
		width++
		head++
	}
	digits := make([]byte, width)
	for k := width - 1; k >= 0; k-- {
		digits[k] = indexDigits[n%base]
		n /= base
	}
	return string(head) + string(digits)
}
