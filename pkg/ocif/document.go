package ocif

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Extension type tags recognized by the diagram builder. Documents in the
// wild use both the @ocif and the older @ocwg namespace.
const (
	TypeRect  = "@ocif/node/rect"
	TypeOval  = "@ocif/node/oval"
	TypeArrow = "@ocif/node/arrow"
	TypeEdge  = "@ocif/rel/edge"
	TypeGroup = "@ocif/rel/group"

	legacyNamespace = "@ocwg/"
	namespace       = "@ocif/"
)

// MimeTextPlain is the representation media type used for node text.
const MimeTextPlain = "text/plain"

// Document is an OCIF canvas document.
type Document struct {
	OCIF      string     `json:"ocif"`
	Nodes     []Node     `json:"nodes,omitempty"`
	Relations []Relation `json:"relations,omitempty"`
	Resources []Resource `json:"resources,omitempty"`
	Schemas   []Schema   `json:"schemas,omitempty"`
}

// Node is a visual element on the canvas.
type Node struct {
	ID       string      `json:"id"`
	Position []float64   `json:"position,omitempty"`
	Size     []float64   `json:"size,omitempty"`
	Resource string      `json:"resource,omitempty"`
	Text     *string     `json:"text,omitempty"`
	Rotation float64     `json:"rotation,omitempty"`
	Data     []Extension `json:"data,omitempty"`
}

// Relation groups one or more typed relation entries.
type Relation struct {
	ID   string      `json:"id"`
	Data []Extension `json:"data,omitempty"`
}

// Resource holds content referenced by nodes.
type Resource struct {
	ID              string           `json:"id"`
	Representations []Representation `json:"representations,omitempty"`
}

// Representation is one encoding of a resource.
type Representation struct {
	Location string `json:"location,omitempty"`
	MimeType string `json:"mime-type,omitempty"`
	Content  string `json:"content,omitempty"`
}

// Schema declares an extension schema used by the document.
type Schema struct {
	URI      string `json:"uri"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// Extension is a type-tagged data entry attached to a node or relation.
// Fields beyond "type" are extension specific, so they are kept untyped and
// read through the accessor methods.
type Extension map[string]any

// Type returns the extension's type tag.
func (e Extension) Type() string {
	s, _ := e.String("type")
	return s
}

// String returns the string field key.
func (e Extension) String(key string) (string, bool) {
	s, ok := e[key].(string)
	return s, ok
}

// Number returns the numeric field key.
func (e Extension) Number(key string) (float64, bool) {
	switch v := e[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// Is reports whether tag names the same extension as want, treating the
// @ocif and @ocwg namespaces as equivalent.
func Is(tag, want string) bool {
	if tag == want {
		return true
	}
	return len(tag) > len(legacyNamespace) && tag[:len(legacyNamespace)] == legacyNamespace &&
		namespace+tag[len(legacyNamespace):] == want
}

// Primary returns the node's first data entry, or nil.
func (n *Node) Primary() Extension {
	if len(n.Data) == 0 {
		return nil
	}
	return n.Data[0]
}

// IsArrow reports whether the node is an arrow pseudo-node rendered as a
// connector rather than a shape.
func (n *Node) IsArrow() bool {
	return Is(n.Primary().Type(), TypeArrow)
}

// Resource looks up a resource by id.
func (d *Document) Resource(id string) (*Resource, bool) {
	if id == "" {
		return nil, false
	}
	for i := range d.Resources {
		if d.Resources[i].ID == id {
			return &d.Resources[i], true
		}
	}
	return nil, false
}

// PlainText returns the content of the first representation whose media type
// is exactly text/plain.
func (r *Resource) PlainText() (string, bool) {
	for _, rep := range r.Representations {
		if rep.MimeType == MimeTextPlain {
			return rep.Content, rep.Content != ""
		}
	}
	return "", false
}

// Unmarshal decodes JSON bytes into a Document.
func Unmarshal(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &d, nil
}

// Decode converts a generic parsed value (as produced by a JSON or JSON5
// parser) into a Document.
func Decode(v any) (*Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return Unmarshal(data)
}
