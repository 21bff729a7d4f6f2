package locate

import (
	"reflect"
	"testing"
)

const sampleDoc = `{
  "ocif": "https://canvasprotocol.org/ocif/v0.4",
  "nodes": [
    {"id": "n1", "position": [10, 20]},
    {
      "id": "n2",
      "position": [30, 40]
    }
  ]
}`

func TestLocate(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		pointer string
		want    Position
	}{
		{"value not key", `{"a": {"b": 1}}`, "/a/b", Position{1, 13}},
		{"object value", `{"a": {"b": 1}}`, "/a", Position{1, 7}},
		{"top-level member", sampleDoc, "/ocif", Position{2, 11}},
		{"array element object", sampleDoc, "/nodes/1", Position{5, 5}},
		{"nested in first element", sampleDoc, "/nodes/0/position", Position{4, 30}},
		{"nested in second element", sampleDoc, "/nodes/1/position", Position{7, 19}},
		{"array index", sampleDoc, "/nodes/0/position/1", Position{4, 35}},
		{"escaped quote in string", `{"a": "x\"y", "b": 2}`, "/b", Position{1, 20}},
		{"duplicate keys first wins", `{"a": 1, "a": 2}`, "/a", Position{1, 7}},
		{"truncated value falls back to key", `{"a": `, "/a", Position{1, 2}},
		{"unicode columns", `{"é": "ü", "b": 1}`, "/b", Position{1, 17}},
		{"escaped pointer token", `{"a/b": true}`, "/a~1b", Position{1, 9}},
		{"unicode escape in key", `{"\u0061": 1, "b": 2}`, "/a", Position{1, 12}},
		{"surrogate pair in key", `{"\ud83d\ude00": 1}`, "/😀", Position{1, 18}},
		{"newline escape in key", `{"x\ny": 1}`, "/x\ny", Position{1, 10}},
		{"escaped quote in key", `{"q\"": 1}`, "/q\"", Position{1, 9}},
		{"json5 unicode escape in single-quoted key", `{'\u0062': [0]}`, "/b/0", Position{1, 13}},
		{"truncated unicode escape", `{"\u00": 1, "b": 2}`, "/b", Position{1, 18}},
		{"missing path", sampleDoc, "/nodes/7", Origin},
		{"root empty", sampleDoc, "", Origin},
		{"root slash", sampleDoc, "/", Origin},
		{"empty source", "", "/a", Origin},
		{"whitespace source", "  \n\t\n", "/a", Origin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Locate(tt.src, tt.pointer); got != tt.want {
				t.Errorf("Locate(%q) = %+v, want %+v", tt.pointer, got, tt.want)
			}
		})
	}
}

func TestFind(t *testing.T) {
	if _, ok := Find(sampleDoc, "/nodes/0/id"); !ok {
		t.Error("Find(/nodes/0/id) not found")
	}
	if pos, ok := Find(sampleDoc, "/nodes/9"); ok || pos != Origin {
		t.Errorf("Find(/nodes/9) = %+v, %v", pos, ok)
	}
	if _, ok := Find(sampleDoc, "/"); ok {
		t.Error("root pointer reported as found")
	}
}

func TestLocateJSON5(t *testing.T) {
	src := `{
  // comment with "quote
  name: 'it\'s', /* block { */ size: [1, 2],
  trailing: [3,],
}`
	if got := Locate(src, "/size"); got != (Position{3, 38}) {
		t.Errorf("Locate(/size) = %+v, want 3:38", got)
	}
	if got := Locate(src, "/name"); got != (Position{3, 9}) {
		t.Errorf("Locate(/name) = %+v, want 3:9", got)
	}
	if got := Locate(src, "/trailing/0"); got != (Position{4, 14}) {
		t.Errorf("Locate(/trailing/0) = %+v, want 4:14", got)
	}
}

func TestLocateCRLF(t *testing.T) {
	src := "{\r\n  \"a\": 1,\r\n  \"b\": 2\r\n}"
	if got := Locate(src, "/b"); got != (Position{3, 8}) {
		t.Errorf("Locate(/b) = %+v, want 3:8", got)
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		pointer string
		want    []string
	}{
		{"", nil},
		{"/", nil},
		{"/nodes/0", []string{"nodes", "0"}},
		{"/a~1b/c~0d", []string{"a/b", "c~d"}},
		{"/~01", []string{"~1"}},
	}
	for _, tt := range tests {
		if got := Segments(tt.pointer); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Segments(%q) = %v, want %v", tt.pointer, got, tt.want)
		}
	}
}

func TestPointer(t *testing.T) {
	if got := Pointer(); got != "/" {
		t.Errorf("Pointer() = %q, want /", got)
	}
	if got := Pointer("nodes", "0", "a/b"); got != "/nodes/0/a~1b" {
		t.Errorf("Pointer = %q", got)
	}
	if got := Segments(Pointer("x~y", "p/q")); !reflect.DeepEqual(got, []string{"x~y", "p/q"}) {
		t.Errorf("round trip = %v", got)
	}
}

func TestLine(t *testing.T) {
	src := "first\n   second line  \nthird"
	if got := Line(src, 2); got != "second line" {
		t.Errorf("Line(2) = %q", got)
	}
	if got := Line(src, 0); got != "" {
		t.Errorf("Line(0) = %q, want empty", got)
	}
	if got := Line(src, 4); got != "" {
		t.Errorf("Line(4) = %q, want empty", got)
	}
}
