package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/ocifkit/ocifkit/pkg/diagram"
)

func testDiagram() *diagram.Diagram {
	nodes := []diagram.Node{
		{ID: "a", Kind: diagram.KindRectangle, X: 0, Y: 0, Width: 144, Height: 72, Text: `say "hi"`,
			Style: diagram.Style{StrokeWidth: 2, StrokeColor: "#64748b", FillColor: "#f8fafc"}},
		{ID: "b", Kind: diagram.KindOval, X: 288, Y: 0, Width: 144, Height: 72, Text: "B",
			Style: diagram.Style{StrokeWidth: 1, StrokeColor: "not a color;", FillColor: "white"}},
	}
	raw := []diagram.RawRelation{
		{ID: "r1", From: "a", To: "b", Type: "@ocif/rel/edge", Rel: "calls", Directed: true},
		{ID: "r2", From: "b", To: "a", Type: "@ocif/rel/edge", Directed: false},
	}
	rels, _ := diagram.ResolveRelations(raw, nodes, diagram.ConnectorStraight)
	return &diagram.Diagram{Nodes: nodes, Relations: rels, Bounds: diagram.ComputeBounds(nodes)}
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(testDiagram(), Options{})

	for _, want := range []string{
		"digraph G",
		`"a" [label="say \"hi\""`,
		`"b" [label="B", shape=ellipse`,
		`"a" -> "b" [label="calls"]`,
		`"b" -> "a" [dir=none]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %s\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "pos=") {
		t.Error("unpinned output contains positions")
	}
}

func TestToDOT_Colors(t *testing.T) {
	dot := ToDOT(testDiagram(), Options{})
	if !strings.Contains(dot, `fillcolor="white"`) {
		t.Error("named fill color dropped")
	}
	if strings.Contains(dot, "not a color") {
		t.Error("invalid color leaked into DOT")
	}
}

func TestToDOT_Pinned(t *testing.T) {
	dot := ToDOT(testDiagram(), Options{Pinned: true})
	// a is centered at (72, 36) -> (1in, -0.5in)
	if !strings.Contains(dot, `pos="1.000,-0.500!"`) {
		t.Errorf("missing pinned position\n%s", dot)
	}
	if !strings.Contains(dot, "width=2.000") || !strings.Contains(dot, "fixedsize=true") {
		t.Errorf("missing fixed size\n%s", dot)
	}
}

func TestToDOT_Labels(t *testing.T) {
	dot := ToDOT(testDiagram(), Options{Labels: true})
	if !strings.Contains(dot, `"b" -> "a" [label="@ocif/rel/edge", dir=none]`) {
		t.Errorf("type label missing\n%s", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testDiagram(), Options{}), EngineDot)
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Errorf("output is not SVG: %.200s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("no viewBox changed input: %s", got)
	}
}
