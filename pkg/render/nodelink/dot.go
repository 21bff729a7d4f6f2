package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/ocifkit/ocifkit/pkg/diagram"
	"github.com/ocifkit/ocifkit/pkg/errors"
)

// pointsPerInch converts diagram units to Graphviz inches.
const pointsPerInch = 72.0

// Engine is a Graphviz layout engine.
type Engine string

const (
	EngineDot   Engine = "dot"
	EngineNeato Engine = "neato"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Pinned fixes every node at its computed position.
	Pinned bool
	// Labels labels edges with the relation type when no rel is set.
	Labels bool
}

// ToDOT converts a diagram to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(d *diagram.Diagram, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Arial\", fontsize=14];\n")
	buf.WriteString("  edge [color=\"#94a3b8\", penwidth=2];\n")
	if opts.Pinned {
		buf.WriteString("  splines=true;\n")
	}
	buf.WriteString("\n")

	for _, n := range d.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts.Pinned), ", "))
	}

	buf.WriteString("\n")
	for _, r := range d.Relations {
		var attrs []string
		if label := edgeLabel(r, opts.Labels); label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", label))
		}
		if !r.Directed {
			attrs = append(attrs, "dir=none")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", r.From, r.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", r.From, r.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func edgeLabel(r diagram.Relation, labels bool) string {
	if r.Rel != "" {
		return r.Rel
	}
	if labels {
		return r.Type
	}
	return ""
}

func fmtAttrs(n diagram.Node, pinned bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.Text)}
	if n.Kind == diagram.KindOval {
		attrs = append(attrs, "shape=ellipse", `style="filled"`)
	}
	attrs = append(attrs,
		fmt.Sprintf("color=%q", dotColor(n.Style.StrokeColor, diagram.DefaultStrokeColor)),
		fmt.Sprintf("fillcolor=%q", dotColor(n.Style.FillColor, diagram.DefaultFillColor)),
		fmt.Sprintf("penwidth=%s", diagram.Num(n.Style.StrokeWidth)),
	)
	if pinned {
		c := n.Center()
		// Graphviz y grows upwards.
		attrs = append(attrs,
			fmt.Sprintf("pos=\"%s,%s!\"", inches(c.X), inches(-c.Y)),
			fmt.Sprintf("width=%s", inches(n.Width)),
			fmt.Sprintf("height=%s", inches(n.Height)),
			"fixedsize=true",
		)
	}
	return attrs
}

func dotColor(c, fallback string) string {
	if errors.ValidateColor(c) != nil {
		return fallback
	}
	return c
}

func inches(v float64) string {
	return strconv.FormatFloat(v/pointsPerInch, 'f', 3, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string, engine Engine) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	if engine == EngineNeato {
		gv.SetLayout(graphviz.NEATO)
	}

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
