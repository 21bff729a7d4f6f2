package pipeline

import (
	"context"
	"fmt"

	"github.com/ocifkit/ocifkit/pkg/diagram"
	"github.com/ocifkit/ocifkit/pkg/render"
	"github.com/ocifkit/ocifkit/pkg/render/jsoncanvas"
	"github.com/ocifkit/ocifkit/pkg/render/layoutjson"
	"github.com/ocifkit/ocifkit/pkg/render/nodelink"
	"github.com/ocifkit/ocifkit/pkg/render/svg"
	"github.com/ocifkit/ocifkit/pkg/render/tldraw"
)

// Render generates output artifacts in the requested formats. The SVG
// drawing is rendered once and reused for PDF and PNG conversion.
func Render(ctx context.Context, d *diagram.Diagram, opts Options) (map[string][]byte, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var drawing []byte
	svgData := func() []byte {
		if drawing == nil {
			drawing = svg.Render(d)
		}
		return drawing
	}
	dot := func() string {
		return nodelink.ToDOT(d, nodelink.Options{Pinned: opts.Pinned, Labels: opts.Labels})
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svgData()
		case FormatTldraw:
			data, err = tldraw.Render(d, tldraw.Options{Timestamp: opts.Timestamp})
		case FormatCanvas:
			data, err = jsoncanvas.Render(d)
		case FormatDOT:
			data = []byte(dot())
		case FormatGraphviz:
			data, err = nodelink.RenderSVG(ctx, dot(), graphvizEngine(opts))
		case FormatLayout:
			data, err = layoutjson.Render(d)
		case FormatPDF:
			data, err = render.ToPDF(ctx, svgData())
		case FormatPNG:
			data, err = render.ToPNG(ctx, svgData(), opts.PNGScale)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// graphvizEngine picks neato for pinned output, since dot ignores positions.
func graphvizEngine(opts Options) nodelink.Engine {
	if opts.Pinned {
		return nodelink.EngineNeato
	}
	if opts.Engine == "" {
		return DefaultEngine
	}
	return nodelink.Engine(opts.Engine)
}
