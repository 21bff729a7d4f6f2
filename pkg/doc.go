// Package pkg provides the core libraries of ocifkit, a validator and
// diagram exporter for the Open Canvas Interchange Format (OCIF).
//
// # Overview
//
// ocifkit reads OCIF documents written as JSON or JSON5, checks them against
// the OCIF JSON schema and reports every violation with its line and column.
// Valid documents are laid out as node-and-relation diagrams and exported to
// drawing and whiteboard formats. The pkg directory is organized into four
// main areas:
//
//  1. [validate] and [locate] - Schema validation with source positions
//  2. [ocif] and [diagram] - Document model and diagram layout
//  3. [render] - Output formats (SVG, tldraw, JSON Canvas, Graphviz, PDF, PNG)
//  4. [pipeline] - Orchestration (validate → layout → render) with [cache]
//
// # Architecture
//
// The typical data flow:
//
//	document.ocif.json / .json5
//	         ↓
//	    [validate] package (parse, schema check, locate errors)
//	         ↓
//	    [diagram] package (build model, grid layout, connectors)
//	         ↓
//	    [render] packages
//	         ↓
//	SVG/tldraw/Canvas/DOT/PDF/PNG output
//
// # Quick Start
//
// Validate a document and render it as SVG:
//
//	import (
//	    "context"
//	    "github.com/ocifkit/ocifkit/pkg/pipeline"
//	    "github.com/ocifkit/ocifkit/pkg/validate"
//	)
//
//	// 1. Build a checker for the OCIF schema
//	v, _ := validate.NewOCIFValidator()
//	runner := pipeline.NewRunner(validate.NewChecker(v), nil, nil, nil)
//
//	// 2. Run the pipeline
//	res, err := runner.Export(context.Background(), src, pipeline.Options{
//	    Formats:   []string{pipeline.FormatSVG, pipeline.FormatTldraw},
//	    Connector: "curved",
//	})
//
//	// 3. Invalid documents carry their report
//	var invalid *pipeline.InvalidDocumentError
//	if errors.As(err, &invalid) {
//	    for _, e := range invalid.Report.Errors {
//	        fmt.Println(e)
//	    }
//	}
//
// # Main Packages
//
// ## Validation
//
// [validate] - Parses JSON with a JSON5 fallback and runs the schema
// validator. Every violation becomes a LocatedError holding the JSON pointer,
// message, line, column and the offending source line.
//
// [locate] - Maps a JSON pointer to a line and column in the source text.
//
// ## Model and Layout
//
// [ocif] - Typed OCIF document model and the embedded schema.
//
// [diagram] - Builds the diagram model from a document, resolves relations
// and computes connector geometry (straight or curved).
//
// ## Rendering
//
// [render] - SVG, tldraw, JSON Canvas, Graphviz DOT and layout JSON
// renderers, plus PDF and PNG conversion.
//
// ## Infrastructure
//
// [pipeline] - Runs validate, layout and render with caching at each stage.
//
// [cache] - File, Redis and MongoDB caches keyed by document hash.
//
// [config] - TOML configuration file.
//
// [errors] - Error codes shared by the CLI and the HTTP API.
//
// [observability] - Hooks for metrics and tracing.
//
// [validate]: https://pkg.go.dev/github.com/ocifkit/ocifkit/pkg/validate
// [locate]: https://pkg.go.dev/github.com/ocifkit/ocifkit/pkg/locate
// [ocif]: https://pkg.go.dev/github.com/ocifkit/ocifkit/pkg/ocif
// [diagram]: https://pkg.go.dev/github.com/ocifkit/ocifkit/pkg/diagram
// [render]: https://pkg.go.dev/github.com/ocifkit/ocifkit/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/ocifkit/ocifkit/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/ocifkit/ocifkit/pkg/cache
// [config]: https://pkg.go.dev/github.com/ocifkit/ocifkit/pkg/config
// [errors]: https://pkg.go.dev/github.com/ocifkit/ocifkit/pkg/errors
// [observability]: https://pkg.go.dev/github.com/ocifkit/ocifkit/pkg/observability
package pkg
