// Package pipeline runs the validate → layout → render pipeline for OCIF
// documents.
//
// The CLI and the HTTP API both go through a [Runner], so validation
// reports, layouts and artifacts are computed and cached the same way from
// every entry point.
//
// # Stages
//
//  1. Validate: parse JSON or JSON5 and check the document against the OCIF
//     schema, producing a located error report
//  2. Layout: build the diagram model and compute positions and connectors
//  3. Render: produce artifacts in the requested formats
//
// Each stage can be run on its own or through [Runner.Export].
//
// # Usage
//
//	checker := validate.NewChecker(v)
//	runner := pipeline.NewRunner(checker, cache, nil, logger)
//	result, err := runner.Export(ctx, src, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG, pipeline.FormatTldraw},
//	})
//	var invalid *pipeline.InvalidDocumentError
//	if errors.As(err, &invalid) {
//	    // invalid.Report lists every located error
//	}
//	svg := result.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ocifkit/ocifkit/pkg/cache"
	"github.com/ocifkit/ocifkit/pkg/diagram"
	"github.com/ocifkit/ocifkit/pkg/errors"
	"github.com/ocifkit/ocifkit/pkg/render/nodelink"
	"github.com/ocifkit/ocifkit/pkg/validate"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultPNGScale is the rasterization scale for PNG output.
	DefaultPNGScale = 2.0

	// DefaultEngine is the Graphviz engine for graphviz/pdf/png output when
	// positions are not pinned.
	DefaultEngine = nodelink.EngineNeato
)

// Format constants for output formats.
const (
	FormatSVG      = "svg"
	FormatTldraw   = "tldraw"
	FormatCanvas   = "canvas"
	FormatDOT      = "dot"
	FormatGraphviz = "graphviz"
	FormatLayout   = "layout"
	FormatPDF      = "pdf"
	FormatPNG      = "png"
)

// FormatInfo describes how an artifact is stored and served.
type FormatInfo struct {
	Extension   string
	ContentType string
}

// Formats lists every supported output format in display order.
var Formats = []string{
	FormatSVG, FormatTldraw, FormatCanvas, FormatDOT,
	FormatGraphviz, FormatLayout, FormatPDF, FormatPNG,
}

var formatInfo = map[string]FormatInfo{
	FormatSVG:      {"svg", "image/svg+xml"},
	FormatTldraw:   {"tldr", "application/json"},
	FormatCanvas:   {"canvas", "application/json"},
	FormatDOT:      {"dot", "text/vnd.graphviz"},
	FormatGraphviz: {"graphviz.svg", "image/svg+xml"},
	FormatLayout:   {"layout.json", "application/json"},
	FormatPDF:      {"pdf", "application/pdf"},
	FormatPNG:      {"png", "image/png"},
}

// Info returns the file extension and content type of format.
func Info(format string) (FormatInfo, bool) {
	fi, ok := formatInfo[format]
	return fi, ok
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Connector   string  `json:"connector,omitempty"`
	GridPadding float64 `json:"grid_padding,omitempty"`
	GridSpacing float64 `json:"grid_spacing,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Engine   string   `json:"engine,omitempty"`
	Pinned   bool     `json:"pinned,omitempty"`
	Labels   bool     `json:"labels,omitempty"`
	PNGScale float64  `json:"png_scale,omitempty"`

	// Refresh skips cache reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
	// Timestamp is passed to the tldraw export.
	Timestamp int64 `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Report is the validation outcome.
	Report validate.Result

	// DocumentHash is the SHA-256 of the source text.
	DocumentHash string

	// Diagram is the laid-out diagram, nil when the document is invalid.
	Diagram *diagram.Diagram

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount      int
	RelationCount  int
	ValidationTime time.Duration
	LayoutTime     time.Duration
	RenderTime     time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ValidationHit bool
	LayoutHit     bool
	RenderHit     bool // Whether all artifacts came from cache
}

// InvalidDocumentError is returned by [Runner.Export] when the document fails
// validation. Report carries every located error.
type InvalidDocumentError struct {
	Report validate.Result
}

func (e *InvalidDocumentError) Error() string {
	n := len(e.Report.Errors)
	if n == 1 {
		return "invalid document: 1 validation error"
	}
	return fmt.Sprintf("invalid document: %d validation errors", n)
}

// Unwrap exposes the INVALID_DOCUMENT code to errors.Is.
func (e *InvalidDocumentError) Unwrap() error {
	return errors.New(errors.ErrCodeInvalidDocument, "%d validation errors", len(e.Report.Errors))
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if _, ok := formatInfo[format]; !ok {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEngine checks that a Graphviz engine is supported.
func ValidateEngine(engine string) error {
	switch nodelink.Engine(engine) {
	case nodelink.EngineDot, nodelink.EngineNeato:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid engine: %q (must be one of: dot, neato)", engine)
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks option values and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Connector == "" {
		o.Connector = string(diagram.ConnectorStraight)
	}
	if _, err := diagram.ParseConnector(o.Connector); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "connector")
	}
	if o.GridPadding < 0 || o.GridSpacing < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "grid padding and spacing must not be negative")
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Engine == "" {
		o.Engine = string(DefaultEngine)
	}
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}
	if o.PNGScale <= 0 {
		o.PNGScale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// DiagramOptions returns the layout options for the diagram package.
func (o *Options) DiagramOptions() diagram.Options {
	c, _ := diagram.ParseConnector(o.Connector)
	return diagram.Options{
		GridPadding: o.GridPadding,
		GridSpacing: o.GridSpacing,
		Connector:   c,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	k := cache.LayoutKeyOpts{
		Connector:   o.Connector,
		GridPadding: o.GridPadding,
		GridSpacing: o.GridSpacing,
	}
	if k.GridPadding <= 0 {
		k.GridPadding = diagram.DefaultGridPadding
	}
	if k.GridSpacing <= 0 {
		k.GridSpacing = diagram.DefaultGridSpacing
	}
	return k
}

// ArtifactKeyOpts returns cache key options for one artifact. Options that
// do not affect format are left zero so they do not split the cache.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatDOT:
		k.Pinned, k.Labels = o.Pinned, o.Labels
	case FormatGraphviz:
		k.Pinned, k.Labels, k.Engine = o.Pinned, o.Labels, o.Engine
	case FormatPNG:
		k.Scale = o.PNGScale
	case FormatTldraw:
		k.Timestamp = o.Timestamp
	}
	return k
}
