package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ocifkit/ocifkit/pkg/cache"
	ocerrors "github.com/ocifkit/ocifkit/pkg/errors"
	"github.com/ocifkit/ocifkit/pkg/validate"
)

const validDoc = `{
  "ocif": "https://canvasprotocol.org/ocif/v0.4",
  "nodes": [
    {"id": "a", "position": [0, 0], "size": [100, 50], "data": [{"type": "@ocif/node/rect"}]},
    {"id": "b", "position": [300, 0], "size": [100, 50], "data": [{"type": "@ocif/node/oval"}]}
  ],
  "relations": [{"id": "r", "data": [{"type": "@ocif/rel/edge", "start": "a", "end": "b"}]}]
}`

const invalidDoc = `{"nodes": [{"position": [0, 0]}]}`

func newTestRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	v, err := validate.NewOCIFValidator()
	if err != nil {
		t.Fatalf("NewOCIFValidator: %v", err)
	}
	return NewRunner(validate.NewChecker(v), c, nil, nil)
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"tldraw", false},
		{"canvas", false},
		{"dot", false},
		{"graphviz", false},
		{"layout", false},
		{"png", false},
		{"pdf", false},
		{"json", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !ocerrors.Is(err, ocerrors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %q", tt.format, ocerrors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	got := ParseFormats(" svg, TLDRAW,,svg ,canvas")
	want := []string{"svg", "tldraw", "canvas"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ParseFormats = %v, want %v", got, want)
	}
	if got := ParseFormats(""); len(got) != 0 {
		t.Errorf("ParseFormats(\"\") = %v", got)
	}
}

func TestInfo(t *testing.T) {
	for _, f := range Formats {
		fi, ok := Info(f)
		if !ok || fi.Extension == "" || fi.ContentType == "" {
			t.Errorf("Info(%q) = %+v, %v", f, fi, ok)
		}
	}
	if _, ok := Info("bogus"); ok {
		t.Error("Info should reject unknown formats")
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if o.Connector != "straight" || o.Engine != "neato" || o.PNGScale != DefaultPNGScale {
		t.Errorf("defaults = %+v", o)
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatSVG {
		t.Errorf("default formats = %v", o.Formats)
	}
	if o.Logger == nil {
		t.Error("logger not defaulted")
	}

	// Idempotent
	before := o
	if err := o.ValidateAndSetDefaults(); err != nil || o.Connector != before.Connector {
		t.Error("second call changed options")
	}
}

func TestOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code ocerrors.Code
	}{
		{"connector", Options{Connector: "zigzag"}, ocerrors.ErrCodeInvalidInput},
		{"format", Options{Formats: []string{"gif"}}, ocerrors.ErrCodeInvalidFormat},
		{"engine", Options{Engine: "circo"}, ocerrors.ErrCodeInvalidInput},
		{"spacing", Options{GridSpacing: -1}, ocerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		err := tt.opts.ValidateAndSetDefaults()
		if !ocerrors.Is(err, tt.code) {
			t.Errorf("%s: err = %v, want code %s", tt.name, err, tt.code)
		}
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	o := Options{Pinned: true, Labels: true, Engine: "dot", PNGScale: 3}
	if k := o.ArtifactKeyOpts(FormatSVG); k != (cache.ArtifactKeyOpts{Format: FormatSVG}) {
		t.Errorf("svg key opts = %+v", k)
	}
	if k := o.ArtifactKeyOpts(FormatGraphviz); !k.Pinned || !k.Labels || k.Engine != "dot" {
		t.Errorf("graphviz key opts = %+v", k)
	}
	if k := o.ArtifactKeyOpts(FormatPNG); k.Scale != 3 {
		t.Errorf("png key opts = %+v", k)
	}
}

func TestLayoutKeyOptsNormalizesDefaults(t *testing.T) {
	a := Options{Connector: "straight"}
	b := Options{Connector: "straight", GridPadding: 100, GridSpacing: 100}
	if a.LayoutKeyOpts() != b.LayoutKeyOpts() {
		t.Errorf("%+v != %+v", a.LayoutKeyOpts(), b.LayoutKeyOpts())
	}
}

func TestExport(t *testing.T) {
	r := newTestRunner(t, nil)
	res, err := r.Export(context.Background(), []byte(validDoc), Options{
		Formats: []string{FormatSVG, FormatTldraw, FormatCanvas, FormatDOT, FormatLayout},
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !res.Report.Valid {
		t.Fatalf("report = %+v", res.Report)
	}
	if res.Stats.NodeCount != 2 || res.Stats.RelationCount != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if len(res.Artifacts) != 5 {
		t.Fatalf("got %d artifacts", len(res.Artifacts))
	}
	if !strings.Contains(string(res.Artifacts[FormatSVG]), "<ellipse") {
		t.Error("svg missing oval node")
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "digraph G {") {
		t.Errorf("dot = %.40s", res.Artifacts[FormatDOT])
	}
	if res.DocumentHash != cache.Hash([]byte(validDoc)) {
		t.Error("document hash mismatch")
	}
}

func TestExportInvalidDocument(t *testing.T) {
	r := newTestRunner(t, nil)
	res, err := r.Export(context.Background(), []byte(invalidDoc), Options{})

	var invalid *InvalidDocumentError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want *InvalidDocumentError", err)
	}
	if !ocerrors.Is(err, ocerrors.ErrCodeInvalidDocument) {
		t.Errorf("code = %q", ocerrors.GetCode(err))
	}
	if invalid.Report.Valid || len(invalid.Report.Errors) == 0 {
		t.Errorf("report = %+v", invalid.Report)
	}
	if res == nil || res.Diagram != nil || len(res.Artifacts) != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestExportNonFiniteNumbers(t *testing.T) {
	r := newTestRunner(t, nil)
	src := `{ocif: 'https://canvasprotocol.org/ocif/v0.4', nodes: [{id: 'a', position: [Infinity, 0]}, {id: 'b', size: [NaN, 10]}]}`
	res, err := r.Export(context.Background(), []byte(src), Options{})

	var invalid *InvalidDocumentError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want *InvalidDocumentError", err)
	}
	if len(invalid.Report.Errors) != 2 {
		t.Errorf("errors = %+v", invalid.Report.Errors)
	}
	for _, e := range invalid.Report.Errors {
		if e.Message != validate.NonFiniteMessage {
			t.Errorf("unexpected error %v", e)
		}
	}
	if res == nil || res.Diagram != nil {
		t.Errorf("result = %+v", res)
	}
}

func TestExportParseFailure(t *testing.T) {
	r := newTestRunner(t, nil)
	_, err := r.Export(context.Background(), []byte("{nope"), Options{})
	var invalid *InvalidDocumentError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v", err)
	}
	if got := invalid.Report.Errors[0].Message; got != validate.ParseFailureMessage {
		t.Errorf("message = %q", got)
	}
	if invalid.Error() != "invalid document: 1 validation error" {
		t.Errorf("Error() = %q", invalid.Error())
	}
}

func TestExportCaching(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRunner(t, c)
	ctx := context.Background()
	opts := Options{Formats: []string{FormatSVG, FormatCanvas}}

	first, err := r.Export(ctx, []byte(validDoc), opts)
	if err != nil {
		t.Fatalf("first Export: %v", err)
	}
	if first.CacheInfo != (CacheInfo{}) {
		t.Errorf("first run hit cache: %+v", first.CacheInfo)
	}

	second, err := r.Export(ctx, []byte(validDoc), opts)
	if err != nil {
		t.Fatalf("second Export: %v", err)
	}
	want := CacheInfo{ValidationHit: true, LayoutHit: true, RenderHit: true}
	if second.CacheInfo != want {
		t.Errorf("second run cache info = %+v", second.CacheInfo)
	}
	if string(first.Artifacts[FormatSVG]) != string(second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}

	// A new format renders only what is missing.
	opts.Formats = append(opts.Formats, FormatDOT)
	third, err := r.Export(ctx, []byte(validDoc), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit || len(third.Artifacts) != 3 {
		t.Errorf("third run = %+v, %d artifacts", third.CacheInfo, len(third.Artifacts))
	}

	opts.Refresh = true
	fourth, err := r.Export(ctx, []byte(validDoc), opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo != (CacheInfo{}) {
		t.Errorf("refresh run hit cache: %+v", fourth.CacheInfo)
	}
}

func TestValidateCachesInvalidReports(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRunner(t, c)
	ctx := context.Background()

	first, hit, err := r.ValidateWithCacheInfo(ctx, []byte(invalidDoc), Options{})
	if err != nil || hit {
		t.Fatalf("first = %v, %v", hit, err)
	}
	second, hit, err := r.ValidateWithCacheInfo(ctx, []byte(invalidDoc), Options{})
	if err != nil || !hit {
		t.Fatalf("second = %v, %v", hit, err)
	}
	if len(first.Errors) != len(second.Errors) || first.Errors[0] != second.Errors[0] {
		t.Errorf("cached report differs: %+v vs %+v", first.Errors, second.Errors)
	}
}

func TestRunnerWithoutChecker(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)
	if _, err := r.Validate(context.Background(), []byte(validDoc), Options{}); !ocerrors.Is(err, ocerrors.ErrCodeInternal) {
		t.Errorf("err = %v", err)
	}
}
