// Package validate checks OCIF documents and reports schema errors with
// source positions.
//
// A [Checker] parses raw bytes as strict JSON, falling back to JSON5, runs
// the parsed value through a [Validator] and converts every [Violation] into
// a [LocatedError] carrying a line, column and the offending source line.
// JSON5 Infinity and NaN values are reported as violations of their own,
// since no schema keyword rejects them.
//
//	v, err := validate.NewOCIFValidator()
//	if err != nil {
//	    return err
//	}
//	res, err := validate.NewChecker(v).Check(src)
//	for _, e := range res.Errors {
//	    fmt.Println(e)
//	}
package validate

import (
	"bytes"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/titanous/json5"

	"github.com/ocifkit/ocifkit/pkg/locate"
	"github.com/ocifkit/ocifkit/pkg/ocif"
)

// Format identifies which syntax a document was parsed as.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSON5 Format = "json5"
)

// ParseFailureMessage is reported when input is neither JSON nor JSON5.
const ParseFailureMessage = "Invalid JSON or JSON5 format"

// NonFiniteMessage is reported for JSON5 Infinity and NaN values.
const NonFiniteMessage = "must be a finite number"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseError reports input that failed both parsers.
type ParseError struct {
	JSON  error
	JSON5 error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse document: %v", e.JSON5)
}

func (e *ParseError) Unwrap() error { return e.JSON5 }

// Parse decodes src as strict JSON, then as JSON5. Numbers decode to
// float64.
func Parse(src []byte) (any, Format, error) {
	src = bytes.TrimPrefix(src, utf8BOM)

	var doc any
	jsonErr := json.Unmarshal(src, &doc)
	if jsonErr == nil {
		return doc, FormatJSON, nil
	}

	var doc5 any
	json5Err := json5.Unmarshal(src, &doc5)
	if json5Err == nil {
		return doc5, FormatJSON5, nil
	}
	return nil, "", &ParseError{JSON: jsonErr, JSON5: json5Err}
}

// Result is the outcome of checking one document.
type Result struct {
	Valid  bool           `json:"valid" yaml:"valid"`
	Format Format         `json:"format,omitempty" yaml:"format,omitempty"`
	Errors []LocatedError `json:"errors" yaml:"errors"`

	// Document is the parsed value, nil when parsing failed.
	Document any `json:"-" yaml:"-"`
}

// Decode converts the parsed value into an OCIF document model.
func (r Result) Decode() (*ocif.Document, error) {
	if r.Document == nil {
		return nil, fmt.Errorf("no parsed document")
	}
	return ocif.Decode(r.Document)
}

// Checker validates raw document bytes.
type Checker struct {
	validator Validator
}

// NewChecker creates a Checker backed by v.
func NewChecker(v Validator) *Checker {
	return &Checker{validator: v}
}

// Check parses and validates src. Invalid input is reported in the Result;
// an error is returned only when the validator itself fails.
func (c *Checker) Check(src []byte) (Result, error) {
	doc, format, err := Parse(src)
	if err != nil {
		return Result{Valid: false, Errors: []LocatedError{parseFailure(err)}}, nil
	}

	var nonFinite []Violation
	doc = replaceNonFinite(doc, nil, &nonFinite)

	violations, err := c.validator.Validate(doc)
	if err != nil {
		return Result{}, fmt.Errorf("validate document: %w", err)
	}
	if len(nonFinite) > 0 {
		violations = mergeNonFinite(violations, nonFinite)
	}

	text := string(bytes.TrimPrefix(src, utf8BOM))
	res := Result{
		Valid:    len(violations) == 0,
		Format:   format,
		Errors:   make([]LocatedError, 0, len(violations)),
		Document: doc,
	}
	for _, v := range violations {
		res.Errors = append(res.Errors, Enrich(v, text))
	}
	return res, nil
}

// replaceNonFinite records a violation for every Infinity or NaN in doc and
// replaces it with 0 so the schema validator only sees finite numbers.
func replaceNonFinite(doc any, path []string, out *[]Violation) any {
	switch v := doc.(type) {
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			*out = append(*out, Violation{
				Path:    locate.Pointer(path...),
				Keyword: "type",
				Message: NonFiniteMessage,
				Params:  map[string]any{"type": "finite number"},
			})
			return 0.0
		}
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(v)) {
			v[k] = replaceNonFinite(v[k], append(path, k), out)
		}
	case []any:
		for i := range v {
			v[i] = replaceNonFinite(v[i], append(path, strconv.Itoa(i)), out)
		}
	}
	return doc
}

// mergeNonFinite drops schema findings about the substituted zeros and
// appends the non-finite violations.
func mergeNonFinite(schema, nonFinite []Violation) []Violation {
	replaced := make(map[string]bool, len(nonFinite))
	for _, v := range nonFinite {
		replaced[v.Path] = true
	}
	out := make([]Violation, 0, len(schema)+len(nonFinite))
	for _, v := range schema {
		if !replaced[v.Path] {
			out = append(out, v)
		}
	}
	return append(out, nonFinite...)
}

func parseFailure(err error) LocatedError {
	details := ""
	if pe, ok := err.(*ParseError); ok && pe.JSON5 != nil {
		details = pe.JSON5.Error()
	}
	return LocatedError{
		Path:    "/",
		Message: ParseFailureMessage,
		Line:    1,
		Column:  1,
		Details: details,
	}
}
