package validate

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/ocifkit/ocifkit/pkg/locate"
)

// Violation is a raw schema validator finding: where in the parsed document
// it applies, which keyword failed, and the keyword's parameters.
type Violation struct {
	Path    string         `json:"path"`
	Keyword string         `json:"keyword"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

// LocatedError is a user-facing validation error with source coordinates.
type LocatedError struct {
	Path    string `json:"path" yaml:"path"`
	Message string `json:"message" yaml:"message"`
	Line    int    `json:"line" yaml:"line"`
	Column  int    `json:"column" yaml:"column"`
	Keyword string `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	Details string `json:"details,omitempty" yaml:"details,omitempty"`
	Context string `json:"context,omitempty" yaml:"context,omitempty"`
}

// String formats the error as "line:col path: message".
func (e LocatedError) String() string {
	return fmt.Sprintf("%d:%d %s: %s", e.Line, e.Column, e.Path, e.Message)
}

const unknownMessage = "Unknown error"

// Enrich converts a violation into a LocatedError by locating its path in
// src. It never fails: unknown paths resolve to (1,1) with no context.
func Enrich(v Violation, src string) LocatedError {
	path := v.Path
	if path == "" {
		path = "/"
	}
	msg := v.Message
	if msg == "" {
		msg = unknownMessage
	}

	e := LocatedError{
		Path:    path,
		Message: msg,
		Line:    locate.Origin.Line,
		Column:  locate.Origin.Column,
		Keyword: v.Keyword,
		Details: Details(v),
	}
	if pos, ok := locate.Find(src, path); ok {
		e.Line, e.Column = pos.Line, pos.Column
		e.Context = locate.Line(src, pos.Line)
	}
	return e
}

// Details renders a keyword-specific supplementary message.
func Details(v Violation) string {
	switch v.Keyword {
	case "type":
		return fmt.Sprintf("Expected type: %v", v.Params["type"])
	case "enum":
		return "Allowed values: " + joinValues(v.Params["allowedValues"])
	case "required":
		return fmt.Sprintf("Required property missing: %v", v.Params["missingProperty"])
	case "pattern":
		return fmt.Sprintf("Should match pattern: %v", v.Params["pattern"])
	case "format":
		return fmt.Sprintf("Should match format: %v", v.Params["format"])
	case "const":
		return "Expected value: " + encode(v.Params["allowedValue"])
	case "minimum", "maximum", "minLength", "maxLength":
		params := v.Params
		if params == nil {
			params = map[string]any{}
		}
		return fmt.Sprintf("%s (%s)", v.Message, encode(params))
	}
	if strings.HasPrefix(v.Message, "must be equal to constant") {
		return ""
	}
	return v.Message
}

func joinValues(v any) string {
	switch vals := v.(type) {
	case []string:
		return strings.Join(vals, ", ")
	case []any:
		parts := make([]string, len(vals))
		for i, x := range vals {
			parts[i] = fmt.Sprint(x)
		}
		return strings.Join(parts, ", ")
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func encode(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
