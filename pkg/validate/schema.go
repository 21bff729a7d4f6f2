package validate

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	ocerrors "github.com/ocifkit/ocifkit/pkg/errors"
	"github.com/ocifkit/ocifkit/pkg/locate"
	"github.com/ocifkit/ocifkit/pkg/ocif"
)

// Validator checks a parsed document (maps, slices, strings, float64, bool
// and nil) and returns every violation found. An error means the validator
// itself failed, not that the document is invalid.
type Validator interface {
	Validate(doc any) ([]Violation, error)
}

// SchemaValidator validates documents against a compiled JSON Schema.
// It is safe for concurrent use.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles schemaJSON, registered under url. Failures
// carry the INVALID_SCHEMA code.
func NewSchemaValidator(schemaJSON []byte, url string) (*SchemaValidator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, ocerrors.Wrap(ocerrors.ErrCodeInvalidSchema, err, "parse schema %s", url)
	}
	c := jsonschema.NewCompiler()
	c.AssertFormat()
	if err := c.AddResource(url, doc); err != nil {
		return nil, ocerrors.Wrap(ocerrors.ErrCodeInvalidSchema, err, "add schema resource %s", url)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, ocerrors.Wrap(ocerrors.ErrCodeInvalidSchema, err, "compile schema %s", url)
	}
	return &SchemaValidator{schema: sch}, nil
}

// NewOCIFValidator returns a validator for the embedded OCIF schema.
func NewOCIFValidator() (*SchemaValidator, error) {
	return NewSchemaValidator(ocif.SchemaJSON, ocif.SchemaURL)
}

// Validate implements Validator.
func (v *SchemaValidator) Validate(doc any) ([]Violation, error) {
	err := v.schema.Validate(doc)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("validate: %w", err)
	}
	p := message.NewPrinter(language.English)
	var out []Violation
	flatten(ve, p, &out)
	return out, nil
}

// flatten collects the leaf causes of a validation error tree. Group kinds
// ($ref, allOf, the schema root) only carry their causes.
func flatten(e *jsonschema.ValidationError, p *message.Printer, out *[]Violation) {
	if len(e.Causes) > 0 {
		for _, c := range e.Causes {
			flatten(c, p, out)
		}
		return
	}
	*out = append(*out, violations(locate.Pointer(e.InstanceLocation...), e.ErrorKind, p)...)
}

// violations renders one error kind using the message and parameter
// conventions of Ajv, which most OCIF tooling reports in.
func violations(path string, k jsonschema.ErrorKind, p *message.Printer) []Violation {
	one := func(keyword, msg string, params map[string]any) []Violation {
		return []Violation{{Path: path, Keyword: keyword, Message: msg, Params: params}}
	}

	switch k := k.(type) {
	case *kind.Required:
		out := make([]Violation, 0, len(k.Missing))
		for _, name := range k.Missing {
			out = append(out, Violation{
				Path:    path,
				Keyword: "required",
				Message: fmt.Sprintf("must have required property '%s'", name),
				Params:  map[string]any{"missingProperty": name},
			})
		}
		return out
	case *kind.AdditionalProperties:
		out := make([]Violation, 0, len(k.Properties))
		for _, name := range k.Properties {
			out = append(out, Violation{
				Path:    path,
				Keyword: "additionalProperties",
				Message: "must NOT have additional properties",
				Params:  map[string]any{"additionalProperty": name},
			})
		}
		return out
	case *kind.Type:
		want := strings.Join(k.Want, ",")
		return one("type", "must be "+want, map[string]any{"type": want})
	case *kind.Enum:
		return one("enum", "must be equal to one of the allowed values", map[string]any{"allowedValues": k.Want})
	case *kind.Const:
		return one("const", "must be equal to constant", map[string]any{"allowedValue": k.Want})
	case *kind.Pattern:
		return one("pattern", fmt.Sprintf("must match pattern \"%s\"", k.Want), map[string]any{"pattern": k.Want})
	case *kind.Format:
		return one("format", fmt.Sprintf("must match format \"%s\"", k.Want), map[string]any{"format": k.Want})
	case *kind.Minimum:
		return bound(path, "minimum", ">=", k.Want)
	case *kind.Maximum:
		return bound(path, "maximum", "<=", k.Want)
	case *kind.ExclusiveMinimum:
		return bound(path, "exclusiveMinimum", ">", k.Want)
	case *kind.ExclusiveMaximum:
		return bound(path, "exclusiveMaximum", "<", k.Want)
	case *kind.MinLength:
		return one("minLength", fmt.Sprintf("must NOT have fewer than %d characters", k.Want), map[string]any{"limit": k.Want})
	case *kind.MaxLength:
		return one("maxLength", fmt.Sprintf("must NOT have more than %d characters", k.Want), map[string]any{"limit": k.Want})
	case *kind.MinItems:
		return one("minItems", fmt.Sprintf("must NOT have fewer than %d items", k.Want), map[string]any{"limit": k.Want})
	case *kind.MaxItems:
		return one("maxItems", fmt.Sprintf("must NOT have more than %d items", k.Want), map[string]any{"limit": k.Want})
	}

	keyword := ""
	if kp := k.KeywordPath(); len(kp) > 0 {
		keyword = kp[len(kp)-1]
	}
	return one(keyword, k.LocalizedString(p), nil)
}

func bound(path, keyword, comparison string, limit *big.Rat) []Violation {
	l := ratValue(limit)
	return []Violation{{
		Path:    path,
		Keyword: keyword,
		Message: fmt.Sprintf("must be %s %v", comparison, l),
		Params:  map[string]any{"comparison": comparison, "limit": l},
	}}
}

func ratValue(r *big.Rat) any {
	if r == nil {
		return 0
	}
	if r.IsInt() && r.Num().IsInt64() {
		return r.Num().Int64()
	}
	f, _ := r.Float64()
	return f
}
