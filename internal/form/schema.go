// Package form is a declarative validation layer for the admin CRUD
// endpoints. Each resource declares its fields once; payloads are checked
// against the schema and failures come back as a per-field error map, which
// the admin UI renders inline.
package form

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind is the value type a field accepts.
type Kind string

const (
	KindString  Kind = "string"
	KindDecimal Kind = "decimal"
	KindInt     Kind = "int"
	KindBool    Kind = "bool"
)

// Field declares one form field and its constraints.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	// MaxLen bounds string length; zero means unbounded.
	MaxLen int
	// Min/Max bound numeric fields; nil means unbounded.
	Min *decimal.Decimal
	Max *decimal.Decimal
	// Enum restricts a string field to a fixed value set.
	Enum []string
}

// Schema is the declared field set for one resource.
type Schema struct {
	Resource string
	Fields   []Field
}

// Errors maps field names to validation messages.
type Errors map[string]string

// Error implements error so an Errors value can travel through error
// returns up to the handler boundary.
func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks payload against the schema. It returns nil when the
// payload is valid. Unknown payload keys are ignored: the admin UI may send
// presentation-only fields.
func (s Schema) Validate(payload map[string]any) Errors {
	errs := make(Errors)
	for _, f := range s.Fields {
		raw, present := payload[f.Name]
		if !present || raw == nil {
			if f.Required {
				errs[f.Name] = "required"
			}
			continue
		}
		if msg := f.check(raw); msg != "" {
			errs[f.Name] = msg
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (f Field) check(raw any) string {
	switch f.Kind {
	case KindString:
		return f.checkString(raw)
	case KindDecimal:
		return f.checkDecimal(raw)
	case KindInt:
		return f.checkInt(raw)
	case KindBool:
		if _, ok := raw.(bool); !ok {
			return "must be a boolean"
		}
		return ""
	}
	return ""
}

func (f Field) checkString(raw any) string {
	s, ok := raw.(string)
	if !ok {
		return "must be a string"
	}
	if f.Required && strings.TrimSpace(s) == "" {
		return "required"
	}
	if f.MaxLen > 0 && len(s) > f.MaxLen {
		return fmt.Sprintf("must be at most %d characters", f.MaxLen)
	}
	if len(f.Enum) > 0 {
		for _, allowed := range f.Enum {
			if s == allowed {
				return ""
			}
		}
		return "must be one of: " + strings.Join(f.Enum, ", ")
	}
	return ""
}

// checkDecimal accepts JSON numbers and decimal strings; prices travel as
// strings to avoid float drift.
func (f Field) checkDecimal(raw any) string {
	var d decimal.Decimal
	switch v := raw.(type) {
	case string:
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return "must be a decimal number"
		}
		d = parsed
	case float64:
		d = decimal.NewFromFloat(v)
	default:
		return "must be a decimal number"
	}
	return f.checkBounds(d)
}

func (f Field) checkInt(raw any) string {
	v, ok := raw.(float64)
	if !ok || v != math.Trunc(v) {
		return "must be an integer"
	}
	return f.checkBounds(decimal.NewFromFloat(v))
}

func (f Field) checkBounds(d decimal.Decimal) string {
	if f.Min != nil && d.LessThan(*f.Min) {
		return "must be at least " + f.Min.String()
	}
	if f.Max != nil && d.GreaterThan(*f.Max) {
		return "must be at most " + f.Max.String()
	}
	return ""
}
