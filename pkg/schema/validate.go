package schema

import "fmt"

// ValidationError is fatal: a produced destination column violates its field
// declaration. It blocks creation of a transform result.
type ValidationError struct {
	Field  string
	Row    int // -1 when the violation is not row-specific
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("field %q row %d: %s (value %v)", e.Field, e.Row, e.Reason, e.Value)
	}
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// ValidateValue checks a single coerced cell against the field's
// constraints. Null cells pass; required/unique are column-level concerns.
func ValidateValue(value any, f *Field, row int) error {
	if value == nil {
		return nil
	}
	switch f.Type {
	case TypeNumber, TypeInteger, TypeYear:
		n := toFloat(value)
		if f.Constraints.Minimum != nil && n < *f.Constraints.Minimum {
			return &ValidationError{Field: f.Name, Row: row, Value: value, Reason: "below declared minimum"}
		}
		if f.Constraints.Maximum != nil && n > *f.Constraints.Maximum {
			return &ValidationError{Field: f.Name, Row: row, Value: value, Reason: "above declared maximum"}
		}
	case TypeString:
		if f.HasEnum() {
			if s, ok := value.(string); !ok || !f.InEnum(s) {
				return &ValidationError{Field: f.Name, Row: row, Value: value, Reason: "not in category enumeration"}
			}
		}
	case TypeArray:
		if f.HasEnum() {
			elems, ok := value.([]any)
			if !ok {
				return &ValidationError{Field: f.Name, Row: row, Value: value, Reason: "not an array"}
			}
			for _, e := range elems {
				if s, ok := e.(string); !ok || !f.InEnum(s) {
					return &ValidationError{Field: f.Name, Row: row, Value: e, Reason: "array element not in category enumeration"}
				}
			}
		}
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return &ValidationError{Field: f.Name, Row: row, Value: value, Reason: "not a boolean"}
		}
	}
	return nil
}

// ValidateColumn checks a full coerced column: required presence, unique
// values, and the per-value constraints.
func ValidateColumn(cells []any, f *Field) error {
	seen := make(map[string]int)
	for i, v := range cells {
		if v == nil {
			if f.Constraints.Required {
				return &ValidationError{Field: f.Name, Row: i, Reason: "required field is missing a value"}
			}
			continue
		}
		if err := ValidateValue(v, f, i); err != nil {
			return err
		}
		if f.Constraints.Unique {
			key := CanonicalText(v)
			if prev, dup := seen[key]; dup {
				return &ValidationError{Field: f.Name, Row: i, Value: v,
					Reason: fmt.Sprintf("duplicate of row %d in unique field", prev)}
			}
			seen[key] = i
		}
	}
	return nil
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}
