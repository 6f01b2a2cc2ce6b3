package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// CoercionError reports a cell that could not be converted to its field's
// declared type. It is recoverable: the executor records a warning and nulls
// the cell unless the field is required.
type CoercionError struct {
	Field string
	Type  FieldType
	Value any
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %v (%T) to %s for field %q", e.Value, e.Value, e.Type, e.Field)
}

// Accepted textual layouts for date and datetime parsing.
var (
	dateLayouts = []string{"2006-01-02", "2006-01-02T15:04:05Z07:00", "2006-01-02 15:04:05"}
	timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"}
)

// Coerce converts a cell value to the field's declared type. It returns the
// converted value and whether the representation changed. A nil cell passes
// through untouched.
func Coerce(value any, f *Field) (any, bool, error) {
	if value == nil {
		return nil, false, nil
	}
	switch f.Type {
	case TypeString:
		return coerceString(value)
	case TypeNumber:
		return coerceNumber(value, f)
	case TypeInteger:
		return coerceInteger(value, f)
	case TypeBoolean:
		return coerceBoolean(value, f)
	case TypeDate:
		return coerceTime(value, f, dateLayouts, "2006-01-02")
	case TypeDateTime:
		return coerceTime(value, f, timeLayouts, time.RFC3339)
	case TypeYear:
		return coerceYear(value, f)
	case TypeObject:
		if m, ok := value.(map[string]any); ok {
			return m, false, nil
		}
		return nil, false, &CoercionError{Field: f.Name, Type: f.Type, Value: value}
	case TypeArray:
		return coerceArray(value, f)
	default:
		return nil, false, fmt.Errorf("unsupported field type: %s", f.Type)
	}
}

func coerceString(value any) (any, bool, error) {
	if s, ok := value.(string); ok {
		return s, false, nil
	}
	return CanonicalText(value), true, nil
}

func coerceNumber(value any, f *Field) (any, bool, error) {
	switch v := value.(type) {
	case float64:
		return v, false, nil
	case float32:
		return float64(v), true, nil
	case int:
		return float64(v), true, nil
	case int64:
		return float64(v), true, nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, false, &CoercionError{Field: f.Name, Type: f.Type, Value: value}
		}
		return n, true, nil
	default:
		return nil, false, &CoercionError{Field: f.Name, Type: f.Type, Value: value}
	}
}

func coerceInteger(value any, f *Field) (any, bool, error) {
	switch v := value.(type) {
	case int64:
		return v, false, nil
	case int:
		return int64(v), true, nil
	case float64:
		if v != math.Trunc(v) {
			return nil, false, &CoercionError{Field: f.Name, Type: f.Type, Value: value}
		}
		return int64(v), true, nil
	case string:
		s := strings.TrimSpace(v)
		n, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return n, true, nil
		}
		// Spreadsheet exports often render integers as "123.0".
		fl, ferr := strconv.ParseFloat(s, 64)
		if ferr == nil && fl == math.Trunc(fl) {
			return int64(fl), true, nil
		}
		return nil, false, &CoercionError{Field: f.Name, Type: f.Type, Value: value}
	default:
		return nil, false, &CoercionError{Field: f.Name, Type: f.Type, Value: value}
	}
}

func coerceBoolean(value any, f *Field) (any, bool, error) {
	switch v := value.(type) {
	case bool:
		return v, false, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y", "1":
			return true, true, nil
		case "false", "no", "n", "0":
			return false, true, nil
		}
		return nil, false, &CoercionError{Field: f.Name, Type: f.Type, Value: value}
	case float64:
		return v != 0, true, nil
	case int, int64:
		return fmt.Sprint(v) != "0", true, nil
	default:
		return nil, false, &CoercionError{Field: f.Name, Type: f.Type, Value: value}
	}
}

func coerceTime(value any, f *Field, layouts []string, _ string) (any, bool, error) {
	switch v := value.(type) {
	case time.Time:
		return v, false, nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true, nil
			}
		}
		return nil, false, &CoercionError{Field: f.Name, Type: f.Type, Value: value}
	default:
		return nil, false, &CoercionError{Field: f.Name, Type: f.Type, Value: value}
	}
}

func coerceYear(value any, f *Field) (any, bool, error) {
	v, changed, err := coerceInteger(value, f)
	if err != nil {
		// Allow full dates to collapse to their year.
		if t, _, terr := coerceTime(value, f, dateLayouts, ""); terr == nil {
			return int64(t.(time.Time).Year()), true, nil
		}
		return nil, false, &CoercionError{Field: f.Name, Type: f.Type, Value: value}
	}
	year := v.(int64)
	if year < 0 || year > 9999 {
		return nil, false, &CoercionError{Field: f.Name, Type: f.Type, Value: value}
	}
	return year, changed, nil
}

func coerceArray(value any, f *Field) (any, bool, error) {
	var elems []any
	changed := false
	switch v := value.(type) {
	case []any:
		elems = v
	case []string:
		elems = make([]any, len(v))
		for i, s := range v {
			elems[i] = s
		}
		changed = true
	default:
		// A scalar collapses to a single-element array.
		elems = []any{value}
		changed = true
	}
	if f.Items == "" {
		return elems, changed, nil
	}
	elemField := &Field{Name: f.Name, Type: f.Items}
	out := make([]any, len(elems))
	for i, e := range elems {
		coerced, elemChanged, err := Coerce(e, elemField)
		if err != nil {
			return nil, false, &CoercionError{Field: f.Name, Type: f.Type, Value: e}
		}
		out[i] = coerced
		changed = changed || elemChanged
	}
	return out, changed, nil
}

// CanonicalText renders a cell value as deterministic text. This is the
// representation hashed by the probity checksum and written by exporters, so
// equal values must always produce equal text.
func CanonicalText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format(time.RFC3339)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = CanonicalText(e)
		}
		return "[" + strings.Join(parts, ";") + "]"
	default:
		return fmt.Sprint(v)
	}
}
