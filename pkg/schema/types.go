// Package schema defines typed field and schema models for source and
// destination tables, plus the per-type coercion and validation rules the
// transform executor applies after a crosswalk runs.
package schema

import (
	"fmt"

	"github.com/google/uuid"
)

// FieldType enumerates the primitive types a destination field may declare.
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeNumber   FieldType = "number"
	TypeInteger  FieldType = "integer"
	TypeBoolean  FieldType = "boolean"
	TypeDate     FieldType = "date"
	TypeDateTime FieldType = "datetime"
	TypeYear     FieldType = "year"
	TypeObject   FieldType = "object"
	TypeArray    FieldType = "array"
)

// ParseFieldType converts a type name from a persisted definition.
func ParseFieldType(s string) (FieldType, error) {
	switch FieldType(s) {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeDate,
		TypeDateTime, TypeYear, TypeObject, TypeArray:
		return FieldType(s), nil
	default:
		return "", fmt.Errorf("unsupported field type: %s", s)
	}
}

// Constraints restrict the values a field accepts. Enum is the category
// enumeration for categorical fields (and for the element values of
// array-typed category fields).
type Constraints struct {
	Required bool     `json:"required,omitempty" mapstructure:"required"`
	Unique   bool     `json:"unique,omitempty" mapstructure:"unique"`
	Minimum  *float64 `json:"minimum,omitempty" mapstructure:"minimum"`
	Maximum  *float64 `json:"maximum,omitempty" mapstructure:"maximum"`
	Default  any      `json:"default,omitempty" mapstructure:"default"`
	Enum     []string `json:"enum,omitempty" mapstructure:"enum"`
}

// Field is a typed column definition. Immutable once referenced by a saved
// crosswalk.
type Field struct {
	Name        string      `json:"name" mapstructure:"name"`
	Type        FieldType   `json:"type" mapstructure:"type"`
	Description string      `json:"description,omitempty" mapstructure:"description"`
	Items       FieldType   `json:"items,omitempty" mapstructure:"items"`
	Constraints Constraints `json:"constraints,omitempty" mapstructure:"constraints"`
}

// HasEnum reports whether the field declares a category enumeration.
func (f *Field) HasEnum() bool { return len(f.Constraints.Enum) > 0 }

// InEnum reports whether the term is one of the declared categories.
func (f *Field) InEnum(term string) bool {
	for _, e := range f.Constraints.Enum {
		if e == term {
			return true
		}
	}
	return false
}

// Version is one entry in a definition's append-only version history.
type Version struct {
	Description string `json:"description,omitempty" mapstructure:"description"`
	Updated     string `json:"updated" mapstructure:"updated"`
}

// Schema is an ordered list of fields with identity and version metadata.
type Schema struct {
	ID      uuid.UUID `json:"id" mapstructure:"id"`
	Name    string    `json:"name" mapstructure:"name"`
	Title   string    `json:"title,omitempty" mapstructure:"title"`
	Fields  []Field   `json:"fields" mapstructure:"fields"`
	Version []Version `json:"version,omitempty" mapstructure:"version"`
}

// New creates a named schema with a fresh identifier.
func New(name string, fields ...Field) *Schema {
	return &Schema{ID: uuid.New(), Name: name, Fields: fields}
}

// Field returns the named field definition.
func (s *Schema) Field(name string) (*Field, error) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], nil
		}
	}
	return nil, fmt.Errorf("field %q not in schema %q", name, s.Name)
}

// HasField reports whether the schema declares the named field.
func (s *Schema) HasField(name string) bool {
	_, err := s.Field(name)
	return err == nil
}

// FieldNames returns field names in declaration order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Check verifies the schema definition itself: non-empty name, unique field
// names, known types, sane constraints.
func (s *Schema) Check() error {
	if s.Name == "" {
		return fmt.Errorf("schema name cannot be empty")
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema %q: field name cannot be empty", s.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("schema %q: duplicate field %q", s.Name, f.Name)
		}
		seen[f.Name] = true
		if _, err := ParseFieldType(string(f.Type)); err != nil {
			return fmt.Errorf("schema %q: field %q: %w", s.Name, f.Name, err)
		}
		if f.Items != "" {
			if f.Type != TypeArray {
				return fmt.Errorf("schema %q: field %q: items set on non-array type", s.Name, f.Name)
			}
			if _, err := ParseFieldType(string(f.Items)); err != nil {
				return fmt.Errorf("schema %q: field %q items: %w", s.Name, f.Name, err)
			}
		}
		if f.Constraints.Minimum != nil && f.Constraints.Maximum != nil &&
			*f.Constraints.Minimum > *f.Constraints.Maximum {
			return fmt.Errorf("schema %q: field %q: minimum exceeds maximum", s.Name, f.Name)
		}
	}
	return nil
}
