// Package domain holds the persisted aggregates of the transform system:
// crosswalks (ordered, declarative action sequences binding a source schema
// to a destination schema) and transform records (the audit entity pairing a
// crosswalk run with its source and destination checksums and citation).
package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/openprobity/crosswalk/pkg/schema"
	"github.com/openprobity/crosswalk/pkg/script"
)

// ErrDefinitionNotFound is returned when a definition store has no document
// for the requested name.
var ErrDefinitionNotFound = errors.New("definition not found")

// Crosswalk is an ordered sequence of action descriptors bound to a source
// schema and a destination schema. Purely declarative: it holds no data.
type Crosswalk struct {
	ID                uuid.UUID
	Name              string
	SourceSchema      *schema.Schema
	DestinationSchema *schema.Schema
	Actions           []*script.Descriptor
	Version           []schema.Version
}

// NewCrosswalk creates a crosswalk with a fresh identifier.
func NewCrosswalk(name string, source, destination *schema.Schema) *Crosswalk {
	return &Crosswalk{
		ID:                uuid.New(),
		Name:              name,
		SourceSchema:      source,
		DestinationSchema: destination,
	}
}

// AppendScript parses a script line and appends its descriptor.
func (c *Crosswalk) AppendScript(line string) error {
	d, err := script.Parse(line)
	if err != nil {
		return err
	}
	c.Actions = append(c.Actions, d)
	return nil
}

// Check verifies the crosswalk's structural invariants without touching
// data: both schemas are sound, every destination field reference exists in
// the destination schema, and every source field reference exists in the
// column state as of that point in the sequence (earlier actions add,
// rename, and drop columns).
func (c *Crosswalk) Check() error {
	if c.Name == "" {
		return fmt.Errorf("crosswalk name cannot be empty")
	}
	if c.SourceSchema == nil || c.DestinationSchema == nil {
		return fmt.Errorf("crosswalk %q: both schemas are required", c.Name)
	}
	if err := c.SourceSchema.Check(); err != nil {
		return err
	}
	if err := c.DestinationSchema.Check(); err != nil {
		return err
	}

	cols := make(map[string]bool, len(c.SourceSchema.Fields))
	for _, f := range c.SourceSchema.Fields {
		cols[f.Name] = true
	}

	for i, d := range c.Actions {
		if err := c.checkAction(d, cols); err != nil {
			return fmt.Errorf("action %d (%s): %w", i+1, d.Kind, err)
		}
	}
	return nil
}

// checkAction validates one descriptor against the simulated column state
// and advances the state by the action's structural effect.
func (c *Crosswalk) checkAction(d *script.Descriptor, cols map[string]bool) error {
	for _, dest := range d.Dest {
		if !c.DestinationSchema.HasField(dest) {
			return fmt.Errorf("destination field %q not in destination schema", dest)
		}
	}

	sourceFields := d.SourceFields
	for _, p := range d.Pairs {
		sourceFields = append(sourceFields, p.Value, p.Date)
	}
	for _, op := range d.Calc {
		sourceFields = append(sourceFields, op.Field)
	}
	for _, f := range sourceFields {
		if f == script.Spacer {
			continue
		}
		if !cols[f] {
			return fmt.Errorf("source field %q not present at this point in the sequence", f)
		}
	}

	// Structural effect on subsequent actions.
	switch d.Kind {
	case script.KindRename:
		delete(cols, d.SourceFields[0])
		cols[d.DestField()] = true
	case script.KindPivotLonger:
		for _, f := range d.SourceFields {
			delete(cols, f)
		}
		cols[d.Dest[0]] = true
		cols[d.Dest[1]] = true
	default:
		for _, dest := range d.Dest {
			cols[dest] = true
		}
	}
	return nil
}

// crosswalkDoc is the JSON-Schema-compatible persisted form: actions are
// stored as their script text.
type crosswalkDoc struct {
	ID                uuid.UUID        `json:"id"`
	Name              string           `json:"name"`
	SourceSchema      *schema.Schema   `json:"source_schema"`
	DestinationSchema *schema.Schema   `json:"destination_schema"`
	Actions           []string         `json:"actions"`
	Version           []schema.Version `json:"version,omitempty"`
}

// MarshalJSON renders the crosswalk as its persisted document.
func (c *Crosswalk) MarshalJSON() ([]byte, error) {
	doc := crosswalkDoc{
		ID:                c.ID,
		Name:              c.Name,
		SourceSchema:      c.SourceSchema,
		DestinationSchema: c.DestinationSchema,
		Version:           c.Version,
	}
	for _, d := range c.Actions {
		doc.Actions = append(doc.Actions, d.String())
	}
	return json.Marshal(doc)
}

// UnmarshalJSON re-parses the persisted action scripts, so the parser stays
// the single source of structural truth.
func (c *Crosswalk) UnmarshalJSON(data []byte) error {
	var doc crosswalkDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	parsed, err := script.ParseAll(doc.Actions)
	if err != nil {
		return fmt.Errorf("crosswalk %q: %w", doc.Name, err)
	}
	c.ID = doc.ID
	c.Name = doc.Name
	c.SourceSchema = doc.SourceSchema
	c.DestinationSchema = doc.DestinationSchema
	c.Actions = parsed
	c.Version = doc.Version
	return nil
}
