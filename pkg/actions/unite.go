package actions

import (
	"strings"

	"github.com/openprobity/crosswalk/pkg/schema"
	"github.com/openprobity/crosswalk/pkg/script"
	"github.com/openprobity/crosswalk/pkg/tabular"
)

// Unite string-joins values from 1..N source columns into one destination
// column, skipping nulls, using the declared separator.
type Unite struct{}

func (a *Unite) Kind() script.Kind { return script.KindUnite }
func (a *Unite) RowSafe() bool     { return true }

func (a *Unite) Validate(t *tabular.Table, d *script.Descriptor) error {
	return requireSourceFields(a.Kind(), t, d.SourceFields)
}

func (a *Unite) Apply(t *tabular.Table, d *script.Descriptor) (*tabular.Table, []Warning, error) {
	cols := make([]*tabular.Column, len(d.SourceFields))
	for i, name := range d.SourceFields {
		col, err := t.Column(name)
		if err != nil {
			return nil, nil, err
		}
		cols[i] = col
	}

	cells := make([]any, t.Len())
	for row := 0; row < t.Len(); row++ {
		var parts []string
		for _, col := range cols {
			if v := col.Cells[row]; !tabular.IsBlank(v) {
				parts = append(parts, schema.CanonicalText(v))
			}
		}
		if len(parts) > 0 {
			cells[row] = strings.Join(parts, d.Separator)
		}
	}
	return setOrAddColumn(t, d.DestField(), cells)
}

// Separate splits one source column's string values on a separator into
// 1..N destination columns. Rows with fewer parts than destinations leave
// the trailing destinations null; surplus parts stay joined in the last
// destination.
type Separate struct{}

func (a *Separate) Kind() script.Kind { return script.KindSeparate }
func (a *Separate) RowSafe() bool     { return true }

func (a *Separate) Validate(t *tabular.Table, d *script.Descriptor) error {
	return requireSourceFields(a.Kind(), t, d.SourceFields)
}

func (a *Separate) Apply(t *tabular.Table, d *script.Descriptor) (*tabular.Table, []Warning, error) {
	src, err := t.Column(d.SourceFields[0])
	if err != nil {
		return nil, nil, err
	}

	dests := make([][]any, len(d.Dest))
	for i := range dests {
		dests[i] = make([]any, t.Len())
	}
	for row, v := range src.Cells {
		if tabular.IsBlank(v) {
			continue
		}
		parts := strings.SplitN(schema.CanonicalText(v), d.Separator, len(d.Dest))
		for i, part := range parts {
			dests[i][row] = part
		}
	}
	for i, name := range d.Dest {
		if _, _, err := setOrAddColumn(t, name, dests[i]); err != nil {
			return nil, nil, err
		}
	}
	return t, nil, nil
}
