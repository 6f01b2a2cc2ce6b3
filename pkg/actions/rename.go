package actions

import (
	"fmt"

	"github.com/openprobity/crosswalk/pkg/script"
	"github.com/openprobity/crosswalk/pkg/tabular"
)

// Rename renames exactly one source column to the destination field name.
type Rename struct{}

func (a *Rename) Kind() script.Kind { return script.KindRename }
func (a *Rename) RowSafe() bool     { return true }

func (a *Rename) Validate(t *tabular.Table, d *script.Descriptor) error {
	if err := requireSourceFields(a.Kind(), t, d.SourceFields); err != nil {
		return err
	}
	dest := d.DestField()
	if dest != d.SourceFields[0] && t.HasColumn(dest) {
		return &ValidationError{Kind: a.Kind(), Detail: fmt.Sprintf("destination field %q already exists", dest)}
	}
	return nil
}

func (a *Rename) Apply(t *tabular.Table, d *script.Descriptor) (*tabular.Table, []Warning, error) {
	if err := t.Rename(d.SourceFields[0], d.DestField()); err != nil {
		return nil, nil, err
	}
	return t, nil, nil
}

// Select builds the destination column from many source columns with
// left-to-right precedence: a later column's non-null cell overwrites an
// earlier one, row-wise; null cells never overwrite.
type Select struct{}

func (a *Select) Kind() script.Kind { return script.KindSelect }
func (a *Select) RowSafe() bool     { return true }

func (a *Select) Validate(t *tabular.Table, d *script.Descriptor) error {
	return requireSourceFields(a.Kind(), t, d.SourceFields)
}

func (a *Select) Apply(t *tabular.Table, d *script.Descriptor) (*tabular.Table, []Warning, error) {
	cells := make([]any, t.Len())
	for _, name := range d.SourceFields {
		col, err := t.Column(name)
		if err != nil {
			return nil, nil, err
		}
		for i, v := range col.Cells {
			if !tabular.IsBlank(v) {
				cells[i] = v
			}
		}
	}
	return setOrAddColumn(t, d.DestField(), cells)
}

// setOrAddColumn writes a full destination column, replacing the cells of an
// existing column of the same name.
func setOrAddColumn(t *tabular.Table, name string, cells []any) (*tabular.Table, []Warning, error) {
	if t.HasColumn(name) {
		col, err := t.Column(name)
		if err != nil {
			return nil, nil, err
		}
		col.Cells = cells
		return t, nil, nil
	}
	if err := t.AddColumn(name, cells); err != nil {
		return nil, nil, err
	}
	return t, nil, nil
}
