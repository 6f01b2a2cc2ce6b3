package actions

import (
	"github.com/openprobity/crosswalk/pkg/script"
	"github.com/openprobity/crosswalk/pkg/tabular"
)

// New adds a column populated entirely with one literal value. The only
// action whose source is a literal rather than a field reference.
type New struct{}

func (a *New) Kind() script.Kind { return script.KindNew }
func (a *New) RowSafe() bool     { return true }

func (a *New) Validate(t *tabular.Table, d *script.Descriptor) error {
	return requireNewColumn(a.Kind(), t, d.DestField())
}

func (a *New) Apply(t *tabular.Table, d *script.Descriptor) (*tabular.Table, []Warning, error) {
	cells := make([]any, t.Len())
	for i := range cells {
		cells[i] = d.Value
	}
	if err := t.AddColumn(d.DestField(), cells); err != nil {
		return nil, nil, err
	}
	return t, nil, nil
}
