package actions

import (
	"github.com/openprobity/crosswalk/pkg/script"
	"github.com/openprobity/crosswalk/pkg/tabular"
)

// Collate zips same-position values from an ordered list of source columns
// into an array-typed destination column. A '~' spacer in the list inserts a
// null at that array position instead of consuming a source column, aligning
// arrays of mismatched natural width.
type Collate struct{}

func (a *Collate) Kind() script.Kind { return script.KindCollate }
func (a *Collate) RowSafe() bool     { return true }

func (a *Collate) Validate(t *tabular.Table, d *script.Descriptor) error {
	return requireSourceFields(a.Kind(), t, d.SourceFields)
}

func (a *Collate) Apply(t *tabular.Table, d *script.Descriptor) (*tabular.Table, []Warning, error) {
	sources := make([]*tabular.Column, len(d.SourceFields))
	for i, name := range d.SourceFields {
		if name == script.Spacer {
			continue
		}
		col, err := t.Column(name)
		if err != nil {
			return nil, nil, err
		}
		sources[i] = col
	}

	cells := make([]any, t.Len())
	for row := 0; row < t.Len(); row++ {
		arr := make([]any, len(sources))
		for i, col := range sources {
			if col == nil {
				continue // spacer position stays null
			}
			if v := col.Cells[row]; !tabular.IsBlank(v) {
				arr[i] = v
			}
		}
		cells[row] = arr
	}
	return setOrAddColumn(t, d.DestField(), cells)
}
