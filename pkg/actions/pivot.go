package actions

import (
	"fmt"
	"sort"

	"github.com/openprobity/crosswalk/pkg/schema"
	"github.com/openprobity/crosswalk/pkg/script"
	"github.com/openprobity/crosswalk/pkg/tabular"
)

// PivotLonger converts N wide columns into two new columns, one holding the
// original column's name and one its value, multiplying the row count by N
// and dropping the N source columns. Row order is deterministic: outer loop
// over original rows, inner loop over the pivoted columns in declared order.
type PivotLonger struct{}

func (a *PivotLonger) Kind() script.Kind { return script.KindPivotLonger }
func (a *PivotLonger) RowSafe() bool     { return false }

func (a *PivotLonger) Validate(t *tabular.Table, d *script.Descriptor) error {
	if err := requireSourceFields(a.Kind(), t, d.SourceFields); err != nil {
		return err
	}
	for _, dest := range d.Dest {
		if err := requireNewColumn(a.Kind(), t, dest); err != nil {
			return err
		}
	}
	return nil
}

func (a *PivotLonger) Apply(t *tabular.Table, d *script.Descriptor) (*tabular.Table, []Warning, error) {
	pivoted := make(map[string]bool, len(d.SourceFields))
	for _, name := range d.SourceFields {
		pivoted[name] = true
	}

	n := len(d.SourceFields)
	rows := t.Len()
	out := tabular.New()

	// Kept columns: every original value repeats once per pivoted column.
	for _, name := range t.ColumnNames() {
		if pivoted[name] {
			continue
		}
		col, err := t.Column(name)
		if err != nil {
			return nil, nil, err
		}
		cells := make([]any, 0, rows*n)
		for _, v := range col.Cells {
			for i := 0; i < n; i++ {
				cells = append(cells, v)
			}
		}
		if err := out.AddColumn(name, cells); err != nil {
			return nil, nil, err
		}
	}

	nameCells := make([]any, 0, rows*n)
	valueCells := make([]any, 0, rows*n)
	for row := 0; row < rows; row++ {
		for _, name := range d.SourceFields {
			v, err := t.Cell(name, row)
			if err != nil {
				return nil, nil, err
			}
			nameCells = append(nameCells, name)
			valueCells = append(valueCells, v)
		}
	}
	if err := out.AddColumn(d.Dest[0], nameCells); err != nil {
		return nil, nil, err
	}
	if err := out.AddColumn(d.Dest[1], valueCells); err != nil {
		return nil, nil, err
	}
	return out, nil, nil
}

// PivotCategories handles row-encoded categories: the given row indices hold
// a category label in an otherwise-empty row. Those label rows are removed
// and their label is stamped into a new destination column for every row
// between one labeled row and the next.
type PivotCategories struct{}

func (a *PivotCategories) Kind() script.Kind { return script.KindPivotCategories }
func (a *PivotCategories) RowSafe() bool     { return false }

func (a *PivotCategories) Validate(t *tabular.Table, d *script.Descriptor) error {
	if err := requireRows(a.Kind(), t, d.Rows); err != nil {
		return err
	}
	return requireNewColumn(a.Kind(), t, d.DestField())
}

func (a *PivotCategories) Apply(t *tabular.Table, d *script.Descriptor) (*tabular.Table, []Warning, error) {
	labelRows := append([]int(nil), d.Rows...)
	sort.Ints(labelRows)

	labels := make(map[int]string, len(labelRows))
	for _, row := range labelRows {
		label, ok := rowLabel(t, row)
		if !ok {
			return nil, nil, &ValidationError{Kind: a.Kind(),
				Detail: fmt.Sprintf("row %d holds no category label", row)}
		}
		labels[row] = label
	}

	cells := make([]any, t.Len())
	var current any
	next := 0
	for row := 0; row < t.Len(); row++ {
		if next < len(labelRows) && row == labelRows[next] {
			current = labels[row]
			next++
		}
		cells[row] = current
	}
	if err := t.AddColumn(d.DestField(), cells); err != nil {
		return nil, nil, err
	}
	if err := t.DeleteRows(labelRows); err != nil {
		return nil, nil, err
	}
	return t, nil, nil
}

// rowLabel returns the first non-blank cell text in the row, scanning the
// columns that existed before the destination column was added.
func rowLabel(t *tabular.Table, row int) (string, bool) {
	for _, v := range t.Row(row) {
		if !tabular.IsBlank(v) {
			return schema.CanonicalText(v), true
		}
	}
	return "", false
}
