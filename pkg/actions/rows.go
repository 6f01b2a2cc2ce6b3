package actions

import (
	"strings"

	"github.com/openprobity/crosswalk/pkg/schema"
	"github.com/openprobity/crosswalk/pkg/script"
	"github.com/openprobity/crosswalk/pkg/tabular"
)

// DeleteRows removes an explicit, possibly non-contiguous, list of row
// indices, resolved against the table state at the time the action executes.
type DeleteRows struct{}

func (a *DeleteRows) Kind() script.Kind { return script.KindDeleteRows }
func (a *DeleteRows) RowSafe() bool     { return false }

func (a *DeleteRows) Validate(t *tabular.Table, d *script.Descriptor) error {
	return requireRows(a.Kind(), t, d.Rows)
}

func (a *DeleteRows) Apply(t *tabular.Table, d *script.Descriptor) (*tabular.Table, []Warning, error) {
	if err := t.DeleteRows(d.Rows); err != nil {
		return nil, nil, err
	}
	return t, nil, nil
}

// Deblank removes fully-blank rows and fully-blank columns. Idempotent.
type Deblank struct{}

func (a *Deblank) Kind() script.Kind { return script.KindDeblank }
func (a *Deblank) RowSafe() bool     { return false }

func (a *Deblank) Validate(t *tabular.Table, d *script.Descriptor) error { return nil }

func (a *Deblank) Apply(t *tabular.Table, d *script.Descriptor) (*tabular.Table, []Warning, error) {
	var blankRows []int
	for row := 0; row < t.Len(); row++ {
		if t.IsBlankRow(row) {
			blankRows = append(blankRows, row)
		}
	}
	if err := t.DeleteRows(blankRows); err != nil {
		return nil, nil, err
	}

	var blankCols []string
	for _, name := range t.ColumnNames() {
		col, err := t.Column(name)
		if err != nil {
			return nil, nil, err
		}
		blank := true
		for _, v := range col.Cells {
			if !tabular.IsBlank(v) {
				blank = false
				break
			}
		}
		if blank {
			blankCols = append(blankCols, name)
		}
	}
	// Keep at least one column so row count stays meaningful.
	if len(blankCols) == t.Width() && len(blankCols) > 0 {
		blankCols = blankCols[1:]
	}
	for _, name := range blankCols {
		if err := t.Drop(name); err != nil {
			return nil, nil, err
		}
	}
	return t, nil, nil
}

// Dedupe removes exact full-row duplicates, keeping the first occurrence.
// Idempotent, and commutes with Deblank.
type Dedupe struct{}

func (a *Dedupe) Kind() script.Kind { return script.KindDedupe }
func (a *Dedupe) RowSafe() bool     { return false }

func (a *Dedupe) Validate(t *tabular.Table, d *script.Descriptor) error { return nil }

func (a *Dedupe) Apply(t *tabular.Table, d *script.Descriptor) (*tabular.Table, []Warning, error) {
	seen := make(map[string]bool, t.Len())
	var dupes []int
	for row := 0; row < t.Len(); row++ {
		key := rowKey(t, row)
		if seen[key] {
			dupes = append(dupes, row)
			continue
		}
		seen[key] = true
	}
	if err := t.DeleteRows(dupes); err != nil {
		return nil, nil, err
	}
	return t, nil, nil
}

// rowKey builds an exact-match key over every cell in column order. The unit
// separator cannot occur in canonical cell text read from tabular sources.
func rowKey(t *tabular.Table, row int) string {
	var b strings.Builder
	for i, v := range t.Row(row) {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteString(schema.CanonicalText(v))
	}
	return b.String()
}
