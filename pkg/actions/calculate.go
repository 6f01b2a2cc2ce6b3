package actions

import (
	"fmt"

	"github.com/openprobity/crosswalk/pkg/schema"
	"github.com/openprobity/crosswalk/pkg/script"
	"github.com/openprobity/crosswalk/pkg/tabular"
)

// Calculate accumulates N numeric source columns row-wise, each operand
// carrying its own '+' or '-' sign. Null source cells contribute zero; a
// non-null cell that cannot be coerced to a number nulls the destination
// cell for that row and records a coercion warning.
type Calculate struct{}

func (a *Calculate) Kind() script.Kind { return script.KindCalculate }
func (a *Calculate) RowSafe() bool     { return true }

func (a *Calculate) Validate(t *tabular.Table, d *script.Descriptor) error {
	for _, op := range d.Calc {
		if !t.HasColumn(op.Field) {
			return &ValidationError{Kind: a.Kind(),
				Detail: fmt.Sprintf("source field %q not present at this point in the sequence", op.Field)}
		}
	}
	return nil
}

func (a *Calculate) Apply(t *tabular.Table, d *script.Descriptor) (*tabular.Table, []Warning, error) {
	cols := make([]*tabular.Column, len(d.Calc))
	for i, op := range d.Calc {
		col, err := t.Column(op.Field)
		if err != nil {
			return nil, nil, err
		}
		cols[i] = col
	}

	var warnings []Warning
	numField := &schema.Field{Name: d.DestField(), Type: schema.TypeNumber}
	cells := make([]any, t.Len())
	for row := 0; row < t.Len(); row++ {
		total := 0.0
		valid := true
		for i, op := range d.Calc {
			v := cols[i].Cells[row]
			if tabular.IsBlank(v) {
				continue
			}
			coerced, _, err := schema.Coerce(v, numField)
			if err != nil {
				warnings = append(warnings, Warning{
					Action: a.Kind(), Field: op.Field, Row: row,
					Message: fmt.Sprintf("non-numeric value %v", v),
				})
				valid = false
				break
			}
			total += float64(op.Sign) * coerced.(float64)
		}
		if valid {
			cells[row] = total
		}
	}
	out, _, err := setOrAddColumn(t, d.DestField(), cells)
	if err != nil {
		return nil, nil, err
	}
	return out, warnings, nil
}
