package actions

import (
	"fmt"
	"time"

	"github.com/openprobity/crosswalk/pkg/schema"
	"github.com/openprobity/crosswalk/pkg/script"
	"github.com/openprobity/crosswalk/pkg/tabular"
)

// SelectDate implements SELECT_NEWEST and SELECT_OLDEST. Each candidate is a
// (value field, date field) pair; per row, the value whose non-null date is
// most recent (or least recent) wins, ties broken by declared pair order.
// A null date removes that candidate for the row.
type SelectDate struct {
	Newest bool
}

func (a *SelectDate) Kind() script.Kind {
	if a.Newest {
		return script.KindSelectNewest
	}
	return script.KindSelectOldest
}

func (a *SelectDate) RowSafe() bool { return true }

func (a *SelectDate) Validate(t *tabular.Table, d *script.Descriptor) error {
	for _, p := range d.Pairs {
		if err := requireSourceFields(a.Kind(), t, []string{p.Value, p.Date}); err != nil {
			return err
		}
	}
	return nil
}

func (a *SelectDate) Apply(t *tabular.Table, d *script.Descriptor) (*tabular.Table, []Warning, error) {
	type candidate struct {
		values []any
		dates  []any
	}
	cands := make([]candidate, len(d.Pairs))
	for i, p := range d.Pairs {
		vc, err := t.Column(p.Value)
		if err != nil {
			return nil, nil, err
		}
		dc, err := t.Column(p.Date)
		if err != nil {
			return nil, nil, err
		}
		cands[i] = candidate{values: vc.Cells, dates: dc.Cells}
	}

	var warnings []Warning
	dateField := &schema.Field{Name: d.DestField(), Type: schema.TypeDateTime}
	cells := make([]any, t.Len())
	for row := 0; row < t.Len(); row++ {
		var best any
		var bestAt time.Time
		found := false
		for i, c := range cands {
			raw := c.dates[row]
			if tabular.IsBlank(raw) {
				continue
			}
			coerced, _, err := schema.Coerce(raw, dateField)
			if err != nil {
				warnings = append(warnings, Warning{
					Action: a.Kind(), Field: d.Pairs[i].Date, Row: row,
					Message: fmt.Sprintf("unparseable date %v", raw),
				})
				continue
			}
			at := coerced.(time.Time)
			// Strict comparison keeps the first-listed pair on ties.
			better := a.Newest && at.After(bestAt) || !a.Newest && at.Before(bestAt)
			if !found || better {
				best = c.values[row]
				bestAt = at
				found = true
			}
		}
		if found {
			cells[row] = best
		}
	}
	out, _, err := setOrAddColumn(t, d.DestField(), cells)
	if err != nil {
		return nil, nil, err
	}
	return out, warnings, nil
}
