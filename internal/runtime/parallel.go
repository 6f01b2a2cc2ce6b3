package runtime

import (
	"fmt"
	"sync"

	"github.com/openprobity/crosswalk/pkg/actions"
	"github.com/openprobity/crosswalk/pkg/script"
	"github.com/openprobity/crosswalk/pkg/tabular"
)

// apply runs one action, partitioning row-safe actions across workers for
// large tables. Cross-row actions always see the merged table.
func (e *Executor) apply(a actions.Action, t *tabular.Table, d *script.Descriptor) (*tabular.Table, []actions.Warning, error) {
	if !a.RowSafe() || e.cfg.Workers < 2 || t.Len() < 2*e.cfg.PartitionSize {
		return a.Apply(t, d)
	}
	return e.applyPartitioned(a, t, d)
}

// applyPartitioned splits the table into contiguous row ranges, applies the
// action to each partition concurrently, and concatenates the results in
// partition order, preserving overall row order.
func (e *Executor) applyPartitioned(a actions.Action, t *tabular.Table, d *script.Descriptor) (*tabular.Table, []actions.Warning, error) {
	parts := e.cfg.Workers
	if max := t.Len() / e.cfg.PartitionSize; parts > max {
		parts = max
	}

	type chunk struct {
		start int
		table *tabular.Table
	}
	chunks := make([]chunk, 0, parts)
	per := (t.Len() + parts - 1) / parts
	for start := 0; start < t.Len(); start += per {
		end := start + per
		if end > t.Len() {
			end = t.Len()
		}
		cols := make([]*tabular.Column, 0, t.Width())
		for _, name := range t.ColumnNames() {
			col, err := t.Column(name)
			if err != nil {
				return nil, nil, err
			}
			cols = append(cols, &tabular.Column{Name: name, Cells: col.Cells[start:end:end]})
		}
		sub, err := tabular.FromColumns(cols)
		if err != nil {
			return nil, nil, err
		}
		chunks = append(chunks, chunk{start: start, table: sub})
	}

	results := make([]*tabular.Table, len(chunks))
	warningEach := make([][]actions.Warning, len(chunks))
	errs := make([]error, len(chunks))

	var wg sync.WaitGroup
	for i, c := range chunks {
		wg.Add(1)
		go func(i int, c chunk) {
			defer wg.Done()
			out, warns, err := a.Apply(c.table, d)
			if err != nil {
				errs[i] = err
				return
			}
			for j := range warns {
				if warns[j].Row >= 0 {
					warns[j].Row += c.start
				}
			}
			results[i] = out
			warningEach[i] = warns
		}(i, c)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}

	var warnings []actions.Warning
	for _, w := range warningEach {
		warnings = append(warnings, w...)
	}

	merged, err := concat(results)
	if err != nil {
		return nil, nil, fmt.Errorf("partition merge: %w", err)
	}
	return merged, warnings, nil
}

// concat stitches per-partition results back into one table. Row-safe
// actions produce identical column sets per partition, so the first
// partition's column order is authoritative.
func concat(parts []*tabular.Table) (*tabular.Table, error) {
	out := tabular.New()
	for _, name := range parts[0].ColumnNames() {
		var cells []any
		for _, p := range parts {
			col, err := p.Column(name)
			if err != nil {
				return nil, err
			}
			cells = append(cells, col.Cells...)
		}
		if err := out.AddColumn(name, cells); err != nil {
			return nil, err
		}
	}
	return out, nil
}
