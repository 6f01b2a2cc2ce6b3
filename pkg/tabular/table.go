// Package tabular provides the in-memory table the transform engine operates
// on: an ordered set of named columns holding equal-length cell sequences.
// A nil cell is a null. Tables are execution-time only and are never
// persisted as domain entities.
package tabular

import (
	"fmt"
	"sort"
	"strings"
)

// Column is a named sequence of cells.
type Column struct {
	Name  string
	Cells []any
}

// Table is an ordered collection of columns with equal row counts.
// The zero value is not usable; construct with New.
type Table struct {
	cols  []*Column
	index map[string]int
}

// New creates an empty table.
func New() *Table {
	return &Table{index: make(map[string]int)}
}

// FromColumns builds a table from ordered columns.
// All columns must have the same length and unique names.
func FromColumns(cols []*Column) (*Table, error) {
	t := New()
	for _, c := range cols {
		if err := t.AddColumn(c.Name, c.Cells); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0].Cells)
}

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.cols) }

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	return t.cols[i], nil
}

// AddColumn appends a new column. Its length must match the current row
// count unless the table is empty.
func (t *Table) AddColumn(name string, cells []any) error {
	if name == "" {
		return fmt.Errorf("column name cannot be empty")
	}
	if _, ok := t.index[name]; ok {
		return fmt.Errorf("column %q already exists", name)
	}
	if len(t.cols) > 0 && len(cells) != t.Len() {
		return fmt.Errorf("column %q has %d cells, table has %d rows", name, len(cells), t.Len())
	}
	t.index[name] = len(t.cols)
	t.cols = append(t.cols, &Column{Name: name, Cells: cells})
	return nil
}

// Rename changes a column's name in place, preserving order.
func (t *Table) Rename(oldName, newName string) error {
	i, ok := t.index[oldName]
	if !ok {
		return fmt.Errorf("column %q not found", oldName)
	}
	if _, exists := t.index[newName]; exists && newName != oldName {
		return fmt.Errorf("column %q already exists", newName)
	}
	delete(t.index, oldName)
	t.index[newName] = i
	t.cols[i].Name = newName
	return nil
}

// Drop removes the named column.
func (t *Table) Drop(name string) error {
	i, ok := t.index[name]
	if !ok {
		return fmt.Errorf("column %q not found", name)
	}
	t.cols = append(t.cols[:i], t.cols[i+1:]...)
	delete(t.index, name)
	for j := i; j < len(t.cols); j++ {
		t.index[t.cols[j].Name] = j
	}
	return nil
}

// Cell returns the cell at (column, row).
func (t *Table) Cell(name string, row int) (any, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= len(c.Cells) {
		return nil, fmt.Errorf("row %d out of range [0,%d)", row, len(c.Cells))
	}
	return c.Cells[row], nil
}

// SetCell writes the cell at (column, row).
func (t *Table) SetCell(name string, row int, value any) error {
	c, err := t.Column(name)
	if err != nil {
		return err
	}
	if row < 0 || row >= len(c.Cells) {
		return fmt.Errorf("row %d out of range [0,%d)", row, len(c.Cells))
	}
	c.Cells[row] = value
	return nil
}

// Clone returns a deep copy of the table.
// Cell values are shared (cells are treated as immutable); the column and
// slice structure is copied so mutations never touch the original.
func (t *Table) Clone() *Table {
	out := New()
	for _, c := range t.cols {
		cells := make([]any, len(c.Cells))
		copy(cells, c.Cells)
		// AddColumn cannot fail here: names are already unique and lengths equal.
		_ = out.AddColumn(c.Name, cells)
	}
	return out
}

// DeleteRows removes the given row indices. Indices outside the current
// range are rejected; duplicates are tolerated.
func (t *Table) DeleteRows(indices []int) error {
	if len(indices) == 0 {
		return nil
	}
	n := t.Len()
	drop := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= n {
			return fmt.Errorf("row index %d out of range [0,%d)", idx, n)
		}
		drop[idx] = true
	}
	for _, c := range t.cols {
		kept := c.Cells[:0]
		for i, cell := range c.Cells {
			if !drop[i] {
				kept = append(kept, cell)
			}
		}
		c.Cells = kept
	}
	return nil
}

// IsBlankRow reports whether every cell in the row is null or blank text.
func (t *Table) IsBlankRow(row int) bool {
	for _, c := range t.cols {
		if !IsBlank(c.Cells[row]) {
			return false
		}
	}
	return true
}

// IsBlank reports whether a single cell holds no data.
func IsBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// Row returns the cells of one row in column order.
func (t *Table) Row(row int) []any {
	out := make([]any, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Cells[row]
	}
	return out
}

// Reorder rearranges columns to the given order. Every name must exist;
// columns not named are dropped. Used to cut a working table down to the
// destination schema's field order.
func (t *Table) Reorder(names []string) error {
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		i, ok := t.index[name]
		if !ok {
			return fmt.Errorf("column %q not found", name)
		}
		cols = append(cols, t.cols[i])
	}
	t.cols = cols
	t.index = make(map[string]int, len(cols))
	for i, c := range cols {
		t.index[c.Name] = i
	}
	return nil
}

// SortedNames returns column names sorted lexicographically.
func (t *Table) SortedNames() []string {
	names := t.ColumnNames()
	sort.Strings(names)
	return names
}
