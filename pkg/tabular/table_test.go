package tabular_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openprobity/crosswalk/pkg/tabular"
)

func newTable(t *testing.T) *tabular.Table {
	t.Helper()
	tbl, err := tabular.FromColumns([]*tabular.Column{
		{Name: "a", Cells: []any{"x", "y", "z"}},
		{Name: "b", Cells: []any{1, 2, 3}},
	})
	require.NoError(t, err)
	return tbl
}

func TestTable_Shape(t *testing.T) {
	tbl := newTable(t)

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, 2, tbl.Width())
	assert.Equal(t, []string{"a", "b"}, tbl.ColumnNames())
	assert.True(t, tbl.HasColumn("a"))
	assert.False(t, tbl.HasColumn("c"))
}

func TestTable_AddColumn(t *testing.T) {
	tbl := newTable(t)

	require.NoError(t, tbl.AddColumn("c", []any{true, false, true}))
	assert.Equal(t, []string{"a", "b", "c"}, tbl.ColumnNames())

	assert.Error(t, tbl.AddColumn("c", []any{nil, nil, nil}), "duplicate name")
	assert.Error(t, tbl.AddColumn("d", []any{1}), "length mismatch")
	assert.Error(t, tbl.AddColumn("", []any{nil, nil, nil}), "empty name")
}

func TestTable_RenameAndDrop(t *testing.T) {
	tbl := newTable(t)

	require.NoError(t, tbl.Rename("a", "alpha"))
	assert.Equal(t, []string{"alpha", "b"}, tbl.ColumnNames())
	assert.Error(t, tbl.Rename("alpha", "b"), "collision")
	assert.Error(t, tbl.Rename("missing", "x"))

	require.NoError(t, tbl.Drop("alpha"))
	assert.Equal(t, []string{"b"}, tbl.ColumnNames())

	// Index stays consistent after a drop.
	col, err := tbl.Column("b")
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, col.Cells)
}

func TestTable_Cells(t *testing.T) {
	tbl := newTable(t)

	v, err := tbl.Cell("a", 1)
	require.NoError(t, err)
	assert.Equal(t, "y", v)

	require.NoError(t, tbl.SetCell("a", 1, "Y"))
	v, _ = tbl.Cell("a", 1)
	assert.Equal(t, "Y", v)

	_, err = tbl.Cell("a", 9)
	assert.Error(t, err)
	_, err = tbl.Cell("missing", 0)
	assert.Error(t, err)
}

func TestTable_Clone(t *testing.T) {
	tbl := newTable(t)
	clone := tbl.Clone()

	require.NoError(t, clone.SetCell("a", 0, "mutated"))
	require.NoError(t, clone.Drop("b"))

	v, _ := tbl.Cell("a", 0)
	assert.Equal(t, "x", v, "original cell untouched")
	assert.True(t, tbl.HasColumn("b"), "original columns untouched")
}

func TestTable_DeleteRows(t *testing.T) {
	tbl := newTable(t)

	require.NoError(t, tbl.DeleteRows([]int{0, 2, 2}))
	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, []any{"y"}, mustColumn(t, tbl, "a"))
	assert.Equal(t, []any{2}, mustColumn(t, tbl, "b"))

	assert.Error(t, tbl.DeleteRows([]int{5}))
	require.NoError(t, tbl.DeleteRows(nil))
}

func TestTable_Blank(t *testing.T) {
	tbl, err := tabular.FromColumns([]*tabular.Column{
		{Name: "a", Cells: []any{"x", "", nil}},
		{Name: "b", Cells: []any{nil, "  ", nil}},
	})
	require.NoError(t, err)

	assert.False(t, tbl.IsBlankRow(0))
	assert.True(t, tbl.IsBlankRow(1), "whitespace-only text is blank")
	assert.True(t, tbl.IsBlankRow(2))

	assert.True(t, tabular.IsBlank(nil))
	assert.True(t, tabular.IsBlank(" \t"))
	assert.False(t, tabular.IsBlank(0), "numeric zero is data")
	assert.False(t, tabular.IsBlank(false))
}

func TestTable_Reorder(t *testing.T) {
	tbl := newTable(t)
	require.NoError(t, tbl.AddColumn("c", []any{nil, nil, nil}))

	require.NoError(t, tbl.Reorder([]string{"c", "a"}))
	assert.Equal(t, []string{"c", "a"}, tbl.ColumnNames())
	assert.False(t, tbl.HasColumn("b"), "unnamed columns are dropped")

	// Index rebuilt correctly.
	assert.Equal(t, []any{"x", "y", "z"}, mustColumn(t, tbl, "a"))

	assert.Error(t, tbl.Reorder([]string{"missing"}))
}

func TestTable_Row(t *testing.T) {
	tbl := newTable(t)
	assert.Equal(t, []any{"y", 2}, tbl.Row(1))
}

func mustColumn(t *testing.T, tbl *tabular.Table, name string) []any {
	t.Helper()
	col, err := tbl.Column(name)
	require.NoError(t, err)
	return col.Cells
}
