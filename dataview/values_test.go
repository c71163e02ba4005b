package dataview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/fabview/datatable"
)

type stage string

func (s stage) String() string { return "stage " + string(s) }

type lot struct {
	Name  string
	Stage *stage
	Qty   *int32
}

func lotColumns() []Column[lot] {
	return []Column[lot]{
		{ID: "name", Accessor: func(l lot) any { return l.Name }},
		{ID: "stage", Accessor: func(l lot) any { return l.Stage }},
		{ID: "qty", Type: datatable.TypeInt, Accessor: func(l lot) any { return l.Qty }},
	}
}

func sampleLots() []lot {
	open, qa := stage("open"), stage("qa")
	ten, two := int32(10), int32(2)
	return []lot{
		{Name: "nil-a"},
		{Name: "ten", Stage: &open, Qty: &ten},
		{Name: "nil-b"},
		{Name: "two", Stage: &qa, Qty: &two},
	}
}

func lotNames(rows []*Row[lot]) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Original.Name
	}
	return out
}

func TestTypedNilPointers(t *testing.T) {
	var tbl *Table[lot]
	require.NotPanics(t, func() {
		var err error
		tbl, err = New(sampleLots(), lotColumns())
		require.NoError(t, err)
	})

	rows := tbl.Rows()
	assert.Equal(t, "", tbl.CellText(rows[0], "stage"))
	assert.Equal(t, "", tbl.CellText(rows[0], "qty"))
	assert.Equal(t, "stage open", tbl.CellText(rows[1], "stage"))
	assert.Equal(t, "10", tbl.CellText(rows[1], "qty"))

	v, err := tbl.Value(rows[2], "qty")
	require.NoError(t, err)
	assert.True(t, v.IsNull)
	assert.Equal(t, datatable.TypeInt, v.Type)

	tbl.SetGlobalFilter("nil")
	assert.Equal(t, []string{"nil-a", "nil-b"}, lotNames(tbl.Rows()), "only the names match")
	tbl.SetGlobalFilter("<nil>")
	assert.Zero(t, tbl.RowCount())
	tbl.SetGlobalFilter("")

	require.NoError(t, tbl.ToggleSort("qty"))
	assert.Equal(t, []string{"two", "ten", "nil-a", "nil-b"}, lotNames(tbl.Rows()))
	require.NoError(t, tbl.ToggleSort("qty"))
	assert.Equal(t, []string{"ten", "two", "nil-a", "nil-b"}, lotNames(tbl.Rows()), "nulls stay last descending")

	require.NoError(t, tbl.SetSorting(datatable.SortState{{ColumnID: "stage", Direction: datatable.SortAscending}}))
	assert.Equal(t, []string{"ten", "two", "nil-a", "nil-b"}, lotNames(tbl.Rows()))
}

func TestSortMixedKinds(t *testing.T) {
	cols := []Column[lot]{
		{ID: "name", Accessor: func(l lot) any { return l.Name }},
		{ID: "mixed", Accessor: func(l lot) any {
			switch l.Name {
			case "a":
				return 2
			case "b":
				return "1x"
			case "c":
				return int64(9007199254740993)
			case "d":
				return int64(9007199254740992)
			}
			return nil
		}},
	}
	orders := [][]string{
		{"a", "b", "c", "d", "e"},
		{"e", "d", "c", "b", "a"},
		{"b", "e", "a", "d", "c"},
	}
	for _, order := range orders {
		records := make([]lot, len(order))
		for i, name := range order {
			records[i] = lot{Name: name}
		}
		tbl, err := New(records, cols)
		require.NoError(t, err)
		require.NoError(t, tbl.ToggleSort("mixed"))
		assert.Equal(t, []string{"a", "d", "c", "b", "e"}, lotNames(tbl.Rows()), "input order %v", order)
	}
}

func TestDuplicateRowIDs(t *testing.T) {
	records := sampleLots()
	tbl, err := New(records, lotColumns(), WithRowID(func(l lot, _ int) string { return "x" }))
	require.NoError(t, err)

	ids := make(map[RowID]bool)
	for _, row := range tbl.Rows() {
		assert.False(t, ids[row.ID], "row id %s is unique", row.ID)
		ids[row.ID] = true
	}
	assert.Equal(t, map[RowID]bool{"x": true, "x#1": true, "x#2": true, "x#3": true}, ids)

	row, ok := tbl.Row("x#2")
	require.True(t, ok)
	assert.Equal(t, "nil-b", row.Original.Name)

	tbl.ToggleAllPageRows(true)
	assert.Equal(t, 4, tbl.SelectedCount())
	assert.Len(t, tbl.SelectedRecords(), tbl.SelectedCount())

	tbl.ToggleRow("x")
	assert.Equal(t, 3, tbl.SelectedCount())
	assert.Len(t, tbl.SelectedRecords(), 3)
}

func TestColumnResolve(t *testing.T) {
	lots := sampleLots()
	cols := lotColumns()

	v := cols[2].Resolve(lots[1])
	assert.Equal(t, int32(10), v.Raw)
	assert.Equal(t, datatable.TypeInt, v.Type)
	assert.True(t, cols[2].Resolve(lots[0]).IsNull)
	assert.Equal(t, "stage qa", cols[1].Resolve(lots[3]).Formatted)

	boom := Column[lot]{ID: "boom", Accessor: func(lot) any { panic("accessor failed") }}
	assert.True(t, boom.Resolve(lots[0]).IsNull)

	keyed := Column[map[string]any]{AccessorKey: "due", Type: datatable.TypeDate}
	assert.Equal(t, "2025-01-06", keyed.Resolve(map[string]any{"due": "2025-01-06"}).Formatted)
}
