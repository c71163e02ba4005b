package dataview

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/fabview/datatable"
)

func amounts(rows []*Row[rfq]) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Original.Amount
	}
	return out
}

func TestScenarioGlobalSearchSelectAll(t *testing.T) {
	tbl := newRFQTable(t, sampleRFQs(25))

	tbl.SetGlobalFilter("steel")
	assert.Equal(t, 4, tbl.RowCount())
	assert.Equal(t, 1, tbl.PageCount())
	assert.Equal(t, []string{"RFQ-003", "RFQ-009", "RFQ-014", "RFQ-020"}, numbers(tbl.PageRows()))

	tbl.ToggleAllPageRows(true)
	assert.Equal(t, 4, tbl.SelectedCount())
	assert.True(t, tbl.IsAllPageRowsSelected())
	assert.False(t, tbl.IsSomePageRowsSelected())

	tbl.ToggleRow("9")
	assert.False(t, tbl.IsAllPageRowsSelected())
	assert.True(t, tbl.IsSomePageRowsSelected())
}

func TestScenarioMultiSelectStatus(t *testing.T) {
	records := sampleRFQs(25)
	tbl := newRFQTable(t, records)

	require.NoError(t, tbl.SetColumnFilter("status", []string{"PENDING", "APPROVED"}))

	want := 0
	for _, r := range records {
		if r.Status != "REJECTED" {
			want++
		}
	}
	assert.Equal(t, want, tbl.RowCount())
	for _, r := range tbl.Rows() {
		assert.NotEqual(t, "REJECTED", r.Original.Status)
	}
	assert.Equal(t, 2, tbl.PageCount())

	// an empty set removes the filter
	require.NoError(t, tbl.SetColumnFilter("status", []string{}))
	assert.Equal(t, 25, tbl.RowCount())
	assert.Nil(t, tbl.ColumnFilter("status"))

	// a value the multiselect cannot read rejects every row
	require.NoError(t, tbl.SetColumnFilter("status", 42))
	assert.Equal(t, 0, tbl.RowCount())
}

func TestColumnFilters(t *testing.T) {
	tests := []struct {
		name   string
		column string
		value  any
		want   []string
	}{
		{"text contains ignores case", "material", "STEEL", []string{"RFQ-003", "RFQ-009", "RFQ-014", "RFQ-020"}},
		{"text on numbers matches formatted value", "number", "RFQ-01", []string{
			"RFQ-010", "RFQ-011", "RFQ-012", "RFQ-013", "RFQ-014", "RFQ-015", "RFQ-016", "RFQ-017", "RFQ-018", "RFQ-019",
		}},
		{"no match", "supplier", "Supplier Z", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := newRFQTable(t, sampleRFQs(25), WithPageSize[rfq](50))
			require.NoError(t, tbl.SetColumnFilter(tt.column, tt.value))
			assert.Equal(t, tt.want, append([]string{}, numbers(tbl.Rows())...))
		})
	}
}

func TestFiltersCombineWithAnd(t *testing.T) {
	tbl := newRFQTable(t, sampleRFQs(25))
	tbl.SetGlobalFilter("steel")
	require.NoError(t, tbl.SetColumnFilter("status", []string{"PENDING"}))

	for _, r := range tbl.Rows() {
		assert.Equal(t, "PENDING", r.Original.Status)
		assert.Contains(t, []string{"RFQ-003", "RFQ-009", "RFQ-014", "RFQ-020"}, r.Original.Number)
	}
	assert.Equal(t, []string{"RFQ-003", "RFQ-009"}, numbers(tbl.Rows()))

	tbl.ResetFilters()
	assert.Equal(t, 25, tbl.RowCount())
	assert.Empty(t, tbl.GlobalFilter())
	assert.Empty(t, tbl.ColumnFilters())
}

func TestSetColumnFilterErrors(t *testing.T) {
	tbl, err := New(sampleRFQs(3), []Column[rfq]{
		{ID: "number", Accessor: func(r rfq) any { return r.Number }, DisableFilter: true},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, tbl.SetColumnFilter("number", "x"), datatable.ErrColumnNotFilterable)
	assert.ErrorIs(t, tbl.SetColumnFilter("nope", "x"), datatable.ErrColumnNotFound)
}

func TestDisableGlobalFilter(t *testing.T) {
	tbl, err := New(sampleRFQs(25), []Column[rfq]{
		{ID: "number", Accessor: func(r rfq) any { return r.Number }},
		{ID: "material", Accessor: func(r rfq) any { return r.Material }, DisableGlobalFilter: true},
	})
	require.NoError(t, err)

	tbl.SetGlobalFilter("steel")
	assert.Equal(t, 0, tbl.RowCount())
}

func TestCustomFilter(t *testing.T) {
	cols := rfqColumns()
	cols[4].FilterType = datatable.FilterCustom
	cols[4].FilterFn = func(value any, _ rfq, f any) bool {
		return value.(float64) >= f.(float64)
	}
	records := sampleRFQs(25)
	tbl, err := New(records, cols)
	require.NoError(t, err)

	require.NoError(t, tbl.SetColumnFilter("amount", 800.0))
	want := 0
	for _, r := range records {
		if r.Amount >= 800 {
			want++
		}
	}
	assert.Equal(t, want, tbl.RowCount())
	for _, r := range tbl.Rows() {
		assert.GreaterOrEqual(t, r.Original.Amount, 800.0)
	}

	// a panicking predicate excludes the row
	require.NoError(t, tbl.SetColumnFilter("amount", "not a number"))
	assert.Equal(t, 0, tbl.RowCount())
}

func TestCustomFilterWithoutPredicate(t *testing.T) {
	cols := rfqColumns()
	cols[4].FilterType = datatable.FilterCustom
	tbl, err := New(sampleRFQs(5), cols)
	require.NoError(t, err)

	require.NoError(t, tbl.SetColumnFilter("amount", 1.0))
	assert.Equal(t, 0, tbl.RowCount())
}

func TestQuerySearchMode(t *testing.T) {
	records := sampleRFQs(25)
	tbl := newRFQTable(t, records, WithSearchMode[rfq](SearchQuery), WithPageSize[rfq](50))

	tbl.SetGlobalFilter("Amount > 500 AND status = approved")
	want := []string{}
	for _, r := range records {
		if r.Amount > 500 && r.Status == "APPROVED" {
			want = append(want, r.Number)
		}
	}
	assert.Equal(t, want, append([]string{}, numbers(tbl.Rows())...))

	// plain text still searches every column
	tbl.SetGlobalFilter("steel")
	assert.Equal(t, 4, tbl.RowCount())

	// unknown columns fall back to a substring search for the literal text
	tbl.SetGlobalFilter("colour = red")
	assert.Equal(t, 0, tbl.RowCount())
}

func TestScenarioSortCycle(t *testing.T) {
	tbl := newRFQTable(t, sampleRFQs(25), WithPageSize[rfq](50))
	original := numbers(tbl.Rows())

	require.NoError(t, tbl.ToggleSort("amount"))
	assert.Equal(t, datatable.SortAscending, tbl.Sorting().Direction("amount"))
	assert.True(t, slices.IsSorted(amounts(tbl.Rows())))

	require.NoError(t, tbl.ToggleSort("amount"))
	assert.Equal(t, datatable.SortDescending, tbl.Sorting().Direction("amount"))
	desc := amounts(tbl.Rows())
	slices.Reverse(desc)
	assert.True(t, slices.IsSorted(desc))

	require.NoError(t, tbl.ToggleSort("amount"))
	assert.False(t, tbl.Sorting().IsSorted())
	assert.Equal(t, original, numbers(tbl.Rows()))
}

func TestToggleSortReplacesOtherColumn(t *testing.T) {
	tbl := newRFQTable(t, sampleRFQs(10))
	require.NoError(t, tbl.ToggleSort("amount"))
	require.NoError(t, tbl.ToggleSort("supplier"))

	assert.Equal(t, datatable.SortState{{ColumnID: "supplier", Direction: datatable.SortAscending}}, tbl.Sorting())
	assert.ErrorIs(t, tbl.ToggleSort("nope"), datatable.ErrColumnNotFound)
}

func TestSortIsStable(t *testing.T) {
	tbl := newRFQTable(t, sampleRFQs(25), WithPageSize[rfq](50))
	require.NoError(t, tbl.ToggleSort("supplier"))

	rows := tbl.Rows()
	for i := 1; i < len(rows); i++ {
		a, b := rows[i-1], rows[i]
		if a.Original.Supplier == b.Original.Supplier {
			assert.Less(t, a.Index, b.Index, "ties keep input order")
		}
	}

	first := numbers(rows)
	tbl.SetGlobalFilter("")
	assert.Equal(t, first, numbers(tbl.Rows()), "re-deriving is idempotent")
}

func TestSortNullsLast(t *testing.T) {
	records := sampleRFQs(6)
	for i, d := range []string{"2025-03-01", "2025-01-15", "2025-02-10"} {
		records[i*2].Due = &d
	}
	tbl := newRFQTable(t, records)

	require.NoError(t, tbl.ToggleSort("due"))
	assert.Equal(t, []string{"RFQ-002", "RFQ-004", "RFQ-000", "RFQ-001", "RFQ-003", "RFQ-005"}, numbers(tbl.Rows()))

	require.NoError(t, tbl.ToggleSort("due"))
	assert.Equal(t, []string{"RFQ-000", "RFQ-004", "RFQ-002", "RFQ-001", "RFQ-003", "RFQ-005"}, numbers(tbl.Rows()))
}

func TestSetSortingMultiKey(t *testing.T) {
	tbl := newRFQTable(t, sampleRFQs(25), WithPageSize[rfq](50))
	require.NoError(t, tbl.SetSorting(datatable.SortState{
		{ColumnID: "status", Direction: datatable.SortAscending},
		{ColumnID: "amount", Direction: datatable.SortDescending},
		{ColumnID: "status", Direction: datatable.SortDescending},
		{ColumnID: "number", Direction: datatable.SortNone},
	}))
	assert.Len(t, tbl.Sorting(), 2)

	rows := tbl.Rows()
	for i := 1; i < len(rows); i++ {
		a, b := rows[i-1].Original, rows[i].Original
		require.LessOrEqual(t, a.Status, b.Status)
		if a.Status == b.Status {
			assert.GreaterOrEqual(t, a.Amount, b.Amount)
		}
	}

	assert.ErrorIs(t, tbl.SetSorting(datatable.SortState{{ColumnID: SelectionColumnID, Direction: datatable.SortAscending}}),
		datatable.ErrColumnNotSortable)

	tbl.ClearSorting()
	assert.Nil(t, tbl.Sorting())
}

func TestPagination(t *testing.T) {
	tbl := newRFQTable(t, sampleRFQs(25))

	assert.Equal(t, Pagination{PageIndex: 0, PageSize: 10}, tbl.Pagination())
	assert.Equal(t, 3, tbl.PageCount())
	assert.False(t, tbl.CanPreviousPage())
	assert.True(t, tbl.CanNextPage())

	tbl.NextPage()
	assert.Equal(t, "RFQ-010", tbl.PageRows()[0].Original.Number)

	tbl.LastPage()
	assert.Equal(t, 2, tbl.Pagination().PageIndex)
	assert.Len(t, tbl.PageRows(), 5)
	assert.False(t, tbl.CanNextPage())
	tbl.NextPage()
	assert.Equal(t, 2, tbl.Pagination().PageIndex)

	tbl.PreviousPage()
	assert.Equal(t, 1, tbl.Pagination().PageIndex)
	tbl.FirstPage()
	tbl.PreviousPage()
	assert.Equal(t, 0, tbl.Pagination().PageIndex)

	tbl.SetPageIndex(99)
	assert.Equal(t, 2, tbl.Pagination().PageIndex)
	tbl.SetPageIndex(-4)
	assert.Equal(t, 0, tbl.Pagination().PageIndex)
}

func TestSetPageSizeKeepsFirstRowVisible(t *testing.T) {
	tbl := newRFQTable(t, sampleRFQs(25))
	tbl.LastPage()

	require.NoError(t, tbl.SetPageSize(20))
	assert.Equal(t, 1, tbl.Pagination().PageIndex)
	assert.Equal(t, "RFQ-020", tbl.PageRows()[0].Original.Number)
	assert.Equal(t, 2, tbl.PageCount())

	err := tbl.SetPageSize(15)
	assert.ErrorIs(t, err, datatable.ErrInvalidPageSize)
	assert.Equal(t, 20, tbl.Pagination().PageSize)
}

func TestPageSizeOptions(t *testing.T) {
	tbl := newRFQTable(t, nil)
	assert.Equal(t, DefaultPageSizeOptions, tbl.PageSizeOptions())

	tbl = newRFQTable(t, nil, WithPageSizeOptions[rfq](5, 25), WithPageSize[rfq](25))
	assert.Equal(t, 25, tbl.Pagination().PageSize)

	tbl = newRFQTable(t, nil, WithPageSizeOptions[rfq](5, 25), WithPageSize[rfq](7))
	assert.Equal(t, 5, tbl.Pagination().PageSize)
}

func TestFilterClampsPageIndex(t *testing.T) {
	tbl := newRFQTable(t, sampleRFQs(25))
	tbl.LastPage()

	tbl.SetGlobalFilter("steel")
	assert.Equal(t, 0, tbl.Pagination().PageIndex)
	assert.Len(t, tbl.PageRows(), 4)
}

func TestResetPageOnFilter(t *testing.T) {
	keep := newRFQTable(t, sampleRFQs(25))
	keep.NextPage()
	keep.SetGlobalFilter("RFQ")
	assert.Equal(t, 1, keep.Pagination().PageIndex)

	reset := newRFQTable(t, sampleRFQs(25), WithResetPageOnFilter[rfq](true))
	reset.NextPage()
	reset.SetGlobalFilter("RFQ")
	assert.Equal(t, 0, reset.Pagination().PageIndex)
}

func TestSelectionSurvivesPaging(t *testing.T) {
	tbl := newRFQTable(t, sampleRFQs(25))
	tbl.ToggleRow("0")

	tbl.NextPage()
	assert.True(t, tbl.IsRowSelected("0"))
	assert.False(t, tbl.IsAllPageRowsSelected())
	assert.False(t, tbl.IsSomePageRowsSelected())

	tbl.ToggleAllPageRows(true)
	assert.Equal(t, 11, tbl.SelectedCount())

	tbl.ToggleAllPageRows(false)
	assert.Equal(t, 1, tbl.SelectedCount())
	assert.Equal(t, []RowID{"0"}, tbl.SelectedRowIDs())
}

func TestSelectionSurvivesFiltering(t *testing.T) {
	tbl := newRFQTable(t, sampleRFQs(25))
	tbl.ToggleRow("0")
	tbl.ToggleRow("3")

	tbl.SetGlobalFilter("steel")
	assert.Equal(t, 2, tbl.SelectedCount())
	assert.True(t, tbl.IsSomePageRowsSelected())

	records := tbl.SelectedRecords()
	require.Len(t, records, 2)
	assert.Equal(t, "RFQ-000", records[0].Number)
	assert.Equal(t, "RFQ-003", records[1].Number)

	tbl.SetRowSelected("missing", true)
	assert.Equal(t, 2, tbl.SelectedCount())

	tbl.ClearSelection()
	assert.Zero(t, tbl.SelectedCount())
}

func TestRowIDFunction(t *testing.T) {
	tbl := newRFQTable(t, sampleRFQs(5), WithRowID(func(r rfq, _ int) string { return r.Number }))
	tbl.ToggleRow("RFQ-002")
	require.NoError(t, tbl.ToggleSort("amount"))

	assert.True(t, tbl.IsRowSelected("RFQ-002"))
	row, ok := tbl.Row("RFQ-002")
	require.True(t, ok)
	assert.Equal(t, 2, row.Index)
}

func TestVisibilityDoesNotAffectData(t *testing.T) {
	tbl := newRFQTable(t, sampleRFQs(25))
	require.NoError(t, tbl.ToggleColumn("material"))
	assert.False(t, tbl.IsColumnVisible("material"))
	assert.Len(t, tbl.VisibleColumns(), 6)

	tbl.SetGlobalFilter("steel")
	assert.Equal(t, 4, tbl.RowCount(), "hidden columns stay searchable")

	tbl.SetGlobalFilter("")
	require.NoError(t, tbl.SetColumnFilter("material", "glass"))
	assert.Equal(t, []string{"RFQ-004", "RFQ-019", "RFQ-024"}, numbers(tbl.Rows()))
	require.NoError(t, tbl.ToggleSort("material"))

	tbl.ShowAllColumns()
	assert.True(t, tbl.IsColumnVisible("material"))
	assert.Equal(t, "glass", tbl.ColumnFilter("material"))
	assert.Equal(t, datatable.SortAscending, tbl.Sorting().Direction("material"))
}

func TestHideableColumns(t *testing.T) {
	cols := rfqColumns()
	cols[0].DisableHiding = true
	tbl, err := New(sampleRFQs(1), cols)
	require.NoError(t, err)

	hideable := tbl.HideableColumns()
	ids := make([]string, len(hideable))
	for i, c := range hideable {
		ids[i] = c.ID
	}
	assert.Equal(t, []string{"supplier", "material", "status", "amount", "due"}, ids)
	assert.ErrorIs(t, tbl.SetColumnVisible("number", false), datatable.ErrColumnNotHideable)
	assert.ErrorIs(t, tbl.SetColumnVisible("nope", false), datatable.ErrColumnNotFound)
}

func TestExpansion(t *testing.T) {
	clicked := []string{}
	tbl := newRFQTable(t, sampleRFQs(25),
		WithOnRowClick(func(r rfq) { clicked = append(clicked, r.Number) }),
		WithDetail(func(r rfq, close func()) any { return close }),
	)
	require.True(t, tbl.CanExpand())

	tbl.ClickRow("1")
	tbl.ClickRow("2")
	id, ok := tbl.ExpandedRow()
	require.True(t, ok)
	assert.Equal(t, RowID("2"), id)
	assert.False(t, tbl.IsExpanded("1"))
	assert.Equal(t, []string{"RFQ-001", "RFQ-002"}, clicked)

	tbl.NextPage()
	assert.False(t, tbl.IsExpandedOnPage())
	tbl.FirstPage()
	assert.True(t, tbl.IsExpandedOnPage())

	detail, ok := tbl.Detail("2")
	require.True(t, ok)
	detail.(func())()
	_, ok = tbl.ExpandedRow()
	assert.False(t, ok)

	tbl.ClickRow("5")
	tbl.ClickRow("5")
	assert.False(t, tbl.IsExpanded("5"))

	tbl.ClickRow("missing")
	assert.Len(t, clicked, 4)
}

func TestRowClickWithoutDetail(t *testing.T) {
	calls := 0
	tbl := newRFQTable(t, sampleRFQs(3), WithOnRowClick(func(rfq) { calls++ }))

	tbl.ClickRow("0")
	assert.Equal(t, 1, calls)
	assert.False(t, tbl.CanExpand())
	_, ok := tbl.ExpandedRow()
	assert.False(t, ok)
	_, ok = tbl.Detail("0")
	assert.False(t, ok)
}

func TestPanickingCallbacksAreContained(t *testing.T) {
	tbl := newRFQTable(t, sampleRFQs(3),
		WithOnRowClick(func(rfq) { panic("click") }),
		WithDetail(func(rfq, func()) any { panic("detail") }),
	)

	assert.NotPanics(t, func() { tbl.ClickRow("0") })
	assert.True(t, tbl.IsExpanded("0"), "expansion proceeds after a failing click callback")

	var ok bool
	assert.NotPanics(t, func() { _, ok = tbl.Detail("0") })
	assert.False(t, ok)
}

func TestBulkDelete(t *testing.T) {
	var deleted []rfq
	tbl := newRFQTable(t, sampleRFQs(25), WithOnBulkDelete(func(rs []rfq) { deleted = rs }))
	require.True(t, tbl.CanBulkDelete())

	tbl.DeleteSelected()
	assert.Nil(t, deleted, "nothing selected")

	tbl.ToggleRow("7")
	tbl.ToggleRow("2")
	tbl.DeleteSelected()
	require.Len(t, deleted, 2)
	assert.Equal(t, "RFQ-002", deleted[0].Number)
	assert.Equal(t, "RFQ-007", deleted[1].Number)
	assert.Zero(t, tbl.SelectedCount())

	// the caller removes the records and hands the rest back
	remaining := slices.DeleteFunc(sampleRFQs(25), func(r rfq) bool {
		return r.Number == "RFQ-002" || r.Number == "RFQ-007"
	})
	tbl.SetRecords(remaining)
	assert.Equal(t, 23, tbl.RowCount())
}

func TestBulkDeletePanicClearsSelection(t *testing.T) {
	tbl := newRFQTable(t, sampleRFQs(5), WithOnBulkDelete(func([]rfq) { panic("delete failed") }))
	tbl.ToggleAllPageRows(true)

	assert.NotPanics(t, tbl.DeleteSelected)
	assert.Zero(t, tbl.SelectedCount())
}

func TestBulkDeleteWithoutCallback(t *testing.T) {
	tbl := newRFQTable(t, sampleRFQs(5))
	tbl.ToggleRow("1")

	assert.False(t, tbl.CanBulkDelete())
	tbl.DeleteSelected()
	assert.Equal(t, 1, tbl.SelectedCount())
}

func ExampleTable() {
	type item struct {
		Name  string
		Price float64
	}
	tbl, err := New([]item{{"bolt", 0.5}, {"nut", 0.2}, {"washer", 0.1}}, []Column[item]{
		{ID: "name", Header: "Name", Accessor: func(i item) any { return i.Name }},
		{ID: "price", Header: "Price", Accessor: func(i item) any { return i.Price }},
	})
	if err != nil {
		panic(err)
	}
	_ = tbl.ToggleSort("price")
	for _, row := range tbl.PageRows() {
		fmt.Println(tbl.CellText(row, "name"), tbl.CellText(row, "price"))
	}
	fmt.Println(tbl.StatusText())
	// Output:
	// washer 0.1
	// nut 0.2
	// bolt 0.5
	// Showing 3 of 3 rows | page 1/1 | sorted by Price ↑
}

func TestPagesCoverRows(t *testing.T) {
	setups := map[string]func(*testing.T, *Table[rfq]){
		"unfiltered": func(*testing.T, *Table[rfq]) {},
		"global":     func(t *testing.T, tbl *Table[rfq]) { tbl.SetGlobalFilter("steel") },
		"column": func(t *testing.T, tbl *Table[rfq]) {
			require.NoError(t, tbl.SetColumnFilter("status", []string{"PENDING", "REJECTED"}))
		},
		"sorted": func(t *testing.T, tbl *Table[rfq]) {
			require.NoError(t, tbl.SetSorting(datatable.SortState{
				{ColumnID: "amount", Direction: datatable.SortDescending},
				{ColumnID: "supplier", Direction: datatable.SortAscending},
			}))
		},
		"filtered and sorted": func(t *testing.T, tbl *Table[rfq]) {
			tbl.SetGlobalFilter("supplier")
			require.NoError(t, tbl.SetColumnFilter("status", []string{"APPROVED"}))
			require.NoError(t, tbl.ToggleSort("material"))
		},
	}
	for name, setup := range setups {
		for _, size := range DefaultPageSizeOptions {
			t.Run(fmt.Sprintf("%s/%d", name, size), func(t *testing.T) {
				tbl := newRFQTable(t, sampleRFQs(97))
				require.NoError(t, tbl.SetPageSize(size))
				setup(t, tbl)

				var paged []*Row[rfq]
				for i := range tbl.PageCount() {
					tbl.SetPageIndex(i)
					page := tbl.PageRows()
					if i < tbl.PageCount()-1 {
						require.Len(t, page, size)
					}
					paged = append(paged, page...)
				}
				assert.Equal(t, numbers(tbl.Rows()), numbers(paged))

				seen := make(map[RowID]bool, len(paged))
				for _, row := range paged {
					require.False(t, seen[row.ID], "row %s appears twice", row.ID)
					seen[row.ID] = true
				}
			})
		}
	}
}
