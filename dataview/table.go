// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dataview turns an in-memory collection of records into a searchable,
// filterable, sortable, paginated, selectable and expandable view, driven by a
// declarative column specification.
//
// A Table derives its rows synchronously: every state change re-runs
// filter -> sort -> paginate before the call returns. A Table is not safe for
// concurrent use; it belongs to the goroutine that drives the UI.
package dataview

import (
	"fmt"
	"log"
	"slices"
	"strconv"

	"github.com/magpierre/fabview/datatable"
)

// RowID identifies a row for selection and expansion.
type RowID string

// Row is one record of the view together with its resolved column values.
type Row[T any] struct {
	ID       RowID
	Index    int // position in the unfiltered input
	Original T

	values []datatable.Value
}

// Table is the view engine over records of type T.
type Table[T any] struct {
	cfg Config[T]

	records []T
	rows    []*Row[T]
	rowByID map[RowID]*Row[T]

	columns        []*column[T]
	columnByID     map[string]*column[T]
	columnsVersion uint64

	globalFilter  string
	columnFilters map[string]any
	sorting       datatable.SortState
	pageIndex     int
	pageSize      int
	selected      map[RowID]bool
	visibility    map[string]bool
	expanded      *RowID

	// derived
	filtered []*Row[T]
	sorted   []*Row[T]
	page     []*Row[T]

	listeners []func()
}

// New creates a Table over records described by columns.
func New[T any](records []T, columns []Column[T], opts ...Option[T]) (*Table[T], error) {
	cfg := DefaultConfig[T]()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.PageSizeOptions = normalizePageSizes(cfg.PageSizeOptions)

	t := &Table[T]{
		cfg:           cfg,
		columnFilters: make(map[string]any),
		selected:      make(map[RowID]bool),
		pageSize:      cfg.PageSizeOptions[0],
	}
	if slices.Contains(cfg.PageSizeOptions, cfg.PageSize) {
		t.pageSize = cfg.PageSize
	}

	if err := t.applyColumns(columns); err != nil {
		return nil, err
	}
	t.setRecords(records)
	t.derive()
	return t, nil
}

// Config returns the table's configuration.
func (t *Table[T]) Config() Config[T] {
	return t.cfg
}

// SetRecords replaces the records. Filter, sort, selection and expansion state
// are kept; the page index is clamped.
func (t *Table[T]) SetRecords(records []T) {
	t.setRecords(records)
	t.changed()
}

// SetColumns replaces the column set. This is the "columns changed" event: the
// columns version increments, every column becomes visible again, the selection
// is cleared and filter/sort entries for removed columns are dropped.
func (t *Table[T]) SetColumns(columns []Column[T]) error {
	if err := t.applyColumns(columns); err != nil {
		return err
	}
	t.selected = make(map[RowID]bool)
	for id := range t.columnFilters {
		if c, ok := t.columnByID[id]; !ok || !c.canFilter() {
			delete(t.columnFilters, id)
		}
	}
	t.sorting = slices.DeleteFunc(t.sorting, func(k datatable.SortKey) bool {
		c, ok := t.columnByID[k.ColumnID]
		return !ok || !c.canSort()
	})
	t.setRecords(t.records)
	t.changed()
	return nil
}

// ColumnsVersion increments every time the column set is replaced.
func (t *Table[T]) ColumnsVersion() uint64 {
	return t.columnsVersion
}

// AddListener registers fn to be called after every state change.
func (t *Table[T]) AddListener(fn func()) {
	t.listeners = append(t.listeners, fn)
}

func (t *Table[T]) applyColumns(defs []Column[T]) error {
	cols, byID, err := normalizeColumns(defs)
	if err != nil {
		return err
	}
	t.columns = cols
	t.columnByID = byID
	t.columnsVersion++
	t.resetVisibility()
	return nil
}

func (t *Table[T]) setRecords(records []T) {
	t.records = records
	t.rows = make([]*Row[T], len(records))
	t.rowByID = make(map[RowID]*Row[T], len(records))
	for i, rec := range records {
		row := &Row[T]{
			ID:       t.rowID(rec, i),
			Index:    i,
			Original: rec,
			values:   make([]datatable.Value, len(t.columns)-1),
		}
		for _, c := range t.columns {
			if c.isSelection() {
				continue
			}
			row.values[c.slot] = c.value(rec)
		}
		if _, dup := t.rowByID[row.ID]; dup {
			id := RowID(fmt.Sprintf("%s#%d", row.ID, i))
			log.Printf("dataview: duplicate row id %q, using %q", row.ID, id)
			row.ID = id
		}
		t.rows[i] = row
		t.rowByID[row.ID] = row
	}
}

func (t *Table[T]) rowID(rec T, index int) RowID {
	if t.cfg.RowID != nil {
		return RowID(t.cfg.RowID(rec, index))
	}
	return RowID(strconv.Itoa(index))
}

// changed re-derives the view and notifies listeners.
func (t *Table[T]) changed() {
	t.derive()
	for _, fn := range t.listeners {
		fn()
	}
}

func (t *Table[T]) derive() {
	t.filtered = t.applyFilters(t.rows)
	t.sorted = t.applySort(t.filtered)
	t.clampPageIndex()
	t.page = t.paginate(t.sorted)
}

func (t *Table[T]) lookupColumn(id string) (*column[T], error) {
	c, ok := t.columnByID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", datatable.ErrColumnNotFound, id)
	}
	return c, nil
}

// Column returns the view of one column.
func (t *Table[T]) Column(id string) (ColumnView, error) {
	c, err := t.lookupColumn(id)
	if err != nil {
		return ColumnView{}, err
	}
	return t.columnView(c), nil
}

// Columns returns every column, selection column first.
func (t *Table[T]) Columns() []ColumnView {
	out := make([]ColumnView, len(t.columns))
	for i, c := range t.columns {
		out[i] = t.columnView(c)
	}
	return out
}

func (t *Table[T]) columnView(c *column[T]) ColumnView {
	return ColumnView{
		ID:            c.ID,
		Header:        c.Header,
		Type:          c.Type,
		FilterType:    c.FilterType,
		FilterOptions: c.FilterOptions,
		Selection:     c.isSelection(),
		CanSort:       c.canSort(),
		CanFilter:     c.canFilter(),
		CanHide:       c.canHide(),
		Visible:       t.IsColumnVisible(c.ID),
		Sort:          t.sorting.Direction(c.ID),
		Filter:        t.columnFilters[c.ID],
	}
}

// Rows returns the filtered and sorted rows across all pages.
func (t *Table[T]) Rows() []*Row[T] {
	return t.sorted
}

// PageRows returns the rows of the current page.
func (t *Table[T]) PageRows() []*Row[T] {
	return t.page
}

// RowCount returns the number of rows that pass the filters.
func (t *Table[T]) RowCount() int {
	return len(t.sorted)
}

// TotalRowCount returns the number of records before filtering.
func (t *Table[T]) TotalRowCount() int {
	return len(t.rows)
}

// Row returns a row by id.
func (t *Table[T]) Row(id RowID) (*Row[T], bool) {
	row, ok := t.rowByID[id]
	return row, ok
}

// Value returns the resolved value of a column for a row.
func (t *Table[T]) Value(row *Row[T], columnID string) (datatable.Value, error) {
	c, err := t.lookupColumn(columnID)
	if err != nil {
		return datatable.Value{}, err
	}
	if c.isSelection() || row == nil {
		return datatable.NewNullValue(datatable.TypeString), nil
	}
	return row.values[c.slot], nil
}

// CellText renders a cell with the column's renderer. Unknown columns and
// missing values render as the empty string.
func (t *Table[T]) CellText(row *Row[T], columnID string) string {
	c, ok := t.columnByID[columnID]
	if !ok || c.isSelection() || row == nil {
		return ""
	}
	return c.text(row.values[c.slot], row.Original)
}

// recoverCallback logs and swallows a panic raised by caller supplied code.
func recoverCallback(what string) {
	if r := recover(); r != nil {
		log.Printf("dataview: %s panicked: %v", what, r)
	}
}
