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

package dataview

import (
	"fmt"
	"maps"

	"github.com/magpierre/fabview/datatable"
	"github.com/magpierre/fabview/internal/filter"
)

// rowView exposes a Row to the filters in internal/filter.
type rowView[T any] struct {
	t   *Table[T]
	row *Row[T]
}

func (r rowView[T]) Index() int { return r.row.Index }

func (r rowView[T]) Value(columnID string) (datatable.Value, bool) {
	c, ok := r.t.columnByID[columnID]
	if !ok || c.isSelection() {
		return datatable.Value{}, false
	}
	return r.row.values[c.slot], true
}

func (r rowView[T]) ColumnIDs() []string {
	ids := make([]string, 0, len(r.t.columns)-1)
	for _, c := range r.t.columns {
		if !c.isSelection() {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// GlobalFilter returns the global search text.
func (t *Table[T]) GlobalFilter() string {
	return t.globalFilter
}

// SetGlobalFilter sets the global search text.
func (t *Table[T]) SetGlobalFilter(text string) {
	t.globalFilter = text
	t.filterChanged()
}

// ColumnFilter returns the filter value of a column, nil when none is set.
func (t *Table[T]) ColumnFilter(columnID string) any {
	return t.columnFilters[columnID]
}

// ColumnFilters returns a copy of the active column filters.
func (t *Table[T]) ColumnFilters() map[string]any {
	return maps.Clone(t.columnFilters)
}

// SetColumnFilter sets the filter value of a column. The value is a string for
// text and select filters, a []string for multiselect filters and anything the
// predicate understands for custom filters. A nil or empty value removes the filter.
func (t *Table[T]) SetColumnFilter(columnID string, value any) error {
	c, err := t.lookupColumn(columnID)
	if err != nil {
		return err
	}
	if !c.canFilter() {
		return fmt.Errorf("%w: %q", datatable.ErrColumnNotFilterable, columnID)
	}
	if isEmptyFilter(value) {
		delete(t.columnFilters, columnID)
	} else {
		t.columnFilters[columnID] = value
	}
	t.filterChanged()
	return nil
}

// ResetFilters clears the global filter and every column filter.
func (t *Table[T]) ResetFilters() {
	t.globalFilter = ""
	clear(t.columnFilters)
	t.filterChanged()
}

func (t *Table[T]) filterChanged() {
	if t.cfg.ResetPageOnFilter {
		t.pageIndex = 0
	}
	t.changed()
}

// Filter builds the filter the current state applies: the global stage AND
// every active column filter.
func (t *Table[T]) Filter() datatable.Filter {
	filters := []datatable.Filter{t.globalStage()}
	for _, c := range t.columns {
		value, ok := t.columnFilters[c.ID]
		if !ok || !c.canFilter() {
			continue
		}
		filters = append(filters, t.columnStage(c, value))
	}
	return filter.And(filters...)
}

func (t *Table[T]) applyFilters(rows []*Row[T]) []*Row[T] {
	f := t.Filter()
	out := make([]*Row[T], 0, len(rows))
	for _, row := range rows {
		// evaluation errors count as non-matching
		if ok, err := f.Evaluate(rowView[T]{t: t, row: row}); err == nil && ok {
			out = append(out, row)
		}
	}
	return out
}

func (t *Table[T]) globalStage() datatable.Filter {
	columns := make([]string, 0, len(t.columns))
	names := make(map[string]string, 2*len(t.columns))
	for _, c := range t.columns {
		if c.isSelection() || c.DisableGlobalFilter {
			continue
		}
		columns = append(columns, c.ID)
		names[c.ID] = c.ID
		names[c.Header] = c.ID
	}

	if t.cfg.SearchMode == SearchQuery {
		q, err := filter.NewQueryParser(names).Parse(t.globalFilter)
		if err == nil && q != nil {
			return q
		}
	}
	return filter.Global{Needle: t.globalFilter, Columns: columns}
}

func (t *Table[T]) columnStage(c *column[T], value any) datatable.Filter {
	switch c.FilterType {
	case datatable.FilterText:
		return filter.Contains{Column: c.ID, Needle: filterText(value)}
	case datatable.FilterSelect:
		return filter.Equals{Column: c.ID, Want: filterText(value)}
	case datatable.FilterMultiSelect:
		values, ok := filterSet(value)
		if !ok {
			return rejectAll(c.ID)
		}
		return filter.NewIn(c.ID, values)
	case datatable.FilterCustom:
		if c.FilterFn == nil {
			return rejectAll(c.ID)
		}
		fn := c.FilterFn
		slot := c.slot
		return filter.Func{
			Desc: fmt.Sprintf("%s custom", c.ID),
			Fn: func(row datatable.Row) bool {
				r := t.rows[row.Index()]
				return fn(r.values[slot].Raw, r.Original, value)
			},
		}
	}
	return rejectAll(c.ID)
}

func rejectAll(columnID string) datatable.Filter {
	return filter.Func{
		Desc: fmt.Sprintf("%s invalid", columnID),
		Fn:   func(datatable.Row) bool { return false },
	}
}

// filterText turns a text or select filter value into the literal string it matches.
func filterText(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return datatable.Stringify(value)
}

// filterSet turns a multiselect filter value into its members.
func filterSet(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, len(v))
		for i, x := range v {
			out[i] = filterText(x)
		}
		return out, true
	case string:
		return []string{v}, true
	}
	return nil, false
}

func isEmptyFilter(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	return false
}
