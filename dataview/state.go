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
)

// TableState is a snapshot of the engine state. Mutating it does not affect the table.
type TableState struct {
	GlobalFilter   string
	ColumnFilters  map[string]any
	Sorting        datatable.SortState
	Pagination     Pagination
	Selection      map[RowID]bool
	Visibility     map[string]bool
	Expanded       *RowID
	ColumnsVersion uint64
}

// State returns a snapshot of the current state.
func (t *Table[T]) State() TableState {
	s := TableState{
		GlobalFilter:   t.globalFilter,
		ColumnFilters:  maps.Clone(t.columnFilters),
		Sorting:        t.sorting.Clone(),
		Pagination:     t.Pagination(),
		Selection:      maps.Clone(t.selected),
		Visibility:     maps.Clone(t.visibility),
		ColumnsVersion: t.columnsVersion,
	}
	if t.expanded != nil {
		id := *t.expanded
		s.Expanded = &id
	}
	return s
}

// StatusText summarises the view the way a status bar shows it, e.g.
// "Showing 4 of 25 rows | page 1/1 | 2 selected | sorted by Amount ↑".
func (t *Table[T]) StatusText() string {
	text := fmt.Sprintf("Showing %d of %d rows | page %d/%d",
		t.RowCount(), t.TotalRowCount(), t.pageIndex+1, t.PageCount())

	visible := len(t.VisibleColumns()) - 1
	if total := len(t.columns) - 1; visible != total {
		text += fmt.Sprintf(" | %d/%d columns", visible, total)
	}

	if n := t.SelectedCount(); n > 0 {
		text += fmt.Sprintf(" | %d selected", n)
	}

	for _, k := range t.sorting {
		c, ok := t.columnByID[k.ColumnID]
		if !ok || k.Direction == datatable.SortNone {
			continue
		}
		direction := "↑"
		if k.Direction == datatable.SortDescending {
			direction = "↓"
		}
		text += fmt.Sprintf(" | sorted by %s %s", c.Header, direction)
	}
	return text
}
