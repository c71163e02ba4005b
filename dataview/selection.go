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

// IsRowSelected reports whether a row is selected.
func (t *Table[T]) IsRowSelected(id RowID) bool {
	return t.selected[id]
}

// ToggleRow flips the selection of one row. Unknown ids are ignored.
func (t *Table[T]) ToggleRow(id RowID) {
	t.SetRowSelected(id, !t.selected[id])
}

// SetRowSelected selects or deselects one row. Unknown ids are ignored.
func (t *Table[T]) SetRowSelected(id RowID, selected bool) {
	if _, ok := t.rowByID[id]; !ok {
		return
	}
	if selected {
		t.selected[id] = true
	} else {
		delete(t.selected, id)
	}
	t.changed()
}

// ToggleAllPageRows selects or deselects exactly the rows of the current page.
// Rows on other pages keep their selection.
func (t *Table[T]) ToggleAllPageRows(checked bool) {
	for _, row := range t.page {
		if checked {
			t.selected[row.ID] = true
		} else {
			delete(t.selected, row.ID)
		}
	}
	t.changed()
}

// IsAllPageRowsSelected reports whether the current page has rows and all of them are selected.
func (t *Table[T]) IsAllPageRowsSelected() bool {
	if len(t.page) == 0 {
		return false
	}
	for _, row := range t.page {
		if !t.selected[row.ID] {
			return false
		}
	}
	return true
}

// IsSomePageRowsSelected reports whether some, but not all, rows of the current
// page are selected. Renderers show it as the indeterminate header checkbox.
func (t *Table[T]) IsSomePageRowsSelected() bool {
	n := 0
	for _, row := range t.page {
		if t.selected[row.ID] {
			n++
		}
	}
	return n > 0 && n < len(t.page)
}

// SelectedCount returns the number of selected records.
func (t *Table[T]) SelectedCount() int {
	n := 0
	for id := range t.selected {
		if _, ok := t.rowByID[id]; ok {
			n++
		}
	}
	return n
}

// SelectedRowIDs returns the ids of the selected rows in input order.
func (t *Table[T]) SelectedRowIDs() []RowID {
	var ids []RowID
	for _, row := range t.rows {
		if t.selected[row.ID] {
			ids = append(ids, row.ID)
		}
	}
	return ids
}

// SelectedRecords returns the original selected records in input order,
// including selected records that are currently filtered out.
func (t *Table[T]) SelectedRecords() []T {
	var out []T
	for _, row := range t.rows {
		if t.selected[row.ID] {
			out = append(out, row.Original)
		}
	}
	return out
}

// ClearSelection deselects every row.
func (t *Table[T]) ClearSelection() {
	clear(t.selected)
	t.changed()
}

// CanBulkDelete reports whether a bulk delete callback is configured.
// Renderers only offer the delete action when it is.
func (t *Table[T]) CanBulkDelete() bool {
	return t.cfg.OnBulkDelete != nil
}

// DeleteSelected hands the selected records to the bulk delete callback and then
// clears the selection, whatever the callback did. It does nothing when no callback
// is configured or nothing is selected.
func (t *Table[T]) DeleteSelected() {
	if t.cfg.OnBulkDelete == nil {
		return
	}
	records := t.SelectedRecords()
	if len(records) == 0 {
		return
	}
	defer t.ClearSelection()
	defer recoverCallback("bulk delete callback")
	t.cfg.OnBulkDelete(records)
}
