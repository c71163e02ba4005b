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

import "log"

// At most one row is expanded. The expanded id survives filtering, sorting and
// paging; a row that leaves the page just stops rendering its detail.

// CanExpand reports whether rows are expandable, i.e. a detail renderer is configured.
func (t *Table[T]) CanExpand() bool {
	return t.cfg.RenderDetail != nil
}

// ExpandedRow returns the expanded row id, if any.
func (t *Table[T]) ExpandedRow() (RowID, bool) {
	if t.expanded == nil {
		return "", false
	}
	return *t.expanded, true
}

// IsExpanded reports whether a row is the expanded one.
func (t *Table[T]) IsExpanded(id RowID) bool {
	return t.expanded != nil && *t.expanded == id
}

// IsExpandedOnPage reports whether the expanded row is on the current page.
func (t *Table[T]) IsExpandedOnPage() bool {
	if t.expanded == nil {
		return false
	}
	for _, row := range t.page {
		if row.ID == *t.expanded {
			return true
		}
	}
	return false
}

// ClickRow handles a row click: the row click callback fires with the original
// record and, when rows are expandable, the row's expansion toggles.
func (t *Table[T]) ClickRow(id RowID) {
	row, ok := t.rowByID[id]
	if !ok {
		return
	}
	if t.cfg.OnRowClick != nil {
		func() {
			defer recoverCallback("row click callback")
			t.cfg.OnRowClick(row.Original)
		}()
	}
	if t.CanExpand() {
		t.ToggleExpanded(id)
	}
}

// ToggleExpanded expands a row, collapsing any other one. Expanding the expanded
// row collapses it. It does nothing when rows are not expandable.
func (t *Table[T]) ToggleExpanded(id RowID) {
	if !t.CanExpand() {
		return
	}
	if _, ok := t.rowByID[id]; !ok {
		return
	}
	if t.IsExpanded(id) {
		t.expanded = nil
	} else {
		t.expanded = &id
	}
	t.changed()
}

// Collapse closes the expanded row.
func (t *Table[T]) Collapse() {
	if t.expanded == nil {
		return
	}
	t.expanded = nil
	t.changed()
}

// Detail renders the detail view of a row through the configured renderer,
// passing the original record and a close callback that collapses the row.
// It returns false when rows are not expandable or the id is unknown.
func (t *Table[T]) Detail(id RowID) (detail any, ok bool) {
	row, found := t.rowByID[id]
	if !found || !t.CanExpand() {
		return nil, false
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("dataview: detail renderer panicked: %v", r)
			detail, ok = nil, false
		}
	}()
	return t.cfg.RenderDetail(row.Original, t.Collapse), true
}
