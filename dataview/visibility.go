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

// Hiding a column is a display concern only: hidden columns still take part in
// the global search, column filters and sorting.

func (t *Table[T]) resetVisibility() {
	t.visibility = make(map[string]bool, len(t.columns))
	for _, c := range t.columns {
		t.visibility[c.ID] = true
	}
}

// IsColumnVisible reports whether a column is rendered.
// The selection column is always visible.
func (t *Table[T]) IsColumnVisible(id string) bool {
	if id == SelectionColumnID {
		return true
	}
	return t.visibility[id]
}

// Visibility returns a copy of the column visibility map.
func (t *Table[T]) Visibility() map[string]bool {
	return maps.Clone(t.visibility)
}

// ToggleColumn flips the visibility of one column.
func (t *Table[T]) ToggleColumn(id string) error {
	return t.SetColumnVisible(id, !t.IsColumnVisible(id))
}

// SetColumnVisible shows or hides one column.
func (t *Table[T]) SetColumnVisible(id string, visible bool) error {
	c, err := t.lookupColumn(id)
	if err != nil {
		return err
	}
	if !c.canHide() {
		return fmt.Errorf("%w: %q", datatable.ErrColumnNotHideable, id)
	}
	t.visibility[id] = visible
	t.changed()
	return nil
}

// ShowAllColumns makes every column visible.
func (t *Table[T]) ShowAllColumns() {
	t.resetVisibility()
	t.changed()
}

// VisibleColumns returns the rendered columns, selection column first.
// Renderers use its length as the colspan of detail and empty-state rows.
func (t *Table[T]) VisibleColumns() []ColumnView {
	out := make([]ColumnView, 0, len(t.columns))
	for _, c := range t.columns {
		if t.IsColumnVisible(c.ID) {
			out = append(out, t.columnView(c))
		}
	}
	return out
}

// HideableColumns returns the columns offered in the visibility menu.
func (t *Table[T]) HideableColumns() []ColumnView {
	out := make([]ColumnView, 0, len(t.columns))
	for _, c := range t.columns {
		if c.canHide() {
			out = append(out, t.columnView(c))
		}
	}
	return out
}
