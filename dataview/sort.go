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
	"slices"

	"github.com/magpierre/fabview/datatable"
)

// Sorting returns a copy of the active sort keys.
func (t *Table[T]) Sorting() datatable.SortState {
	return t.sorting.Clone()
}

// ToggleSort advances a column through unsorted -> ascending -> descending -> unsorted.
// Sorting by another column replaces the active sort.
func (t *Table[T]) ToggleSort(columnID string) error {
	c, err := t.lookupColumn(columnID)
	if err != nil {
		return err
	}
	if !c.canSort() {
		return fmt.Errorf("%w: %q", datatable.ErrColumnNotSortable, columnID)
	}

	next := t.sorting.Direction(columnID).Next()
	if next == datatable.SortNone {
		t.sorting = nil
	} else {
		t.sorting = datatable.SortState{{ColumnID: columnID, Direction: next}}
	}
	t.changed()
	return nil
}

// SetSorting replaces the sort keys. Keys are applied in order; later keys break
// ties of earlier ones. Keys with SortNone are dropped and a column keeps only its
// first key.
func (t *Table[T]) SetSorting(keys datatable.SortState) error {
	state := make(datatable.SortState, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		c, err := t.lookupColumn(k.ColumnID)
		if err != nil {
			return err
		}
		if !c.canSort() {
			return fmt.Errorf("%w: %q", datatable.ErrColumnNotSortable, k.ColumnID)
		}
		if k.Direction == datatable.SortNone || seen[k.ColumnID] {
			continue
		}
		seen[k.ColumnID] = true
		state = append(state, k)
	}
	if len(state) == 0 {
		state = nil
	}
	t.sorting = state
	t.changed()
	return nil
}

// ClearSorting restores the filtered input order.
func (t *Table[T]) ClearSorting() {
	t.sorting = nil
	t.changed()
}

// applySort orders rows by the active keys. The sort is stable and missing values
// always sort last, whatever the direction.
func (t *Table[T]) applySort(rows []*Row[T]) []*Row[T] {
	out := slices.Clone(rows)
	if !t.sorting.IsSorted() {
		return out
	}

	type key struct {
		slot int
		desc bool
	}
	keys := make([]key, 0, len(t.sorting))
	for _, k := range t.sorting {
		c, ok := t.columnByID[k.ColumnID]
		if !ok || !c.canSort() || k.Direction == datatable.SortNone {
			continue
		}
		keys = append(keys, key{slot: c.slot, desc: k.Direction == datatable.SortDescending})
	}

	slices.SortStableFunc(out, func(a, b *Row[T]) int {
		for _, k := range keys {
			va, vb := a.values[k.slot], b.values[k.slot]
			if va.IsNull || vb.IsNull {
				// nulls last in both directions
				if cmp := datatable.Compare(va, vb); cmp != 0 {
					return cmp
				}
				continue
			}
			cmp := datatable.Compare(va, vb)
			if k.desc {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp
			}
		}
		return 0
	})
	return out
}
