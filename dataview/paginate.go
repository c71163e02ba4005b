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

// Pagination is the page window state.
type Pagination struct {
	PageIndex int // 0-based
	PageSize  int
}

// Pagination returns the current page index and size.
func (t *Table[T]) Pagination() Pagination {
	return Pagination{PageIndex: t.pageIndex, PageSize: t.pageSize}
}

// PageSizeOptions returns the allowed page sizes, smallest first.
func (t *Table[T]) PageSizeOptions() []int {
	return slices.Clone(t.cfg.PageSizeOptions)
}

// PageCount returns the number of pages. It is at least 1, even without rows.
func (t *Table[T]) PageCount() int {
	return pageCount(len(t.sorted), t.pageSize)
}

func pageCount(rows, size int) int {
	if rows == 0 || size <= 0 {
		return 1
	}
	return (rows + size - 1) / size
}

// SetPageIndex moves to a page. The index is clamped into range.
func (t *Table[T]) SetPageIndex(index int) {
	t.pageIndex = index
	t.changed()
}

// FirstPage moves to the first page.
func (t *Table[T]) FirstPage() {
	t.SetPageIndex(0)
}

// PreviousPage moves one page back. It does nothing on the first page.
func (t *Table[T]) PreviousPage() {
	if !t.CanPreviousPage() {
		return
	}
	t.SetPageIndex(t.pageIndex - 1)
}

// NextPage moves one page forward. It does nothing on the last page.
func (t *Table[T]) NextPage() {
	if !t.CanNextPage() {
		return
	}
	t.SetPageIndex(t.pageIndex + 1)
}

// LastPage moves to the last page.
func (t *Table[T]) LastPage() {
	t.SetPageIndex(t.PageCount() - 1)
}

// CanPreviousPage reports whether there is a page before the current one.
func (t *Table[T]) CanPreviousPage() bool {
	return t.pageIndex > 0
}

// CanNextPage reports whether there is a page after the current one.
func (t *Table[T]) CanNextPage() bool {
	return t.pageIndex < t.PageCount()-1
}

// SetPageSize changes the page size to one of the configured options. The page
// index moves so that the first row of the previous page stays visible.
func (t *Table[T]) SetPageSize(size int) error {
	if !slices.Contains(t.cfg.PageSizeOptions, size) {
		return fmt.Errorf("%w: %d not in %v", datatable.ErrInvalidPageSize, size, t.cfg.PageSizeOptions)
	}
	firstRow := t.pageIndex * t.pageSize
	t.pageSize = size
	t.pageIndex = firstRow / size
	t.changed()
	return nil
}

func (t *Table[T]) clampPageIndex() {
	last := pageCount(len(t.sorted), t.pageSize) - 1
	if t.pageIndex > last {
		t.pageIndex = last
	}
	if t.pageIndex < 0 {
		t.pageIndex = 0
	}
}

func (t *Table[T]) paginate(rows []*Row[T]) []*Row[T] {
	start := t.pageIndex * t.pageSize
	if start >= len(rows) {
		return nil
	}
	end := min(start+t.pageSize, len(rows))
	return rows[start:end]
}
