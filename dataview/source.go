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

	"github.com/magpierre/fabview/datatable"
)

// viewSource is a frozen DataSource over a set of rows and the visible data columns.
type viewSource[T any] struct {
	rows    []*Row[T]
	columns []*column[T]
	meta    datatable.Metadata
}

// PageSource returns the current page as a DataSource over the visible data
// columns. The source is a snapshot; later state changes do not affect it.
func (t *Table[T]) PageSource() datatable.DataSource {
	return t.newSource(t.page)
}

// ViewSource returns every filtered and sorted row as a DataSource over the
// visible data columns.
func (t *Table[T]) ViewSource() datatable.DataSource {
	return t.newSource(t.sorted)
}

func (t *Table[T]) newSource(rows []*Row[T]) *viewSource[T] {
	cols := make([]*column[T], 0, len(t.columns))
	for _, c := range t.columns {
		if !c.isSelection() && t.IsColumnVisible(c.ID) {
			cols = append(cols, c)
		}
	}
	snapshot := make([]*Row[T], len(rows))
	copy(snapshot, rows)
	return &viewSource[T]{
		rows:    snapshot,
		columns: cols,
		meta: datatable.Metadata{
			"pageIndex":  t.pageIndex,
			"pageSize":   t.pageSize,
			"pageCount":  t.PageCount(),
			"totalRows":  t.TotalRowCount(),
			"filtered":   t.RowCount(),
			"sorting":    t.sorting.Clone(),
			"globalText": t.globalFilter,
		},
	}
}

func (s *viewSource[T]) RowCount() int    { return len(s.rows) }
func (s *viewSource[T]) ColumnCount() int { return len(s.columns) }

func (s *viewSource[T]) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(s.columns) {
		return "", fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	return s.columns[col].Header, nil
}

func (s *viewSource[T]) ColumnType(col int) (datatable.DataType, error) {
	if col < 0 || col >= len(s.columns) {
		return datatable.TypeString, fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	return s.columns[col].Type, nil
}

// Cell returns the resolved value with Formatted replaced by the rendered cell text.
func (s *viewSource[T]) Cell(row, col int) (datatable.Value, error) {
	if row < 0 || row >= len(s.rows) {
		return datatable.Value{}, fmt.Errorf("%w: %d", datatable.ErrInvalidRow, row)
	}
	if col < 0 || col >= len(s.columns) {
		return datatable.Value{}, fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	r, c := s.rows[row], s.columns[col]
	v := r.values[c.slot]
	v.Formatted = c.text(v, r.Original)
	return v, nil
}

func (s *viewSource[T]) Row(row int) ([]datatable.Value, error) {
	if row < 0 || row >= len(s.rows) {
		return nil, fmt.Errorf("%w: %d", datatable.ErrInvalidRow, row)
	}
	out := make([]datatable.Value, len(s.columns))
	for col := range s.columns {
		out[col], _ = s.Cell(row, col)
	}
	return out, nil
}

func (s *viewSource[T]) Metadata() datatable.Metadata {
	return s.meta
}
