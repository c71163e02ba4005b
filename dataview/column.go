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
	"log"

	"github.com/magpierre/fabview/datatable"
)

// SelectionColumnID is the id of the synthetic selection column.
const SelectionColumnID = "select"

// FilterFunc is a custom column predicate. It receives the column's resolved
// value, the record and the current filter value.
type FilterFunc[T any] func(value any, record T, filter any) bool

// FilterOption is one choice offered by a select or multiselect filter.
type FilterOption struct {
	Label string
	Value string
}

// Options builds filter options whose label and value are the same.
func Options(values ...string) []FilterOption {
	out := make([]FilterOption, len(values))
	for i, v := range values {
		out[i] = FilterOption{Label: v, Value: v}
	}
	return out
}

// Fielder is implemented by records that expose named fields, so that
// columns can read them through AccessorKey.
type Fielder interface {
	Field(key string) (any, bool)
}

// Column describes how to read, label, render, filter and sort one field of T.
type Column[T any] struct {
	// ID identifies the column in filter, sort and visibility state.
	// It defaults to AccessorKey, then Header.
	ID string

	// AccessorKey names the field to read from records that are maps or implement Fielder.
	AccessorKey string

	// Accessor reads the raw value. It takes precedence over AccessorKey.
	Accessor func(record T) any

	// Header is the column label.
	Header string

	// Cell renders the cell text. It defaults to the stringified raw value.
	Cell func(value any, record T) string

	// Type is the column's data type, used by exports. Zero means string.
	Type datatable.DataType

	FilterType    datatable.FilterType
	FilterOptions []FilterOption
	FilterFn      FilterFunc[T]

	DisableSorting      bool
	DisableFilter       bool
	DisableHiding       bool
	DisableGlobalFilter bool
}

// ColumnView is the read-only state of one column as renderers need it.
type ColumnView struct {
	ID            string
	Header        string
	Type          datatable.DataType
	FilterType    datatable.FilterType
	FilterOptions []FilterOption
	Selection     bool
	CanSort       bool
	CanFilter     bool
	CanHide       bool
	Visible       bool
	Sort          datatable.SortDirection
	Filter        any
}

// column is a normalized Column with its slot in the resolved value slice.
type column[T any] struct {
	Column[T]
	slot int // -1 for the selection column
}

func (c *column[T]) isSelection() bool { return c.slot < 0 }

func (c *column[T]) canSort() bool   { return !c.isSelection() && !c.DisableSorting }
func (c *column[T]) canFilter() bool { return !c.isSelection() && !c.DisableFilter }
func (c *column[T]) canHide() bool   { return !c.isSelection() && !c.DisableHiding }

// resolve reads the raw value of the column from a record. It never panics;
// a failing accessor yields nil.
func (c *column[T]) resolve(record T) (raw any) {
	defer func() {
		if r := recover(); r != nil {
			raw = nil
		}
	}()
	if c.Accessor != nil {
		return c.Accessor(record)
	}
	if c.AccessorKey == "" {
		return nil
	}
	switch rec := any(record).(type) {
	case Fielder:
		v, _ := rec.Field(c.AccessorKey)
		return v
	case map[string]any:
		return rec[c.AccessorKey]
	case map[string]string:
		v, ok := rec[c.AccessorKey]
		if !ok {
			return nil
		}
		return v
	}
	return nil
}

// Resolve returns the value the table resolves for record in this column: the
// accessor result, typed by Type, with missing values and panics as nulls.
func (c Column[T]) Resolve(record T) datatable.Value {
	cc := column[T]{Column: c}
	return cc.value(record)
}

// value resolves and types the column's value. A declared Type overrides the
// inferred one, nulls included, so that dates format without a time of day.
func (c *column[T]) value(record T) (v datatable.Value) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("dataview: formatting column %q panicked: %v", c.ID, r)
			v = datatable.NewNullValue(c.Type)
		}
	}()
	v = datatable.ValueOf(c.resolve(record))
	if c.Type != datatable.TypeString {
		v = datatable.NewValue(v.Raw, c.Type)
	}
	return v
}

// text renders a cell. Missing values render as the empty placeholder.
func (c *column[T]) text(v datatable.Value, record T) (s string) {
	if c.Cell == nil {
		return v.Formatted
	}
	defer func() {
		if r := recover(); r != nil {
			s = v.Formatted
		}
	}()
	return c.Cell(v.Raw, record)
}

// normalizeColumns assigns ids and slots and prepends the selection column.
func normalizeColumns[T any](defs []Column[T]) ([]*column[T], map[string]*column[T], error) {
	cols := make([]*column[T], 0, len(defs)+1)
	byID := make(map[string]*column[T], len(defs)+1)

	sel := &column[T]{Column: Column[T]{ID: SelectionColumnID}, slot: -1}
	cols = append(cols, sel)
	byID[SelectionColumnID] = sel

	for i, def := range defs {
		if def.ID == "" {
			def.ID = def.AccessorKey
		}
		if def.ID == "" {
			def.ID = def.Header
		}
		if def.ID == "" {
			def.ID = fmt.Sprintf("column_%d", i)
		}
		if _, dup := byID[def.ID]; dup {
			return nil, nil, fmt.Errorf("%w: %q", datatable.ErrDuplicateColumn, def.ID)
		}
		if def.Header == "" {
			def.Header = def.ID
		}
		c := &column[T]{Column: def, slot: i}
		cols = append(cols, c)
		byID[def.ID] = c
	}
	return cols, byID, nil
}
