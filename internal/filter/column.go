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

// Package filter implements the row filters used by the view engine.
package filter

import (
	"fmt"
	"strings"

	"github.com/magpierre/fabview/datatable"
)

// Contains matches rows whose column text contains Needle, ignoring case.
// An empty needle matches every row.
type Contains struct {
	Column string
	Needle string
}

// Evaluate implements datatable.Filter.
func (f Contains) Evaluate(row datatable.Row) (bool, error) {
	if f.Needle == "" {
		return true, nil
	}
	v, ok := row.Value(f.Column)
	if !ok {
		return false, nil
	}
	return containsFold(v.Formatted, f.Needle), nil
}

// Description implements datatable.Filter.
func (f Contains) Description() string {
	return fmt.Sprintf("%s ~ %q", f.Column, f.Needle)
}

// Equals matches rows whose column text equals Want exactly.
// An empty Want matches every row.
type Equals struct {
	Column string
	Want   string
}

// Evaluate implements datatable.Filter.
func (f Equals) Evaluate(row datatable.Row) (bool, error) {
	if f.Want == "" {
		return true, nil
	}
	v, ok := row.Value(f.Column)
	if !ok {
		return false, nil
	}
	return v.Formatted == f.Want, nil
}

// Description implements datatable.Filter.
func (f Equals) Description() string {
	return fmt.Sprintf("%s = %q", f.Column, f.Want)
}

// In matches rows whose column text is one of a set of values.
// An empty set matches every row.
type In struct {
	Column string
	set    map[string]struct{}
	values []string
}

// NewIn builds a membership filter.
func NewIn(column string, values []string) In {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return In{Column: column, set: set, values: values}
}

// Evaluate implements datatable.Filter.
func (f In) Evaluate(row datatable.Row) (bool, error) {
	if len(f.set) == 0 {
		return true, nil
	}
	v, ok := row.Value(f.Column)
	if !ok {
		return false, nil
	}
	_, member := f.set[v.Formatted]
	return member, nil
}

// Description implements datatable.Filter.
func (f In) Description() string {
	return fmt.Sprintf("%s in [%s]", f.Column, strings.Join(f.values, ", "))
}

// Global matches rows where any of Columns contains Needle, ignoring case.
// Columns nil means every column the row carries.
type Global struct {
	Needle  string
	Columns []string
}

// Evaluate implements datatable.Filter.
func (f Global) Evaluate(row datatable.Row) (bool, error) {
	if f.Needle == "" {
		return true, nil
	}
	columns := f.Columns
	if columns == nil {
		columns = row.ColumnIDs()
	}
	for _, id := range columns {
		v, ok := row.Value(id)
		if ok && containsFold(v.Formatted, f.Needle) {
			return true, nil
		}
	}
	return false, nil
}

// Description implements datatable.Filter.
func (f Global) Description() string {
	return fmt.Sprintf("any ~ %q", f.Needle)
}

// Func adapts a plain predicate to datatable.Filter.
type Func struct {
	Fn   func(row datatable.Row) bool
	Desc string
}

// Evaluate implements datatable.Filter. A panicking predicate is reported as an error.
func (f Func) Evaluate(row datatable.Row) (passes bool, err error) {
	if f.Fn == nil {
		return true, nil
	}
	defer func() {
		if r := recover(); r != nil {
			passes = false
			err = fmt.Errorf("%w: predicate panicked: %v", datatable.ErrInvalidFilter, r)
		}
	}()
	return f.Fn(row), nil
}

// Description implements datatable.Filter.
func (f Func) Description() string {
	if f.Desc == "" {
		return "custom"
	}
	return f.Desc
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
