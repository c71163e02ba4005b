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

// Package datatable holds the primitives shared by the view engine, its filters,
// the data adapters and the widgets: typed cell values, sort and filter state types
// and the read-only DataSource contract.
package datatable

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// DataType represents the type of data in a column.
type DataType int

const (
	// TypeString represents string data.
	TypeString DataType = iota
	// TypeInt represents integer data (any size).
	TypeInt
	// TypeFloat represents floating-point data (any precision).
	TypeFloat
	// TypeBool represents boolean data.
	TypeBool
	// TypeDate represents date data (without time).
	TypeDate
	// TypeTimestamp represents timestamp data (date + time).
	TypeTimestamp
	// TypeBinary represents binary/blob data.
	TypeBinary
	// TypeDecimal represents decimal/numeric data (fixed precision).
	TypeDecimal
	// TypeStruct represents structured data (nested fields).
	TypeStruct
	// TypeList represents list/array data.
	TypeList
)

// String returns the string representation of a DataType.
func (dt DataType) String() string {
	switch dt {
	case TypeString:
		return "String"
	case TypeInt:
		return "Int"
	case TypeFloat:
		return "Float"
	case TypeBool:
		return "Bool"
	case TypeDate:
		return "Date"
	case TypeTimestamp:
		return "Timestamp"
	case TypeBinary:
		return "Binary"
	case TypeDecimal:
		return "Decimal"
	case TypeStruct:
		return "Struct"
	case TypeList:
		return "List"
	default:
		return fmt.Sprintf("Unknown(%d)", dt)
	}
}

// IsNumeric reports whether values of the type are numbers.
func (dt DataType) IsNumeric() bool {
	return dt == TypeInt || dt == TypeFloat || dt == TypeDecimal
}

// Value is a typed container for cell values.
// It holds the raw value, type information, and a pre-formatted string for display.
type Value struct {
	// Raw holds the underlying value.
	// The type depends on the DataType field.
	Raw interface{}

	// Type indicates the data type of this value.
	Type DataType

	// IsNull indicates whether this value is null/nil.
	IsNull bool

	// Formatted is a pre-formatted string representation for display.
	// Filters and the global search match against it.
	Formatted string
}

// NewValue creates a new Value from a raw value and type.
func NewValue(raw interface{}, dataType DataType) Value {
	if isMissing(raw) {
		return NewNullValue(dataType)
	}

	return Value{
		Raw:       raw,
		Type:      dataType,
		IsNull:    false,
		Formatted: formatValue(raw, dataType),
	}
}

// ValueOf creates a Value and infers its DataType from the Go type of raw.
// Pointers to scalars and times are dereferenced. Nil pointers of any type
// and NaN become null values.
func ValueOf(raw interface{}) Value {
	raw = deref(raw)
	return NewValue(raw, InferType(raw))
}

// NewNullValue creates a null value of the specified type.
func NewNullValue(dataType DataType) Value {
	return Value{
		Raw:       nil,
		Type:      dataType,
		IsNull:    true,
		Formatted: "",
	}
}

// InferType maps a Go value to the closest DataType.
func InferType(raw interface{}) DataType {
	switch raw.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInt
	case float32, float64:
		return TypeFloat
	case bool:
		return TypeBool
	case time.Time:
		return TypeTimestamp
	case []byte:
		return TypeBinary
	case []string, []interface{}:
		return TypeList
	case map[string]interface{}:
		return TypeStruct
	default:
		return TypeString
	}
}

// Stringify renders a raw value the same way Value.Formatted does.
// Missing values render as the empty string.
func Stringify(raw interface{}) string {
	return ValueOf(raw).Formatted
}

// deref follows pointers to scalars and times. Nil pointers, maps, slices
// and funcs resolve to nil. Pointers to other types are kept as they are.
func deref(raw interface{}) interface{} {
	if raw == nil {
		return nil
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return raw
	case reflect.Pointer:
	default:
		return raw
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		elem := rv.Elem()
		switch elem.Kind() {
		case reflect.Pointer:
			rv = elem
			continue
		case reflect.Struct:
			if _, ok := elem.Interface().(time.Time); !ok {
				return rv.Interface()
			}
		case reflect.Map, reflect.Slice, reflect.Array, reflect.Func, reflect.Chan, reflect.Interface:
			return rv.Interface()
		}
		return deref(elem.Interface())
	}
	return rv.Interface()
}

func isMissing(raw interface{}) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(v)
	case float32:
		return math.IsNaN(float64(v))
	}
	return deref(raw) == nil
}

// formatValue converts a raw value to a formatted string.
func formatValue(raw interface{}, dataType DataType) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case time.Time:
		if dataType == TypeDate {
			return v.Format("2006-01-02")
		}
		return v.Format("2006-01-02 15:04:05")
	case []byte:
		return string(v)
	case fmt.Stringer:
		return stringerText(v)
	}
	return fmt.Sprintf("%v", raw)
}

// stringerText calls String, falling back to %v when String panics.
func stringerText(v fmt.Stringer) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("%v", v)
		}
	}()
	return v.String()
}

// Metadata holds optional metadata about a data source.
type Metadata map[string]interface{}

// SortDirection specifies the direction of sorting.
type SortDirection int

const (
	// SortNone indicates no sorting.
	SortNone SortDirection = iota
	// SortAscending indicates ascending sort order.
	SortAscending
	// SortDescending indicates descending sort order.
	SortDescending
)

// String returns the string representation of a SortDirection.
func (sd SortDirection) String() string {
	switch sd {
	case SortNone:
		return "None"
	case SortAscending:
		return "Ascending"
	case SortDescending:
		return "Descending"
	default:
		return fmt.Sprintf("Unknown(%d)", sd)
	}
}

// Next returns the direction a header click moves to:
// none -> ascending -> descending -> none.
func (sd SortDirection) Next() SortDirection {
	switch sd {
	case SortNone:
		return SortAscending
	case SortAscending:
		return SortDescending
	default:
		return SortNone
	}
}

// SortKey orders rows by one column.
type SortKey struct {
	ColumnID  string
	Direction SortDirection
}

// SortState is the ordered list of active sort keys. A column id appears at most once.
type SortState []SortKey

// IsSorted returns true if this state represents an active sort.
func (s SortState) IsSorted() bool {
	for _, k := range s {
		if k.Direction != SortNone {
			return true
		}
	}
	return false
}

// Direction returns the direction for a column, SortNone if it is not sorted.
func (s SortState) Direction(columnID string) SortDirection {
	for _, k := range s {
		if k.ColumnID == columnID {
			return k.Direction
		}
	}
	return SortNone
}

// Clone returns a copy that can be mutated independently.
func (s SortState) Clone() SortState {
	if s == nil {
		return nil
	}
	out := make(SortState, len(s))
	copy(out, s)
	return out
}

// FilterType selects how a column filter value is matched against a cell.
type FilterType int

const (
	// FilterText matches a case-insensitive substring.
	FilterText FilterType = iota
	// FilterSelect matches one exact value.
	FilterSelect
	// FilterMultiSelect matches membership in a set of values.
	FilterMultiSelect
	// FilterCustom delegates to a caller supplied predicate.
	FilterCustom
)

// String returns the string representation of a FilterType.
func (ft FilterType) String() string {
	switch ft {
	case FilterText:
		return "text"
	case FilterSelect:
		return "select"
	case FilterMultiSelect:
		return "multiselect"
	case FilterCustom:
		return "custom"
	default:
		return fmt.Sprintf("unknown(%d)", ft)
	}
}
