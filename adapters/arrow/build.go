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

package arrowadapter

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/magpierre/fabview/datatable"
)

// ArrowType maps a DataType to the Arrow type used when a view is rebuilt as a
// table. Decimal, struct and list values are carried as strings.
func ArrowType(dt datatable.DataType) arrow.DataType {
	switch dt {
	case datatable.TypeInt:
		return arrow.PrimitiveTypes.Int64
	case datatable.TypeFloat:
		return arrow.PrimitiveTypes.Float64
	case datatable.TypeBool:
		return arrow.FixedWidthTypes.Boolean
	case datatable.TypeDate:
		return arrow.FixedWidthTypes.Date32
	case datatable.TypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_us
	case datatable.TypeBinary:
		return arrow.BinaryTypes.Binary
	default:
		return arrow.BinaryTypes.String
	}
}

// FromDataSource builds an Arrow table from every row of ds. Typed columns take
// the raw values; string columns take the rendered text. Values that do not
// fit the column type become nulls.
func FromDataSource(ds datatable.DataSource, mem memory.Allocator) (arrow.Table, error) {
	if ds == nil {
		return nil, datatable.ErrNoDataSource
	}
	if ds.RowCount() == 0 {
		return nil, fmt.Errorf("%w: no rows to convert", datatable.ErrEmptyData)
	}
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	fields := make([]arrow.Field, ds.ColumnCount())
	builders := make([]array.Builder, ds.ColumnCount())
	for col := range fields {
		name, err := ds.ColumnName(col)
		if err != nil {
			return nil, err
		}
		dt, err := ds.ColumnType(col)
		if err != nil {
			return nil, err
		}
		fields[col] = arrow.Field{Name: name, Type: ArrowType(dt), Nullable: true}
		builders[col] = array.NewBuilder(mem, fields[col].Type)
		defer builders[col].Release()
	}

	for row := 0; row < ds.RowCount(); row++ {
		values, err := ds.Row(row)
		if err != nil {
			return nil, err
		}
		for col, v := range values {
			appendValue(builders[col], v)
		}
	}

	return buildTable(arrow.NewSchema(fields, nil), builders), nil
}

// FromMaps builds an Arrow table from decoded JSON objects. Keys of the first
// object come first, sorted, followed by keys first seen in later objects. A
// column is float64 or bool when every non-null value is, and string otherwise.
func FromMaps(rows []map[string]any, mem memory.Allocator) (arrow.Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no records", datatable.ErrEmptyData)
	}
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	var names []string
	types := make(map[string]datatable.DataType)
	for _, row := range rows {
		for _, name := range sortedKeys(row) {
			v := row[name]
			t, seen := types[name]
			if !seen {
				names = append(names, name)
				types[name] = jsonType(v)
				continue
			}
			if v != nil && t != jsonType(v) && jsonType(v) != typeUnknown {
				if t == typeUnknown {
					types[name] = jsonType(v)
				} else {
					types[name] = datatable.TypeString
				}
			}
		}
	}

	fields := make([]arrow.Field, len(names))
	builders := make([]array.Builder, len(names))
	for i, name := range names {
		dt := types[name]
		if dt == typeUnknown {
			dt = datatable.TypeString
		}
		fields[i] = arrow.Field{Name: name, Type: ArrowType(dt), Nullable: true}
		builders[i] = array.NewBuilder(mem, fields[i].Type)
		defer builders[i].Release()
	}

	for _, row := range rows {
		for i, name := range names {
			raw, ok := row[name]
			if !ok || raw == nil {
				builders[i].AppendNull()
				continue
			}
			if _, isString := builders[i].(*array.StringBuilder); isString {
				raw = jsonText(raw)
			}
			appendValue(builders[i], datatable.ValueOf(raw))
		}
	}

	return buildTable(arrow.NewSchema(fields, nil), builders), nil
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}

// typeUnknown marks a JSON column that so far only held nulls.
const typeUnknown datatable.DataType = -1

func jsonType(v any) datatable.DataType {
	switch v.(type) {
	case nil:
		return typeUnknown
	case float64, json.Number:
		return datatable.TypeFloat
	case bool:
		return datatable.TypeBool
	}
	return datatable.TypeString
}

func jsonText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
	return datatable.Stringify(v)
}

// Project keeps the named columns, in table order, and the first limit rows.
// An empty column list keeps every column; a limit <= 0 keeps every row.
func Project(table arrow.Table, columns []string, limit int64) (arrow.Table, error) {
	if table == nil {
		return nil, datatable.ErrNoDataSource
	}

	schema := table.Schema()
	indices := make([]int, 0, schema.NumFields())
	if len(columns) == 0 {
		for i := range schema.Fields() {
			indices = append(indices, i)
		}
	} else {
		wanted := make(map[string]bool, len(columns))
		for _, name := range columns {
			wanted[name] = true
		}
		for i, f := range schema.Fields() {
			if wanted[f.Name] {
				indices = append(indices, i)
			}
		}
		if len(indices) == 0 {
			return nil, fmt.Errorf("%w: none of %v", datatable.ErrColumnNotFound, columns)
		}
	}

	rows := table.NumRows()
	if limit > 0 && limit < rows {
		rows = limit
	}

	fields := make([]arrow.Field, len(indices))
	cols := make([]arrow.Column, len(indices))
	for i, idx := range indices {
		fields[i] = schema.Field(idx)
		col := table.Column(idx)

		var chunks []arrow.Array
		remaining := rows
		for _, chunk := range col.Data().Chunks() {
			if remaining <= 0 {
				break
			}
			n := min(int64(chunk.Len()), remaining)
			chunks = append(chunks, array.NewSlice(chunk, 0, n))
			remaining -= n
		}
		chunked := arrow.NewChunked(col.DataType(), chunks)
		cols[i] = *arrow.NewColumn(fields[i], chunked)
		chunked.Release()
		for _, c := range chunks {
			c.Release()
		}
	}

	out := array.NewTable(arrow.NewSchema(fields, nil), cols, rows)
	for i := range cols {
		cols[i].Release()
	}
	return out, nil
}

func buildTable(schema *arrow.Schema, builders []array.Builder) arrow.Table {
	data := make([][]arrow.Array, len(builders))
	for i, b := range builders {
		data[i] = []arrow.Array{b.NewArray()}
	}
	table := array.NewTableFromSlice(schema, data)
	for _, chunks := range data {
		for _, arr := range chunks {
			arr.Release()
		}
	}
	return table
}

// appendValue appends v to a builder made by ArrowType.
func appendValue(b array.Builder, v datatable.Value) {
	if v.IsNull {
		b.AppendNull()
		return
	}

	switch b := b.(type) {
	case *array.StringBuilder:
		b.Append(v.Formatted)
	case *array.Int64Builder:
		if n, ok := toInt64(v.Raw); ok {
			b.Append(n)
		} else {
			b.AppendNull()
		}
	case *array.Float64Builder:
		if f, ok := toFloat64(v.Raw); ok {
			b.Append(f)
		} else {
			b.AppendNull()
		}
	case *array.BooleanBuilder:
		if x, ok := v.Raw.(bool); ok {
			b.Append(x)
		} else {
			b.AppendNull()
		}
	case *array.Date32Builder:
		if t, ok := v.Raw.(time.Time); ok {
			b.Append(arrow.Date32FromTime(t))
		} else {
			b.AppendNull()
		}
	case *array.TimestampBuilder:
		if t, ok := v.Raw.(time.Time); ok {
			b.Append(arrow.Timestamp(t.UnixMicro()))
		} else {
			b.AppendNull()
		}
	case *array.BinaryBuilder:
		switch x := v.Raw.(type) {
		case []byte:
			b.Append(x)
		default:
			b.AppendString(v.Formatted)
		}
	default:
		b.AppendNull()
	}
}

func toInt64(raw any) (int64, bool) {
	switch x := raw.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int64(x), true
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		return n, err == nil
	}
	return 0, false
}

func toFloat64(raw any) (float64, bool) {
	switch x := raw.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	if n, ok := toInt64(raw); ok {
		return float64(n), true
	}
	return 0, false
}
