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

// Package arrowadapter connects Apache Arrow tables to the view engine: it turns
// a table into records and column definitions, rebuilds a table from a view and
// reads and writes Parquet, CSV and JSON files.
package arrowadapter

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/magpierre/fabview/datatable"
	"github.com/magpierre/fabview/dataview"
)

// Record is one row of an Arrow table. It implements dataview.Fielder so
// columns can read fields through AccessorKey.
type Record struct {
	index  int
	fields map[string]int
	values []any
}

// Field returns the value of the named field.
func (r Record) Field(key string) (any, bool) {
	i, ok := r.fields[key]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// Index returns the row's position in the table.
func (r Record) Index() int { return r.index }

// Values returns the row's values in schema order.
func (r Record) Values() []any { return r.values }

// Source holds the rows of an Arrow table as Go values.
// It implements datatable.DataSource.
type Source struct {
	schema  *arrow.Schema
	types   []datatable.DataType
	records []Record
	meta    datatable.Metadata
}

// NewFromArrowTable reads every row of table. The table is not retained.
func NewFromArrowTable(table arrow.Table) (*Source, error) {
	if table == nil {
		return nil, datatable.ErrNoDataSource
	}

	schema := table.Schema()
	fields := make(map[string]int, schema.NumFields())
	types := make([]datatable.DataType, schema.NumFields())
	for i, f := range schema.Fields() {
		if _, dup := fields[f.Name]; !dup {
			fields[f.Name] = i
		}
		types[i] = DataTypeOf(f.Type)
	}

	s := &Source{
		schema:  schema,
		types:   types,
		records: make([]Record, 0, table.NumRows()),
		meta: datatable.Metadata{
			"source":  "arrow",
			"schema":  schema.String(),
			"numRows": table.NumRows(),
		},
	}

	tr := array.NewTableReader(table, table.NumRows())
	defer tr.Release()
	for tr.Next() {
		rec := tr.Record()
		for row := 0; row < int(rec.NumRows()); row++ {
			values := make([]any, rec.NumCols())
			for col, arr := range rec.Columns() {
				values[col] = ValueAt(arr, row)
			}
			s.records = append(s.records, Record{index: len(s.records), fields: fields, values: values})
		}
	}
	if err := tr.Err(); err != nil {
		return nil, fmt.Errorf("reading arrow table: %w", err)
	}
	return s, nil
}

// Schema returns the Arrow schema the source was read from.
func (s *Source) Schema() *arrow.Schema { return s.schema }

// Records returns the rows, in table order.
func (s *Source) Records() []Record { return s.records }

// Columns returns one column definition per schema field.
func (s *Source) Columns() []dataview.Column[Record] {
	cols := make([]dataview.Column[Record], len(s.schema.Fields()))
	seen := make(map[string]bool, len(cols))
	for i, f := range s.schema.Fields() {
		id := f.Name
		if seen[id] || id == dataview.SelectionColumnID {
			id = fmt.Sprintf("%s_%d", f.Name, i)
		}
		seen[id] = true
		cols[i] = dataview.Column[Record]{
			ID:       id,
			Header:   f.Name,
			Type:     s.types[i],
			Accessor: func(r Record) any { return r.values[i] },
		}
	}
	return cols
}

func (s *Source) RowCount() int    { return len(s.records) }
func (s *Source) ColumnCount() int { return len(s.types) }

func (s *Source) ColumnName(col int) (string, error) {
	if col < 0 || col >= len(s.types) {
		return "", fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	return s.schema.Field(col).Name, nil
}

func (s *Source) ColumnType(col int) (datatable.DataType, error) {
	if col < 0 || col >= len(s.types) {
		return datatable.TypeString, fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	return s.types[col], nil
}

func (s *Source) Cell(row, col int) (datatable.Value, error) {
	if row < 0 || row >= len(s.records) {
		return datatable.Value{}, fmt.Errorf("%w: %d", datatable.ErrInvalidRow, row)
	}
	if col < 0 || col >= len(s.types) {
		return datatable.Value{}, fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	return datatable.NewValue(s.records[row].values[col], s.types[col]), nil
}

func (s *Source) Row(row int) ([]datatable.Value, error) {
	if row < 0 || row >= len(s.records) {
		return nil, fmt.Errorf("%w: %d", datatable.ErrInvalidRow, row)
	}
	out := make([]datatable.Value, len(s.types))
	for col := range s.types {
		out[col] = datatable.NewValue(s.records[row].values[col], s.types[col])
	}
	return out, nil
}

func (s *Source) Metadata() datatable.Metadata { return s.meta }

// DataTypeOf maps an Arrow type to the closest DataType.
func DataTypeOf(dt arrow.DataType) datatable.DataType {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return datatable.TypeInt
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return datatable.TypeFloat
	case arrow.BOOL:
		return datatable.TypeBool
	case arrow.DATE32, arrow.DATE64:
		return datatable.TypeDate
	case arrow.TIMESTAMP:
		return datatable.TypeTimestamp
	case arrow.BINARY, arrow.LARGE_BINARY, arrow.FIXED_SIZE_BINARY:
		return datatable.TypeBinary
	case arrow.DECIMAL128, arrow.DECIMAL256:
		return datatable.TypeDecimal
	case arrow.STRUCT:
		return datatable.TypeStruct
	case arrow.LIST, arrow.LARGE_LIST, arrow.FIXED_SIZE_LIST:
		return datatable.TypeList
	default:
		return datatable.TypeString
	}
}

// ValueAt converts the value at pos to a Go value: integers to int64 or uint64,
// floats to float64, dates and timestamps to time.Time, and nested or decimal
// values to their string form. Nulls are nil.
func ValueAt(col arrow.Array, pos int) any {
	if col.IsNull(pos) {
		return nil
	}

	switch c := col.(type) {
	case *array.String:
		return c.Value(pos)
	case *array.LargeString:
		return c.Value(pos)
	case *array.Binary:
		return c.Value(pos)
	case *array.Boolean:
		return c.Value(pos)
	case *array.Int8:
		return int64(c.Value(pos))
	case *array.Int16:
		return int64(c.Value(pos))
	case *array.Int32:
		return int64(c.Value(pos))
	case *array.Int64:
		return c.Value(pos)
	case *array.Uint8:
		return uint64(c.Value(pos))
	case *array.Uint16:
		return uint64(c.Value(pos))
	case *array.Uint32:
		return uint64(c.Value(pos))
	case *array.Uint64:
		return c.Value(pos)
	case *array.Float16:
		return float64(c.Value(pos).Float32())
	case *array.Float32:
		return float64(c.Value(pos))
	case *array.Float64:
		return c.Value(pos)
	case *array.Date32:
		return c.Value(pos).ToTime()
	case *array.Date64:
		return c.Value(pos).ToTime()
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return c.Value(pos).ToTime(unit).UTC()
	}
	return col.ValueStr(pos)
}

var _ datatable.DataSource = (*Source)(nil)
