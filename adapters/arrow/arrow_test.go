package arrowadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpierre/fabview/datatable"
	"github.com/magpierre/fabview/dataview"
)

// rfqTable builds a small table with a null amount and a null due date.
func rfqTable(t *testing.T) arrow.Table {
	t.Helper()
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "number", Type: arrow.BinaryTypes.String},
		{Name: "material", Type: arrow.BinaryTypes.String},
		{Name: "qty", Type: arrow.PrimitiveTypes.Int32},
		{Name: "amount", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "due", Type: arrow.FixedWidthTypes.Date32, Nullable: true},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.StringBuilder).AppendValues([]string{"RFQ-001", "RFQ-002", "RFQ-003"}, nil)
	b.Field(1).(*array.StringBuilder).AppendValues([]string{"Steel Beam", "Copper", "steel plate"}, nil)
	b.Field(2).(*array.Int32Builder).AppendValues([]int32{10, 5, 7}, nil)
	b.Field(3).(*array.Float64Builder).AppendValues([]float64{1200.5, 0, 300}, []bool{true, false, true})
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	b.Field(4).(*array.Date32Builder).AppendValues(
		[]arrow.Date32{arrow.Date32FromTime(due), 0, arrow.Date32FromTime(due.AddDate(0, 1, 0))},
		[]bool{true, false, true})

	rec := b.NewRecord()
	defer rec.Release()
	return array.NewTableFromRecords(schema, []arrow.Record{rec})
}

func TestNewFromArrowTable(t *testing.T) {
	table := rfqTable(t)
	defer table.Release()

	src, err := NewFromArrowTable(table)
	require.NoError(t, err)

	assert.Equal(t, 3, src.RowCount())
	assert.Equal(t, 5, src.ColumnCount())

	typ, err := src.ColumnType(2)
	require.NoError(t, err)
	assert.Equal(t, datatable.TypeInt, typ)
	typ, err = src.ColumnType(4)
	require.NoError(t, err)
	assert.Equal(t, datatable.TypeDate, typ)

	v, err := src.Cell(0, 4)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", v.Formatted)

	v, err = src.Cell(1, 3)
	require.NoError(t, err)
	assert.True(t, v.IsNull)

	qty, ok := src.Records()[2].Field("qty")
	require.True(t, ok)
	assert.Equal(t, int64(7), qty)

	_, err = src.Cell(3, 0)
	assert.ErrorIs(t, err, datatable.ErrInvalidRow)
	_, err = src.ColumnName(5)
	assert.ErrorIs(t, err, datatable.ErrInvalidColumn)

	_, err = NewFromArrowTable(nil)
	assert.ErrorIs(t, err, datatable.ErrNoDataSource)
}

func TestSourceDrivesTable(t *testing.T) {
	table := rfqTable(t)
	defer table.Release()
	src, err := NewFromArrowTable(table)
	require.NoError(t, err)

	tbl, err := dataview.New(src.Records(), src.Columns())
	require.NoError(t, err)

	tbl.SetGlobalFilter("steel")
	assert.Equal(t, 2, tbl.RowCount())

	tbl.SetGlobalFilter("")
	require.NoError(t, tbl.ToggleSort("amount"))
	require.NoError(t, tbl.ToggleSort("amount"))
	refs := []string{}
	for _, r := range tbl.Rows() {
		refs = append(refs, tbl.CellText(r, "number"))
	}
	assert.Equal(t, []string{"RFQ-001", "RFQ-003", "RFQ-002"}, refs, "null amount sorts last")

	assert.Equal(t, "2025-04-01", tbl.CellText(tbl.Rows()[1], "due"))
}

func TestFromDataSourceUsesView(t *testing.T) {
	table := rfqTable(t)
	defer table.Release()
	src, err := NewFromArrowTable(table)
	require.NoError(t, err)

	tbl, err := dataview.New(src.Records(), src.Columns())
	require.NoError(t, err)
	tbl.SetGlobalFilter("steel")
	require.NoError(t, tbl.ToggleColumn("material"))

	out, err := FromDataSource(tbl.ViewSource(), nil)
	require.NoError(t, err)
	defer out.Release()

	assert.Equal(t, int64(2), out.NumRows())
	assert.Equal(t, int64(4), out.NumCols())
	assert.Equal(t, arrow.PrimitiveTypes.Int64, out.Schema().Field(1).Type)
	assert.Equal(t, arrow.FixedWidthTypes.Date32, out.Schema().Field(3).Type)

	back, err := NewFromArrowTable(out)
	require.NoError(t, err)
	due, _ := back.Records()[1].Field("due")
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), due)

	_, err = FromDataSource(nil, nil)
	assert.ErrorIs(t, err, datatable.ErrNoDataSource)

	tbl.SetGlobalFilter("no such rfq")
	_, err = FromDataSource(tbl.ViewSource(), nil)
	assert.ErrorIs(t, err, datatable.ErrEmptyData)
}

func TestFromMaps(t *testing.T) {
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(`[
		{"ref": "A", "amount": 10, "urgent": true},
		{"ref": "B", "amount": null, "urgent": false, "note": {"x": 1}},
		{"ref": "C", "amount": "n/a"}
	]`), &rows))

	table, err := FromMaps(rows, nil)
	require.NoError(t, err)
	defer table.Release()

	names := []string{}
	for _, f := range table.Schema().Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"amount", "ref", "urgent", "note"}, names)
	assert.Equal(t, arrow.BinaryTypes.String, table.Schema().Field(0).Type, "mixed values fall back to string")
	assert.Equal(t, arrow.FixedWidthTypes.Boolean, table.Schema().Field(2).Type)

	src, err := NewFromArrowTable(table)
	require.NoError(t, err)
	note, _ := src.Records()[1].Field("note")
	assert.Equal(t, `{"x":1}`, note)
	urgent, _ := src.Records()[2].Field("urgent")
	assert.Nil(t, urgent)

	_, err = FromMaps(nil, nil)
	assert.ErrorIs(t, err, datatable.ErrEmptyData)
}

func TestProject(t *testing.T) {
	table := rfqTable(t)
	defer table.Release()

	out, err := Project(table, []string{"amount", "number"}, 2)
	require.NoError(t, err)
	defer out.Release()
	assert.Equal(t, int64(2), out.NumRows())
	assert.Equal(t, "number", out.Schema().Field(0).Name)
	assert.Equal(t, "amount", out.Schema().Field(1).Name)

	all, err := Project(table, nil, 0)
	require.NoError(t, err)
	defer all.Release()
	assert.Equal(t, int64(3), all.NumRows())
	assert.Equal(t, int64(5), all.NumCols())

	_, err = Project(table, []string{"nope"}, 0)
	assert.ErrorIs(t, err, datatable.ErrColumnNotFound)
}

func TestParquetRoundTrip(t *testing.T) {
	table := rfqTable(t)
	defer table.Release()

	var buf bytes.Buffer
	require.NoError(t, WriteParquet(table, &buf))

	back, err := ReadParquet(context.Background(), bytes.NewReader(buf.Bytes()), nil)
	require.NoError(t, err)
	defer back.Release()

	assert.Equal(t, int64(3), back.NumRows())
	src, err := NewFromArrowTable(back)
	require.NoError(t, err)
	v, err := src.Cell(0, 3)
	require.NoError(t, err)
	assert.Equal(t, 1200.5, v.Raw)
}

func TestWriteCSV(t *testing.T) {
	table := rfqTable(t)
	defer table.Release()
	out, err := Project(table, []string{"number", "qty", "amount"}, 0)
	require.NoError(t, err)
	defer out.Release()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(out, &buf))
	assert.Equal(t, "number,qty,amount\nRFQ-001,10,1200.5\nRFQ-002,5,\nRFQ-003,7,300\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	table := rfqTable(t)
	defer table.Release()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(table, &buf))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "RFQ-001", got[0]["number"])
	assert.Equal(t, 10.0, got[0]["qty"])
	assert.Equal(t, "2025-03-01", got[0]["due"])
	assert.Nil(t, got[1]["amount"])
}

func TestReadCSV(t *testing.T) {
	data := "ref;qty;amount\nA;1;10.5\nB;2;\n"
	table, err := ReadCSV(strings.NewReader(data), DetectSeparator("ref;qty;amount"), nil)
	require.NoError(t, err)
	defer table.Release()

	assert.Equal(t, int64(2), table.NumRows())
	assert.Equal(t, arrow.PrimitiveTypes.Int64, table.Schema().Field(1).Type)

	src, err := NewFromArrowTable(table)
	require.NoError(t, err)
	amount, _ := src.Records()[1].Field("amount")
	assert.Nil(t, amount)
}

func TestDetectSeparator(t *testing.T) {
	tests := map[string]rune{
		"a,b,c":     ',',
		"a;b;c":     ';',
		"a\tb\tc":   '\t',
		"a|b|c":     '|',
		"single":    ',',
		"a;b,c":     ',',
		"a;b;c,d|e": ';',
	}
	for line, want := range tests {
		assert.Equal(t, want, DetectSeparator(line), line)
	}
	assert.Equal(t, "semicolon", SeparatorName(';'))
}

func TestExport(t *testing.T) {
	table := rfqTable(t)
	defer table.Release()
	src, err := NewFromArrowTable(table)
	require.NoError(t, err)
	tbl, err := dataview.New(src.Records(), src.Columns())
	require.NoError(t, err)
	tbl.SetGlobalFilter("steel")

	dir := t.TempDir()
	for _, name := range []string{"view.parquet", "view.csv", "view.json"} {
		path := filepath.Join(dir, name)
		n, err := Export(tbl.ViewSource(), path)
		require.NoError(t, err, name)
		assert.Equal(t, 2, n)

		back, err := ReadFile(context.Background(), path, nil)
		require.NoError(t, err, name)
		assert.Equal(t, int64(2), back.NumRows(), name)
		back.Release()
	}

	_, err = Export(tbl.ViewSource(), filepath.Join(dir, "view.xlsx"))
	assert.ErrorIs(t, err, datatable.ErrExportFailed)
	_, statErr := os.Stat(filepath.Join(dir, "view.xlsx"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFormats(t *testing.T) {
	assert.Equal(t, FormatParquet, FormatOf("/tmp/data.PARQUET"))
	assert.Equal(t, FormatCSV, FormatOf("data.tsv"))
	assert.Equal(t, FormatUnknown, FormatOf("data"))
	assert.Equal(t, ".json", FormatJSON.Ext())

	_, err := ParseFormat("xml")
	assert.Error(t, err)
	assert.Equal(t, "RFQ_2025_Q1-final", CleanFilename("RFQ 2025 Q1-final!"))
}
