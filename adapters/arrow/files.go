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
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/magpierre/fabview/datatable"
)

// Format is a file format the adapter reads and writes.
type Format int

const (
	FormatUnknown Format = iota
	FormatParquet
	FormatCSV
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatParquet:
		return "parquet"
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Ext returns the file extension of the format, with the leading dot.
func (f Format) Ext() string {
	if f == FormatUnknown {
		return ""
	}
	return "." + f.String()
}

// ParseFormat parses a format name such as "csv" or ".parquet".
func ParseFormat(name string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".") {
	case "parquet", "pq":
		return FormatParquet, nil
	case "csv", "tsv", "txt":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatUnknown, fmt.Errorf("unsupported format %q", name)
}

// FormatOf determines the format of a file from its extension.
func FormatOf(path string) Format {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return FormatUnknown
	}
	return f
}

// ReadFile reads a Parquet, CSV or JSON file into an Arrow table. CSV files
// have a header line; their separator is detected from it.
func ReadFile(ctx context.Context, path string, mem memory.Allocator) (arrow.Table, error) {
	switch FormatOf(path) {
	case FormatParquet:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open parquet file: %w", err)
		}
		defer f.Close()
		return ReadParquet(ctx, f, mem)

	case FormatCSV:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer f.Close()
		br := bufio.NewReader(f)
		first, err := br.Peek(4096)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, fmt.Errorf("failed to read CSV file: %w", err)
		}
		line, _, _ := strings.Cut(string(first), "\n")
		return ReadCSV(br, DetectSeparator(line), mem)

	case FormatJSON:
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read JSON file: %w", err)
		}
		return ReadJSON(content, mem)
	}
	return nil, fmt.Errorf("unsupported file type: %s", filepath.Base(path))
}

// ReadParquet reads a whole Parquet file.
func ReadParquet(ctx context.Context, r parquet.ReaderAtSeeker, mem memory.Allocator) (arrow.Table, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	pf, err := file.NewParquetReader(r, file.WithReadProps(parquet.NewReaderProperties(mem)))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pf.Close()

	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}
	table, err := reader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	return table, nil
}

// ReadCSV reads CSV with a header line, inferring column types.
func ReadCSV(r io.Reader, separator rune, mem memory.Allocator) (arrow.Table, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	reader := csv.NewInferringReader(r,
		csv.WithHeader(true),
		csv.WithComma(separator),
		csv.WithAllocator(mem),
		csv.WithChunk(1024),
		csv.WithNullReader(true, ""),
	)
	defer reader.Release()

	var records []arrow.Record
	defer func() {
		for _, rec := range records {
			rec.Release()
		}
	}()
	for reader.Next() {
		rec := reader.Record()
		rec.Retain()
		records = append(records, rec)
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: CSV has no rows", datatable.ErrEmptyData)
	}
	return array.NewTableFromRecords(records[0].Schema(), records), nil
}

// ReadJSON reads an array of objects, or a single object, into a table.
func ReadJSON(content []byte, mem memory.Allocator) (arrow.Table, error) {
	var rows []map[string]any
	if err := json.Unmarshal(content, &rows); err != nil {
		var single map[string]any
		if err := json.Unmarshal(content, &single); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		rows = []map[string]any{single}
	}
	return FromMaps(rows, mem)
}

var separators = []rune{',', ';', '\t', '|'}

// DetectSeparator picks the most frequent of , ; tab and | in a header line.
// Ties go to the earlier one in that list; no candidate means comma.
func DetectSeparator(line string) rune {
	best, bestCount := ',', 0
	for _, sep := range separators {
		if n := strings.Count(line, string(sep)); n > bestCount {
			best, bestCount = sep, n
		}
	}
	return best
}

// SeparatorName returns a readable name for a separator.
func SeparatorName(sep rune) string {
	switch sep {
	case ',':
		return "comma"
	case ';':
		return "semicolon"
	case '\t':
		return "tab"
	case '|':
		return "pipe"
	default:
		return string(sep)
	}
}

// WriteParquet writes table as Snappy compressed Parquet.
func WriteParquet(table arrow.Table, w io.Writer) error {
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(table.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.WriteTable(table, max(table.NumRows(), 1)); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write table to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// WriteCSV writes table as comma separated values with a header line.
// Nulls are written as empty fields.
func WriteCSV(table arrow.Table, w io.Writer) error {
	writer := csv.NewWriter(w, table.Schema(), csv.WithHeader(true), csv.WithNullWriter(""))

	tr := array.NewTableReader(table, table.NumRows())
	defer tr.Release()
	for tr.Next() {
		if err := writer.Write(tr.Record()); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	if err := tr.Err(); err != nil {
		return fmt.Errorf("error reading table: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return writer.Error()
}

// WriteJSON writes table as an indented JSON array of objects.
func WriteJSON(table arrow.Table, w io.Writer) error {
	schema := table.Schema()
	records := make([]map[string]any, 0, table.NumRows())

	tr := array.NewTableReader(table, table.NumRows())
	defer tr.Release()
	for tr.Next() {
		rec := tr.Record()
		for row := 0; row < int(rec.NumRows()); row++ {
			record := make(map[string]any, rec.NumCols())
			for col, arr := range rec.Columns() {
				record[schema.Field(col).Name] = jsonValue(arr, row)
			}
			records = append(records, record)
		}
	}
	if err := tr.Err(); err != nil {
		return fmt.Errorf("error reading table: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// jsonValue keeps numbers and booleans typed and renders dates the way the
// view shows them.
func jsonValue(arr arrow.Array, pos int) any {
	if arr.IsNull(pos) {
		return nil
	}
	switch arr.DataType().ID() {
	case arrow.DATE32, arrow.DATE64:
		return datatable.NewValue(ValueAt(arr, pos), datatable.TypeDate).Formatted
	case arrow.TIMESTAMP:
		return datatable.NewValue(ValueAt(arr, pos), datatable.TypeTimestamp).Formatted
	}
	return arr.GetOneForMarshal(pos)
}

// Write writes table in format f.
func Write(table arrow.Table, f Format, w io.Writer) error {
	switch f {
	case FormatParquet:
		return WriteParquet(table, w)
	case FormatCSV:
		return WriteCSV(table, w)
	case FormatJSON:
		return WriteJSON(table, w)
	}
	return fmt.Errorf("%w: unsupported format %s", datatable.ErrExportFailed, f)
}

// Export writes every row of a view to path, in the format its extension
// names. It returns the number of rows written.
func Export(ds datatable.DataSource, path string) (int, error) {
	f := FormatOf(path)
	if f == FormatUnknown {
		return 0, fmt.Errorf("%w: unsupported file type %q", datatable.ErrExportFailed, filepath.Ext(path))
	}

	table, err := FromDataSource(ds, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", datatable.ErrExportFailed, err)
	}
	defer table.Release()

	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", datatable.ErrExportFailed, err)
	}
	if err := Write(table, f, out); err != nil {
		out.Close()
		return 0, fmt.Errorf("%w: %w", datatable.ErrExportFailed, err)
	}
	if err := out.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return 0, fmt.Errorf("%w: %w", datatable.ErrExportFailed, err)
	}
	return int(table.NumRows()), nil
}

// CleanFilename turns a table name into a file name: spaces become
// underscores and anything but letters, digits, _ and - is dropped.
func CleanFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
