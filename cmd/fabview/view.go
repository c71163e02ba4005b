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

package main

import (
	"context"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"github.com/apache/arrow-go/v18/arrow"

	arrowadapter "github.com/magpierre/fabview/adapters/arrow"
	"github.com/magpierre/fabview/adapters/deltasharing"
	"github.com/magpierre/fabview/datatable"
	"github.com/magpierre/fabview/dataview"
	fvwidget "github.com/magpierre/fabview/widget"
)

// view is an opened source, whatever its record type.
type view interface {
	Title() string
	Status() string
	SetPage(page int)
	Print(w io.Writer, output string) error
	Export(path string) (int, error)
	Widget(w fyne.Window) fyne.CanvasObject
	Close()
}

// tableView binds a dataview.Table to the commands.
type tableView[T any] struct {
	title    string
	records  []T
	table    *dataview.Table[T]
	key      func(T) string
	describe func(T) [][2]string
	release  func()
}

func newTableView[T any](title string, records []T, cols []dataview.Column[T], o viewOptions,
	key func(T) string, describe func(T) [][2]string) (*tableView[T], error) {
	if err := withWhere(cols, o); err != nil {
		return nil, err
	}
	if err := withMultiselect(cols, records, o.Multiselect); err != nil {
		return nil, err
	}

	v := &tableView[T]{title: title, records: records, key: key, describe: describe}
	opts := append(tableOptions[T](o),
		dataview.WithRowID(func(r T, _ int) string { return key(r) }),
		dataview.WithDetail(v.detail),
		dataview.WithOnBulkDelete(v.deleteRecords),
	)
	table, err := dataview.New(records, cols, opts...)
	if err != nil {
		return nil, err
	}
	v.table = table
	if err := applyView(table, o); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *tableView[T]) Title() string  { return v.title }
func (v *tableView[T]) Status() string { return v.table.StatusText() }

// SetPage moves to a 1-based page.
func (v *tableView[T]) SetPage(page int) {
	v.table.SetPageIndex(page - 1)
}

func (v *tableView[T]) Print(w io.Writer, output string) error {
	return printPage(w, v.table, output)
}

// Export writes the filtered and sorted view, every page, to path.
func (v *tableView[T]) Export(path string) (int, error) {
	return arrowadapter.Export(v.table.ViewSource(), path)
}

func (v *tableView[T]) Widget(w fyne.Window) fyne.CanvasObject {
	cfg := fvwidget.DefaultConfig()
	cfg.ToolbarItems = []fyne.CanvasObject{exportButton(w, v.title, v.Export)}
	cfg.ValidateExpression = scripts.Validate
	dt := fvwidget.NewDataTableWithConfig(v.table, cfg)
	dt.SetWindow(w)
	return dt
}

func (v *tableView[T]) Close() {
	if v.release != nil {
		v.release()
	}
}

func (v *tableView[T]) detail(r T, collapse func()) any {
	return detailCard(v.describe(r), collapse)
}

// deleteRecords drops deleted records from the view.
func (v *tableView[T]) deleteRecords(deleted []T) {
	gone := make(map[string]bool, len(deleted))
	for _, r := range deleted {
		gone[v.key(r)] = true
	}
	kept := make([]T, 0, len(v.records))
	for _, r := range v.records {
		if !gone[v.key(r)] {
			kept = append(kept, r)
		}
	}
	v.records = kept
	v.table.SetRecords(kept)
}

// openView opens the sample, a data file or a Delta Sharing table url.
func openView(ctx context.Context, source string, o viewOptions) (view, error) {
	if source == sampleSource {
		v, err := newTableView("RFQ sample", sampleRFQs(), rfqColumns(), o,
			func(r rfq) string { return r.Number }, describeRFQ)
		if err != nil {
			return nil, err
		}
		return v, nil
	}

	table, err := loadArrow(ctx, source, o)
	if err != nil {
		return nil, err
	}
	src, err := arrowadapter.NewFromArrowTable(table)
	if err != nil {
		table.Release()
		return nil, err
	}

	fields := src.Schema().Fields()
	describe := func(r arrowadapter.Record) [][2]string {
		out := make([][2]string, len(fields))
		for i, f := range fields {
			out[i] = [2]string{f.Name, datatable.Stringify(r.Values()[i])}
		}
		return out
	}
	key := func(r arrowadapter.Record) string { return strconv.Itoa(r.Index()) }

	v, err := newTableView(sourceTitle(source), src.Records(), src.Columns(), o, key, describe)
	if err != nil {
		table.Release()
		return nil, err
	}
	v.release = table.Release
	return v, nil
}

func isTableURL(source string) bool {
	return strings.Contains(source, "#")
}

func sourceTitle(source string) string {
	if isTableURL(source) {
		_, coords, _ := strings.Cut(source, "#")
		return coords
	}
	return filepath.Base(source)
}

// loadArrow reads a data file or a Delta Sharing table into an Arrow table.
func loadArrow(ctx context.Context, source string, o viewOptions) (arrow.Table, error) {
	if isTableURL(source) {
		return deltasharing.LoadURL(ctx, source, deltasharing.Options{
			Timeout: o.Timeout,
			FileID:  o.FileID,
			Limit:   o.Limit,
		})
	}

	table, err := arrowadapter.ReadFile(ctx, source, nil)
	if err != nil {
		return nil, err
	}
	if o.Limit <= 0 {
		return table, nil
	}
	defer table.Release()
	return arrowadapter.Project(table, nil, o.Limit)
}
