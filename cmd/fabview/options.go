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
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/magpierre/fabview/datatable"
	"github.com/magpierre/fabview/dataview"
	"github.com/magpierre/fabview/script"
)

// viewOptions is the initial view state requested by flags, env or config.
type viewOptions struct {
	PageSize    int
	Search      string
	Query       bool
	Sort        string
	Columns     []string
	Multiselect []string
	Where       string
	WhereColumn string

	Timeout time.Duration
	Limit   int64
	FileID  string
}

func loadViewOptions(v *viper.Viper) viewOptions {
	return viewOptions{
		PageSize:    v.GetInt("page-size"),
		Search:      v.GetString("search"),
		Query:       v.GetBool("query"),
		Sort:        v.GetString("sort"),
		Columns:     v.GetStringSlice("columns"),
		Multiselect: v.GetStringSlice("multiselect"),
		Where:       v.GetString("where"),
		WhereColumn: v.GetString("where-column"),
		Timeout:     v.GetDuration("timeout"),
		Limit:       v.GetInt64("limit"),
		FileID:      v.GetString("file-id"),
	}
}

var errWhereColumn = errors.New("--where needs --where-column")

// scripts holds the compiled --where predicates and the ones typed into the
// window's expression editor.
var scripts = script.NewCache()

func tableOptions[T any](o viewOptions) []dataview.Option[T] {
	sizes := slices.Clone(dataview.DefaultPageSizeOptions)
	if o.PageSize > 0 {
		sizes = append(sizes, o.PageSize)
	}
	opts := []dataview.Option[T]{
		dataview.WithPageSizeOptions[T](sizes...),
		dataview.WithPageSize[T](o.PageSize),
		dataview.WithResetPageOnFilter[T](true),
	}
	if o.Query {
		opts = append(opts,
			dataview.WithSearchMode[T](dataview.SearchQuery),
			dataview.WithSearchPlaceholder[T]("Search or query, e.g. amount > 1000 AND status = APPROVED"))
	}
	return opts
}

func columnID[T any](c dataview.Column[T]) string {
	switch {
	case c.ID != "":
		return c.ID
	case c.AccessorKey != "":
		return c.AccessorKey
	}
	return c.Header
}

func findColumn[T any](cols []dataview.Column[T], id string) (int, error) {
	for i, c := range cols {
		if columnID(c) == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", datatable.ErrColumnNotFound, id)
}

// withWhere turns the --where column into a custom filter whose filter text is
// the predicate source.
func withWhere[T any](cols []dataview.Column[T], o viewOptions) error {
	if o.Where == "" {
		return nil
	}
	if o.WhereColumn == "" {
		return errWhereColumn
	}
	i, err := findColumn(cols, o.WhereColumn)
	if err != nil {
		return err
	}
	if err := scripts.Validate(o.Where); err != nil {
		return err
	}
	cols[i].FilterType = datatable.FilterCustom
	cols[i].FilterFn = script.ExpressionFilter[T](scripts)
	cols[i].DisableFilter = false
	return nil
}

// withMultiselect offers the distinct values of each named column as a checklist filter.
func withMultiselect[T any](cols []dataview.Column[T], records []T, names []string) error {
	for _, name := range names {
		i, err := findColumn(cols, name)
		if err != nil {
			return err
		}
		seen := make(map[string]bool)
		var values []string
		for _, r := range records {
			v := cols[i].Resolve(r).Formatted
			if v != "" && !seen[v] {
				seen[v] = true
				values = append(values, v)
			}
		}
		slices.Sort(values)
		cols[i].FilterType = datatable.FilterMultiSelect
		cols[i].FilterOptions = dataview.Options(values...)
	}
	return nil
}

// parseSort reads "id,-id": keys in priority order, "-" for descending.
func parseSort(spec string) datatable.SortState {
	var keys datatable.SortState
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, desc := strings.CutPrefix(part, "-")
		dir := datatable.SortAscending
		if desc {
			dir = datatable.SortDescending
		}
		keys = append(keys, datatable.SortKey{ColumnID: id, Direction: dir})
	}
	return keys
}

// applyView sets the requested initial state on a table.
func applyView[T any](t *dataview.Table[T], o viewOptions) error {
	t.SetGlobalFilter(o.Search)

	if o.Where != "" {
		if err := t.SetColumnFilter(o.WhereColumn, o.Where); err != nil {
			return err
		}
	}

	if o.Sort != "" {
		if err := t.SetSorting(parseSort(o.Sort)); err != nil {
			return err
		}
	}

	if len(o.Columns) > 0 {
		for _, id := range o.Columns {
			if _, err := t.Column(id); err != nil {
				return err
			}
		}
		for _, c := range t.HideableColumns() {
			if err := t.SetColumnVisible(c.ID, slices.Contains(o.Columns, c.ID)); err != nil {
				return err
			}
		}
	}
	return nil
}
