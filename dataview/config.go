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

import "slices"

// SearchMode controls how the global filter text is interpreted.
type SearchMode int

const (
	// SearchSubstring matches the text as a case-insensitive substring of any column.
	SearchSubstring SearchMode = iota
	// SearchQuery parses the text as `column op value [AND|OR ...]`.
	// Text that does not parse falls back to SearchSubstring.
	SearchQuery
)

// DefaultPageSizeOptions is used when no page size options are configured.
var DefaultPageSizeOptions = []int{10, 20, 30, 40, 50}

// Config holds the construction options of a Table.
type Config[T any] struct {
	// PageSizeOptions lists the allowed page sizes. It is sorted smallest first.
	PageSizeOptions []int

	// PageSize is the initial page size. Zero, or a value that is not one of
	// PageSizeOptions, selects the smallest option.
	PageSize int

	// RowID returns a stable identity for a record. The default identity is the
	// record's position in the unfiltered input.
	RowID func(record T, index int) string

	// OnRowClick is called with the original record when a row is clicked.
	OnRowClick func(record T)

	// RenderDetail renders the inline detail of an expanded row. The result is
	// passed to the presentation layer untouched. Rows are only expandable when set.
	RenderDetail func(record T, close func()) any

	// OnBulkDelete receives the selected records. The selection is cleared after it returns.
	OnBulkDelete func(records []T)

	// SearchPlaceholder is the hint text renderers show in the global search box.
	SearchPlaceholder string

	// ShowColumnToggle tells renderers to offer the column visibility menu.
	ShowColumnToggle bool

	// SearchMode selects how the global filter is interpreted.
	SearchMode SearchMode

	// ResetPageOnFilter moves to the first page whenever a filter changes.
	// Without it the page index is only clamped.
	ResetPageOnFilter bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig[T any]() Config[T] {
	return Config[T]{
		PageSizeOptions:   slices.Clone(DefaultPageSizeOptions),
		SearchPlaceholder: "Search...",
		ShowColumnToggle:  true,
	}
}

// Option mutates a Config.
type Option[T any] func(*Config[T])

// WithConfig replaces the whole configuration.
func WithConfig[T any](cfg Config[T]) Option[T] {
	return func(c *Config[T]) { *c = cfg }
}

// WithPageSizeOptions sets the allowed page sizes.
func WithPageSizeOptions[T any](sizes ...int) Option[T] {
	return func(c *Config[T]) { c.PageSizeOptions = sizes }
}

// WithPageSize sets the initial page size.
func WithPageSize[T any](size int) Option[T] {
	return func(c *Config[T]) { c.PageSize = size }
}

// WithRowID sets the record identity function.
func WithRowID[T any](fn func(record T, index int) string) Option[T] {
	return func(c *Config[T]) { c.RowID = fn }
}

// WithOnRowClick sets the row click callback.
func WithOnRowClick[T any](fn func(record T)) Option[T] {
	return func(c *Config[T]) { c.OnRowClick = fn }
}

// WithDetail sets the detail renderer and makes rows expandable.
func WithDetail[T any](fn func(record T, close func()) any) Option[T] {
	return func(c *Config[T]) { c.RenderDetail = fn }
}

// WithOnBulkDelete sets the bulk delete callback.
func WithOnBulkDelete[T any](fn func(records []T)) Option[T] {
	return func(c *Config[T]) { c.OnBulkDelete = fn }
}

// WithSearchPlaceholder sets the search box hint text.
func WithSearchPlaceholder[T any](text string) Option[T] {
	return func(c *Config[T]) { c.SearchPlaceholder = text }
}

// WithColumnToggle shows or hides the column visibility menu.
func WithColumnToggle[T any](show bool) Option[T] {
	return func(c *Config[T]) { c.ShowColumnToggle = show }
}

// WithSearchMode sets how the global filter is interpreted.
func WithSearchMode[T any](mode SearchMode) Option[T] {
	return func(c *Config[T]) { c.SearchMode = mode }
}

// WithResetPageOnFilter makes filter changes return to the first page.
func WithResetPageOnFilter[T any](reset bool) Option[T] {
	return func(c *Config[T]) { c.ResetPageOnFilter = reset }
}

// normalizePageSizes drops non-positive and duplicate sizes and sorts the rest.
func normalizePageSizes(sizes []int) []int {
	out := make([]int, 0, len(sizes))
	for _, s := range sizes {
		if s > 0 && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return slices.Clone(DefaultPageSizeOptions)
	}
	slices.Sort(out)
	return out
}
