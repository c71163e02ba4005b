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

package widget

import "fyne.io/fyne/v2"

// Config controls which parts of the DataTable are shown.
type Config struct {
	ShowFilterBar bool // per-column filter controls under the header
	ShowPager     bool
	ShowStatusBar bool

	// ConfirmDelete asks before deleting selected rows. It needs a window,
	// see DataTable.SetWindow.
	ConfirmDelete bool

	SelectColumnWidth float32
	MinColumnWidth    float32

	// EmptyText is shown in place of the rows when nothing matches.
	EmptyText string

	// ValidateExpression checks the text typed into a custom column filter.
	// When set, custom filters are edited in an ExpressionEditor and only
	// valid expressions are applied.
	ValidateExpression func(string) error

	// ToolbarItems are appended to the toolbar, after the column toggle.
	ToolbarItems []fyne.CanvasObject
}

// DefaultConfig returns the default widget configuration.
func DefaultConfig() Config {
	return Config{
		ShowFilterBar:     true,
		ShowPager:         true,
		ShowStatusBar:     true,
		ConfirmDelete:     true,
		SelectColumnWidth: 36,
		MinColumnWidth:    80,
		EmptyText:         "No results.",
	}
}
