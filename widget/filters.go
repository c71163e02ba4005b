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

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/magpierre/fabview/datatable"
	"github.com/magpierre/fabview/dataview"
)

// allOption clears a select filter.
const allOption = "All"

func (dt *DataTable[T]) filterCell(c dataview.ColumnView) fyne.CanvasObject {
	if !c.CanFilter {
		return layout.NewSpacer()
	}
	id := c.ID

	switch c.FilterType {
	case datatable.FilterSelect:
		labels := []string{allOption}
		for _, o := range c.FilterOptions {
			labels = append(labels, o.Label)
		}
		s := widget.NewSelect(labels, func(label string) {
			if dt.syncing {
				return
			}
			dt.setFilter(id, optionValue(c.FilterOptions, label))
		})
		s.PlaceHolder = c.Header
		dt.selectFilters[id] = s
		return s

	case datatable.FilterMultiSelect:
		b := widget.NewButtonWithIcon(c.Header, theme.MenuDropDownIcon(), func() {
			dt.showMultiSelect(id)
		})
		b.IconPlacement = widget.ButtonIconTrailingText
		b.Alignment = widget.ButtonAlignLeading
		dt.multiFilters[id] = b
		return b

	case datatable.FilterCustom:
		if dt.config.ValidateExpression == nil {
			break
		}
		b := widget.NewButtonWithIcon(c.Header, theme.DocumentCreateIcon(), func() {
			dt.showExpression(id)
		})
		b.IconPlacement = widget.ButtonIconTrailingText
		b.Alignment = widget.ButtonAlignLeading
		dt.customFilters[id] = b
		return b
	}

	e := widget.NewEntry()
	e.SetPlaceHolder("Filter " + c.Header + "...")
	e.SetText(filterString(c.Filter))
	e.OnChanged = func(text string) {
		if dt.syncing {
			return
		}
		dt.setFilter(id, text)
	}
	dt.textFilters[id] = e
	return e
}

func (dt *DataTable[T]) setFilter(id string, value any) {
	if err := dt.table.SetColumnFilter(id, value); err != nil {
		fyne.LogError("Failed to filter column "+id, err)
	}
}

// syncFilter shows the column's current filter value in its control.
func (dt *DataTable[T]) syncFilter(c dataview.ColumnView) {
	if e, ok := dt.textFilters[c.ID]; ok {
		if want := filterString(c.Filter); e.Text != want {
			e.SetText(want)
		}
	}
	if s, ok := dt.selectFilters[c.ID]; ok {
		want := optionLabel(c.FilterOptions, filterString(c.Filter))
		if s.Selected != want {
			if want == "" {
				s.ClearSelected()
			} else {
				s.SetSelected(want)
			}
		}
	}
	if b, ok := dt.customFilters[c.ID]; ok {
		text := c.Header
		if filterString(c.Filter) != "" {
			text = c.Header + " ƒ"
		}
		if b.Text != text {
			b.SetText(text)
		}
	}
	if b, ok := dt.multiFilters[c.ID]; ok {
		text := c.Header
		if n := len(filterValues(c.Filter)); n > 0 {
			text = fmt.Sprintf("%s (%d)", c.Header, n)
		}
		if b.Text != text {
			b.SetText(text)
		}
	}
}

// multiSelect builds the check group that edits a multiselect filter.
func (dt *DataTable[T]) multiSelect(c dataview.ColumnView) *widget.CheckGroup {
	labels := make([]string, len(c.FilterOptions))
	for i, o := range c.FilterOptions {
		labels[i] = o.Label
	}
	id := c.ID
	group := widget.NewCheckGroup(labels, func(selected []string) {
		values := make([]string, 0, len(selected))
		for _, label := range selected {
			values = append(values, filterString(optionValue(c.FilterOptions, label)))
		}
		dt.setFilter(id, values)
	})

	var selected []string
	for _, v := range filterValues(c.Filter) {
		if label := optionLabel(c.FilterOptions, v); label != "" {
			selected = append(selected, label)
		}
	}
	group.Selected = selected
	return group
}

func (dt *DataTable[T]) showMultiSelect(id string) {
	c, err := dt.table.Column(id)
	if err != nil {
		fyne.LogError("Failed to open filter", err)
		return
	}
	cv := dt.canvas()
	b := dt.multiFilters[id]
	if cv == nil || b == nil {
		return
	}

	group := dt.multiSelect(c)
	clearBtn := widget.NewButton("Clear", func() {
		group.Selected = nil
		group.Refresh()
		dt.setFilter(id, nil)
	})
	content := container.NewVBox(
		widget.NewLabelWithStyle(c.Header, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		group,
		clearBtn,
	)
	widget.ShowPopUpAtRelativePosition(content, cv, fyne.NewPos(0, b.Size().Height), b)
}

// optionValue maps a select label to its filter value. allOption and unknown
// labels map to nil, which clears the filter.
func optionValue(options []dataview.FilterOption, label string) any {
	for _, o := range options {
		if o.Label == label {
			return o.Value
		}
	}
	return nil
}

func optionLabel(options []dataview.FilterOption, value string) string {
	if value == "" {
		return ""
	}
	for _, o := range options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

func filterString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	return datatable.Stringify(value)
}

func filterValues(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, len(v))
		for i, x := range v {
			out[i] = filterString(x)
		}
		return out
	case string:
		if v != "" {
			return []string{v}
		}
	}
	return nil
}
