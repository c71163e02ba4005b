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

// Package widget renders a dataview.Table with Fyne.
//
// The widget owns no table state. Every control calls the corresponding
// operation on the Table and the widget redraws from the Table when it
// reports a change. Use it from the UI goroutine only; wrap updates from
// other goroutines in fyne.Do.
package widget

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/magpierre/fabview/datatable"
	"github.com/magpierre/fabview/dataview"
)

// DataTable is a Fyne widget for a dataview.Table.
type DataTable[T any] struct {
	widget.BaseWidget

	table  *dataview.Table[T]
	config Config
	window fyne.Window

	content fyne.CanvasObject

	search     *widget.Entry
	columnsBtn *widget.Button
	deleteBtn  *widget.Button

	selectAll *widget.Check
	header    *fyne.Container
	filterBar *fyne.Container
	body      *fyne.Container

	pager         *fyne.Container
	selectedLabel *widget.Label
	pageSize      *widget.Select
	pageLabel     *widget.Label
	firstBtn      *widget.Button
	prevBtn       *widget.Button
	nextBtn       *widget.Button
	lastBtn       *widget.Button
	status        *widget.Label

	sortButtons   map[string]*widget.Button
	textFilters   map[string]*widget.Entry
	selectFilters map[string]*widget.Select
	multiFilters  map[string]*widget.Button
	customFilters map[string]*widget.Button

	layoutKey string
	// syncing is set while widgets are updated from table state, so their
	// change handlers do not write the same state back.
	syncing bool
}

// NewDataTable creates a widget for table with DefaultConfig.
func NewDataTable[T any](table *dataview.Table[T]) *DataTable[T] {
	return NewDataTableWithConfig(table, DefaultConfig())
}

// NewDataTableWithConfig creates a widget for table.
func NewDataTableWithConfig[T any](table *dataview.Table[T], cfg Config) *DataTable[T] {
	dt := &DataTable[T]{table: table, config: cfg}
	dt.ExtendBaseWidget(dt)
	dt.build()
	table.AddListener(dt.update)
	dt.update()
	return dt
}

// Table returns the table the widget renders.
func (dt *DataTable[T]) Table() *dataview.Table[T] {
	return dt.table
}

// SetWindow sets the parent window used for dialogs.
func (dt *DataTable[T]) SetWindow(w fyne.Window) {
	dt.window = w
}

// SetRecords replaces the rendered records.
func (dt *DataTable[T]) SetRecords(records []T) {
	dt.table.SetRecords(records)
}

// CreateRenderer implements fyne.Widget.
func (dt *DataTable[T]) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(dt.content)
}

func (dt *DataTable[T]) build() {
	tc := dt.table.Config()

	dt.search = widget.NewEntry()
	dt.search.SetPlaceHolder(tc.SearchPlaceholder)
	dt.search.SetText(dt.table.GlobalFilter())
	dt.search.OnChanged = func(text string) {
		if dt.syncing {
			return
		}
		dt.table.SetGlobalFilter(text)
	}

	dt.columnsBtn = widget.NewButtonWithIcon("Columns", theme.ListIcon(), dt.showColumnMenu)
	dt.deleteBtn = widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), dt.deleteSelected)
	dt.deleteBtn.Importance = widget.DangerImportance

	actions := container.NewHBox(dt.columnsBtn, dt.deleteBtn)
	for _, item := range dt.config.ToolbarItems {
		actions.Add(item)
	}
	toolbar := container.NewBorder(nil, nil, nil, actions, dt.search)

	dt.selectAll = widget.NewCheck("", func(checked bool) {
		if dt.syncing {
			return
		}
		dt.table.ToggleAllPageRows(checked)
	})
	dt.header = container.New(dt.lineLayout())
	dt.filterBar = container.New(dt.lineLayout())
	dt.body = container.NewVBox()

	sizes := dt.table.PageSizeOptions()
	options := make([]string, len(sizes))
	for i, size := range sizes {
		options[i] = strconv.Itoa(size)
	}
	dt.pageSize = widget.NewSelect(options, func(selected string) {
		if dt.syncing {
			return
		}
		size, err := strconv.Atoi(selected)
		if err == nil {
			err = dt.table.SetPageSize(size)
		}
		if err != nil {
			fyne.LogError("Failed to set page size", err)
		}
	})
	dt.selectedLabel = widget.NewLabel("")
	dt.pageLabel = widget.NewLabel("")
	dt.firstBtn = widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), dt.table.FirstPage)
	dt.prevBtn = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), dt.table.PreviousPage)
	dt.nextBtn = widget.NewButtonWithIcon("", theme.NavigateNextIcon(), dt.table.NextPage)
	dt.lastBtn = widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), dt.table.LastPage)
	dt.pager = container.NewHBox(
		dt.selectedLabel,
		layout.NewSpacer(),
		widget.NewLabel("Rows per page"),
		dt.pageSize,
		dt.pageLabel,
		dt.firstBtn, dt.prevBtn, dt.nextBtn, dt.lastBtn,
	)

	dt.status = widget.NewLabel("")
	dt.status.TextStyle = fyne.TextStyle{Italic: true}
	dt.status.Truncation = fyne.TextTruncateEllipsis

	if !dt.config.ShowPager {
		dt.pager.Hide()
	}
	if !dt.config.ShowStatusBar {
		dt.status.Hide()
	}

	top := container.NewVBox(toolbar, dt.header, dt.filterBar, widget.NewSeparator())
	bottom := container.NewVBox(widget.NewSeparator(), dt.pager, dt.status)
	dt.content = container.NewBorder(top, bottom, nil, nil, container.NewVScroll(dt.body))
}

func (dt *DataTable[T]) lineLayout() fyne.Layout {
	return &columnLayout{first: dt.config.SelectColumnWidth, minWidth: dt.config.MinColumnWidth}
}

// update redraws the widget from the table state.
func (dt *DataTable[T]) update() {
	dt.syncing = true
	defer func() { dt.syncing = false }()

	cols := dt.table.VisibleColumns()
	if key := columnsKey(dt.table.ColumnsVersion(), cols); key != dt.layoutKey {
		dt.layoutKey = key
		dt.buildHeader(cols)
	}
	dt.syncHeader(cols)
	dt.syncToolbar()
	dt.renderBody(cols)
	dt.syncPager()
}

func columnsKey(version uint64, cols []dataview.ColumnView) string {
	ids := make([]string, len(cols))
	for i, c := range cols {
		ids[i] = c.ID
	}
	return strconv.FormatUint(version, 10) + ":" + strings.Join(ids, ",")
}

func (dt *DataTable[T]) buildHeader(cols []dataview.ColumnView) {
	dt.sortButtons = make(map[string]*widget.Button)
	dt.textFilters = make(map[string]*widget.Entry)
	dt.selectFilters = make(map[string]*widget.Select)
	dt.multiFilters = make(map[string]*widget.Button)
	dt.customFilters = make(map[string]*widget.Button)

	header := make([]fyne.CanvasObject, 0, len(cols))
	filters := make([]fyne.CanvasObject, 0, len(cols))
	filterable := false
	for _, c := range cols {
		if c.Selection {
			header = append(header, dt.selectAll)
			filters = append(filters, layout.NewSpacer())
			continue
		}
		header = append(header, dt.headerCell(c))
		filters = append(filters, dt.filterCell(c))
		filterable = filterable || c.CanFilter
	}

	dt.header.Objects = header
	dt.header.Refresh()
	dt.filterBar.Objects = filters
	if dt.config.ShowFilterBar && filterable {
		dt.filterBar.Show()
	} else {
		dt.filterBar.Hide()
	}
	dt.filterBar.Refresh()
}

func (dt *DataTable[T]) headerCell(c dataview.ColumnView) fyne.CanvasObject {
	if !c.CanSort {
		return widget.NewLabelWithStyle(c.Header, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	}
	id := c.ID
	b := widget.NewButton(c.Header, func() {
		if err := dt.table.ToggleSort(id); err != nil {
			fyne.LogError("Failed to sort by "+id, err)
		}
	})
	b.Importance = widget.LowImportance
	b.Alignment = widget.ButtonAlignLeading
	b.IconPlacement = widget.ButtonIconTrailingText
	dt.sortButtons[id] = b
	return b
}

func (dt *DataTable[T]) syncHeader(cols []dataview.ColumnView) {
	all := dt.table.IsAllPageRowsSelected()
	dt.selectAll.Checked = all
	dt.selectAll.Partial = !all && dt.table.IsSomePageRowsSelected()
	dt.selectAll.Refresh()

	for _, c := range cols {
		if b, ok := dt.sortButtons[c.ID]; ok {
			b.SetIcon(sortIcon(c.Sort))
		}
		dt.syncFilter(c)
	}
}

func sortIcon(dir datatable.SortDirection) fyne.Resource {
	switch dir {
	case datatable.SortAscending:
		return theme.MenuDropUpIcon()
	case datatable.SortDescending:
		return theme.MenuDropDownIcon()
	}
	return nil
}

func (dt *DataTable[T]) syncToolbar() {
	if text := dt.table.GlobalFilter(); dt.search.Text != text {
		dt.search.SetText(text)
	}

	tc := dt.table.Config()
	if tc.ShowColumnToggle && len(dt.table.HideableColumns()) > 0 {
		dt.columnsBtn.Show()
	} else {
		dt.columnsBtn.Hide()
	}

	if !dt.table.CanBulkDelete() {
		dt.deleteBtn.Hide()
		return
	}
	dt.deleteBtn.Show()
	n := dt.table.SelectedCount()
	if n == 0 {
		dt.deleteBtn.SetText("Delete")
		dt.deleteBtn.Disable()
		return
	}
	dt.deleteBtn.SetText(fmt.Sprintf("Delete (%d)", n))
	dt.deleteBtn.Enable()
}

func (dt *DataTable[T]) renderBody(cols []dataview.ColumnView) {
	rows := dt.table.PageRows()
	objects := make([]fyne.CanvasObject, 0, len(rows)+1)
	if len(rows) == 0 {
		objects = append(objects, widget.NewLabelWithStyle(dt.config.EmptyText, fyne.TextAlignCenter, fyne.TextStyle{Italic: true}))
	}
	for _, row := range rows {
		objects = append(objects, dt.renderRow(row, cols))
		if !dt.table.IsExpanded(row.ID) {
			continue
		}
		if detail, ok := dt.table.Detail(row.ID); ok {
			if obj := detailObject(detail); obj != nil {
				objects = append(objects, container.NewPadded(obj))
			}
		}
	}
	dt.body.Objects = objects
	dt.body.Refresh()
}

func (dt *DataTable[T]) renderRow(row *dataview.Row[T], cols []dataview.ColumnView) fyne.CanvasObject {
	id := row.ID
	cells := make([]fyne.CanvasObject, 0, len(cols))
	for _, c := range cols {
		if c.Selection {
			check := widget.NewCheck("", nil)
			check.Checked = dt.table.IsRowSelected(id)
			check.OnChanged = func(checked bool) {
				if dt.syncing {
					return
				}
				dt.table.SetRowSelected(id, checked)
			}
			cells = append(cells, check)
			continue
		}
		label := widget.NewLabel(dt.table.CellText(row, c.ID))
		label.Truncation = fyne.TextTruncateEllipsis
		if c.Type.IsNumeric() {
			label.Alignment = fyne.TextAlignTrailing
		}
		cells = append(cells, label)
	}
	line := container.New(dt.lineLayout(), cells...)
	return newTappableRow(line,
		func() { dt.table.ClickRow(id) },
		func(e *fyne.PointEvent) { dt.showRowMenu(row, cols, e) },
	)
}

// detailObject turns what a detail renderer returned into something to draw.
func detailObject(detail any) fyne.CanvasObject {
	switch d := detail.(type) {
	case nil:
		return nil
	case fyne.CanvasObject:
		return d
	case string:
		l := widget.NewLabel(d)
		l.Wrapping = fyne.TextWrapWord
		return l
	default:
		l := widget.NewLabel(fmt.Sprint(d))
		l.Wrapping = fyne.TextWrapWord
		return l
	}
}

func (dt *DataTable[T]) syncPager() {
	p := dt.table.Pagination()
	dt.pageSize.SetSelected(strconv.Itoa(p.PageSize))
	dt.pageLabel.SetText(fmt.Sprintf("Page %d of %d", p.PageIndex+1, dt.table.PageCount()))
	dt.selectedLabel.SetText(fmt.Sprintf("%d of %d row(s) selected.", dt.table.SelectedCount(), dt.table.RowCount()))

	setEnabled(dt.firstBtn, dt.table.CanPreviousPage())
	setEnabled(dt.prevBtn, dt.table.CanPreviousPage())
	setEnabled(dt.nextBtn, dt.table.CanNextPage())
	setEnabled(dt.lastBtn, dt.table.CanNextPage())

	dt.status.SetText(dt.table.StatusText())
}

func setEnabled(w fyne.Disableable, enabled bool) {
	if enabled {
		w.Enable()
	} else {
		w.Disable()
	}
}

func (dt *DataTable[T]) canvas() fyne.Canvas {
	app := fyne.CurrentApp()
	if app == nil {
		return nil
	}
	return app.Driver().CanvasForObject(dt)
}

func (dt *DataTable[T]) columnMenu() *fyne.Menu {
	var items []*fyne.MenuItem
	for _, c := range dt.table.HideableColumns() {
		id := c.ID
		label := c.Header
		if label == "" {
			label = id
		}
		item := fyne.NewMenuItem(label, func() {
			if err := dt.table.ToggleColumn(id); err != nil {
				fyne.LogError("Failed to toggle column "+id, err)
			}
		})
		item.Checked = c.Visible
		items = append(items, item)
	}
	items = append(items, fyne.NewMenuItemSeparator(), fyne.NewMenuItem("Show all", dt.table.ShowAllColumns))
	return fyne.NewMenu("Columns", items...)
}

func (dt *DataTable[T]) showColumnMenu() {
	c := dt.canvas()
	if c == nil {
		return
	}
	widget.ShowPopUpMenuAtRelativePosition(dt.columnMenu(), c, fyne.NewPos(0, dt.columnsBtn.Size().Height), dt.columnsBtn)
}

func (dt *DataTable[T]) deleteSelected() {
	n := dt.table.SelectedCount()
	if n == 0 {
		return
	}
	if !dt.config.ConfirmDelete || dt.window == nil {
		dt.table.DeleteSelected()
		return
	}
	dialog.ShowConfirm("Delete rows", fmt.Sprintf("Delete %d selected row(s)?", n), func(ok bool) {
		if ok {
			dt.table.DeleteSelected()
		}
	}, dt.window)
}

func (dt *DataTable[T]) rowMenu(row *dataview.Row[T], cols []dataview.ColumnView) *fyne.Menu {
	id := row.ID
	copyItem := fyne.NewMenuItem("Copy row", func() {
		if app := fyne.CurrentApp(); app != nil {
			app.Clipboard().SetContent(dt.rowText(row, cols))
		}
	})
	copyItem.Icon = theme.ContentCopyIcon()

	selectLabel := "Select"
	if dt.table.IsRowSelected(id) {
		selectLabel = "Deselect"
	}
	items := []*fyne.MenuItem{copyItem, fyne.NewMenuItem(selectLabel, func() { dt.table.ToggleRow(id) })}
	if dt.table.CanExpand() {
		expandLabel := "Show details"
		if dt.table.IsExpanded(id) {
			expandLabel = "Hide details"
		}
		items = append(items, fyne.NewMenuItem(expandLabel, func() { dt.table.ToggleExpanded(id) }))
	}
	return fyne.NewMenu("", items...)
}

func (dt *DataTable[T]) showRowMenu(row *dataview.Row[T], cols []dataview.ColumnView, e *fyne.PointEvent) {
	c := dt.canvas()
	if c == nil {
		return
	}
	widget.ShowPopUpMenuAtPosition(dt.rowMenu(row, cols), c, e.AbsolutePosition)
}

// rowText joins the rendered cells of a row with tabs.
func (dt *DataTable[T]) rowText(row *dataview.Row[T], cols []dataview.ColumnView) string {
	cells := make([]string, 0, len(cols))
	for _, c := range cols {
		if c.Selection {
			continue
		}
		cells = append(cells, dt.table.CellText(row, c.ID))
	}
	return strings.Join(cells, "\t")
}
