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
	"image/color"
	"strings"
	"unicode"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

type tokenKind int

const (
	tokenPlain tokenKind = iota
	tokenKeyword
	tokenString
	tokenComment
	tokenNumber
	tokenOperator
	tokenBuiltin
)

var tokenStyles = map[tokenKind]widget.TextGridStyle{
	tokenKeyword: &widget.CustomTextGridStyle{
		FGColor:   color.NRGBA{R: 0xd8, G: 0x1b, B: 0x60, A: 0xff},
		TextStyle: fyne.TextStyle{Bold: true},
	},
	tokenString:   &widget.CustomTextGridStyle{FGColor: color.NRGBA{R: 0x2e, G: 0x7d, B: 0x32, A: 0xff}},
	tokenComment:  &widget.CustomTextGridStyle{FGColor: color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}, TextStyle: fyne.TextStyle{Italic: true}},
	tokenNumber:   &widget.CustomTextGridStyle{FGColor: color.NRGBA{R: 0x15, G: 0x65, B: 0xc0, A: 0xff}},
	tokenOperator: &widget.CustomTextGridStyle{FGColor: color.NRGBA{R: 0x78, G: 0x78, B: 0x78, A: 0xff}},
	tokenBuiltin: &widget.CustomTextGridStyle{
		FGColor:   color.NRGBA{R: 0x00, G: 0x83, B: 0x8f, A: 0xff},
		TextStyle: fyne.TextStyle{Bold: true},
	},
}

var keywords = map[string]bool{
	"break": true, "case": true, "continue": true, "default": true,
	"else": true, "for": true, "func": true, "if": true, "range": true,
	"return": true, "switch": true, "var": true,
}

// builtins are the predeclared identifiers plus the predicate helpers.
var builtins = map[string]bool{
	"bool": true, "float64": true, "int": true, "int64": true, "string": true,
	"nil": true, "true": true, "false": true, "len": true,
	"num": true, "str": true, "value": true, "filter": true,
}

// scanLine returns the token kind of every rune of line.
func scanLine(line string) []tokenKind {
	runes := []rune(line)
	kinds := make([]tokenKind, len(runes))
	mark := func(from, to int, k tokenKind) {
		for i := from; i < to; i++ {
			kinds[i] = k
		}
	}

	for pos := 0; pos < len(runes); {
		r := runes[pos]
		switch {
		case unicode.IsSpace(r):
			pos++
		case r == '/' && pos+1 < len(runes) && runes[pos+1] == '/':
			mark(pos, len(runes), tokenComment)
			pos = len(runes)
		case r == '"' || r == '`':
			end := scanString(runes, pos)
			mark(pos, end, tokenString)
			pos = end
		case unicode.IsDigit(r):
			end := pos
			for end < len(runes) && (unicode.IsDigit(runes[end]) || strings.ContainsRune(".eExX_", runes[end])) {
				end++
			}
			mark(pos, end, tokenNumber)
			pos = end
		case unicode.IsLetter(r) || r == '_':
			end := pos
			for end < len(runes) && (unicode.IsLetter(runes[end]) || unicode.IsDigit(runes[end]) || runes[end] == '_') {
				end++
			}
			switch word := string(runes[pos:end]); {
			case keywords[word]:
				mark(pos, end, tokenKeyword)
			case builtins[word]:
				mark(pos, end, tokenBuiltin)
			}
			pos = end
		default:
			if strings.ContainsRune("+-*/%&|^<>=!:;,.()[]{}~", r) {
				kinds[pos] = tokenOperator
			}
			pos++
		}
	}
	return kinds
}

// scanString returns the position after the string literal opened at start.
// Unclosed literals run to the end of the line.
func scanString(runes []rune, start int) int {
	quote := runes[start]
	for pos := start + 1; pos < len(runes); pos++ {
		if quote == '"' && runes[pos] == '\\' {
			pos++
			continue
		}
		if runes[pos] == quote {
			return pos + 1
		}
	}
	return len(runes)
}

func highlightRow(line string) widget.TextGridRow {
	runes := []rune(line)
	kinds := scanLine(line)
	row := widget.TextGridRow{Cells: make([]widget.TextGridCell, len(runes))}
	for i, r := range runes {
		row.Cells[i] = widget.TextGridCell{Rune: r, Style: tokenStyles[kinds[i]]}
	}
	return row
}

// ExpressionEditor edits a filter expression above a syntax highlighted
// preview and reports whether the expression is valid.
type ExpressionEditor struct {
	widget.BaseWidget

	// OnChanged is called with the text and its validation result.
	OnChanged func(text string, err error)

	validate func(string) error
	entry    *widget.Entry
	preview  *widget.TextGrid
	message  *widget.Label
	err      error
}

// NewExpressionEditor creates an editor. validate may be nil.
func NewExpressionEditor(validate func(string) error) *ExpressionEditor {
	e := &ExpressionEditor{
		validate: validate,
		entry:    widget.NewMultiLineEntry(),
		preview:  widget.NewTextGrid(),
		message:  widget.NewLabel(""),
	}
	e.entry.SetPlaceHolder("num(value) > 1000")
	e.entry.SetMinRowsVisible(3)
	e.entry.TextStyle = fyne.TextStyle{Monospace: true}
	e.entry.OnChanged = e.changed
	e.message.Wrapping = fyne.TextWrapWord
	e.message.Importance = widget.DangerImportance
	e.ExtendBaseWidget(e)
	return e
}

// Text returns the expression as entered.
func (e *ExpressionEditor) Text() string { return e.entry.Text }

// Err is the validation result of the current text.
func (e *ExpressionEditor) Err() error { return e.err }

// SetText replaces the expression and validates it.
func (e *ExpressionEditor) SetText(text string) {
	e.entry.OnChanged = nil
	e.entry.SetText(text)
	e.entry.OnChanged = e.changed
	e.changed(text)
}

func (e *ExpressionEditor) changed(text string) {
	lines := strings.Split(text, "\n")
	rows := make([]widget.TextGridRow, len(lines))
	for i, line := range lines {
		rows[i] = highlightRow(line)
	}
	e.preview.Rows = rows
	e.preview.Refresh()

	e.err = nil
	if e.validate != nil && strings.TrimSpace(text) != "" {
		e.err = e.validate(text)
	}
	if e.err != nil {
		e.message.SetText(e.err.Error())
	} else {
		e.message.SetText("")
	}

	if e.OnChanged != nil {
		e.OnChanged(text, e.err)
	}
}

func (e *ExpressionEditor) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(theme.Color(theme.ColorNameInputBackground))
	bg.CornerRadius = theme.InputRadiusSize()
	preview := container.NewStack(bg, container.NewPadded(e.preview))
	return widget.NewSimpleRenderer(container.NewVBox(e.entry, preview, e.message))
}

// showExpression edits a custom column filter in a popup. Apply is only
// enabled while the expression validates.
func (dt *DataTable[T]) showExpression(id string) {
	c, err := dt.table.Column(id)
	if err != nil {
		fyne.LogError("Failed to open filter", err)
		return
	}
	cv := dt.canvas()
	b := dt.customFilters[id]
	if cv == nil || b == nil {
		return
	}

	editor := NewExpressionEditor(dt.config.ValidateExpression)
	var pop *widget.PopUp
	apply := widget.NewButtonWithIcon("Apply", theme.ConfirmIcon(), func() {
		dt.setFilter(id, strings.TrimSpace(editor.Text()))
		pop.Hide()
	})
	apply.Importance = widget.HighImportance
	clearBtn := widget.NewButton("Clear", func() {
		dt.setFilter(id, nil)
		pop.Hide()
	})
	editor.OnChanged = func(_ string, err error) {
		if err != nil {
			apply.Disable()
		} else {
			apply.Enable()
		}
	}
	editor.SetText(filterString(c.Filter))

	content := container.NewVBox(
		widget.NewLabelWithStyle(c.Header, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		editor,
		container.NewHBox(clearBtn, apply),
	)
	pop = widget.NewPopUp(content, cv)
	pop.Resize(fyne.NewSize(max(360, content.MinSize().Width), content.MinSize().Height))
	pop.ShowAtRelativePosition(fyne.NewPos(0, b.Size().Height), b)
}
