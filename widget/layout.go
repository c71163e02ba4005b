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
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// columnLayout lays out one table line: a fixed width selection cell followed
// by data cells sharing the remaining width. Header, filter and body lines use
// the same layout so their cells line up.
type columnLayout struct {
	first    float32
	minWidth float32
}

func (l *columnLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	var w, h float32
	for i, o := range objects {
		s := o.MinSize()
		if i == 0 {
			w += l.first
		} else {
			w += max(s.Width, l.minWidth)
		}
		h = max(h, s.Height)
	}
	if len(objects) > 1 {
		w += theme.Padding() * float32(len(objects)-1)
	}
	return fyne.NewSize(w, h)
}

func (l *columnLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) == 0 {
		return
	}
	pad := theme.Padding()
	rest := size.Width - l.first - pad*float32(len(objects)-1)
	each := rest
	if len(objects) > 1 {
		each = rest / float32(len(objects)-1)
	}

	x := float32(0)
	for i, o := range objects {
		w := each
		if i == 0 {
			w = l.first
		}
		o.Move(fyne.NewPos(x, 0))
		o.Resize(fyne.NewSize(w, size.Height))
		x += w + pad
	}
}

// tappableRow makes a body line clickable. Secondary taps open a context menu.
type tappableRow struct {
	widget.BaseWidget
	content        fyne.CanvasObject
	onTap          func()
	onTapSecondary func(*fyne.PointEvent)
}

func newTappableRow(content fyne.CanvasObject, onTap func(), onTapSecondary func(*fyne.PointEvent)) *tappableRow {
	r := &tappableRow{content: content, onTap: onTap, onTapSecondary: onTapSecondary}
	r.ExtendBaseWidget(r)
	return r
}

func (r *tappableRow) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(r.content)
}

// Tapped handles regular left-click
func (r *tappableRow) Tapped(*fyne.PointEvent) {
	if r.onTap != nil {
		r.onTap()
	}
}

// TappedSecondary handles right-click
func (r *tappableRow) TappedSecondary(e *fyne.PointEvent) {
	if r.onTapSecondary != nil {
		r.onTapSecondary(e)
	}
}
