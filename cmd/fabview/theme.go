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
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

type palette map[fyne.ThemeColorName]color.Color

// Material blue on light gray, and its dark counterpart.
var (
	lightPalette = palette{
		theme.ColorNameBackground:          color.NRGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 0xff},
		theme.ColorNameButton:              color.NRGBA{R: 0x21, G: 0x96, B: 0xf3, A: 0xff},
		theme.ColorNamePrimary:             color.NRGBA{R: 0x21, G: 0x96, B: 0xf3, A: 0xff},
		theme.ColorNameHover:               color.NRGBA{R: 0x64, G: 0xb5, B: 0xf6, A: 0xff},
		theme.ColorNameFocus:               color.NRGBA{R: 0x19, G: 0x76, B: 0xd2, A: 0xff},
		theme.ColorNameForeground:          color.NRGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xff},
		theme.ColorNameInputBackground:     color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		theme.ColorNameSelection:           color.NRGBA{R: 0xbb, G: 0xde, B: 0xfb, A: 0xff},
		theme.ColorNameForegroundOnPrimary: color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff},
		theme.ColorNameError:               color.NRGBA{R: 0xd3, G: 0x2f, B: 0x2f, A: 0xff},
	}
	darkPalette = palette{
		theme.ColorNameBackground:          color.NRGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff},
		theme.ColorNameButton:              color.NRGBA{R: 0x42, G: 0xa5, B: 0xf5, A: 0xff},
		theme.ColorNamePrimary:             color.NRGBA{R: 0x42, G: 0xa5, B: 0xf5, A: 0xff},
		theme.ColorNameHover:               color.NRGBA{R: 0x64, G: 0xb5, B: 0xf6, A: 0xff},
		theme.ColorNameFocus:               color.NRGBA{R: 0x90, G: 0xca, B: 0xf9, A: 0xff},
		theme.ColorNameForeground:          color.NRGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff},
		theme.ColorNameInputBackground:     color.NRGBA{R: 0x2d, G: 0x2d, B: 0x2d, A: 0xff},
		theme.ColorNameSelection:           color.NRGBA{R: 0x1e, G: 0x88, B: 0xe5, A: 0xff},
		theme.ColorNameForegroundOnPrimary: color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff},
		theme.ColorNameError:               color.NRGBA{R: 0xef, G: 0x53, B: 0x50, A: 0xff},
	}
)

// fabviewTheme applies the palettes over the default theme. When a variant is
// forced the system variant is ignored.
type fabviewTheme struct {
	forced  bool
	variant fyne.ThemeVariant
}

func newTheme(name string) (fyne.Theme, error) {
	switch name {
	case "", "system":
		return &fabviewTheme{}, nil
	case "light":
		return &fabviewTheme{forced: true, variant: theme.VariantLight}, nil
	case "dark":
		return &fabviewTheme{forced: true, variant: theme.VariantDark}, nil
	}
	return nil, fmt.Errorf("unknown theme %q, want system, light or dark", name)
}

func (t *fabviewTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if t.forced {
		variant = t.variant
	}
	p := lightPalette
	if variant == theme.VariantDark {
		p = darkPalette
	}
	if c, ok := p[name]; ok {
		return c
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (t *fabviewTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *fabviewTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

// Size keeps table lines compact.
func (t *fabviewTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 6
	case theme.SizeNameInlineIcon:
		return 20
	case theme.SizeNameScrollBar:
		return 12
	case theme.SizeNameSeparatorThickness:
		return 1
	}
	return theme.DefaultTheme().Size(name)
}
