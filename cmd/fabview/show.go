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

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	arrowadapter "github.com/magpierre/fabview/adapters/arrow"
)

const appID = "io.github.magpierre.fabview"

var showCmd = &cobra.Command{
	Use:   "show [source]",
	Short: "Open a source in a window",
	Long: `
Open a source in a window with search, column filters, sorting, paging,
row selection, inline row details, bulk delete and export.

Examples:
  fabview show
  fabview show rfq.parquet --sort -amount --multiselect status
  fabview show config.share#procurement.sourcing.rfq --limit 5000`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		th, err := newTheme(viper.GetString("theme"))
		if err != nil {
			return err
		}

		v, err := openView(cmd.Context(), sourceArg(args), loadViewOptions(viper.GetViper()))
		if err != nil {
			return err
		}
		defer v.Close()

		a := app.NewWithID(appID)
		a.Settings().SetTheme(th)
		w := a.NewWindow("fabview - " + v.Title())
		w.SetContent(v.Widget(w))
		w.Resize(fyne.NewSize(1100, 700))
		w.ShowAndRun()
		return nil
	},
}

func init() {
	showCmd.Flags().String("theme", "system", "color theme: system, light or dark")
	cobra.CheckErr(viper.BindPFlag("theme", showCmd.Flags().Lookup("theme")))
}

// detailCard renders the inline detail of a row as a form of field values.
func detailCard(fields [][2]string, collapse func()) fyne.CanvasObject {
	form := widget.NewForm()
	for _, f := range fields {
		value := widget.NewLabel(f[1])
		value.Wrapping = fyne.TextWrapWord
		form.Append(f[0], value)
	}
	closeBtn := widget.NewButtonWithIcon("Close", theme.CancelIcon(), collapse)
	closeBtn.Importance = widget.LowImportance
	return widget.NewCard("", "", container.NewBorder(nil, nil, nil, container.NewVBox(closeBtn), form))
}

// exportButton saves the current view to a file picked in a save dialog.
// The format follows the file extension.
func exportButton(w fyne.Window, title string, export func(path string) (int, error)) *widget.Button {
	return widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), func() {
		save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if writer == nil {
				return
			}
			path := writer.URI().Path()
			// Export creates the file itself.
			writer.Close()

			n, err := export(path)
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export", fmt.Sprintf("Exported %d rows to %s", n, path), w)
		}, w)
		save.SetFileName(arrowadapter.CleanFilename(title) + arrowadapter.FormatParquet.Ext())
		save.SetFilter(storage.NewExtensionFileFilter([]string{".parquet", ".csv", ".json"}))
		save.Resize(fyne.NewSize(800, 600))
		save.Show()
	})
}
