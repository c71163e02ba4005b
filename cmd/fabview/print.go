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
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	arrowadapter "github.com/magpierre/fabview/adapters/arrow"
	"github.com/magpierre/fabview/datatable"
	"github.com/magpierre/fabview/dataview"
)

var printCmd = &cobra.Command{
	Use:   "print [source]",
	Short: "Print one page of a source",
	Long: `
Print one page of the filtered and sorted view.
Output formats: table (default), csv, json, yaml

Examples:
  fabview print --search steel
  fabview print --query --search "amount > 5000 AND status = APPROVED" --sort -amount
  fabview print rfq.csv --page 2 --output json
  fabview print --where "num(value) > 8000" --where-column amount`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openView(cmd.Context(), sourceArg(args), loadViewOptions(viper.GetViper()))
		if err != nil {
			return err
		}
		defer v.Close()

		page, _ := cmd.Flags().GetInt("page")
		output, _ := cmd.Flags().GetString("output")
		v.SetPage(page)
		return v.Print(cmd.OutOrStdout(), output)
	},
}

func init() {
	printCmd.Flags().Int("page", 1, "page to print, 1-based")
	printCmd.Flags().StringP("output", "o", "table", "output format: table, csv, json or yaml")
}

// printPage writes the current page of t.
func printPage[T any](w io.Writer, t *dataview.Table[T], output string) error {
	switch strings.ToLower(output) {
	case "", "table":
		printTable(w, t)
		return nil
	case "yaml", "yml":
		return printYAML(w, t)
	}

	format, err := arrowadapter.ParseFormat(output)
	if err != nil {
		return err
	}
	if format == arrowadapter.FormatParquet {
		return fmt.Errorf("parquet is not a terminal format, use fabview export")
	}
	table, err := arrowadapter.FromDataSource(t.PageSource(), nil)
	if errors.Is(err, datatable.ErrEmptyData) {
		return nil
	}
	if err != nil {
		return err
	}
	defer table.Release()
	return arrowadapter.Write(table, format, w)
}

func dataColumns[T any](t *dataview.Table[T]) []dataview.ColumnView {
	var cols []dataview.ColumnView
	for _, c := range t.VisibleColumns() {
		if !c.Selection {
			cols = append(cols, c)
		}
	}
	return cols
}

func printTable[T any](w io.Writer, t *dataview.Table[T]) {
	cols := dataColumns(t)
	rows := t.PageRows()

	widths := make([]int, len(cols))
	cells := make([][]string, len(rows))
	for i, c := range cols {
		widths[i] = utf8.RuneCountInString(headerText(c))
	}
	for r, row := range rows {
		cells[r] = make([]string, len(cols))
		for i, c := range cols {
			text := t.CellText(row, c.ID)
			cells[r][i] = text
			widths[i] = max(widths[i], utf8.RuneCountInString(text))
		}
	}

	header := color.New(color.FgCyan, color.Bold)
	for i, c := range cols {
		header.Fprint(w, pad(headerText(c), widths[i], c.Type.IsNumeric()))
		if i < len(cols)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)

	total := 0
	for _, width := range widths {
		total += width
	}
	fmt.Fprintln(w, strings.Repeat("─", total+2*max(len(cols)-1, 0)))

	if len(rows) == 0 {
		color.New(color.Italic).Fprintln(w, "No results.")
	}
	for _, line := range cells {
		for i, c := range cols {
			fmt.Fprint(w, pad(line[i], widths[i], c.Type.IsNumeric()))
			if i < len(cols)-1 {
				fmt.Fprint(w, "  ")
			}
		}
		fmt.Fprintln(w)
	}

	color.New(color.FgHiBlack).Fprintln(w, t.StatusText())
}

// headerText is the header with the column's sort arrow.
func headerText(c dataview.ColumnView) string {
	switch c.Sort {
	case datatable.SortAscending:
		return c.Header + " ↑"
	case datatable.SortDescending:
		return c.Header + " ↓"
	}
	return c.Header
}

func pad(s string, width int, right bool) string {
	if right {
		return fmt.Sprintf("%*s", width, s)
	}
	return fmt.Sprintf("%-*s", width, s)
}

// printYAML writes the page as a list of mappings in column order.
func printYAML[T any](w io.Writer, t *dataview.Table[T]) error {
	cols := dataColumns(t)
	doc := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range t.PageRows() {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, c := range cols {
			v, err := t.Value(row, c.ID)
			if err != nil {
				return err
			}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.ID},
				yamlValue(v))
		}
		doc.Content = append(doc.Content, m)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func yamlValue(v datatable.Value) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Formatted}
	switch {
	case v.IsNull:
		n.Tag, n.Value = "!!null", "null"
	case v.Type == datatable.TypeInt:
		n.Tag = "!!int"
	case v.Type == datatable.TypeFloat:
		n.Tag = "!!float"
	case v.Type == datatable.TypeBool:
		n.Tag = "!!bool"
	}
	return n
}
