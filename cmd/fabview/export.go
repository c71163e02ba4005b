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
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exportCmd = &cobra.Command{
	Use:   "export <source> <output>",
	Short: "Export the filtered and sorted view to a file",
	Long: `
Export the filtered and sorted view, all pages and visible columns, to a file.
The format follows the output extension: .parquet, .csv or .json

Examples:
  fabview export sample approved.parquet --query --search "status = APPROVED"
  fabview export config.share#procurement.sourcing.rfq rfq.csv --columns number,amount`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := openView(cmd.Context(), sourceArg(args[:1]), loadViewOptions(viper.GetViper()))
		if err != nil {
			return err
		}
		defer v.Close()

		n, err := v.Export(args[1])
		if err != nil {
			return err
		}
		color.Green("✅ Exported %d rows to %s", n, args[1])
		return nil
	},
}
