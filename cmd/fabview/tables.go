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
	"io"
	"os"

	"github.com/fatih/color"
	delta_sharing "github.com/magpierre/go_delta_sharing_client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/magpierre/fabview/adapters/deltasharing"
)

var tablesCmd = &cobra.Command{
	Use:   "tables <profile>",
	Short: "List the tables a Delta Sharing profile can read",
	Long: `
List every table a Delta Sharing profile can read, as table urls that
show, print and export accept.

Example:
  fabview tables config.share`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read profile: %w", err)
		}
		if !deltasharing.IsProfile(profile) {
			return fmt.Errorf("%s is not a Delta Sharing profile", args[0])
		}

		tables, err := deltasharing.ListTables(cmd.Context(), string(profile), viper.GetDuration("timeout"))
		if err != nil {
			return err
		}
		printTables(cmd.OutOrStdout(), args[0], tables)
		return nil
	},
}

func printTables(w io.Writer, profileFile string, tables []delta_sharing.Table) {
	if len(tables) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No tables shared with this profile")
		return
	}
	share := color.New(color.FgCyan)
	for _, t := range tables {
		fmt.Fprint(w, profileFile+"#")
		share.Fprint(w, t.Share)
		fmt.Fprintf(w, ".%s.%s\n", t.Schema, t.Name)
	}
	color.New(color.FgHiBlack).Fprintf(w, "%d table(s)\n", len(tables))
}
