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
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/magpierre/fabview/adapters/deltasharing"
)

var (
	cfgFile string
	Version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "fabview",
	Short: "Browse tabular data in a searchable, sortable, paginated table",
	Long: `
fabview shows records in a table with global search, per-column filters,
sorting, pagination, row selection and inline row details.

Sources:
- sample                         built-in RFQ sample records (default)
- data.csv, data.parquet, data.json
- profile.share#share.schema.table   a Delta Sharing table

Every flag can also be set in ./fabview.yaml or as FABVIEW_<FLAG>,
e.g. FABVIEW_PAGE_SIZE=20.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./fabview.yaml)")
	pf.Int("page-size", 10, "rows per page")
	pf.String("search", "", "initial global search")
	pf.Bool("query", false, `treat the search as a query, e.g. "amount > 1000 AND status = APPROVED"`)
	pf.String("sort", "", "sort columns in priority order, comma separated, prefix with - for descending")
	pf.StringSlice("columns", nil, "visible columns (default all)")
	pf.StringSlice("multiselect", nil, "columns filtered by a checklist of their distinct values")
	pf.String("where", "", `Go predicate over value and filter, e.g. "num(value) > 1000"`)
	pf.String("where-column", "", "column the --where predicate filters")
	pf.Duration("timeout", deltasharing.DefaultTimeout, "Delta Sharing request timeout")
	pf.Int64("limit", 0, "read at most this many rows")
	pf.String("file-id", "", "Delta Sharing file id (default is the first file)")

	cobra.CheckErr(viper.BindPFlags(pf))

	rootCmd.AddCommand(showCmd, printCmd, exportCmd, tablesCmd)
}

func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("fabview")
	}

	viper.SetEnvPrefix("FABVIEW")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			color.Yellow("⚠️  Could not read config file: %v", err)
		}
	}
}

// sourceArg returns the source named on the command line, the sample by default.
func sourceArg(args []string) string {
	if len(args) == 0 || args[0] == "" {
		return sampleSource
	}
	return args[0]
}
