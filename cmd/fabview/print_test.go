package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	delta_sharing "github.com/magpierre/go_delta_sharing_client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func noColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestPrintTable(t *testing.T) {
	noColor(t)
	v := openSample(t, viewOptions{PageSize: 10, Sort: "amount", Columns: []string{"status", "amount"}})

	var buf bytes.Buffer
	require.NoError(t, v.Print(&buf, "table"))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	require.Len(t, lines, 13, "header, rule, ten rows and the status line")
	assert.Equal(t, []string{"RFQ", "Status", "Amount", "↑"}, strings.Fields(lines[0]))
	assert.True(t, strings.HasPrefix(lines[1], "───"))
	assert.Equal(t, "RFQ-2025-001", strings.Fields(lines[2])[0])
	assert.True(t, strings.HasSuffix(lines[2], "$500.00"), "numbers are right aligned")
	assert.Equal(t, v.Status(), lines[12])
}

func TestPrintTableEmpty(t *testing.T) {
	noColor(t)
	v := openSample(t, viewOptions{Search: "no such rfq"})

	var buf bytes.Buffer
	require.NoError(t, v.Print(&buf, ""))
	assert.Contains(t, buf.String(), "No results.")
	assert.Contains(t, buf.String(), "Showing 0 of 42 rows")
}

func TestPrintJSONAndCSV(t *testing.T) {
	v := openSample(t, viewOptions{PageSize: 10, Columns: []string{"number", "status"}})
	v.SetPage(2)

	var buf bytes.Buffer
	require.NoError(t, v.Print(&buf, "json"))
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 10)
	assert.Equal(t, "RFQ-2025-011", rows[0]["RFQ"])

	buf.Reset()
	require.NoError(t, v.Print(&buf, "csv"))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "RFQ,Status", lines[0])
	assert.Len(t, lines, 11)
}

func TestPrintYAML(t *testing.T) {
	v := openSample(t, viewOptions{PageSize: 10, Columns: []string{"number", "amount", "due"}})

	var buf bytes.Buffer
	require.NoError(t, v.Print(&buf, "yaml"))
	var rows []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 10)
	assert.Equal(t, "RFQ-2025-001", rows[0]["number"])
	assert.Equal(t, 500.0, rows[0]["amount"])
	assert.Equal(t, "2025-01-06", rows[0]["due"])
	assert.True(t, strings.HasPrefix(buf.String(), "- number: RFQ-2025-001\n"), "keys keep column order")
}

func TestPrintFormatErrors(t *testing.T) {
	v := openSample(t, viewOptions{})
	var buf bytes.Buffer
	assert.Error(t, v.Print(&buf, "xml"))
	assert.ErrorContains(t, v.Print(&buf, "parquet"), "fabview export")

	empty := openSample(t, viewOptions{Search: "no such rfq"})
	require.NoError(t, empty.Print(&buf, "csv"))
	assert.Empty(t, buf.String())
}

func TestPrintTables(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer
	printTables(&buf, "config.share", []delta_sharing.Table{
		{Share: "procurement", Schema: "sourcing", Name: "rfq"},
		{Share: "procurement", Schema: "sourcing", Name: "suppliers"},
	})
	assert.Equal(t,
		"config.share#procurement.sourcing.rfq\nconfig.share#procurement.sourcing.suppliers\n2 table(s)\n",
		buf.String())

	buf.Reset()
	printTables(&buf, "config.share", nil)
	assert.Equal(t, "No tables shared with this profile\n", buf.String())
}

func TestPrintCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"print", "--output", "json", "--page-size", "20", "--columns", "number,buyer"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, Execute())
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	assert.Len(t, rows, 20)
	assert.Len(t, rows[0], 2)
}
