package output

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

// maxRowWidth keeps long todo descriptions from wrapping the whole table;
// go-pretty truncates cells beyond this total line width.
const maxRowWidth = 120

// RenderTable prints headers and rows as a rounded unicode table on stdout.
func RenderTable(headers []string, rows [][]interface{}) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetAllowedRowLength(maxRowWidth)

	header := make(table.Row, 0, len(headers))
	for _, h := range headers {
		header = append(header, h)
	}
	t.AppendHeader(header)

	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}

	t.Render()
}
