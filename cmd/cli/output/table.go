package output

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderTable prints rows as an ASCII table on stdout. An empty result set
// prints a short notice instead of a bare header.
func RenderTable(headers []string, rows [][]interface{}) {
	if len(rows) == 0 {
		fmt.Println("no results")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, 0, len(headers))
	for _, h := range headers {
		headerRow = append(headerRow, h)
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}

	t.Render()
}
