package commands

import (
	"encoding/json"
	"os"

	"synergia-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
)

func printJSON(v any) {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		serviceutil.Fatal("failed to serialize result", err)
	}
	os.Stdout.Write(encoded)
	os.Stdout.Write([]byte("\n"))
}

func printTable(header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tableRow := make(table.Row, len(row))
		for i, cell := range row {
			tableRow[i] = cell
		}
		t.AppendRow(tableRow)
	}

	t.Render()
}

// emit writes the fetched record set to stdout in the selected format.
func emit(v any, header []string, rows [][]string) {
	if *format == "table" {
		printTable(header, rows)
		return
	}
	printJSON(v)
}
