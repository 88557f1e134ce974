package display

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Row is one two-column table line.
type Row [2]string

func newTable(w io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	return tbl
}

// RenderSummary prints a label/value table under title.
func RenderSummary(w io.Writer, title string, rows []Row) {
	tbl := newTable(w)
	tbl.SetTitle(title)
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	for _, r := range rows {
		tbl.AppendRow(table.Row{r[0], r[1]})
	}
	tbl.Render()
}

// RenderOutdated prints the document/reason table of a validate run.
// Nothing is printed for an empty list.
func RenderOutdated(w io.Writer, rows []Row) {
	if len(rows) == 0 {
		return
	}
	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"Document", "Reason"})
	for _, r := range rows {
		tbl.AppendRow(table.Row{r[0], r[1]})
	}
	tbl.Render()
}
