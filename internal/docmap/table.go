package docmap

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dgallion1/docchunk/internal/layout"
	"golang.org/x/net/html"
)

// TableToHTML renders a layout table as an HTML table. The leading run of
// rows holding at least one column header cell is wrapped in <thead>; the
// chunker repeats that block when it splits a large table.
//
// Cells outside the table's row range are dropped and cells without a kind
// render as <td>. The result is always a complete <table> element.
func TableToHTML(t layout.Table) string {
	rows := make([][]layout.Cell, max(t.RowCount, 0))
	for _, c := range t.Cells {
		if c.RowIndex < 0 || c.RowIndex >= len(rows) {
			continue
		}
		rows[c.RowIndex] = append(rows[c.RowIndex], c)
	}

	var b strings.Builder
	b.WriteString("<table>")
	inHeader := false
	seenBody := false
	for _, cells := range rows {
		sort.SliceStable(cells, func(i, j int) bool { return cells[i].ColumnIndex < cells[j].ColumnIndex })

		header := !seenBody && isHeaderRow(cells)
		switch {
		case header && !inHeader:
			b.WriteString("<thead>")
			inHeader = true
		case !header && inHeader:
			b.WriteString("</thead>")
			inHeader = false
		}
		if !header {
			seenBody = true
		}

		b.WriteString("<tr>")
		for _, c := range cells {
			writeCell(&b, c)
		}
		b.WriteString("</tr>")
	}
	if inHeader {
		b.WriteString("</thead>")
	}
	b.WriteString("</table>")
	return b.String()
}

func isHeaderRow(cells []layout.Cell) bool {
	for _, c := range cells {
		if c.Kind == layout.CellColumnHeader {
			return true
		}
	}
	return false
}

func writeCell(b *strings.Builder, c layout.Cell) {
	tag := "td"
	if c.IsHeader() {
		tag = "th"
	}
	b.WriteString("<" + tag)
	if c.ColumnSpan > 1 {
		b.WriteString(` colSpan="` + strconv.Itoa(c.ColumnSpan) + `"`)
	}
	if c.RowSpan > 1 {
		b.WriteString(` rowSpan="` + strconv.Itoa(c.RowSpan) + `"`)
	}
	b.WriteString(">")
	b.WriteString(html.EscapeString(c.Content))
	b.WriteString("</" + tag + ">")
}
