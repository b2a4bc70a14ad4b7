package parser

import (
	"encoding/csv"
	"fmt"
	"html"
	"io"
	"strings"
)

// CSVParser renders a CSV file as one table with the first row as header.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Source, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	var b strings.Builder
	b.WriteString("<h1>" + html.EscapeString(baseName(filename)) + "</h1>")
	if len(records) > 0 {
		writeTable(&b, records)
	}
	s := htmlSource(b.String())
	s.StripAttributes = true
	return s, nil
}

// writeTable renders rows as an HTML table. The first row is the header and
// short rows are padded to the widest row.
func writeTable(b *strings.Builder, rows [][]string) {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	b.WriteString("<table><thead><tr>")
	writeCells(b, "th", rows[0], width)
	b.WriteString("</tr></thead><tbody>")
	for _, row := range rows[1:] {
		b.WriteString("<tr>")
		writeCells(b, "td", row, width)
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
}

func writeCells(b *strings.Builder, tag string, row []string, width int) {
	for i := 0; i < width; i++ {
		var v string
		if i < len(row) {
			v = row[i]
		}
		b.WriteString("<" + tag + ">" + html.EscapeString(v) + "</" + tag + ">")
	}
}
