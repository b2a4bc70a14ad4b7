package parser

import (
	"fmt"
	"html"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXParser renders a workbook as HTML: the file name as <h1>, then each
// sheet as an <h2> followed by its rows as a table.
type XLSXParser struct{}

func (p *XLSXParser) Parse(r io.Reader, filename string) (*Source, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	b.WriteString("<h1>" + html.EscapeString(filepath.Base(filename)) + "</h1>")
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		rows = trimEmptyRows(rows)
		if len(rows) == 0 {
			continue
		}
		b.WriteString("<h2>" + html.EscapeString(sheet) + "</h2>")
		writeTable(&b, rows)
	}

	s := htmlSource(b.String())
	s.StripAttributes = true
	return s, nil
}

func trimEmptyRows(rows [][]string) [][]string {
	for len(rows) > 0 && isEmptyRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
