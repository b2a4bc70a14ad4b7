package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dgallion1/docchunk/internal/doctree"
)

// cellCounter charges one token per table cell so header and row costs are
// exact.
var cellCounter = CounterFunc(func(text string) int {
	return strings.Count(text, "</td>") + strings.Count(text, "</th>")
})

func tableHTML(headerCells, rows, cellsPerRow int) string {
	var b strings.Builder
	b.WriteString("<table>")
	if headerCells > 0 {
		b.WriteString("<thead><tr>")
		for i := range headerCells {
			fmt.Fprintf(&b, "<th>H%d</th>", i)
		}
		b.WriteString("</tr></thead>")
	}
	for r := range rows {
		b.WriteString("<tr>")
		for c := range cellsPerRow {
			fmt.Fprintf(&b, "<td>r%dc%d</td>", r, c)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

func tableEl(html string, page int) doctree.Element {
	return doctree.Element{Type: doctree.ElementTable, Text: html, Title: "Doc", PageNumber: page}
}

func TestBuild_OversizedTableSplitWithRepeatedHeader(t *testing.T) {
	// H=2, R=3, N=6, B=10: two rows fit beside the header, so ceil(18/8)=3 parts.
	chunks := build(t, 10, cellCounter, tableEl(tableHTML(2, 6, 3), 4))

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if !strings.HasPrefix(c.Content, "<table><thead><tr><th>H0</th><th>H1</th></tr></thead>") {
			t.Errorf("chunk %d does not start with the header: %q", i, c.Content)
		}
		if !strings.HasSuffix(c.Content, "</table>") {
			t.Errorf("chunk %d is not closed: %q", i, c.Content)
		}
		if c.TokenCount > 10 {
			t.Errorf("chunk %d: %d tokens exceeds budget", i, c.TokenCount)
		}
		if len(c.Pages) != 1 || c.Pages[0] != 4 {
			t.Errorf("chunk %d: expected pages [4], got %v", i, c.Pages)
		}
	}
	if !strings.Contains(chunks[2].Content, "r5c2") {
		t.Errorf("last chunk should hold the last row: %q", chunks[2].Content)
	}
}

func TestBuild_OversizedTableIsolatedFromText(t *testing.T) {
	text := doctree.Element{Type: doctree.ElementText, Text: "</td> before", Title: "Doc", PageNumber: 1}
	after := doctree.Element{Type: doctree.ElementText, Text: "</td> after", Title: "Doc", PageNumber: 2}
	chunks := build(t, 10, cellCounter, text, tableEl(tableHTML(0, 4, 4), 1), after)

	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	if chunks[0].Content != "\n</td> before" {
		t.Errorf("chunk 0: unexpected %q", chunks[0].Content)
	}
	if chunks[3].Content != "\n</td> after" {
		t.Errorf("chunk 3: unexpected %q", chunks[3].Content)
	}
	for i := 1; i <= 2; i++ {
		if !strings.HasPrefix(chunks[i].Content, "<table><tr>") {
			t.Errorf("chunk %d: expected headerless table part, got %q", i, chunks[i].Content)
		}
	}
}

func TestBuild_HeaderOverBudgetKeepsTableWhole(t *testing.T) {
	chunks := build(t, 3, cellCounter, tableEl(tableHTML(5, 3, 2), 1))

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if got := strings.Count(chunks[0].Content, "<tr>"); got != 4 {
		t.Errorf("expected the whole table (4 rows), got %d rows", got)
	}
}

func TestBuild_SmallTablePackedWithText(t *testing.T) {
	text := doctree.Element{Type: doctree.ElementText, Text: "</td>", Title: "Doc", PageNumber: 1}
	chunks := build(t, 10, cellCounter, text, tableEl(tableHTML(1, 2, 2), 1))
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].TokenCount != 6 {
		t.Errorf("expected 6 tokens, got %d", chunks[0].TokenCount)
	}
}

func TestSplitTable_RowLargerThanBudget(t *testing.T) {
	a := New(cellCounter, Config{TargetSize: 2})
	parts := a.splitTable(tableHTML(0, 2, 3), a.cfg.Logger)
	if len(parts) != 2 {
		t.Fatalf("expected one part per oversized row, got %d", len(parts))
	}
}
