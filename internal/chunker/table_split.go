package chunker

import (
	"log/slog"
	"strings"

	"github.com/dgallion1/docchunk/internal/htmlutil"
	"golang.org/x/net/html"
)

// splitTable cuts table HTML into row-wise tables that each fit the budget
// where possible. Every part opens with the table's <thead>, if it has one.
// When the header alone is over budget the table is returned whole.
func (a *Assembler) splitTable(tableHTML string, log *slog.Logger) []string {
	doc, err := html.Parse(strings.NewReader(tableHTML))
	if err != nil {
		return []string{tableHTML}
	}
	table := htmlutil.Find(doc, "table")
	if table == nil {
		return []string{tableHTML}
	}
	htmlutil.Compact(table)

	header := "<table>"
	if thead := htmlutil.Find(table, "thead"); thead != nil {
		header += htmlutil.Render(thead)
	}
	if a.counter.Count(header) > a.cfg.TargetSize {
		log.Warn("table header exceeds chunk budget, keeping table whole", "budget", a.cfg.TargetSize)
		return []string{htmlutil.Render(table)}
	}

	var rows []string
	for _, tr := range htmlutil.FindAll(table, "tr") {
		if htmlutil.Within(tr, "thead") {
			continue
		}
		rows = append(rows, htmlutil.Render(tr))
	}
	if len(rows) == 0 {
		return []string{htmlutil.Render(table)}
	}

	var parts []string
	var current strings.Builder
	current.WriteString(header)
	hasRows := false
	for _, row := range rows {
		if hasRows && a.counter.Count(current.String()+row) > a.cfg.TargetSize {
			current.WriteString("</table>")
			parts = append(parts, current.String())
			current.Reset()
			current.WriteString(header)
			hasRows = false
		}
		current.WriteString(row)
		hasRows = true
	}
	current.WriteString("</table>")
	parts = append(parts, current.String())

	return parts
}
