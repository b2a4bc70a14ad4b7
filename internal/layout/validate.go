package layout

import (
	"fmt"
	"sort"
	"strings"
)

// SpanError reports a span that does not fit the document content.
type SpanError struct {
	Element string // "paragraph" or "table"
	Index   int
	Span    Span
	Reason  string
}

func (e *SpanError) Error() string {
	return fmt.Sprintf("%s %d: span {offset %d, length %d}: %s", e.Element, e.Index, e.Span.Offset, e.Span.Length, e.Reason)
}

// CellError reports a cell addressing a row or column the table does not have.
type CellError struct {
	Table       int
	RowIndex    int
	ColumnIndex int
	RowCount    int
	ColumnCount int
}

func (e *CellError) Error() string {
	return fmt.Sprintf("table %d: cell [%d,%d] outside %dx%d grid", e.Table, e.RowIndex, e.ColumnIndex, e.RowCount, e.ColumnCount)
}

// IssueCode classifies a soft validation problem.
type IssueCode string

const (
	IssueEmptySpan              IssueCode = "empty_span"
	IssueMissingPage            IssueCode = "missing_page"
	IssueTablesOutOfOrder       IssueCode = "tables_out_of_order"
	IssueTablesOverlap          IssueCode = "tables_overlap"
	IssueParagraphOverlapsTable IssueCode = "paragraph_overlaps_table"
	IssueParagraphOutOfOrder    IssueCode = "paragraph_out_of_order"
)

// Issue is a problem that may produce imperfect grouping but does not make
// the document unprocessable.
type Issue struct {
	Code    IssueCode
	Message string
}

func (i Issue) String() string {
	return string(i.Code) + ": " + i.Message
}

// ValidationError collects issues when strict validation is requested.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, i := range e.Issues {
		msgs = append(msgs, i.String())
	}
	return fmt.Sprintf("layout validation failed: %s", strings.Join(msgs, "; "))
}

// Validate checks a result before classification. Hard problems (spans out
// of bounds, cells outside their table) are returned as an error; softer
// ones are returned as issues for the caller to log or reject.
func Validate(r *Result) ([]Issue, error) {
	n := r.Length()
	var issues []Issue

	inBounds := func(s Span) bool {
		return s.Offset >= 0 && s.Length >= 0 && s.Offset+s.Length <= n
	}

	type tableRange struct {
		index, start, end int
	}
	var ranges []tableRange

	for ti, t := range r.Tables {
		for _, s := range t.Spans {
			if !inBounds(s) {
				return nil, &SpanError{Element: "table", Index: ti, Span: s, Reason: fmt.Sprintf("outside content of length %d", n)}
			}
		}
		for _, c := range t.Cells {
			if c.RowIndex < 0 || c.ColumnIndex < 0 || c.RowIndex >= t.RowCount || c.ColumnIndex >= t.ColumnCount {
				return nil, &CellError{Table: ti, RowIndex: c.RowIndex, ColumnIndex: c.ColumnIndex, RowCount: t.RowCount, ColumnCount: t.ColumnCount}
			}
		}
		start, end, ok := t.Range()
		if !ok {
			issues = append(issues, Issue{Code: IssueEmptySpan, Message: fmt.Sprintf("table %d has no non-empty span", ti)})
			continue
		}
		ranges = append(ranges, tableRange{index: ti, start: start, end: end})
	}

	for i := 1; i < len(ranges); i++ {
		if ranges[i].start < ranges[i-1].start {
			issues = append(issues, Issue{Code: IssueTablesOutOfOrder, Message: fmt.Sprintf("table %d starts before table %d", ranges[i].index, ranges[i-1].index)})
		}
	}
	sorted := append([]tableRange(nil), ranges...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].start <= sorted[i-1].end {
			issues = append(issues, Issue{Code: IssueTablesOverlap, Message: fmt.Sprintf("table %d overlaps table %d", sorted[i].index, sorted[i-1].index)})
		}
	}

	lastStart := -1
	for pi, p := range r.Paragraphs {
		s, ok := p.FirstSpan()
		if !ok {
			return nil, &SpanError{Element: "paragraph", Index: pi, Reason: "no spans"}
		}
		if !inBounds(s) {
			return nil, &SpanError{Element: "paragraph", Index: pi, Span: s, Reason: fmt.Sprintf("outside content of length %d", n)}
		}
		if s.Length == 0 {
			issues = append(issues, Issue{Code: IssueEmptySpan, Message: fmt.Sprintf("paragraph %d is empty", pi)})
			continue
		}
		if _, ok := p.PageNumber(); !ok {
			issues = append(issues, Issue{Code: IssueMissingPage, Message: fmt.Sprintf("paragraph %d has no bounding region", pi)})
		}
		if s.Offset < lastStart {
			issues = append(issues, Issue{Code: IssueParagraphOutOfOrder, Message: fmt.Sprintf("paragraph %d at offset %d follows offset %d", pi, s.Offset, lastStart)})
		}
		lastStart = s.Offset
		for _, tr := range ranges {
			startsInside := s.Offset >= tr.start && s.Offset <= tr.end
			if !startsInside && s.Offset < tr.start && s.End() >= tr.start {
				issues = append(issues, Issue{Code: IssueParagraphOverlapsTable, Message: fmt.Sprintf("paragraph %d runs into table %d", pi, tr.index)})
			}
		}
	}

	return issues, nil
}
