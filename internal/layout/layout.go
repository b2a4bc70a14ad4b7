// Package layout holds the document-layout analysis result consumed by the
// PDF path, in the shape the layout service returns it.
//
// All offsets and lengths count Unicode code points into Result.Content.
package layout

import (
	"encoding/json"
	"fmt"
	"io"
)

// Span is a character range into the document content.
type Span struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// End returns the inclusive last offset covered by the span.
func (s Span) End() int {
	return s.Offset + s.Length - 1
}

// Role is the layout service's classification of a paragraph.
type Role string

const (
	RoleNone           Role = ""
	RoleTitle          Role = "title"
	RoleSectionHeading Role = "sectionHeading"
	RolePageHeader     Role = "pageHeader"
	RolePageFooter     Role = "pageFooter"
	RolePageNumber     Role = "pageNumber"
	RoleFootnote       Role = "footnote"
)

// BoundingRegion locates a paragraph on a page.
type BoundingRegion struct {
	PageNumber int `json:"pageNumber"`
}

// Paragraph is one run of text with an optional role.
type Paragraph struct {
	Spans           []Span           `json:"spans"`
	Role            Role             `json:"role,omitempty"`
	BoundingRegions []BoundingRegion `json:"boundingRegions,omitempty"`
}

// FirstSpan returns the span that identifies the paragraph's position.
func (p Paragraph) FirstSpan() (Span, bool) {
	if len(p.Spans) == 0 {
		return Span{}, false
	}
	return p.Spans[0], true
}

// PageNumber returns the page of the paragraph's first bounding region.
func (p Paragraph) PageNumber() (int, bool) {
	if len(p.BoundingRegions) == 0 {
		return 0, false
	}
	return p.BoundingRegions[0].PageNumber, true
}

// CellKind marks header cells.
type CellKind string

const (
	CellContent      CellKind = "content"
	CellColumnHeader CellKind = "columnHeader"
	CellRowHeader    CellKind = "rowHeader"
)

// Cell is a single table cell.
type Cell struct {
	RowIndex    int      `json:"rowIndex"`
	ColumnIndex int      `json:"columnIndex"`
	Content     string   `json:"content"`
	Kind        CellKind `json:"kind,omitempty"`
	ColumnSpan  int      `json:"columnSpan,omitempty"`
	RowSpan     int      `json:"rowSpan,omitempty"`
}

// IsHeader reports whether the cell renders as <th>.
func (c Cell) IsHeader() bool {
	return c.Kind == CellColumnHeader || c.Kind == CellRowHeader
}

// Table is a table recognised by the layout service. A table broken across
// pages may carry several disjoint spans.
type Table struct {
	RowCount    int    `json:"rowCount"`
	ColumnCount int    `json:"columnCount"`
	Cells       []Cell `json:"cells"`
	Spans       []Span `json:"spans"`
}

// Range returns the inclusive range from the smallest span start to the
// largest span end. Zero-length spans are ignored.
func (t Table) Range() (start, end int, ok bool) {
	for _, s := range t.Spans {
		if s.Length <= 0 {
			continue
		}
		if !ok || s.Offset < start {
			start = s.Offset
		}
		if !ok || s.End() > end {
			end = s.End()
		}
		ok = true
	}
	return start, end, ok
}

// Result is the flat extraction of one document.
type Result struct {
	Content    string      `json:"content"`
	Paragraphs []Paragraph `json:"paragraphs"`
	Tables     []Table     `json:"tables"`
}

// envelope accepts both a bare result and the service's
// {"status": ..., "analyzeResult": {...}} response wrapper.
type envelope struct {
	Result
	AnalyzeResult *Result `json:"analyzeResult"`
}

// Decode reads a layout result from JSON.
func Decode(r io.Reader) (*Result, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode layout result: %w", err)
	}
	if env.AnalyzeResult != nil {
		return env.AnalyzeResult, nil
	}
	res := env.Result
	return &res, nil
}

// Length returns the content length in code points.
func (r *Result) Length() int {
	return len([]rune(r.Content))
}
