// Package docmap turns a layout result or an HTML document into an ordered
// list of structural elements carrying title, section and page context.
package docmap

import "github.com/dgallion1/docchunk/internal/layout"

// ContentType tags a single character offset of the document content.
type ContentType uint8

const (
	Unclassified ContentType = iota
	TitleStart
	TitleChar
	TitleEnd
	SectionHeadingStart
	SectionHeadingChar
	SectionHeadingEnd
	TextStart
	TextChar
	TextEnd
	TableStart
	TableChar
	TableEnd
)

var contentTypeNames = [...]string{
	"unclassified",
	"title_start", "title_char", "title_end",
	"section_heading_start", "section_heading_char", "section_heading_end",
	"text_start", "text_char", "text_end",
	"table_start", "table_char", "table_end",
}

func (c ContentType) String() string {
	if int(c) < len(contentTypeNames) {
		return contentTypeNames[c]
	}
	return "unknown"
}

// IsStart reports whether c opens a region.
func (c ContentType) IsStart() bool {
	return c == TitleStart || c == SectionHeadingStart || c == TextStart || c == TableStart
}

// IsEnd reports whether c closes a region.
func (c ContentType) IsEnd() bool {
	return c == TitleEnd || c == SectionHeadingEnd || c == TextEnd || c == TableEnd
}

func (c ContentType) isTable() bool {
	return c == TableStart || c == TableChar || c == TableEnd
}

// Classification is the per-offset tagging of a document.
type Classification struct {
	Types []ContentType
	// TableAt maps a TableEnd offset to the index of the table ending there.
	TableAt map[int]int
}

// runKinds are the start/char/end triples for each region kind.
type runKinds struct {
	start, char, end ContentType
}

var (
	titleRun   = runKinds{TitleStart, TitleChar, TitleEnd}
	sectionRun = runKinds{SectionHeadingStart, SectionHeadingChar, SectionHeadingEnd}
	textRun    = runKinds{TextStart, TextChar, TextEnd}
	tableRun   = runKinds{TableStart, TableChar, TableEnd}
)

func runFor(role layout.Role) runKinds {
	switch role {
	case layout.RoleTitle:
		return titleRun
	case layout.RoleSectionHeading:
		return sectionRun
	default:
		return textRun
	}
}

// mark tags [start, end]. A single-character region is tagged with the end
// marker only; the builder treats an end without an open start as both.
func (c *Classification) mark(start, end int, k runKinds) {
	c.Types[start] = k.start
	for i := start + 1; i < end; i++ {
		c.Types[i] = k.char
	}
	c.Types[end] = k.end
}

// Classify tags every offset of the content. Tables are tagged first, each
// as one range from its smallest span start to its largest span end, so a
// table split over a page break stays a single region. Paragraphs starting
// inside an already claimed region are skipped; a paragraph that starts
// before a table and runs into it is cut short at the table's first offset.
func Classify(res *layout.Result) Classification {
	n := res.Length()
	c := Classification{
		Types:   make([]ContentType, n),
		TableAt: make(map[int]int, len(res.Tables)),
	}

	for index, table := range res.Tables {
		start, end, ok := table.Range()
		if !ok || start < 0 || end >= n {
			continue
		}
		c.mark(start, end, tableRun)
		c.TableAt[end] = index
	}

	for _, p := range res.Paragraphs {
		span, ok := p.FirstSpan()
		if !ok || span.Length <= 0 || span.Offset < 0 || span.End() >= n {
			continue
		}
		start, end := span.Offset, span.End()
		if c.Types[start] != Unclassified {
			continue
		}
		// A paragraph running into a table is cut at the table's first
		// offset and reported by Validate as a paragraph_overlaps_table
		// issue. The table keeps its leading offsets; they are not
		// relabelled as paragraph text.
		for i := start + 1; i <= end; i++ {
			if c.Types[i].isTable() {
				end = i - 1
				break
			}
		}
		c.mark(start, end, runFor(p.Role))
	}

	return c
}
