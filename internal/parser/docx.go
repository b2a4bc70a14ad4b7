package parser

import (
	"fmt"
	"html"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXParser converts .docx files to HTML. Heading styles become <hN>,
// other paragraphs <p>, and tables <table> with the first row as header.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*Source, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "docchunk-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var b strings.Builder
	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			writeDocxParagraph(&b, v)
		case *docx.Table:
			writeDocxTable(&b, v)
		}
	}
	return htmlSource(b.String()), nil
}

func writeDocxParagraph(b *strings.Builder, para *docx.Paragraph) {
	text := docxParagraphText(para)
	if text == "" {
		return
	}
	tag := "p"
	if level := docxHeadingLevel(para); level > 0 {
		tag = "h" + strconv.Itoa(level)
	}
	b.WriteString("<" + tag + ">" + html.EscapeString(text) + "</" + tag + ">")
}

func writeDocxTable(b *strings.Builder, tbl *docx.Table) {
	if len(tbl.TableRows) == 0 {
		return
	}
	b.WriteString("<table>")
	for i, row := range tbl.TableRows {
		tag := "td"
		if i == 0 {
			tag = "th"
			b.WriteString("<thead>")
		}
		b.WriteString("<tr>")
		for _, cell := range row.TableCells {
			var parts []string
			for _, para := range cell.Paragraphs {
				if t := docxParagraphText(para); t != "" {
					parts = append(parts, t)
				}
			}
			b.WriteString("<" + tag + ">" + html.EscapeString(strings.Join(parts, "\n")) + "</" + tag + ">")
		}
		b.WriteString("</tr>")
		if i == 0 {
			b.WriteString("</thead>")
		}
	}
	b.WriteString("</table>")
}

// docxHeadingLevel maps "Heading1".."Heading6" (or "heading 1") styles to
// a level, and "Title" to 1.
func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if style == "title" {
		return 1
	}
	if rest, ok := strings.CutPrefix(style, "heading"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 6 {
			return n
		}
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
