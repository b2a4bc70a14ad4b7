package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docchunk/internal/layout"
	pdflib "github.com/ledongthuc/pdf"
)

// maxTitleRunes bounds the first line promoted to the title role when no
// layout result is supplied.
const maxTitleRunes = 100

// PDFParser handles PDF files.
//
// When Layout is set it holds the layout service's JSON for the document and
// the PDF bytes are not read. Otherwise text is extracted page by page with
// ledongthuc/pdf (or pdftotext when FallbackPdftotext is set) and turned
// into a layout result with one paragraph per blank-line block.
type PDFParser struct {
	Layout            io.Reader
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*Source, error) {
	if p.Layout != nil {
		res, err := layout.Decode(p.Layout)
		if err != nil {
			return nil, err
		}
		return &Source{Layout: res}, nil
	}

	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docchunk-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if err != nil && p.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	return &Source{Layout: LayoutFromPages(splitPages(text))}, nil
}

// LayoutFromPages builds a layout result from plain page texts. Each
// blank-line block is a paragraph on its page; a short single-line first
// block on page 1 is marked as the title.
func LayoutFromPages(pages []string) *layout.Result {
	res := &layout.Result{}
	var content strings.Builder
	offset := 0

	for i, page := range pages {
		for _, block := range blocks(page) {
			if offset > 0 {
				content.WriteString("\n")
				offset++
			}
			n := utf8.RuneCountInString(block)
			para := layout.Paragraph{
				Spans:           []layout.Span{{Offset: offset, Length: n}},
				BoundingRegions: []layout.BoundingRegion{{PageNumber: i + 1}},
			}
			if len(res.Paragraphs) == 0 && i == 0 && n <= maxTitleRunes && !strings.Contains(block, "\n") {
				para.Role = layout.RoleTitle
			}
			res.Paragraphs = append(res.Paragraphs, para)
			content.WriteString(block)
			offset += n
		}
	}
	res.Content = content.String()
	return res
}

func blocks(page string) []string {
	var out []string
	for _, b := range strings.Split(strings.ReplaceAll(page, "\r\n", "\n"), "\n\n") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if i > 1 {
			buf.WriteString("\f") // Form feed as page separator.
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

func splitPages(text string) []string {
	return strings.Split(text, "\f")
}
