package parser

import (
	"bufio"
	"html"
	"io"
	"path/filepath"
	"strings"
)

// TextParser handles plain text files. Blank lines separate paragraphs and
// the file name becomes the title.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Source, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("<h1>" + html.EscapeString(baseName(filename)) + "</h1>")
	for _, para := range paragraphs {
		b.WriteString("<p>" + html.EscapeString(para) + "</p>")
	}
	return htmlSource(b.String()), nil
}

func baseName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
