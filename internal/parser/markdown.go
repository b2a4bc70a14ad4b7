package parser

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// MarkdownParser renders Markdown to HTML with goldmark. GFM tables become
// HTML tables.
type MarkdownParser struct{}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Source, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return htmlSource(buf.String()), nil
}
