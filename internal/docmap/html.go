package docmap

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docchunk/internal/doctree"
	"github.com/dgallion1/docchunk/internal/htmlutil"
	"golang.org/x/net/html"
)

// HTMLOptions controls the HTML structure builder.
type HTMLOptions struct {
	Options
	// StripAttributes drops id, class and style attributes from emitted
	// tables. Spreadsheet conversions carry a lot of them.
	StripAttributes bool
}

// htmlWalker carries heading context through the document walk. Headings
// map h1 to title, h2 to subtitle and h3-h6 to section; a heading clears
// the context levels beneath it.
type htmlWalker struct {
	opts       HTMLOptions
	title      string
	subtitle   string
	section    string
	page       int
	offset     int
	structured bool
	out        []doctree.Element
}

// BuildFromHTML walks heading, paragraph and table tags in document order
// and returns the document map. Tables are emitted as their own HTML. The
// page counter starts at 1 and advances after every table, standing in for
// page breaks in sources that have none.
func BuildFromHTML(fileName, fileURI, src string, opts HTMLOptions) (*doctree.DocumentMap, error) {
	log := opts.logger().With("file", fileName)

	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	root := htmlutil.Find(doc, "body")
	if root == nil {
		root = doc
	}

	w := &htmlWalker{opts: opts, page: 1}
	w.walk(root)

	if !w.structured {
		if text := htmlutil.TextContent(root); text != "" {
			w.emit(doctree.ElementText, text)
		}
	}
	log.Info("document map built", "elements", len(w.out), "source", "html")

	return &doctree.DocumentMap{
		FileName:  fileName,
		FileURI:   fileURI,
		Structure: w.out,
	}, nil
}

func (w *htmlWalker) walk(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if level := htmlutil.HeadingLevel(c.Data); level > 0 {
			w.structured = true
			w.heading(level, htmlutil.TextContent(c))
			continue
		}
		switch c.Data {
		case "script", "style", "head", "template", "noscript":
		case "p", "li", "pre", "blockquote":
			w.structured = true
			if text := htmlutil.TextContent(c); text != "" {
				w.emit(doctree.ElementText, text)
			}
		case "table":
			w.structured = true
			if w.opts.StripAttributes {
				htmlutil.StripAttributes(c)
			}
			htmlutil.Compact(c)
			w.emit(doctree.ElementTable, htmlutil.Render(c))
			w.page++
		default:
			w.walk(c)
		}
	}
}

func (w *htmlWalker) heading(level int, text string) {
	switch level {
	case 1:
		w.title, w.subtitle, w.section = text, "", ""
	case 2:
		w.subtitle, w.section = text, ""
	default:
		w.section = text
	}
	w.offset += utf8.RuneCountInString(text)
}

func (w *htmlWalker) emit(typ doctree.ElementType, text string) {
	w.out = append(w.out, doctree.Element{
		Offset:     w.offset,
		Text:       text,
		Type:       typ,
		Title:      w.title,
		Subtitle:   w.subtitle,
		Section:    w.section,
		PageNumber: w.page,
	})
	w.offset += utf8.RuneCountInString(text)
}
