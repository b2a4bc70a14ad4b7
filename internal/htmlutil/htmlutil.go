// Package htmlutil holds the small golang.org/x/net/html helpers shared by
// the HTML structure builder and the table splitter.
package htmlutil

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// TextContent returns the trimmed concatenated text beneath n.
func TextContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

// Find returns the first element named tag in a depth-first walk from n.
func Find(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := Find(c, tag); f != nil {
			return f
		}
	}
	return nil
}

// FindAll returns every element named tag beneath n, in document order,
// without descending into matches.
func FindAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == tag {
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// Within reports whether n has an ancestor element named tag.
func Within(n *html.Node, tag string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == tag {
			return true
		}
	}
	return false
}

var noisyAttrs = map[string]bool{"id": true, "class": true, "style": true}

// StripAttributes removes id, class and style attributes beneath n.
func StripAttributes(n *html.Node) {
	if n.Type == html.ElementNode && len(n.Attr) > 0 {
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			if !noisyAttrs[strings.ToLower(a.Key)] {
				kept = append(kept, a)
			}
		}
		n.Attr = kept
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		StripAttributes(c)
	}
}

// tableStructure are the elements whose direct text children are only
// formatting whitespace. Cell content is never among them.
var tableStructure = map[string]bool{
	"table": true, "thead": true, "tbody": true, "tfoot": true, "tr": true,
}

// Compact removes comments, and the whitespace-only text nodes that sit
// between table rows and cells, so a rendered table carries no formatting
// indentation. Whitespace inside a cell separates words and is kept.
func Compact(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case html.TextNode:
			if n.Type == html.ElementNode && tableStructure[n.Data] && strings.TrimSpace(c.Data) == "" {
				n.RemoveChild(c)
			}
		case html.CommentNode:
			n.RemoveChild(c)
		case html.ElementNode:
			if c.Data != "pre" {
				Compact(c)
			}
		}
		c = next
	}
}

// Render serializes n, returning "" if rendering fails.
func Render(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// HeadingLevel returns 1-6 for h1-h6 and 0 otherwise.
func HeadingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}
