package htmlutil

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parse(t *testing.T, src string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestTextContent(t *testing.T) {
	doc := parse(t, "<p>  Hello <b>world</b>  </p>")
	if got := TextContent(Find(doc, "p")); got != "Hello world" {
		t.Errorf("TextContent = %q", got)
	}
}

func TestFindAllStopsAtMatches(t *testing.T) {
	doc := parse(t, "<ul><li>a<ul><li>b</li></ul></li><li>c</li></ul>")
	items := FindAll(doc, "li")
	if len(items) != 2 {
		t.Fatalf("FindAll returned %d items, want 2", len(items))
	}
	if got := TextContent(items[1]); got != "c" {
		t.Errorf("second item = %q", got)
	}

	inner := FindAll(items[0], "li")
	if len(inner) != 1 {
		t.Fatalf("nested FindAll returned %d items, want 1", len(inner))
	}
	if !Within(inner[0], "ul") || !Within(inner[0], "li") {
		t.Error("nested item should be within ul and li")
	}
	if Within(inner[0], "table") {
		t.Error("nested item is not within a table")
	}
	if Find(doc, "table") != nil {
		t.Error("Find should return nil for a missing tag")
	}
}

func TestStripAndCompact(t *testing.T) {
	doc := parse(t, `<div id="a" class="b" data-x="1"><!-- note --><table>
  <tr>
    <td style="color:red">x</td>
  </tr>
</table></div>`)
	div := Find(doc, "div")
	StripAttributes(div)
	Compact(div)

	want := `<div data-x="1"><table><tbody><tr><td>x</td></tr></tbody></table></div>`
	if got := Render(div); got != want {
		t.Errorf("Render =\n%s\nwant\n%s", got, want)
	}
}

func TestCompactKeepsPre(t *testing.T) {
	doc := parse(t, "<table><tr><td><pre>a\n\n  b</pre></td></tr></table>")
	table := Find(doc, "table")
	Compact(table)
	if got := Render(table); got != "<table><tbody><tr><td><pre>a\n\n  b</pre></td></tr></tbody></table>" {
		t.Errorf("Render = %q", got)
	}
}

func TestCompactKeepsCellWhitespace(t *testing.T) {
	doc := parse(t, "<table>\n <tr>\n  <td><b>Net</b> <i>income</i></td>\n  <th> <span>a</span> </th>\n </tr>\n</table>")
	table := Find(doc, "table")
	Compact(table)
	want := "<table><tbody><tr><td><b>Net</b> <i>income</i></td><th> <span>a</span> </th></tr></tbody></table>"
	if got := Render(table); got != want {
		t.Errorf("Render =\n%s\nwant\n%s", got, want)
	}
	if got := TextContent(table); got != "Net income a" {
		t.Errorf("TextContent = %q", got)
	}
}

func TestHeadingLevel(t *testing.T) {
	cases := map[string]int{"h1": 1, "h3": 3, "h6": 6, "h7": 0, "hr": 0, "p": 0, "": 0}
	for tag, want := range cases {
		if got := HeadingLevel(tag); got != want {
			t.Errorf("HeadingLevel(%q) = %d, want %d", tag, got, want)
		}
	}
}
