package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/docchunk/internal/docmap"
	"github.com/dgallion1/docchunk/internal/doctree"
)

// structure runs a parsed HTML source through the HTML structure builder.
func structure(t *testing.T, p Parser, input, filename string) []doctree.Element {
	t.Helper()
	src, err := p.Parse(strings.NewReader(input), filename)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.IsLayout() {
		t.Fatalf("expected an HTML source for %s", filename)
	}
	m, err := docmap.BuildFromHTML(filename, "", src.HTML, docmap.HTMLOptions{StripAttributes: src.StripAttributes})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return m.Structure
}

func TestTextParser_BasicParagraphSplitting(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	els := structure(t, &TextParser{}, input, "notes.txt")

	want := []string{
		"First paragraph line one.\nFirst paragraph line two.",
		"Second paragraph.",
		"Third paragraph.",
	}
	if len(els) != len(want) {
		t.Fatalf("expected %d elements, got %d", len(want), len(els))
	}
	for i, w := range want {
		if els[i].Text != w {
			t.Errorf("element[%d]: expected %q, got %q", i, w, els[i].Text)
		}
		if els[i].Title != "notes" {
			t.Errorf("element[%d]: expected title %q, got %q", i, "notes", els[i].Title)
		}
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	els := structure(t, &TextParser{}, "", "empty.txt")
	if len(els) != 0 {
		t.Errorf("expected 0 elements for empty input, got %d", len(els))
	}
}

func TestTextParser_EscapesMarkup(t *testing.T) {
	els := structure(t, &TextParser{}, "a <b> & c", "x.txt")
	if len(els) != 1 || els[0].Text != "a <b> & c" {
		t.Fatalf("expected the literal text back, got %+v", els)
	}
}

func TestTextParser_MultipleBlankLines(t *testing.T) {
	// Multiple consecutive blank lines should not produce empty paragraphs.
	els := structure(t, &TextParser{}, "Para one.\n\n\n\nPara two.", "gaps.txt")
	if len(els) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(els))
	}
}

func TestTextParser_WhitespaceOnlyLines(t *testing.T) {
	// Lines with only whitespace should be treated as blank.
	els := structure(t, &TextParser{}, "Para one.\n   \nPara two.", "ws.txt")
	if len(els) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(els))
	}
}

func TestCSVParser_SingleTable(t *testing.T) {
	input := "name,qty\napples,3\npears\n"
	els := structure(t, &CSVParser{}, input, "fruit.csv")
	if len(els) != 1 || !els[0].IsTable() {
		t.Fatalf("expected one table element, got %+v", els)
	}
	want := "<table><thead><tr><th>name</th><th>qty</th></tr></thead><tbody>" +
		"<tr><td>apples</td><td>3</td></tr><tr><td>pears</td><td></td></tr></tbody></table>"
	if els[0].Text != want {
		t.Errorf("expected\n%s\ngot\n%s", want, els[0].Text)
	}
	if els[0].Title != "fruit" {
		t.Errorf("expected title fruit, got %q", els[0].Title)
	}
}

func TestForFile_Routing(t *testing.T) {
	for _, name := range []string{"a.pdf", "a.DOCX", "a.xlsx", "a.htm", "a.md", "a.csv", "a.txt"} {
		if _, err := ForFile(name); err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
		}
	}
	if _, err := ForFile("talk.mp4"); !errors.Is(err, ErrMedia) {
		t.Errorf("expected ErrMedia, got %v", err)
	}
	if _, err := ForFile("image.bmp"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	if !IsMedia("x.WAV") || IsMedia("x.pdf") {
		t.Error("unexpected IsMedia result")
	}
}
