package docmap

import (
	"testing"

	"github.com/dgallion1/docchunk/internal/layout"
)

func para(offset, length int, role layout.Role, page int) layout.Paragraph {
	return layout.Paragraph{
		Spans:           []layout.Span{{Offset: offset, Length: length}},
		Role:            role,
		BoundingRegions: []layout.BoundingRegion{{PageNumber: page}},
	}
}

func TestClassify_TitleAndText(t *testing.T) {
	res := &layout.Result{
		Content: "TitleHereBody text here",
		Paragraphs: []layout.Paragraph{
			para(0, 9, layout.RoleTitle, 1),
			para(9, 14, layout.RoleNone, 1),
		},
	}
	cls := Classify(res)

	checks := map[int]ContentType{0: TitleStart, 4: TitleChar, 8: TitleEnd, 9: TextStart, 15: TextChar, 22: TextEnd}
	for offset, want := range checks {
		if got := cls.Types[offset]; got != want {
			t.Errorf("offset %d: expected %s, got %s", offset, want, got)
		}
	}
}

func TestClassify_TableSpansMergedAcrossPages(t *testing.T) {
	res := &layout.Result{
		Content: "intro....table part one||footer||table part two....",
		Tables: []layout.Table{{
			RowCount: 5, ColumnCount: 1,
			Spans: []layout.Span{{Offset: 33, Length: 14}, {Offset: 9, Length: 14}},
		}},
	}
	cls := Classify(res)

	if cls.Types[9] != TableStart {
		t.Errorf("expected table start at 9, got %s", cls.Types[9])
	}
	if cls.Types[28] != TableChar {
		t.Errorf("expected the gap between spans to be table, got %s", cls.Types[28])
	}
	if cls.Types[46] != TableEnd {
		t.Errorf("expected table end at 46, got %s", cls.Types[46])
	}
	if idx, ok := cls.TableAt[46]; !ok || idx != 0 {
		t.Errorf("expected table 0 recorded at its end, got %d %v", idx, ok)
	}
	if len(cls.TableAt) != 1 {
		t.Errorf("expected exactly one table end, got %d", len(cls.TableAt))
	}
}

func TestClassify_TableWinsOverParagraph(t *testing.T) {
	res := &layout.Result{
		Content: "abcdefghij",
		Paragraphs: []layout.Paragraph{
			para(2, 3, layout.RoleNone, 1),
		},
		Tables: []layout.Table{{Spans: []layout.Span{{Offset: 2, Length: 6}}}},
	}
	cls := Classify(res)
	for i := 2; i <= 7; i++ {
		if !cls.Types[i].isTable() {
			t.Errorf("offset %d: expected table tag, got %s", i, cls.Types[i])
		}
	}
}

func TestClassify_ParagraphRunningIntoTableIsCut(t *testing.T) {
	res := &layout.Result{
		Content: "0123456789",
		Paragraphs: []layout.Paragraph{
			para(0, 6, layout.RoleNone, 1),
		},
		Tables: []layout.Table{{Spans: []layout.Span{{Offset: 4, Length: 6}}}},
	}
	cls := Classify(res)

	if cls.Types[3] != TextEnd {
		t.Errorf("expected paragraph to end before the table, got %s", cls.Types[3])
	}
	if cls.Types[4] != TableStart || cls.Types[5] != TableChar {
		t.Errorf("table tags were overwritten: %s %s", cls.Types[4], cls.Types[5])
	}
}

func TestClassify_SectionHeadingAndOtherRoles(t *testing.T) {
	res := &layout.Result{
		Content: "HeadFootNote",
		Paragraphs: []layout.Paragraph{
			para(0, 4, layout.RoleSectionHeading, 1),
			para(4, 4, layout.RolePageFooter, 1),
			para(8, 4, layout.RoleFootnote, 1),
		},
	}
	cls := Classify(res)
	if cls.Types[0] != SectionHeadingStart || cls.Types[3] != SectionHeadingEnd {
		t.Errorf("expected section heading tags, got %s..%s", cls.Types[0], cls.Types[3])
	}
	if cls.Types[4] != TextStart || cls.Types[11] != TextEnd {
		t.Errorf("expected other roles to classify as text, got %s..%s", cls.Types[4], cls.Types[11])
	}
}

func TestClassify_SkipsInvalidSpans(t *testing.T) {
	res := &layout.Result{
		Content:    "abc",
		Paragraphs: []layout.Paragraph{para(1, 10, layout.RoleNone, 1), {Spans: nil}},
	}
	cls := Classify(res)
	for i, ct := range cls.Types {
		if ct != Unclassified {
			t.Errorf("offset %d: expected unclassified, got %s", i, ct)
		}
	}
}
