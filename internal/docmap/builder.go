package docmap

import (
	"log/slog"

	"github.com/dgallion1/docchunk/internal/doctree"
	"github.com/dgallion1/docchunk/internal/layout"
)

// Options controls document map construction.
type Options struct {
	// Strict turns soft layout validation issues into an error.
	Strict bool
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// BuildFromLayout validates and classifies a layout result and returns its
// document map.
func BuildFromLayout(fileName, fileURI string, res *layout.Result, opts Options) (*doctree.DocumentMap, error) {
	log := opts.logger().With("file", fileName)

	issues, err := layout.Validate(res)
	if err != nil {
		return nil, err
	}
	for _, issue := range issues {
		log.Warn("layout validation issue", "code", issue.Code, "detail", issue.Message)
	}
	if opts.Strict && len(issues) > 0 {
		return nil, &layout.ValidationError{Issues: issues}
	}

	structure := BuildStructure(res, Classify(res))
	log.Info("document map built", "elements", len(structure), "tables", len(res.Tables), "paragraphs", len(res.Paragraphs))

	return &doctree.DocumentMap{
		FileName:  fileName,
		FileURI:   fileURI,
		Content:   res.Content,
		Structure: structure,
	}, nil
}

// scanState is the heading context carried across the left-to-right scan.
type scanState struct {
	page      int
	start     int
	open      bool
	mainTitle string
	title     string
	section   string
}

// BuildStructure scans a classification and emits one element per text
// paragraph or table, in offset order.
//
// Titles seen while still on page 1 accumulate into the main title joined
// with "; "; the main title is otherwise fixed by the first title seen.
// The page number carries forward from the most recent paragraph start, so
// a source with out-of-order paragraph offsets can yield non-monotonic pages.
func BuildStructure(res *layout.Result, cls Classification) []doctree.Element {
	content := []rune(res.Content)

	pageAt := make(map[int]int, len(res.Paragraphs))
	for _, p := range res.Paragraphs {
		span, ok := p.FirstSpan()
		if !ok {
			continue
		}
		if page, ok := p.PageNumber(); ok {
			pageAt[span.Offset] = page
		}
	}

	var out []doctree.Element
	var st scanState
	for i, ct := range cls.Types {
		if page, ok := pageAt[i]; ok {
			st.page = page
		}
		if ct.IsStart() {
			st.start = i
			st.open = true
			continue
		}
		if !ct.IsEnd() {
			continue
		}
		if !st.open {
			st.start = i
		}
		st.open = false
		text := string(content[st.start : i+1])

		switch ct {
		case TitleEnd:
			st.title = text
			if st.mainTitle == "" {
				st.mainTitle = text
			} else if st.page == 1 {
				st.mainTitle += "; " + text
			}
		case SectionHeadingEnd:
			st.section = text
		case TextEnd:
			out = append(out, st.element(doctree.ElementText, text))
		case TableEnd:
			index, ok := cls.TableAt[i]
			if !ok || index >= len(res.Tables) {
				continue
			}
			out = append(out, st.element(doctree.ElementTable, TableToHTML(res.Tables[index])))
		}
	}
	return out
}

func (s scanState) element(typ doctree.ElementType, text string) doctree.Element {
	return doctree.Element{
		Offset:     s.start,
		Text:       text,
		Type:       typ,
		Title:      s.mainTitle,
		Subtitle:   s.title,
		Section:    s.section,
		PageNumber: s.page,
	}
}
