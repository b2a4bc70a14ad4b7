// Package chunker packs a document map into token-bounded chunks.
package chunker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/docchunk/internal/doctree"
)

// ErrInvalidBudget is returned for a non-positive target size.
var ErrInvalidBudget = errors.New("chunk target size must be positive")

// Config controls chunking behavior.
type Config struct {
	TargetSize int    // Token budget per chunk.
	FileClass  string // Stored on every chunk; defaults to doctree.ClassText.
	Now        func() time.Time
	Logger     *slog.Logger
}

// Sink receives finished chunks in ascending index order.
type Sink interface {
	WriteChunk(ctx context.Context, chunk doctree.Chunk) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, chunk doctree.Chunk) error

func (f SinkFunc) WriteChunk(ctx context.Context, chunk doctree.Chunk) error { return f(ctx, chunk) }

// Assembler greedily packs structural elements into chunks. It holds no
// per-document state and is safe to share between workers.
type Assembler struct {
	cfg     Config
	counter Counter
}

// New returns an Assembler counting tokens with counter.
func New(counter Counter, cfg Config) *Assembler {
	if cfg.FileClass == "" {
		cfg.FileClass = doctree.ClassText
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Assembler{cfg: cfg, counter: counter}
}

// TargetSize returns the configured token budget.
func (a *Assembler) TargetSize() int { return a.cfg.TargetSize }

// WithTargetSize returns a copy of the assembler using a different budget.
func (a *Assembler) WithTargetSize(n int) *Assembler {
	cfg := a.cfg
	cfg.TargetSize = n
	return &Assembler{cfg: cfg, counter: a.counter}
}

// headingContext is the title, subtitle and section a chunk is written under.
type headingContext struct {
	title, subtitle, section string
}

func contextOf(e doctree.Element) headingContext {
	return headingContext{title: e.Title, subtitle: e.Subtitle, section: e.Section}
}

// run is the chunk being accumulated plus the bookkeeping needed to
// finalize it.
type run struct {
	m        *doctree.DocumentMap
	sink     Sink
	text     strings.Builder
	size     int
	pages    []int
	lastPage int
	prev     headingContext
	written  int
}

// Build writes the chunks of m to sink and returns how many were written.
// A chunk is closed when the next element would exceed the budget or when
// the element's title, subtitle or section differs from the previous one.
// Tables over budget are split by rows into chunks of their own, repeating
// the header; text elements over budget are split at sentence boundaries.
func (a *Assembler) Build(ctx context.Context, m *doctree.DocumentMap, sink Sink) (int, error) {
	if a.cfg.TargetSize <= 0 {
		return 0, ErrInvalidBudget
	}
	if len(m.Structure) == 0 {
		return 0, nil
	}
	log := a.cfg.Logger.With("file", m.FileName)

	r := &run{m: m, sink: sink, prev: contextOf(m.Structure[0])}
	for _, el := range m.Structure {
		size := a.counter.Count(el.Text)

		if el.IsTable() && size > a.cfg.TargetSize {
			if err := a.finalize(ctx, r); err != nil {
				return r.written, err
			}
			r.prev = contextOf(el)
			parts := a.splitTable(el.Text, log)
			for _, part := range parts {
				r.text.WriteString(part)
				r.size = a.counter.Count(part)
				r.addPage(el.PageNumber)
				if err := a.finalize(ctx, r); err != nil {
					return r.written, err
				}
			}
			log.Debug("split oversized table", "offset", el.Offset, "tokens", size, "parts", len(parts))
			continue
		}

		pieces := []string{el.Text}
		sizes := []int{size}
		if !el.IsTable() && size > a.cfg.TargetSize {
			pieces = splitText(el.Text, a.cfg.TargetSize, a.counter)
			sizes = sizes[:0]
			for _, p := range pieces {
				sizes = append(sizes, a.counter.Count(p))
			}
		}

		for i, piece := range pieces {
			if r.size+sizes[i] > a.cfg.TargetSize || contextOf(el) != r.prev {
				if err := a.finalize(ctx, r); err != nil {
					return r.written, err
				}
			}
			r.text.WriteString("\n")
			r.text.WriteString(piece)
			r.size += sizes[i]
			r.addPage(el.PageNumber)
			r.prev = contextOf(el)
		}
	}
	if err := a.finalize(ctx, r); err != nil {
		return r.written, err
	}

	log.Info("chunking complete", "chunks", r.written, "elements", len(m.Structure))
	return r.written, nil
}

// Chunks returns the chunks of m without writing them anywhere.
func (a *Assembler) Chunks(m *doctree.DocumentMap) ([]doctree.Chunk, error) {
	var out []doctree.Chunk
	_, err := a.Build(context.Background(), m, SinkFunc(func(_ context.Context, c doctree.Chunk) error {
		out = append(out, c)
		return nil
	}))
	return out, err
}

func (r *run) addPage(page int) {
	if page != r.lastPage {
		r.pages = append(r.pages, page)
		r.lastPage = page
	}
}

// finalize writes the accumulated chunk, if any, and resets the run.
func (a *Assembler) finalize(ctx context.Context, r *run) error {
	defer func() {
		r.text.Reset()
		r.size = 0
		r.pages = nil
		r.lastPage = 0
	}()
	if r.text.Len() == 0 {
		return nil
	}

	pages := r.pages
	if pages == nil {
		pages = []int{}
	}
	chunk := doctree.Chunk{
		FileName:          r.m.FileName,
		FileURI:           r.m.FileURI,
		FileClass:         a.cfg.FileClass,
		ProcessedDatetime: a.cfg.Now(),
		Title:             r.prev.title,
		Subtitle:          r.prev.subtitle,
		Section:           r.prev.section,
		Pages:             pages,
		TokenCount:        r.size,
		Content:           r.text.String(),
		Index:             r.written,
	}
	if err := r.sink.WriteChunk(ctx, chunk); err != nil {
		return fmt.Errorf("write chunk %d: %w", chunk.Index, err)
	}
	r.written++
	return nil
}
