package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/docmap"
	"github.com/dgallion1/docchunk/internal/doctree"
	"github.com/dgallion1/docchunk/internal/parser"
	"github.com/dgallion1/docchunk/internal/writer"
)

// WorkerOptions are the per-deployment switches a worker runs with.
type WorkerOptions struct {
	StrictLayout         bool
	PDFFallbackPdftotext bool
	MaxWriteRetries      int
	// DevOutputURL, when set, receives the document map and layout result
	// of every document as indented JSON.
	DevOutputURL string
}

// Worker processes a single document job: parse, build the document map,
// chunk it and write the chunks.
type Worker struct {
	store     *writer.Store
	assembler *chunker.Assembler
	stats     *Stats
	log       *slog.Logger
	opts      WorkerOptions
	backoff   func(int) time.Duration
}

func NewWorker(store *writer.Store, assembler *chunker.Assembler, stats *Stats, log *slog.Logger, opts WorkerOptions) *Worker {
	if opts.MaxWriteRetries <= 0 {
		opts.MaxWriteRetries = MaxRetries
	}
	return &Worker{
		store:     store,
		assembler: assembler,
		stats:     stats,
		log:       log,
		opts:      opts,
		backoff:   Backoff,
	}
}

// Process runs the full chunking pipeline for a job and leaves the outcome
// in the job's status and status log.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "blob", job.BlobName)
	start := time.Now()
	defer job.releaseData()

	job.SetStatus(StatusProcessing, "parsing")
	job.Log("processing started", ClassInfo)

	n, folder, err := w.process(ctx, job, log)
	switch {
	case errors.Is(err, parser.ErrMedia):
		log.Info("media file skipped")
		job.Log("media files are not chunked", ClassInfo)
		job.SetStatus(StatusSkipped, "routing")
		return
	case err != nil:
		log.Error("processing failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusError, job.Snapshot().Phase)
		return
	}

	elapsed := time.Since(start)
	if w.stats != nil {
		w.stats.Record(elapsed.Milliseconds(), n)
	}
	log.Info("document processed", "chunks", n, "duration_ms", elapsed.Milliseconds())
	job.Log(fmt.Sprintf("%d chunks written to %s", n, folder), ClassInfo)
	job.SetStatus(StatusComplete, "done")
}

func (w *Worker) process(ctx context.Context, job *Job, log *slog.Logger) (int, string, error) {
	folder, err := w.store.FolderURL(job.BlobName)
	if err != nil {
		return 0, "", err
	}
	m, src, err := w.documentMap(job, log)
	if err != nil {
		return 0, "", err
	}
	job.SetElements(len(m.Structure))
	job.Log(fmt.Sprintf("document map built with %d elements", len(m.Structure)), ClassDebug)

	if w.opts.DevOutputURL != "" {
		w.writeDevOutput(ctx, job, m, src, log)
	}

	if job.Clear {
		job.SetStatus(StatusProcessing, "clearing")
		removed, err := w.store.Delete(ctx, job.BlobName)
		if err != nil {
			return 0, "", fmt.Errorf("clear chunk folder: %w", err)
		}
		job.Log(fmt.Sprintf("removed %d existing chunks", removed), ClassDebug)
	}

	job.SetStatus(StatusProcessing, "chunking")
	assembler := w.assembler
	if job.ChunkSize > 0 {
		assembler = assembler.WithTargetSize(job.ChunkSize)
	}
	bw, err := w.store.Writer(job.BlobName)
	if err != nil {
		return 0, "", err
	}
	sink := &retrySink{
		next:     bw,
		attempts: w.opts.MaxWriteRetries,
		backoff:  w.backoff,
		log:      log,
		onRetry:  job.IncrWriteRetries,
		onWrite:  job.IncrChunksWritten,
	}
	n, err := assembler.Build(ctx, m, sink)
	if err != nil {
		return n, "", fmt.Errorf("chunk: %w", err)
	}
	return n, folder, nil
}

// documentMap parses the upload and builds its document map.
func (w *Worker) documentMap(job *Job, log *slog.Logger) (*doctree.DocumentMap, *parser.Source, error) {
	path := writer.SplitBlobName(job.BlobName)
	fileName := path.FileName()

	p, err := parser.ForFile(fileName)
	if err != nil {
		return nil, nil, err
	}
	if pdf, ok := p.(*parser.PDFParser); ok {
		pdf.FallbackPdftotext = w.opts.PDFFallbackPdftotext
		if data := job.LayoutData(); len(data) > 0 {
			pdf.Layout = bytes.NewReader(data)
			job.Log("using supplied layout result", ClassDebug)
		}
	}

	data := job.FileData()
	job.SetContentHash(ContentHashHex(data))
	src, err := p.Parse(bytes.NewReader(data), fileName)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", fileName, err)
	}

	job.SetStatus(StatusProcessing, "mapping")
	opts := docmap.Options{Strict: w.opts.StrictLayout, Logger: log}
	var m *doctree.DocumentMap
	if src.IsLayout() {
		m, err = docmap.BuildFromLayout(fileName, job.FileURI, src.Layout, opts)
	} else {
		m, err = docmap.BuildFromHTML(fileName, job.FileURI, src.HTML, docmap.HTMLOptions{Options: opts, StripAttributes: src.StripAttributes})
	}
	if err != nil {
		return nil, nil, fmt.Errorf("build document map: %w", err)
	}
	return m, src, nil
}

// writeDevOutput stores the document map and, for PDFs, the layout result.
// Failures are logged and never fail the document.
func (w *Worker) writeDevOutput(ctx context.Context, job *Job, m *doctree.DocumentMap, src *parser.Source, log *slog.Logger) {
	debug := *m
	if src.IsLayout() {
		debug.Content = src.Layout.Content
	}
	if err := w.store.WriteDebug(ctx, w.opts.DevOutputURL, job.BlobName, "Document_Map", debug); err != nil {
		log.Warn("dev output failed", "kind", "Document_Map", "error", err)
	}
	if src.IsLayout() {
		if err := w.store.WriteDebug(ctx, w.opts.DevOutputURL, job.BlobName, "FR_Result", src.Layout); err != nil {
			log.Warn("dev output failed", "kind", "FR_Result", "error", err)
		}
	}
}

// DefaultBlobName is the blob name used for an upload without one.
func DefaultBlobName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	return "upload/" + base
}
