// Command chunkctl chunks one document and writes the chunks to a blob store.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/pipeline"
	"github.com/dgallion1/docchunk/internal/writer"
	"github.com/jessevdk/go-flags"
	"github.com/viant/afs"
)

// Options are the command line flags, interpreted by github.com/jessevdk/go-flags.
type Options struct {
	File        string `short:"f" long:"file" required:"true" description:"document to chunk"`
	Layout      string `short:"l" long:"layout" description:"layout result JSON for a PDF"`
	Output      string `short:"o" long:"output" default:"file:///tmp/docchunk/content" description:"chunk output root URL"`
	Size        int    `short:"s" long:"size" default:"750" description:"token budget per chunk"`
	BlobName    string `long:"blob-name" description:"blob name that lays out the output (default upload/<file>)"`
	Encoding    string `long:"encoding" default:"cl100k_base" description:"tiktoken encoding"`
	Estimate    bool   `long:"estimate" description:"count tokens with the word heuristic instead of tiktoken"`
	Clear       bool   `long:"clear" description:"delete the document's existing chunks first"`
	Strict      bool   `long:"strict" description:"fail on layout validation issues"`
	NoPdftotext bool   `long:"no-pdftotext" description:"do not fall back to the pdftotext binary for PDFs the Go reader cannot read"`
	Verbose     bool   `short:"v" long:"verbose" description:"debug logging"`
}

func main() {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.Parse(); err != nil {
		var flagErr *flags.Error
		if errors.As(err, &flagErr) && flagErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "chunkctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *Options, stdout, stderr io.Writer) error {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))

	counter, err := newCounter(opts)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(opts.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", opts.File, err)
	}

	blobName := opts.BlobName
	if blobName == "" {
		blobName = pipeline.DefaultBlobName(filepath.Base(opts.File))
	}
	if err := writer.ValidateBlobName(blobName); err != nil {
		return err
	}
	job := pipeline.NewJob(blobName, opts.File, data)
	job.Clear = opts.Clear
	if opts.Layout != "" {
		layoutData, err := os.ReadFile(opts.Layout)
		if err != nil {
			return fmt.Errorf("read %s: %w", opts.Layout, err)
		}
		job.SetLayoutData(layoutData)
	}

	store := writer.NewStore(afs.New(), opts.Output, log)
	assembler := chunker.New(counter, chunker.Config{TargetSize: opts.Size, Logger: log})
	w := pipeline.NewWorker(store, assembler, nil, log, pipeline.WorkerOptions{
		StrictLayout:         opts.Strict,
		PDFFallbackPdftotext: !opts.NoPdftotext,
	})
	w.Process(ctx, job)

	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusComplete:
		folder, _ := store.FolderURL(blobName)
		fmt.Fprintf(stdout, "%d chunks written to %s\n", snap.Progress.ChunksWritten, folder)
		return nil
	case pipeline.StatusSkipped:
		fmt.Fprintf(stdout, "%s skipped: media files are not chunked\n", blobName)
		return nil
	}
	if n := len(snap.Progress.Errors); n > 0 {
		return errors.New(snap.Progress.Errors[n-1])
	}
	return fmt.Errorf("document ended in state %s", snap.Status)
}

func newCounter(opts *Options) (chunker.Counter, error) {
	if opts.Estimate {
		return chunker.Estimator, nil
	}
	return chunker.NewCounter(opts.Encoding)
}
