// Package writer stores finished chunks as JSON files on any blob store
// reachable through viant/afs (file://, mem://, s3://, gs://).
package writer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/docchunk/internal/doctree"
	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

const fileMode = 0o644

// WriteError reports a failed blob store operation. Callers may retry it.
type WriteError struct {
	URL string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.URL, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Store addresses chunk folders beneath a root URL.
type Store struct {
	fs   afs.Service
	root string
	log  *slog.Logger
}

// NewStore returns a Store writing beneath root. A nil fs uses afs.New().
func NewStore(fs afs.Service, root string, logger *slog.Logger) *Store {
	if fs == nil {
		fs = afs.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{fs: fs, root: strings.TrimRight(root, "/"), log: logger}
}

// Root returns the store's root URL.
func (s *Store) Root() string { return s.root }

// FolderURL returns the URL of a document's chunk folder.
func (s *Store) FolderURL(blobName string) (string, error) {
	if err := ValidateBlobName(blobName); err != nil {
		return "", err
	}
	return url.Join(s.root, SplitBlobName(blobName).Folder()), nil
}

// Writer returns a chunk sink for one document.
func (s *Store) Writer(blobName string) (*BlobWriter, error) {
	if err := ValidateBlobName(blobName); err != nil {
		return nil, err
	}
	return &BlobWriter{
		store: s,
		path:  SplitBlobName(blobName),
		log:   s.log.With("blob", blobName),
	}, nil
}

// List returns the chunk file URLs of a document. A document that was never
// written has no chunks and no error.
func (s *Store) List(ctx context.Context, blobName string) ([]string, error) {
	folder, err := s.FolderURL(blobName)
	if err != nil {
		return nil, err
	}
	ok, err := s.fs.Exists(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", folder, err)
	}
	if !ok {
		return nil, nil
	}
	objects, err := s.fs.List(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}
	var out []string
	for _, o := range objects {
		if o.IsDir() || !strings.HasSuffix(o.Name(), ".json") {
			continue
		}
		out = append(out, o.URL())
	}
	return out, nil
}

// Delete removes a document's chunk folder and returns how many chunk files
// it held.
func (s *Store) Delete(ctx context.Context, blobName string) (int, error) {
	files, err := s.List(ctx, blobName)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, nil
	}
	folder, err := s.FolderURL(blobName)
	if err != nil {
		return 0, err
	}
	if err := s.fs.Delete(ctx, folder); err != nil {
		return 0, &WriteError{URL: folder, Err: err}
	}
	s.log.Info("chunk folder deleted", "folder", folder, "files", len(files))
	return len(files), nil
}

// WriteDebug stores v as indented JSON next to the document under root,
// named "<dir><name>_<kind><ext>.json".
func (s *Store) WriteDebug(ctx context.Context, root, blobName, kind string, v any) error {
	if err := ValidateBlobName(blobName); err != nil {
		return err
	}
	target := url.Join(strings.TrimRight(root, "/"), SplitBlobName(blobName).DebugFile(kind))
	return s.upload(ctx, target, v)
}

func (s *Store) upload(ctx context.Context, target string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", target, err)
	}
	if err := s.fs.Upload(ctx, target, fileMode, &buf); err != nil {
		return &WriteError{URL: target, Err: err}
	}
	return nil
}

// BlobWriter writes the chunks of one document.
type BlobWriter struct {
	store   *Store
	path    BlobPath
	log     *slog.Logger
	written int
}

// Path returns the split blob name the writer lays files out by.
func (w *BlobWriter) Path() BlobPath { return w.path }

// Written returns how many chunks have been stored.
func (w *BlobWriter) Written() int { return w.written }

// ChunkURL returns the URL chunk n is written to.
func (w *BlobWriter) ChunkURL(n int) string {
	return url.Join(w.store.root, w.path.ChunkFile(n))
}

// WriteChunk stores c at "<dir><name><ext>/<name>-<index>.json".
func (w *BlobWriter) WriteChunk(ctx context.Context, c doctree.Chunk) error {
	target := w.ChunkURL(c.Index)
	if err := w.store.upload(ctx, target, c); err != nil {
		return err
	}
	w.written++
	w.log.Debug("chunk written", "url", target, "tokens", c.TokenCount)
	return nil
}
