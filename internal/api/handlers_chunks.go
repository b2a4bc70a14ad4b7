package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/docmap"
	"github.com/dgallion1/docchunk/internal/doctree"
	"github.com/dgallion1/docchunk/internal/layout"
	"github.com/dgallion1/docchunk/internal/writer"
)

// chunkRequest is the body of POST /api/chunk. Exactly one of Layout and
// HTML is expected; Layout wins when both are set.
type chunkRequest struct {
	BlobName        string          `json:"blob_name"`
	FileURI         string          `json:"file_uri"`
	ChunkSize       int             `json:"chunk_size"`
	Layout          json.RawMessage `json:"layout,omitempty"`
	HTML            string          `json:"html,omitempty"`
	StripAttributes bool            `json:"strip_attributes,omitempty"`
}

// handleChunkPreview chunks a document synchronously and returns the chunks
// without writing them.
func (s *Server) handleChunkPreview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req chunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Layout) == 0 && req.HTML == "" {
		jsonError(w, "layout or html is required", http.StatusBadRequest)
		return
	}
	if req.ChunkSize < 0 {
		jsonError(w, "chunk_size must be positive", http.StatusBadRequest)
		return
	}

	fileName := writer.SplitBlobName(req.BlobName).FileName()
	log := s.log.With("blob", req.BlobName)
	opts := docmap.Options{Strict: s.cfg.StrictLayout, Logger: log}

	var (
		m   *doctree.DocumentMap
		err error
	)
	if len(req.Layout) > 0 {
		var res *layout.Result
		res, err = layout.Decode(bytes.NewReader(req.Layout))
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		m, err = docmap.BuildFromLayout(fileName, req.FileURI, res, opts)
	} else {
		m, err = docmap.BuildFromHTML(fileName, req.FileURI, req.HTML, docmap.HTMLOptions{Options: opts, StripAttributes: req.StripAttributes})
	}
	if err != nil {
		jsonError(w, err.Error(), statusForBuildError(err))
		return
	}

	assembler := s.orchestrator.Assembler()
	if req.ChunkSize > 0 {
		assembler = assembler.WithTargetSize(req.ChunkSize)
	}
	chunks, err := assembler.Chunks(m)
	if err != nil {
		jsonError(w, err.Error(), statusForBuildError(err))
		return
	}
	if chunks == nil {
		chunks = []doctree.Chunk{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"blob_name": req.BlobName,
		"elements":  len(m.Structure),
		"count":     len(chunks),
		"chunks":    chunks,
	})
}

func statusForBuildError(err error) int {
	var (
		spanErr  *layout.SpanError
		cellErr  *layout.CellError
		validErr *layout.ValidationError
	)
	switch {
	case errors.As(err, &spanErr), errors.As(err, &cellErr), errors.As(err, &validErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, chunker.ErrInvalidBudget):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// handleListChunks lists the chunk files stored for a document.
func (s *Server) handleListChunks(w http.ResponseWriter, r *http.Request) {
	blobName := r.URL.Query().Get("blob_name")
	if blobName == "" {
		jsonError(w, "blob_name query parameter is required", http.StatusBadRequest)
		return
	}

	store := s.orchestrator.Store()
	folder, err := store.FolderURL(blobName)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	files, err := store.List(r.Context(), blobName)
	if err != nil {
		jsonError(w, "failed to list chunks: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if files == nil {
		files = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"blob_name": blobName,
		"folder":    folder,
		"chunks":    files,
	})
}

// handleDeleteChunks removes a document's chunk folder.
func (s *Server) handleDeleteChunks(w http.ResponseWriter, r *http.Request) {
	blobName := r.URL.Query().Get("blob_name")
	if blobName == "" {
		jsonError(w, "blob_name query parameter is required", http.StatusBadRequest)
		return
	}

	n, err := s.orchestrator.Store().Delete(r.Context(), blobName)
	var nameErr *writer.BlobNameError
	switch {
	case errors.As(err, &nameErr):
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		jsonError(w, "failed to delete chunks: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"blob_name":      blobName,
		"chunks_deleted": n,
	})
}
