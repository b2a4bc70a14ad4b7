package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/docchunk/internal/parser"
	"github.com/dgallion1/docchunk/internal/pipeline"
	"github.com/dgallion1/docchunk/internal/writer"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	// Limit total request size. The optional layout part shares the budget.
	r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	blobName := strings.TrimSpace(r.FormValue("blob_name"))
	if blobName == "" {
		blobName = pipeline.DefaultBlobName(filename)
	}
	if err := writer.ValidateBlobName(blobName); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	target := filepath.Base(blobName)
	if !parser.IsSupportedExtension(target) && !parser.IsMedia(target) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(target)), http.StatusBadRequest)
		return
	}

	data, ok := s.readLimited(w, file, "file")
	if !ok {
		return
	}

	job := pipeline.NewJob(blobName, r.FormValue("file_uri"), data)

	if lf, _, err := r.FormFile("layout"); err == nil {
		layoutData, ok := s.readLimited(w, lf, "layout")
		lf.Close()
		if !ok {
			return
		}
		job.SetLayoutData(layoutData)
	}

	if v := r.FormValue("chunk_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "chunk_size must be a positive integer", http.StatusBadRequest)
			return
		}
		job.ChunkSize = n
	}
	job.Clear = r.FormValue("clear") == "true"

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":    job.ID,
		"blob_name": job.BlobName,
		"status":    pipeline.StatusQueued,
		"poll_url":  fmt.Sprintf("/api/ingest/%s/status", job.ID),
	})
}

// readLimited reads an upload part, answering 413 when it exceeds the limit.
func (s *Server) readLimited(w http.ResponseWriter, r io.Reader, part string) ([]byte, bool) {
	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read "+part, http.StatusInternalServerError)
		return nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("%s exceeds max size (%d bytes)", part, s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return nil, false
	}
	return data, true
}

func (s *Server) handleIngestStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
