package writer

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// BlobPath is a blob name split into the parts used to lay out chunk files.
type BlobPath struct {
	Dir  string // directory below the container, with a trailing slash, or ""
	Name string // file name without extension
	Ext  string // extension including the dot, or ""
}

// BlobNameError reports a blob name that cannot address a chunk folder
// beneath the store root.
type BlobNameError struct {
	Name   string
	Reason string
}

func (e *BlobNameError) Error() string {
	return fmt.Sprintf("invalid blob name %q: %s", e.Name, e.Reason)
}

// ValidateBlobName rejects blob names that are empty or that hold a ".."
// segment, which would resolve outside the store root.
func ValidateBlobName(blobName string) error {
	clean := strings.Trim(strings.ReplaceAll(blobName, "\\", "/"), "/")
	if clean == "" {
		return &BlobNameError{Name: blobName, Reason: "empty"}
	}
	for _, seg := range strings.Split(clean, "/") {
		if seg == ".." {
			return &BlobNameError{Name: blobName, Reason: "'..' segment"}
		}
	}
	return nil
}

// SplitBlobName splits "container/dir/sub/file.pdf" into dir "dir/sub/",
// name "file" and extension ".pdf". The first segment is the container and
// is dropped; a name with no slash has no container.
func SplitBlobName(blobName string) BlobPath {
	blobName = strings.Trim(strings.ReplaceAll(blobName, "\\", "/"), "/")
	var dir string
	if i := strings.LastIndex(blobName, "/"); i >= 0 {
		dir = blobName[:i+1]
		blobName = blobName[i+1:]
		if j := strings.Index(dir, "/"); j >= 0 {
			dir = dir[j+1:]
		}
	}
	ext := path.Ext(blobName)
	return BlobPath{Dir: dir, Name: strings.TrimSuffix(blobName, ext), Ext: ext}
}

// FileName returns the name with its extension.
func (p BlobPath) FileName() string {
	return p.Name + p.Ext
}

// Folder is the chunk folder of the document, relative to the store root.
func (p BlobPath) Folder() string {
	return p.Dir + p.Name + p.Ext
}

// ChunkFile is the relative path of chunk n.
func (p BlobPath) ChunkFile(n int) string {
	return p.Folder() + "/" + p.Name + "-" + strconv.Itoa(n) + ".json"
}

// DebugFile is the relative path of a dev artifact such as "Document_Map".
func (p BlobPath) DebugFile(kind string) string {
	return p.Dir + p.Name + "_" + kind + p.Ext + ".json"
}
