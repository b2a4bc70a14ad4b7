package writer

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docchunk/internal/doctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func TestSplitBlobName(t *testing.T) {
	cases := []struct {
		in   string
		want BlobPath
	}{
		{"container/dir/sub/file.pdf", BlobPath{Dir: "dir/sub/", Name: "file", Ext: ".pdf"}},
		{"upload/report.docx", BlobPath{Dir: "", Name: "report", Ext: ".docx"}},
		{"report.pdf", BlobPath{Name: "report", Ext: ".pdf"}},
		{"/upload/a/b.c.xlsx", BlobPath{Dir: "a/", Name: "b.c", Ext: ".xlsx"}},
		{"upload/README", BlobPath{Name: "README"}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, SplitBlobName(tc.in))
		})
	}
}

func TestValidateBlobName(t *testing.T) {
	valid := []string{"upload/report.pdf", "report.pdf", "upload/a..b/q1..q2.pdf", "/upload/x/y.html"}
	for _, name := range valid {
		assert.NoError(t, ValidateBlobName(name), name)
	}
	invalid := []string{"", "/", "c/../other/keep.pdf", "upload/a/../../b.pdf", `c\..\other\keep.pdf`, "../keep.pdf"}
	for _, name := range invalid {
		err := ValidateBlobName(name)
		var nameErr *BlobNameError
		assert.ErrorAs(t, err, &nameErr, name)
	}
}

func TestBlobPathLayout(t *testing.T) {
	p := SplitBlobName("upload/hr/handbook.pdf")
	assert.Equal(t, "hr/handbook.pdf", p.Folder())
	assert.Equal(t, "hr/handbook.pdf/handbook-3.json", p.ChunkFile(3))
	assert.Equal(t, "hr/handbook_Document_Map.pdf.json", p.DebugFile("Document_Map"))
	assert.Equal(t, "handbook.pdf", p.FileName())
}

func TestBlobWriter_WriteChunk(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	store := NewStore(fs, "mem://localhost/writer-write/", nil)
	w, err := store.Writer("upload/hr/handbook.pdf")
	require.NoError(t, err)

	chunk := doctree.Chunk{
		FileName:          "handbook.pdf",
		FileClass:         doctree.ClassText,
		ProcessedDatetime: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Title:             "Handbook",
		Pages:             []int{1, 2},
		TokenCount:        4,
		Content:           "\n<table><tr><td>a & b</td></tr></table>",
		Index:             1,
	}
	require.NoError(t, w.WriteChunk(ctx, chunk))
	assert.Equal(t, 1, w.Written())

	data, err := fs.DownloadWithURL(ctx, "mem://localhost/writer-write/hr/handbook.pdf/handbook-1.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), "<table><tr><td>a & b</td></tr></table>")

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Handbook", got["title"])
	assert.Equal(t, "text", got["file_class"])
	assert.Equal(t, []any{1.0, 2.0}, got["pages"])
	assert.NotContains(t, got, "Index")
}

func TestStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore(afs.New(), "mem://localhost/writer-list", nil)
	blob := "upload/report.pdf"

	files, err := store.List(ctx, blob)
	require.NoError(t, err)
	assert.Empty(t, files)

	w, err := store.Writer(blob)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, w.WriteChunk(ctx, doctree.Chunk{Index: i, Content: "x"}))
	}

	files, err = store.List(ctx, blob)
	require.NoError(t, err)
	require.Len(t, files, 3)
	folder, err := store.FolderURL(blob)
	require.NoError(t, err)
	for _, f := range files {
		assert.True(t, strings.HasPrefix(f, folder), f)
	}

	n, err := store.Delete(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	files, err = store.List(ctx, blob)
	require.NoError(t, err)
	assert.Empty(t, files)

	n, err = store.Delete(ctx, blob)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_RejectsEscapingBlobNames(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	victim := filepath.Join(dir, "other", "keep.pdf")
	require.NoError(t, os.MkdirAll(victim, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(victim, "keep-0.json"), []byte("{}"), 0o644))

	store := NewStore(afs.New(), "file://"+filepath.ToSlash(dir)+"/content", nil)
	blob := "c/../other/keep.pdf"
	var nameErr *BlobNameError

	_, err := store.FolderURL(blob)
	assert.ErrorAs(t, err, &nameErr)
	_, err = store.List(ctx, blob)
	assert.ErrorAs(t, err, &nameErr)
	_, err = store.Writer(blob)
	assert.ErrorAs(t, err, &nameErr)
	assert.ErrorAs(t, store.WriteDebug(ctx, "file://"+filepath.ToSlash(dir)+"/logs", blob, "Document_Map", struct{}{}), &nameErr)

	n, err := store.Delete(ctx, blob)
	assert.ErrorAs(t, err, &nameErr)
	assert.Zero(t, n)
	_, statErr := os.Stat(filepath.Join(victim, "keep-0.json"))
	assert.NoError(t, statErr, "folder outside the root must survive")
}

func TestStore_WriteDebug(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	store := NewStore(fs, "mem://localhost/writer-debug/content", nil)

	m := doctree.DocumentMap{FileName: "report.pdf", Structure: []doctree.Element{{Text: "hi", Type: doctree.ElementText, PageNumber: 1}}}
	require.NoError(t, store.WriteDebug(ctx, "mem://localhost/writer-debug/logs", "upload/q1/report.pdf", "Document_Map", m))

	data, err := fs.DownloadWithURL(ctx, "mem://localhost/writer-debug/logs/q1/report_Document_Map.pdf.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"file_name\": \"report.pdf\"")
}

func TestWriteError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	var err error = &WriteError{URL: "file:///x", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "file:///x")
}
