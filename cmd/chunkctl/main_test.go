package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func TestOptions_Defaults(t *testing.T) {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	_, err := parser.ParseArgs([]string{"-f", "doc.pdf", "--estimate"})
	require.NoError(t, err)
	assert.Equal(t, "doc.pdf", opts.File)
	assert.Equal(t, 750, opts.Size)
	assert.Equal(t, "file:///tmp/docchunk/content", opts.Output)
	assert.True(t, opts.Estimate)
	assert.False(t, opts.NoPdftotext)
}

func TestOptions_FileRequired(t *testing.T) {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	_, err := parser.ParseArgs([]string{"-s", "10"})
	assert.Error(t, err)
}

func TestRun_WritesChunks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# Notes\n\n## A\n\nalpha text\n\n## B\n\nbeta text\n"), 0o644))

	var stdout, stderr bytes.Buffer
	opts := &Options{
		File:     path,
		Output:   "mem://localhost/chunkctl",
		Size:     20,
		BlobName: "upload/team/notes.md",
		Encoding: "words",
	}
	require.NoError(t, run(context.Background(), opts, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "2 chunks written to mem://localhost/chunkctl/team/notes.md")

	ok, err := afs.New().Exists(context.Background(), "mem://localhost/chunkctl/team/notes.md/notes-1.json")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRun_ReportsFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))
	layoutPath := filepath.Join(dir, "layout.json")
	require.NoError(t, os.WriteFile(layoutPath, []byte(`{"content":"ab","paragraphs":[{"spans":[{"offset":1,"length":9}]}]}`), 0o644))

	var stdout, stderr bytes.Buffer
	opts := &Options{File: path, Layout: layoutPath, Output: "mem://localhost/chunkctl-fail", Size: 20, Encoding: "words"}
	err := run(context.Background(), opts, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "span")
}

func TestRun_RejectsEscapingBlobName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# Notes\n\nbody\n"), 0o644))

	var stdout, stderr bytes.Buffer
	opts := &Options{
		File:     path,
		Output:   "mem://localhost/chunkctl-escape/content",
		Size:     20,
		BlobName: "c/../other/notes.md",
		Encoding: "words",
		Clear:    true,
	}
	err := run(context.Background(), opts, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid blob name")
	assert.Empty(t, stdout.String())
}
