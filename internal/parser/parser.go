package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docchunk/internal/layout"
)

// ErrMedia is returned by ForFile for audio and video uploads. They are
// recognised but not chunked.
var ErrMedia = errors.New("media files are not chunked")

// ErrUnsupported is returned by ForFile for extensions with no parser.
var ErrUnsupported = errors.New("unsupported file extension")

// Source is a parsed upload in one of the two shapes the structure builders
// accept: a layout result (PDF) or an HTML string (everything else).
type Source struct {
	Layout *layout.Result
	HTML   string
	// StripAttributes asks the HTML builder to drop id/class/style from
	// tables. Set for spreadsheet conversions.
	StripAttributes bool
}

// IsLayout reports whether the source goes through the span classifier.
func (s *Source) IsLayout() bool { return s.Layout != nil }

// Parser converts raw document bytes into a Source.
type Parser interface {
	Parse(r io.Reader, filename string) (*Source, error)
}

// SupportedExtensions lists file extensions this service can chunk.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".xlsx":     true,
}

// MediaExtensions are accepted uploads that are skipped.
var MediaExtensions = map[string]bool{
	".mp3": true, ".mp4": true, ".wav": true, ".m4a": true,
	".mov": true, ".avi": true, ".wmv": true, ".mkv": true,
	".flac": true, ".ogg": true, ".webm": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".xlsx":
		return &XLSXParser{}, nil
	}
	if MediaExtensions[ext] {
		return nil, fmt.Errorf("%s: %w", ext, ErrMedia)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// IsMedia checks if a file is a recognised media upload.
func IsMedia(filename string) bool {
	return MediaExtensions[strings.ToLower(filepath.Ext(filename))]
}

func htmlSource(s string) *Source {
	return &Source{HTML: s}
}
