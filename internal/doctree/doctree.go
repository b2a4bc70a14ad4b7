package doctree

import "time"

// ElementType distinguishes prose from tables in a document map.
type ElementType string

const (
	ElementText  ElementType = "text"
	ElementTable ElementType = "table"
)

// Element is one paragraph or table with its resolved heading context.
type Element struct {
	Offset     int         `json:"offset"`
	Text       string      `json:"text"`
	Type       ElementType `json:"type"`
	Title      string      `json:"title"`    // Running main title
	Subtitle   string      `json:"subtitle"` // Most recent title-level heading
	Section    string      `json:"section"`  // Most recent section heading
	PageNumber int         `json:"page_number"`
}

// IsTable reports whether the element carries table HTML.
func (e Element) IsTable() bool {
	return e.Type == ElementTable
}

// DocumentMap is the ordered structure of a single document.
type DocumentMap struct {
	FileName  string    `json:"file_name"`
	FileURI   string    `json:"file_uri"`
	Content   string    `json:"content,omitempty"`
	Structure []Element `json:"structure"`
}

// ClassText is the Chunk.FileClass of every chunked document.
const ClassText = "text"

// Chunk is a size-bounded segment of a document, written once to the blob store.
type Chunk struct {
	FileName          string    `json:"file_name"`
	FileURI           string    `json:"file_uri"`
	FileClass         string    `json:"file_class"`
	ProcessedDatetime time.Time `json:"processed_datetime"`
	Title             string    `json:"title"`
	Subtitle          string    `json:"subtitle"`
	Section           string    `json:"section"`
	Pages             []int     `json:"pages"`
	TokenCount        int       `json:"token_count"`
	Content           string    `json:"content"`

	// Index is the sequential chunk number within the document.
	Index int `json:"-"`
}
