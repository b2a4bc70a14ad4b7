package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of a document in the ingestion pipeline.
type JobStatus string

const (
	StatusUploaded   JobStatus = "uploaded"
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusComplete   JobStatus = "complete"
	StatusError      JobStatus = "error"
	StatusSkipped    JobStatus = "skipped"
	StatusThrottled  JobStatus = "throttled"
)

// Classification is the severity of a status log entry.
type Classification string

const (
	ClassDebug Classification = "debug"
	ClassInfo  Classification = "info"
	ClassError Classification = "error"
)

// LogEntry is one line of a document's status log.
type LogEntry struct {
	Timestamp      time.Time      `json:"timestamp"`
	Message        string         `json:"message"`
	Classification Classification `json:"classification"`
}

// Job tracks the state of a single document ingestion.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	BlobName string `json:"blob_name"`
	FileURI  string `json:"file_uri"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	// ChunkSize overrides the configured token budget when positive.
	ChunkSize int `json:"chunk_size,omitempty"`
	// Clear deletes the document's existing chunk folder before writing.
	Clear bool `json:"clear,omitempty"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData   []byte
	layoutData []byte
	statusLog  []LogEntry
	errors     []string
}

// Progress tracks processing progress.
type Progress struct {
	Elements      int      `json:"elements"`
	ChunksWritten int      `json:"chunks_written"`
	WriteRetries  int      `json:"write_retries"`
	Errors        []string `json:"errors"`
}

// NewJob returns a job in the uploaded state.
func NewJob(blobName, fileURI string, data []byte) *Job {
	now := time.Now()
	j := &Job{
		ID:        uuid.NewString(),
		BlobName:  blobName,
		FileURI:   fileURI,
		Status:    StatusUploaded,
		Phase:     "uploaded",
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
	j.Log("file uploaded", ClassInfo)
	return j
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically and records it in the status log.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
	j.appendLocked("status "+string(status)+": "+phase, ClassDebug)
}

// Log appends an entry to the status log.
func (j *Job) Log(message string, class Classification) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.appendLocked(message, class)
}

func (j *Job) appendLocked(message string, class Classification) {
	now := time.Now()
	j.statusLog = append(j.statusLog, LogEntry{Timestamp: now, Message: message, Classification: class})
	j.UpdatedAt = now
}

// AddError records an error and logs it.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.appendLocked(err, ClassError)
}

// IncrChunksWritten atomically increments chunks written.
func (j *Job) IncrChunksWritten() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ChunksWritten++
	j.UpdatedAt = time.Now()
}

// IncrWriteRetries counts a retried blob write.
func (j *Job) IncrWriteRetries() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.WriteRetries++
	j.UpdatedAt = time.Now()
}

// SetElements records the number of structural elements in the document map.
func (j *Job) SetElements(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Elements = n
	j.UpdatedAt = time.Now()
}

// SetContentHash records the hash of the uploaded bytes.
func (j *Job) SetContentHash(h string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = h
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetLayoutData attaches a layout service result for a PDF.
func (j *Job) SetLayoutData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.layoutData = data
}

// LayoutData returns the attached layout result, if any.
func (j *Job) LayoutData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.layoutData
}

// releaseData drops the upload once the job is finished with it.
func (j *Job) releaseData() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
	j.layoutData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string     `json:"job_id"`
	BlobName    string     `json:"blob_name"`
	FileURI     string     `json:"file_uri"`
	Status      JobStatus  `json:"status"`
	Phase       string     `json:"phase"`
	ContentHash string     `json:"content_hash,omitempty"`
	Progress    Progress   `json:"progress"`
	StatusLog   []LogEntry `json:"status_log"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	entries := append([]LogEntry{}, j.statusLog...)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:          j.ID,
		BlobName:    j.BlobName,
		FileURI:     j.FileURI,
		Status:      j.Status,
		Phase:       j.Phase,
		ContentHash: j.ContentHash,
		Progress:    p,
		StatusLog:   entries,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
