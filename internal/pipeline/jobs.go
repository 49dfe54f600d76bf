package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/docpart/internal/element"
	"github.com/dgallion1/docpart/internal/partition"
)

// JobStatus represents the state of a queued partitioning job.
type JobStatus string

const (
	StatusQueued       JobStatus = "queued"
	StatusPartitioning JobStatus = "partitioning"
	StatusCompleted    JobStatus = "completed"
	StatusFailed       JobStatus = "failed"
)

// Job tracks one queued document through partitioning.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	Filename string `json:"filename"`
	Strategy string `json:"strategy"`

	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	opts     partition.Options
	elements []element.Element
	errors   []string
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

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetOptions sets the partitioning options the worker will run with.
func (j *Job) SetOptions(opts partition.Options) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.opts = opts
}

// Options returns the partitioning options for this job.
func (j *Job) Options() partition.Options {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.opts
}

// SetElements records the partitioning result and releases the raw
// file bytes, which are no longer needed once elements exist.
func (j *Job) SetElements(elems []element.Element) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.elements = elems
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// Elements returns the partitioning result, nil until completion.
func (j *Job) Elements() []element.Element {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.elements
}

// JobSnapshot is a read-only, JSON-safe copy of job state. Elements
// are present only once the job completed.
type JobSnapshot struct {
	ID           string            `json:"job_id"`
	Status       JobStatus         `json:"status"`
	Filename     string            `json:"filename"`
	Strategy     string            `json:"strategy"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	ElementCount int               `json:"element_count"`
	Errors       []string          `json:"errors"`
	Elements     []element.Element `json:"elements,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.errors
	if errs == nil {
		errs = []string{}
	}
	snap := JobSnapshot{
		ID:           j.ID,
		Status:       j.Status,
		Filename:     j.Filename,
		Strategy:     j.Strategy,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
		ElementCount: len(j.elements),
		Errors:       errs,
	}
	if j.Status == StatusCompleted {
		snap.Elements = j.elements
	}
	return snap
}
