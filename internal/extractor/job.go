package extractor

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type JobStatus int

const (
	RUNNING JobStatus = iota
	COMPLETE
	FAILED
)

// Job tracks a single invocation of the external tool from the moment a
// concurrency slot is acquired until the process concludes. Concluded
// jobs are retained by the service (up to a cap) so that observers can
// see recent activity, not just in-flight work.
type Job struct {
	mutex      sync.Mutex
	id         uuid.UUID
	mode       Mode
	url        string
	status     JobStatus
	failure    *FailureKind
	startedAt  time.Time
	finishedAt *time.Time
}

func newJob(mode Mode, url string) *Job {
	return &Job{
		id:        uuid.New(),
		mode:      mode,
		url:       url,
		status:    RUNNING,
		startedAt: time.Now(),
	}
}

func (job *Job) ID() uuid.UUID { return job.id }
func (job *Job) Mode() Mode    { return job.mode }
func (job *Job) URL() string   { return job.url }

func (job *Job) Status() JobStatus {
	job.mutex.Lock()
	defer job.mutex.Unlock()

	return job.status
}

// Failure returns the kind of fault that concluded this job, or false
// if the job is still running or completed without error.
func (job *Job) Failure() (FailureKind, bool) {
	job.mutex.Lock()
	defer job.mutex.Unlock()

	if job.failure == nil {
		return 0, false
	}

	return *job.failure, true
}

// conclude transitions the job out of RUNNING based on the outcome of
// the invocation it represents. A nil error marks the job COMPLETE.
func (job *Job) conclude(err error) {
	job.mutex.Lock()
	defer job.mutex.Unlock()

	now := time.Now()
	job.finishedAt = &now

	if err == nil {
		job.status = COMPLETE
		return
	}

	job.status = FAILED
	if kind, ok := KindOf(err); ok {
		job.failure = &kind
	}
}

func (job *Job) MarshalJSON() ([]byte, error) {
	job.mutex.Lock()
	defer job.mutex.Unlock()

	var failure *string
	if job.failure != nil {
		f := job.failure.String()
		failure = &f
	}

	return json.Marshal(struct {
		ID         uuid.UUID  `json:"id"`
		Mode       Mode       `json:"mode"`
		URL        string     `json:"url"`
		Status     JobStatus  `json:"status"`
		Failure    *string    `json:"failure"`
		StartedAt  time.Time  `json:"started_at"`
		FinishedAt *time.Time `json:"finished_at"`
	}{
		job.id,
		job.mode,
		job.url,
		job.status,
		failure,
		job.startedAt,
		job.finishedAt,
	})
}

func (job *Job) String() string {
	return fmt.Sprintf("{%v Mode=%s Status=%s}", job.id, job.mode, job.Status())
}

func (s JobStatus) String() string {
	switch s {
	case RUNNING:
		return "RUNNING"
	case COMPLETE:
		return "COMPLETE"
	case FAILED:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN[%d]", int(s))
	}
}
