// Package session tracks asynchronous layout jobs submitted through the
// HTTP API.
//
// The layout pipeline (pkg/bpmn/pipeline) is a pure, synchronous function,
// but the HTTP API (pkg/httpapi) also offers an asynchronous façade: a
// client submits a graph, gets back a job id, and polls for status while a
// worker runs the pipeline in the background. A Job records that worker's
// progress so any API instance can answer the poll, not just the one that
// accepted the submission.
//
// Implementations range from a file-backed Store for single-instance/CLI
// use to a MongoDB-backed Store for multi-instance API deployments sharing
// job state.
//
// # Usage
//
//	store, err := session.NewFileStore("")  // ~/.config/bpmnlayout/jobs/
//
//	job, err := session.New()
//	job.Stage = session.StageValidating
//	store.Set(ctx, job)
//
//	job, err = store.Get(ctx, jobID)
//	if job == nil {
//	    // job not found
//	}
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

// Sentinel errors for job operations.
var (
	// ErrNotFound names a missing job. FileStore and MongoStore do not
	// return it: their Get reports a missing job as nil, nil.
	ErrNotFound = errors.New("not found")

	// ErrExpired names a job record past its retention TTL. FileStore and
	// MongoStore do not return it: their Get reports an expired job as nil, nil.
	ErrExpired = errors.New("expired")
)

// Status is the coarse-grained state of an asynchronous layout job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Stage names one of the pipeline's stages, reported while a job runs so
// a client polling the job can show progress.
type Stage string

const (
	StageValidating  Stage = "validating"
	StageSizing      Stage = "sizing"
	StageLayering    Stage = "layering"
	StageConstrained Stage = "constrained"
	StageRouted      Stage = "routed"
	StageCompacted   Stage = "compacted"
	StageFolded      Stage = "folded"
	StageDone        Stage = "done"
)

// Job records the state of one asynchronous layout request.
type Job struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Stage     Stage     `json:"stage"`
	Result    string    `json:"result,omitempty"` // artifact key in pkg/cache, once succeeded
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired returns true if the job record has exceeded its retention period.
func (j *Job) IsExpired() bool {
	return time.Now().After(j.ExpiresAt)
}

// Done reports whether the job has reached a terminal status.
func (j *Job) Done() bool {
	return j.Status == StatusSucceeded || j.Status == StatusFailed
}

// Store is the interface for job storage backends.
type Store interface {
	// Get retrieves a job by ID.
	// Returns nil, nil if the job doesn't exist.
	Get(ctx context.Context, jobID string) (*Job, error)

	// Set stores a job, overwriting any existing record with the same ID.
	Set(ctx context.Context, job *Job) error

	// Delete removes a job.
	Delete(ctx context.Context, jobID string) error

	// Cleanup removes expired job records (optional, may be no-op).
	Cleanup(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// DefaultTTL is how long after its creation a job's record is retained;
// past that, Get treats it as missing and Cleanup may remove it.
const DefaultTTL = 24 * time.Hour

// GenerateID creates a cryptographically secure random job id.
func GenerateID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// New creates a freshly queued job with a generated ID and DefaultTTL
// retention.
func New() (*Job, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Job{
		ID:        id,
		Status:    StatusQueued,
		Stage:     StageValidating,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(DefaultTTL),
	}, nil
}
