// Package jobs runs pipeline work as background jobs with per-lane ordering,
// bounded retries, and durable records. Translation jobs for one
// (work, target language) pair share a lane and therefore run in chapter
// order: chapter N's known-entity context depends on rows written by chapter
// N-1's job.
package jobs

import (
	"context"
	"time"
)

// Job is the interface all job types implement.
type Job interface {
	// Type returns the job type identifier.
	Type() string

	// Lane returns the serialization key. Jobs sharing a lane execute one at
	// a time, in submission order. An empty lane runs on a shared default
	// lane.
	Lane() string

	// Execute runs the job. It must respect context cancellation and must be
	// safe to re-run after a failed attempt: all persistent effects are
	// deferred until validation passes, so a retried attempt starts clean.
	Execute(ctx context.Context) error
}

// Status represents the current state of a job record.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	// StatusDead marks a job whose retryable failures exhausted the attempt
	// budget. Dead jobs are surfaced to operators, never retried
	// automatically.
	StatusDead Status = "dead"
)

// Record is the durable job record the API exposes to operators.
type Record struct {
	ID          string            `json:"id"`
	JobType     string            `json:"job_type"`
	Lane        string            `json:"lane"`
	Status      Status            `json:"status"`
	Attempts    int               `json:"attempts"`
	CreatedAt   time.Time         `json:"created_at"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Error       string            `json:"error,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ListFilter specifies criteria for listing job records.
type ListFilter struct {
	Status  Status // filter by status (empty = all)
	JobType string // filter by job type (empty = all)
	Limit   int    // max results (0 = default 100)
}
