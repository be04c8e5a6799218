package jobs

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a job record does not exist.
var ErrNotFound = errors.New("job not found")

// RecordStore persists job records.
type RecordStore interface {
	Create(ctx context.Context, r *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, filter ListFilter) ([]*Record, error)

	// MarkRunning transitions a record to running and stamps started_at.
	MarkRunning(ctx context.Context, id string, attempts int) error

	// MarkFinished transitions a record to a terminal status, stamps
	// completed_at, and stores the bounded error text (empty on success).
	MarkFinished(ctx context.Context, id string, status Status, attempts int, errText string) error
}
