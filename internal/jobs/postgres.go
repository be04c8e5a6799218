package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRecordStore implements RecordStore on pgx.
type PostgresRecordStore struct {
	db *pgxpool.Pool
}

// NewPostgresRecordStore creates a job record store backed by a pgx pool.
func NewPostgresRecordStore(db *pgxpool.Pool) *PostgresRecordStore {
	return &PostgresRecordStore{db: db}
}

func (s *PostgresRecordStore) Create(ctx context.Context, r *Record) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO jobs (id, job_type, lane, status, attempts, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at;
	`, r.ID, r.JobType, r.Lane, string(r.Status), r.Attempts, r.Metadata).Scan(&r.CreatedAt)
	if err != nil {
		return fmt.Errorf("create job record: %w", err)
	}
	return nil
}

func (s *PostgresRecordStore) Get(ctx context.Context, id string) (*Record, error) {
	r := &Record{}
	var status string
	err := s.db.QueryRow(ctx, `
		SELECT id, job_type, lane, status, attempts, created_at, started_at, completed_at,
			COALESCE(error, ''), COALESCE(metadata, '{}'::jsonb)
		FROM jobs WHERE id = $1;
	`, id).Scan(&r.ID, &r.JobType, &r.Lane, &status, &r.Attempts, &r.CreatedAt,
		&r.StartedAt, &r.CompletedAt, &r.Error, &r.Metadata)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get job record: %w", err)
	}
	r.Status = Status(status)
	return r, nil
}

func (s *PostgresRecordStore) List(ctx context.Context, filter ListFilter) ([]*Record, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, job_type, lane, status, attempts, created_at, started_at, completed_at,
			COALESCE(error, ''), COALESCE(metadata, '{}'::jsonb)
		FROM jobs
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR job_type = $2)
		ORDER BY created_at DESC LIMIT $3;
	`, string(filter.Status), filter.JobType, limit)
	if err != nil {
		return nil, fmt.Errorf("list job records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		r := &Record{}
		var status string
		if err := rows.Scan(&r.ID, &r.JobType, &r.Lane, &status, &r.Attempts, &r.CreatedAt,
			&r.StartedAt, &r.CompletedAt, &r.Error, &r.Metadata); err != nil {
			return nil, fmt.Errorf("scan job record: %w", err)
		}
		r.Status = Status(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresRecordStore) MarkRunning(ctx context.Context, id string, attempts int) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE jobs SET status = $2, attempts = $3, started_at = COALESCE(started_at, now())
		WHERE id = $1;
	`, id, string(StatusRunning), attempts)
	if err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PostgresRecordStore) MarkFinished(ctx context.Context, id string, status Status, attempts int, errText string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE jobs SET status = $2, attempts = $3, completed_at = now(), error = NULLIF($4, '')
		WHERE id = $1;
	`, id, string(status), attempts, errText)
	if err != nil {
		return fmt.Errorf("mark job finished: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

var _ RecordStore = (*PostgresRecordStore)(nil)
