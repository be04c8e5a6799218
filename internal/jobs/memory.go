package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRecordStore is an in-memory RecordStore for tests and single-process
// use.
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryRecordStore creates an empty in-memory record store.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{records: make(map[string]*Record)}
}

func (s *MemoryRecordStore) Create(ctx context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	cp := *r
	s.records[r.ID] = &cp
	return nil
}

func (s *MemoryRecordStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryRecordStore) List(ctx context.Context, filter ListFilter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var out []*Record
	for _, r := range s.records {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.JobType != "" && r.JobType != filter.JobType {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryRecordStore) MarkRunning(ctx context.Context, id string, attempts int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	now := time.Now().UTC()
	r.Status = StatusRunning
	r.Attempts = attempts
	if r.StartedAt == nil {
		r.StartedAt = &now
	}
	return nil
}

func (s *MemoryRecordStore) MarkFinished(ctx context.Context, id string, status Status, attempts int, errText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	now := time.Now().UTC()
	r.Status = status
	r.Attempts = attempts
	r.CompletedAt = &now
	r.Error = errText
	return nil
}

var _ RecordStore = (*MemoryRecordStore)(nil)
