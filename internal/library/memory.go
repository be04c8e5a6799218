package library

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and single-process use.
type MemoryStore struct {
	mu           sync.RWMutex
	works        map[string]*Work
	chapters     map[string]*Chapter
	translations map[string]*TranslatedChapter // chapterID/language
}

// NewMemoryStore creates an empty in-memory library store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		works:        make(map[string]*Work),
		chapters:     make(map[string]*Chapter),
		translations: make(map[string]*TranslatedChapter),
	}
}

func (s *MemoryStore) CreateWork(ctx context.Context, w *Work) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	cp := *w
	s.works[w.ID] = &cp
	return nil
}

func (s *MemoryStore) GetWork(ctx context.Context, id string) (*Work, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.works[id]
	if !ok {
		return nil, fmt.Errorf("work %s: %w", id, ErrNotFound)
	}
	cp := *w
	return &cp, nil
}

func (s *MemoryStore) ListWorks(ctx context.Context) ([]*Work, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Work, 0, len(s.works))
	for _, w := range s.works {
		cp := *w
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.Before(out[k].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) CreateChapter(ctx context.Context, c *Chapter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.works[c.WorkID]; !ok {
		return fmt.Errorf("work %s: %w", c.WorkID, ErrNotFound)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	cp := *c
	s.chapters[c.ID] = &cp
	return nil
}

func (s *MemoryStore) GetChapter(ctx context.Context, id string) (*Chapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chapters[id]
	if !ok {
		return nil, fmt.Errorf("chapter %s: %w", id, ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) ListChapters(ctx context.Context, workID string) ([]*Chapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Chapter
	for _, c := range s.chapters {
		if c.WorkID == workID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Number < out[k].Number })
	return out, nil
}

func (s *MemoryStore) SetChapterSummary(ctx context.Context, chapterID, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chapters[chapterID]
	if !ok {
		return fmt.Errorf("chapter %s: %w", chapterID, ErrNotFound)
	}
	c.Summary = summary
	return nil
}

func (s *MemoryStore) SaveTranslation(ctx context.Context, t *TranslatedChapter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	cp := *t
	s.translations[t.ChapterID+"\x00"+t.Language] = &cp
	return nil
}

func (s *MemoryStore) GetTranslation(ctx context.Context, chapterID, language string) (*TranslatedChapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.translations[chapterID+"\x00"+language]
	if !ok {
		return nil, fmt.Errorf("translation %s/%s: %w", chapterID, language, ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) RecentTranslations(ctx context.Context, workID, language string, before, limit int) ([]*TranslatedChapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*TranslatedChapter
	for _, t := range s.translations {
		if t.WorkID == workID && t.Language == language && t.Number < before {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Number > out[k].Number })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
