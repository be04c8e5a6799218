package glossary

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hoanglong/serica/pkg/normalize"
)

// MemoryStore is an in-memory Store for tests and single-process use.
type MemoryStore struct {
	mu           sync.RWMutex
	entities     map[string]*Entity     // entity ID → entity
	byKey        map[string]string      // workID/type/name → entity ID
	translations map[string]Translation // entityID/language → translation
	seq          int                    // creation order tiebreaker
	order        map[string]int         // entity ID → creation sequence
}

// NewMemoryStore creates an empty in-memory glossary store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entities:     make(map[string]*Entity),
		byKey:        make(map[string]string),
		translations: make(map[string]Translation),
		order:        make(map[string]int),
	}
}

func entityKey(workID string, t EntityType, name string) string {
	return workID + "\x00" + string(t) + "\x00" + name
}

func translationKey(entityID, language string) string {
	return entityID + "\x00" + language
}

// UpsertEntities implements Store.
func (s *MemoryStore) UpsertEntities(ctx context.Context, workID string, chapter int, candidates []Candidate) ([]Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created []Entity
	for _, c := range candidates {
		name := normalize.Name(c.Name)
		if name == "" {
			continue
		}
		key := entityKey(workID, c.Type, name)
		if _, exists := s.byKey[key]; exists {
			continue
		}
		e := &Entity{
			ID:               uuid.NewString(),
			WorkID:           workID,
			Type:             c.Type,
			SourceName:       name,
			FirstSeenChapter: chapter,
			CreatedAt:        time.Now().UTC(),
		}
		s.entities[e.ID] = e
		s.byKey[key] = e.ID
		s.seq++
		s.order[e.ID] = s.seq
		created = append(created, *e)
	}
	return created, nil
}

// KnownTranslations implements Store. When the same name exists under more
// than one entity type, the first type in presentation order wins.
func (s *MemoryStore) KnownTranslations(ctx context.Context, workID, language string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	known := make(map[string]string)
	for _, t := range Types() {
		for _, e := range s.entities {
			if e.WorkID != workID || e.Type != t {
				continue
			}
			tr, ok := s.translations[translationKey(e.ID, language)]
			if !ok {
				continue
			}
			if _, dup := known[e.SourceName]; !dup {
				known[e.SourceName] = tr.TranslatedName
			}
		}
	}
	return known, nil
}

// RecordTranslations implements Store. First-write-wins per (entity, language).
func (s *MemoryStore) RecordTranslations(ctx context.Context, workID, language string, mappings map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, translated := range mappings {
		name = normalize.Name(name)
		if name == "" || normalize.IsBlank(translated) {
			continue
		}
		for _, t := range Types() {
			id, ok := s.byKey[entityKey(workID, t, name)]
			if !ok {
				continue
			}
			key := translationKey(id, language)
			if _, exists := s.translations[key]; exists {
				continue
			}
			s.translations[key] = Translation{
				EntityID:       id,
				Language:       language,
				TranslatedName: translated,
				CreatedAt:      time.Now().UTC(),
			}
		}
	}
	return nil
}

// Entities implements Store.
func (s *MemoryStore) Entities(ctx context.Context, workID string) ([]Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entity
	for _, t := range Types() {
		var group []Entity
		for _, e := range s.entities {
			if e.WorkID == workID && e.Type == t {
				group = append(group, *e)
			}
		}
		sort.Slice(group, func(i, k int) bool {
			return s.order[group[i].ID] < s.order[group[k].ID]
		})
		out = append(out, group...)
	}
	return out, nil
}

// TranslationFor returns the recorded translation for an entity/language pair.
// Test helper.
func (s *MemoryStore) TranslationFor(entityID, language string) (Translation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tr, ok := s.translations[translationKey(entityID, language)]
	return tr, ok
}

var _ Store = (*MemoryStore)(nil)
