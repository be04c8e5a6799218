package glossary

import (
	"context"
	"testing"
)

func TestUpsertEntitiesIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	candidates := []Candidate{
		{Type: TypeCharacter, Name: "李明"},
		{Type: TypeTerm, Name: "功法"},
		{Type: TypeTerm, Name: "阵法"},
	}

	created, err := s.UpsertEntities(ctx, "work-1", 1, candidates)
	if err != nil {
		t.Fatalf("UpsertEntities() error = %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("first upsert created %d entities, want 3", len(created))
	}

	// Re-running with the identical extraction result creates nothing.
	created, err = s.UpsertEntities(ctx, "work-1", 2, candidates)
	if err != nil {
		t.Fatalf("UpsertEntities() error = %v", err)
	}
	if len(created) != 0 {
		t.Errorf("second upsert created %d entities, want 0", len(created))
	}

	all, err := s.Entities(ctx, "work-1")
	if err != nil {
		t.Fatalf("Entities() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("store holds %d entities, want 3", len(all))
	}
}

func TestUpsertNormalizesNames(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.UpsertEntities(ctx, "work-1", 1, []Candidate{
		{Type: TypeCharacter, Name: " 李明 "},
		{Type: TypeCharacter, Name: "李明"},
		{Type: TypeCharacter, Name: "   "},
	})
	if err != nil {
		t.Fatalf("UpsertEntities() error = %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("created %d entities, want 1", len(created))
	}
	if created[0].SourceName != "李明" {
		t.Errorf("SourceName = %q, want %q", created[0].SourceName, "李明")
	}
}

func TestRecordTranslationsFirstWriteWins(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.UpsertEntities(ctx, "work-1", 1, []Candidate{
		{Type: TypeTerm, Name: "洞府"},
	})
	if err != nil {
		t.Fatalf("UpsertEntities() error = %v", err)
	}

	if err := s.RecordTranslations(ctx, "work-1", "en", map[string]string{"洞府": "Cave Abode"}); err != nil {
		t.Fatalf("RecordTranslations() error = %v", err)
	}

	// A second write attempting to overwrite leaves the original unchanged.
	if err := s.RecordTranslations(ctx, "work-1", "en", map[string]string{"洞府": "Grotto"}); err != nil {
		t.Fatalf("RecordTranslations() error = %v", err)
	}

	known, err := s.KnownTranslations(ctx, "work-1", "en")
	if err != nil {
		t.Fatalf("KnownTranslations() error = %v", err)
	}
	if known["洞府"] != "Cave Abode" {
		t.Errorf("translation = %q, want first-written %q", known["洞府"], "Cave Abode")
	}

	if tr, ok := s.TranslationFor(created[0].ID, "en"); !ok || tr.TranslatedName != "Cave Abode" {
		t.Errorf("TranslationFor() = %+v, ok=%v", tr, ok)
	}
}

func TestRecordTranslationsSkipsBlankAndUnknown(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.UpsertEntities(ctx, "work-1", 1, []Candidate{{Type: TypeCharacter, Name: "李明"}}); err != nil {
		t.Fatalf("UpsertEntities() error = %v", err)
	}

	err := s.RecordTranslations(ctx, "work-1", "en", map[string]string{
		"李明":  "  ", // blank value must not be recorded
		"不存在": "Nobody",
	})
	if err != nil {
		t.Fatalf("RecordTranslations() error = %v", err)
	}

	known, err := s.KnownTranslations(ctx, "work-1", "en")
	if err != nil {
		t.Fatalf("KnownTranslations() error = %v", err)
	}
	if len(known) != 0 {
		t.Errorf("KnownTranslations() = %v, want empty", known)
	}
}

func TestKnownTranslationsScopedByWorkAndLanguage(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, workID := range []string{"work-1", "work-2"} {
		if _, err := s.UpsertEntities(ctx, workID, 1, []Candidate{{Type: TypeTerm, Name: "灵气"}}); err != nil {
			t.Fatalf("UpsertEntities(%s) error = %v", workID, err)
		}
	}
	if err := s.RecordTranslations(ctx, "work-1", "en", map[string]string{"灵气": "Spirit Qi"}); err != nil {
		t.Fatalf("RecordTranslations() error = %v", err)
	}
	if err := s.RecordTranslations(ctx, "work-1", "vi", map[string]string{"灵气": "Linh khí"}); err != nil {
		t.Fatalf("RecordTranslations() error = %v", err)
	}

	known, _ := s.KnownTranslations(ctx, "work-2", "en")
	if len(known) != 0 {
		t.Errorf("work-2 should have no translations, got %v", known)
	}
	known, _ = s.KnownTranslations(ctx, "work-1", "vi")
	if known["灵气"] != "Linh khí" {
		t.Errorf("vi translation = %q", known["灵气"])
	}
}
