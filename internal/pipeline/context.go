package pipeline

import (
	"context"

	"github.com/hoanglong/serica/internal/glossary"
)

// KnownPair is one established glossary entry rendered into the prompt.
type KnownPair struct {
	Source     string `json:"source"`
	Translated string `json:"translated"`
}

// TranslationContext is the per-job snapshot partitioning a chapter's entities
// into "known" (already translated for the target language) and "new" (no
// translation on record yet). The New list is exactly the set the translation
// response must return mappings for, in the order the names are presented in
// the prompt. Recomputed per job, never persisted.
type TranslationContext struct {
	Known []KnownPair
	New   []string
}

// KnownMap returns the known pairs as a lookup map.
func (c *TranslationContext) KnownMap() map[string]string {
	m := make(map[string]string, len(c.Known))
	for _, p := range c.Known {
		m[p.Source] = p.Translated
	}
	return m
}

// BuildContext partitions the chapter's extracted entities against the
// glossary for the work/language pair. Pure computation over store reads; no
// mutation. Presentation order is characters, places, terms, extraction order
// within each, deduplicated by name (first occurrence wins).
func BuildContext(ctx context.Context, store glossary.Store, workID, language string, extraction *ExtractionResult) (*TranslationContext, error) {
	known, err := store.KnownTranslations(ctx, workID, language)
	if err != nil {
		return nil, err
	}

	tc := &TranslationContext{}
	for _, name := range extraction.Names() {
		if translated, ok := known[name]; ok {
			tc.Known = append(tc.Known, KnownPair{Source: name, Translated: translated})
		} else {
			tc.New = append(tc.New, name)
		}
	}
	return tc, nil
}
