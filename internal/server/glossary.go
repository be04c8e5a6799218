package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hoanglong/serica/internal/glossary"
)

type glossaryEntry struct {
	Type             glossary.EntityType `json:"type"`
	SourceName       string              `json:"source_name"`
	FirstSeenChapter int                 `json:"first_seen_chapter"`
	// Translated is the recorded name for the requested language, empty if
	// none exists yet.
	Translated string `json:"translated,omitempty"`
}

// handleGetGlossary lists a work's entities in presentation order. With
// ?language= each entry carries its recorded translation for that language.
func (s *Server) handleGetGlossary(w http.ResponseWriter, r *http.Request) {
	workID := chi.URLParam(r, "workID")
	if _, err := s.library.GetWork(r.Context(), workID); err != nil {
		writeStoreError(w, err)
		return
	}

	entities, err := s.glossary.Entities(r.Context(), workID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	language := r.URL.Query().Get("language")
	known := map[string]string{}
	if language != "" {
		known, err = s.glossary.KnownTranslations(r.Context(), workID, language)
		if err != nil {
			writeStoreError(w, err)
			return
		}
	}

	entries := make([]glossaryEntry, 0, len(entities))
	for _, e := range entities {
		entries = append(entries, glossaryEntry{
			Type:             e.Type,
			SourceName:       e.SourceName,
			FirstSeenChapter: e.FirstSeenChapter,
			Translated:       known[e.SourceName],
		})
	}
	writeJSON(w, http.StatusOK, entries)
}
