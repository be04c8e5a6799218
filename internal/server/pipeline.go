package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hoanglong/serica/internal/pipeline"
)

type submitJobResponse struct {
	JobID string `json:"job_id"`
}

// handleAnalyzeChapter queues an extraction job for the chapter.
func (s *Server) handleAnalyzeChapter(w http.ResponseWriter, r *http.Request) {
	chapter, err := s.library.GetChapter(r.Context(), chi.URLParam(r, "chapterID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	cfg := s.pipelineConfig()
	extractor, err := s.extractor(cfg.AnalysisProvider)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	job := &pipeline.AnalyzeChapterJob{
		WorkID:    chapter.WorkID,
		ChapterID: chapter.ID,
		Library:   s.library,
		Glossary:  s.glossary,
		Extractor: extractor,
		Logger:    s.logger,
	}
	id, err := s.jobs.Submit(r.Context(), job, map[string]string{
		"work_id":    chapter.WorkID,
		"chapter_id": chapter.ID,
		"chapter":    itoa(chapter.Number),
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusAccepted, submitJobResponse{JobID: id})
}

type translateChapterRequest struct {
	Language string `json:"language"`
	// Provider overrides the configured translation provider (optional).
	Provider string `json:"provider,omitempty"`
}

// handleTranslateChapter queues a translation job. Jobs for the same work and
// language run in submission order.
func (s *Server) handleTranslateChapter(w http.ResponseWriter, r *http.Request) {
	chapter, err := s.library.GetChapter(r.Context(), chi.URLParam(r, "chapterID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var req translateChapterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Language) == "" {
		writeError(w, http.StatusBadRequest, errors.New("language is required"))
		return
	}

	cfg := s.pipelineConfig()
	provider := req.Provider
	if provider == "" {
		provider = cfg.TranslationProvider
	}

	extractor, err := s.extractor(cfg.AnalysisProvider)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	translator, err := s.translator(provider)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	job := &pipeline.TranslateChapterJob{
		WorkID:     chapter.WorkID,
		ChapterID:  chapter.ID,
		Language:   req.Language,
		Library:    s.library,
		Glossary:   s.glossary,
		Extractor:  extractor,
		Translator: translator,
		Logger:     s.logger,
	}
	id, err := s.jobs.Submit(r.Context(), job, map[string]string{
		"work_id":    chapter.WorkID,
		"chapter_id": chapter.ID,
		"chapter":    itoa(chapter.Number),
		"language":   req.Language,
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusAccepted, submitJobResponse{JobID: id})
}
