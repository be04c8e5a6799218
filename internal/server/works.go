package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hoanglong/serica/internal/library"
)

type createWorkRequest struct {
	Title          string   `json:"title"`
	Author         string   `json:"author"`
	SourceLanguage string   `json:"source_language"`
	Section        string   `json:"section"`
	Genres         []string `json:"genres"`
	Tags           []string `json:"tags"`
}

func (s *Server) handleCreateWork(w http.ResponseWriter, r *http.Request) {
	var req createWorkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, errors.New("title is required"))
		return
	}
	if strings.TrimSpace(req.SourceLanguage) == "" {
		writeError(w, http.StatusBadRequest, errors.New("source_language is required"))
		return
	}

	work := &library.Work{
		ID:             uuid.New().String(),
		Title:          req.Title,
		Author:         req.Author,
		SourceLanguage: req.SourceLanguage,
		Section:        req.Section,
		Genres:         req.Genres,
		Tags:           req.Tags,
	}
	if err := s.library.CreateWork(r.Context(), work); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, work)
}

func (s *Server) handleListWorks(w http.ResponseWriter, r *http.Request) {
	works, err := s.library.ListWorks(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if works == nil {
		works = []*library.Work{}
	}
	writeJSON(w, http.StatusOK, works)
}

func (s *Server) handleGetWork(w http.ResponseWriter, r *http.Request) {
	work, err := s.library.GetWork(r.Context(), chi.URLParam(r, "workID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, work)
}
