package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hoanglong/serica/internal/library"
)

type createChapterRequest struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Server) handleCreateChapter(w http.ResponseWriter, r *http.Request) {
	workID := chi.URLParam(r, "workID")
	if _, err := s.library.GetWork(r.Context(), workID); err != nil {
		writeStoreError(w, err)
		return
	}

	var req createChapterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Number <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("number must be positive"))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, errors.New("content is required"))
		return
	}

	chapter := &library.Chapter{
		ID:      uuid.New().String(),
		WorkID:  workID,
		Number:  req.Number,
		Title:   req.Title,
		Content: req.Content,
	}
	if err := s.library.CreateChapter(r.Context(), chapter); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, chapter)
}

func (s *Server) handleListChapters(w http.ResponseWriter, r *http.Request) {
	chapters, err := s.library.ListChapters(r.Context(), chi.URLParam(r, "workID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if chapters == nil {
		chapters = []*library.Chapter{}
	}
	writeJSON(w, http.StatusOK, chapters)
}

func (s *Server) handleGetChapter(w http.ResponseWriter, r *http.Request) {
	chapter, err := s.library.GetChapter(r.Context(), chi.URLParam(r, "chapterID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chapter)
}

func (s *Server) handleGetTranslation(w http.ResponseWriter, r *http.Request) {
	tr, err := s.library.GetTranslation(r.Context(),
		chi.URLParam(r, "chapterID"), chi.URLParam(r, "language"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}
