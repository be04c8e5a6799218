package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// routes builds the chi router with all API routes.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/works", func(r chi.Router) {
			r.Post("/", s.handleCreateWork)
			r.Get("/", s.handleListWorks)
			r.Route("/{workID}", func(r chi.Router) {
				r.Get("/", s.handleGetWork)
				r.Post("/chapters", s.handleCreateChapter)
				r.Get("/chapters", s.handleListChapters)
				r.Get("/glossary", s.handleGetGlossary)
			})
		})

		r.Route("/chapters/{chapterID}", func(r chi.Router) {
			r.Get("/", s.handleGetChapter)
			r.Post("/analyze", s.handleAnalyzeChapter)
			r.Post("/translate", s.handleTranslateChapter)
			r.Get("/translations/{language}", s.handleGetTranslation)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", s.handleListJobs)
			r.Get("/{jobID}", s.handleGetJob)
		})
	})

	return r
}

// logRequests logs each request with its status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// handleHealth returns basic server health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
