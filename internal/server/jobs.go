package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hoanglong/serica/internal/jobs"
)

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	filter := jobs.ListFilter{
		Status:  jobs.Status(r.URL.Query().Get("status")),
		JobType: r.URL.Query().Get("type"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}

	records, err := s.jobs.List(r.Context(), filter)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if records == nil {
		records = []*jobs.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	record, err := s.jobs.Get(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func itoa(n int) string { return strconv.Itoa(n) }
