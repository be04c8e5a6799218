package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hoanglong/serica/internal/glossary"
	"github.com/hoanglong/serica/internal/jobs"
	"github.com/hoanglong/serica/internal/library"
	"github.com/hoanglong/serica/internal/pipeline"
	"github.com/hoanglong/serica/internal/providers"
)

type testEnv struct {
	server   *Server
	handler  http.Handler
	library  *library.MemoryStore
	glossary *glossary.MemoryStore
	jobStore *jobs.MemoryRecordStore
	mock     *providers.MockClient
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	lib := library.NewMemoryStore()
	gloss := glossary.NewMemoryStore()
	jobStore := jobs.NewMemoryRecordStore()

	manager := jobs.NewManager(jobs.ManagerConfig{
		Store:       jobStore,
		MaxAttempts: 1,
		RetryDelay:  time.Millisecond,
		Retryable:   pipeline.Retryable,
		ErrorText:   pipeline.FormattedReport,
	})
	manager.Start(context.Background())
	t.Cleanup(manager.Stop)

	mock := providers.NewMockClient()
	registry := providers.NewRegistry()
	registry.Register("openrouter", mock)

	srv, err := New(Config{
		Library:  lib,
		Glossary: gloss,
		Jobs:     manager,
		Registry: registry,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return &testEnv{
		server:   srv,
		handler:  srv.routes(),
		library:  lib,
		glossary: gloss,
		jobStore: jobStore,
		mock:     mock,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestWorkLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/works", map[string]any{
		"title":           "修仙传",
		"source_language": "zh",
		"genres":          []string{"xianxia"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create work status = %d, body %s", rec.Code, rec.Body.String())
	}
	var work library.Work
	env.decode(t, rec, &work)
	if work.ID == "" {
		t.Fatal("created work has no ID")
	}

	rec = env.do(t, http.MethodGet, "/api/v1/works/"+work.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get work status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/works", nil)
	var works []*library.Work
	env.decode(t, rec, &works)
	if len(works) != 1 {
		t.Fatalf("listed %d works, want 1", len(works))
	}
}

func TestCreateWorkValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"source_language": "zh"}},
		{"missing source language", map[string]any{"title": "t"}},
		{"blank title", map[string]any{"title": "  ", "source_language": "zh"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/works", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestChapterLifecycle(t *testing.T) {
	env := newTestEnv(t)
	workID := env.createWork(t)

	rec := env.do(t, http.MethodPost, "/api/v1/works/"+workID+"/chapters", map[string]any{
		"number":  1,
		"title":   "第一章",
		"content": "李明开始修炼。",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create chapter status = %d, body %s", rec.Code, rec.Body.String())
	}
	var chapter library.Chapter
	env.decode(t, rec, &chapter)

	rec = env.do(t, http.MethodGet, "/api/v1/chapters/"+chapter.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get chapter status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/works/"+workID+"/chapters", nil)
	var chapters []*library.Chapter
	env.decode(t, rec, &chapters)
	if len(chapters) != 1 {
		t.Fatalf("listed %d chapters, want 1", len(chapters))
	}
}

func TestCreateChapterForMissingWork(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/works/nope/chapters", map[string]any{
		"number": 1, "content": "x",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestTranslateChapterRequiresLanguage(t *testing.T) {
	env := newTestEnv(t)
	workID := env.createWork(t)
	chapterID := env.createChapter(t, workID, 1)

	rec := env.do(t, http.MethodPost, "/api/v1/chapters/"+chapterID+"/translate", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTranslateChapterEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	workID := env.createWork(t)
	chapterID := env.createChapter(t, workID, 1)

	env.mock.Responses = func(n int64, req *providers.ChatRequest) (string, json.RawMessage) {
		prompt := req.Messages[0].Content
		if bytes.Contains([]byte(prompt), []byte("webnovel translator")) {
			out := `{"title":"Chapter One","content":"Li Ming began cultivating.","entity_mappings":{"李明":"Li Ming"}}`
			return out, json.RawMessage(out)
		}
		out := `{"characters":["李明"],"places":[],"terms":[],"summary":"李明开始修炼。"}`
		return out, json.RawMessage(out)
	}

	rec := env.do(t, http.MethodPost, "/api/v1/chapters/"+chapterID+"/translate", map[string]any{
		"language": "en",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body.String())
	}
	var submitted submitJobResponse
	env.decode(t, rec, &submitted)

	record := env.waitForTerminal(t, submitted.JobID)
	if record.Status != jobs.StatusSucceeded {
		t.Fatalf("job status = %s, error %q", record.Status, record.Error)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/chapters/"+chapterID+"/translations/en", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get translation status = %d", rec.Code)
	}
	var tr library.TranslatedChapter
	env.decode(t, rec, &tr)
	if tr.Title != "Chapter One" {
		t.Errorf("Title = %q", tr.Title)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/works/"+workID+"/glossary?language=en", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("glossary status = %d", rec.Code)
	}
	var entries []glossaryEntry
	env.decode(t, rec, &entries)
	if len(entries) != 1 || entries[0].SourceName != "李明" || entries[0].Translated != "Li Ming" {
		t.Errorf("glossary = %+v, want 李明 → Li Ming", entries)
	}
}

func TestGetTranslationBeforeJob(t *testing.T) {
	env := newTestEnv(t)
	workID := env.createWork(t)
	chapterID := env.createChapter(t, workID, 1)

	rec := env.do(t, http.MethodGet, "/api/v1/chapters/"+chapterID+"/translations/en", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestJobsEndpoints(t *testing.T) {
	env := newTestEnv(t)
	workID := env.createWork(t)
	chapterID := env.createChapter(t, workID, 1)

	env.mock.ResponseJSON = json.RawMessage(`{"characters":["李明"],"places":[],"terms":[],"summary":"ok"}`)

	rec := env.do(t, http.MethodPost, "/api/v1/chapters/"+chapterID+"/analyze", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("analyze status = %d, body %s", rec.Code, rec.Body.String())
	}
	var submitted submitJobResponse
	env.decode(t, rec, &submitted)

	rec = env.do(t, http.MethodGet, "/api/v1/jobs/"+submitted.JobID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get job status = %d", rec.Code)
	}

	env.waitForTerminal(t, submitted.JobID)

	rec = env.do(t, http.MethodGet, "/api/v1/jobs?type=analyze_chapter", nil)
	var records []*jobs.Record
	env.decode(t, rec, &records)
	if len(records) != 1 {
		t.Fatalf("listed %d jobs, want 1", len(records))
	}

	rec = env.do(t, http.MethodGet, "/api/v1/jobs/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get missing job status = %d, want 404", rec.Code)
	}
}

func (e *testEnv) createWork(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/works", map[string]any{
		"title": "修仙传", "source_language": "zh",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create work status = %d", rec.Code)
	}
	var work library.Work
	e.decode(t, rec, &work)
	return work.ID
}

func (e *testEnv) createChapter(t *testing.T, workID string, number int) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/works/"+workID+"/chapters", map[string]any{
		"number":  number,
		"title":   fmt.Sprintf("第%d章", number),
		"content": "李明开始修炼。",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create chapter status = %d", rec.Code)
	}
	var chapter library.Chapter
	e.decode(t, rec, &chapter)
	return chapter.ID
}

func (e *testEnv) waitForTerminal(t *testing.T, jobID string) *jobs.Record {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		record, err := e.jobStore.Get(context.Background(), jobID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		switch record.Status {
		case jobs.StatusSucceeded, jobs.StatusFailed, jobs.StatusDead:
			return record
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach a terminal status", jobID)
	return nil
}
