package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/hoanglong/serica/internal/providers"
	"github.com/hoanglong/serica/internal/report"
)

func newTestExtractor(mock *providers.MockClient) *Extractor {
	return NewExtractor(mock, report.NewFormatter(report.DefaultLimits()), ExtractorConfig{
		Model: "test-model",
	})
}

func TestExtractParsesEntities(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{
		"characters": ["李明", "王芳"],
		"places": ["青云山"],
		"terms": ["灵气", "突破"],
		"summary": "李明在青云山突破了境界。"
	}`)

	res, err := newTestExtractor(mock).Extract(context.Background(), ExtractInput{
		WorkTitle:      "修仙传",
		ChapterNumber:  1,
		SourceLanguage: "zh",
		Content:        "李明和王芳在青云山修炼灵气，李明突破了。",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []string{"李明", "王芳", "青云山", "灵气", "突破"}
	got := res.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q (characters, places, terms order)", i, got[i], want[i])
		}
	}
	if res.Summary == "" {
		t.Error("Summary is empty")
	}
}

func TestExtractNamesDeduplicatesAcrossTypes(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{
		"characters": ["青云"],
		"places": ["青云", "青云山"],
		"terms": [],
		"summary": "测试。"
	}`)

	res, err := newTestExtractor(mock).Extract(context.Background(), ExtractInput{Content: "x"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	got := res.Names()
	want := []string{"青云", "青云山"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Names() = %v, want %v (first occurrence wins)", got, want)
	}
}

func TestExtractMissingSummaryNamesTheField(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{
		"characters": ["李明"],
		"places": [],
		"terms": []
	}`)

	_, err := newTestExtractor(mock).Extract(context.Background(), ExtractInput{Content: "x"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Extract() error = %T, want *ValidationError", err)
	}
	if len(verr.MissingFields) != 1 || verr.MissingFields[0] != "summary" {
		t.Errorf("MissingFields = %v, want [summary] only", verr.MissingFields)
	}
	if !Retryable(err) {
		t.Error("validation errors must be retryable")
	}
}

func TestExtractBlankSummaryCountsAsMissing(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{
		"characters": [], "places": [], "terms": [], "summary": "   "
	}`)

	_, err := newTestExtractor(mock).Extract(context.Background(), ExtractInput{Content: "x"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Extract() error = %T, want *ValidationError", err)
	}
	if len(verr.MissingFields) != 1 || verr.MissingFields[0] != "summary" {
		t.Errorf("MissingFields = %v, want [summary]", verr.MissingFields)
	}
}

func TestExtractItemizesAllMissingFields(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{"characters": []}`)

	_, err := newTestExtractor(mock).Extract(context.Background(), ExtractInput{Content: "x"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Extract() error = %T, want *ValidationError", err)
	}
	want := []string{"places", "terms", "summary"}
	if len(verr.MissingFields) != len(want) {
		t.Fatalf("MissingFields = %v, want %v", verr.MissingFields, want)
	}
	for i := range want {
		if verr.MissingFields[i] != want[i] {
			t.Errorf("MissingFields[%d] = %q, want %q", i, verr.MissingFields[i], want[i])
		}
	}
}

func TestExtractProviderFailureIsAPIError(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ShouldFail = true

	_, err := newTestExtractor(mock).Extract(context.Background(), ExtractInput{Content: "x"})
	var aerr *APIError
	if !errors.As(err, &aerr) {
		t.Fatalf("Extract() error = %T, want *APIError", err)
	}
	if aerr.Provider != providers.MockClientName {
		t.Errorf("Provider = %q, want %q", aerr.Provider, providers.MockClientName)
	}
	if !Retryable(err) {
		t.Error("API errors must be retryable")
	}
}

func TestExtractUnparseableResponse(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = "I could not process this chapter, sorry."

	_, err := newTestExtractor(mock).Extract(context.Background(), ExtractInput{Content: "x"})
	var perr *ResponseParsingError
	if !errors.As(err, &perr) {
		t.Fatalf("Extract() error = %T, want *ResponseParsingError", err)
	}
	if perr.Report == "" {
		t.Error("expected a diagnostic report on parsing errors")
	}
	if !strings.Contains(perr.Report, "sorry") {
		t.Error("report should carry a response excerpt")
	}
}

func TestExtractPromptCarriesChapterContent(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{"characters":[],"places":[],"terms":[],"summary":"ok"}`)

	_, err := newTestExtractor(mock).Extract(context.Background(), ExtractInput{
		WorkTitle:      "Test Work",
		ChapterNumber:  7,
		SourceLanguage: "zh",
		Content:        "UNIQUE-CHAPTER-TEXT",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	req := mock.LastRequest()
	if req == nil || len(req.Messages) == 0 {
		t.Fatal("no request captured")
	}
	prompt := req.Messages[0].Content
	if !strings.Contains(prompt, "UNIQUE-CHAPTER-TEXT") {
		t.Error("prompt missing chapter content")
	}
	if !strings.Contains(prompt, "Test Work") {
		t.Error("prompt missing work title")
	}
	if req.ResponseFormat == nil {
		t.Error("expected structured output request")
	}
}
