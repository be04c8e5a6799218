package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hoanglong/serica/internal/glossary"
	"github.com/hoanglong/serica/internal/prompts"
	"github.com/hoanglong/serica/internal/providers"
	"github.com/hoanglong/serica/internal/report"
	"github.com/hoanglong/serica/pkg/normalize"
)

// ExtractionResult is the transient output of one extraction call for one
// chapter. Name lists are normalized and deduplicated; it is never persisted
// as its own row. Callers feed it into the glossary and the chapter record.
type ExtractionResult struct {
	Characters []string `json:"characters"`
	Places     []string `json:"places"`
	Terms      []string `json:"terms"`
	Summary    string   `json:"summary"`
}

// Candidates converts the result into glossary upsert candidates in
// presentation order.
func (r *ExtractionResult) Candidates() []glossary.Candidate {
	var out []glossary.Candidate
	for _, n := range r.Characters {
		out = append(out, glossary.Candidate{Type: glossary.TypeCharacter, Name: n})
	}
	for _, n := range r.Places {
		out = append(out, glossary.Candidate{Type: glossary.TypePlace, Name: n})
	}
	for _, n := range r.Terms {
		out = append(out, glossary.Candidate{Type: glossary.TypeTerm, Name: n})
	}
	return out
}

// Names returns all extracted names in presentation order, deduplicated
// across types.
func (r *ExtractionResult) Names() []string {
	all := make([]string, 0, len(r.Characters)+len(r.Places)+len(r.Terms))
	all = append(all, r.Characters...)
	all = append(all, r.Places...)
	all = append(all, r.Terms...)
	return normalize.Names(all)
}

// ExtractInput is one chapter to analyze.
type ExtractInput struct {
	WorkTitle      string
	ChapterNumber  int
	SourceLanguage string
	Content        string
}

// ExtractorConfig tunes the extraction client.
type ExtractorConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Extractor invokes an LLM to pull characters, places, terms, and a summary
// out of one chapter's raw text, and validates the structured response.
// Extract is pure on success: persisting the result is the caller's job so
// extraction stays independently testable.
type Extractor struct {
	client    providers.LLMClient
	formatter *report.Formatter
	cfg       ExtractorConfig
}

// NewExtractor creates an extraction client on top of an LLM backend.
func NewExtractor(client providers.LLMClient, formatter *report.Formatter, cfg ExtractorConfig) *Extractor {
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}
	if formatter == nil {
		formatter = report.NewFormatter(report.DefaultLimits())
	}
	return &Extractor{client: client, formatter: formatter, cfg: cfg}
}

// Extract analyzes one chapter. Failure modes: *APIError (provider call
// failed), *ResponseParsingError (output not parseable as JSON),
// *ValidationError (parseable but required fields missing/malformed, each
// named).
func (e *Extractor) Extract(ctx context.Context, in ExtractInput) (*ExtractionResult, error) {
	prompt, err := prompts.Render(prompts.KeyExtractEntities, map[string]any{
		"WorkTitle":      in.WorkTitle,
		"ChapterNumber":  in.ChapterNumber,
		"SourceLanguage": in.SourceLanguage,
		"Content":        in.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("render extraction prompt: %w", err)
	}

	req := &providers.ChatRequest{
		Messages:    []providers.Message{{Role: "user", Content: prompt}},
		Model:       e.cfg.Model,
		Temperature: e.cfg.Temperature,
		MaxTokens:   e.cfg.MaxTokens,
		ResponseFormat: &providers.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: extractionSchema,
		},
	}

	result, err := e.client.Chat(ctx, req)
	if err != nil {
		return nil, &APIError{Provider: e.client.Name(), Err: err}
	}

	raw := result.Content
	parsed := result.ParsedJSON
	if len(parsed) == 0 {
		parsed, err = providers.ParseStructuredJSON(raw)
		if err != nil {
			return nil, &ResponseParsingError{
				Raw: raw,
				Err: err,
				Report: e.formatter.Analysis(report.Report{
					Kind:     KindResponseParsing,
					Message:  err.Error(),
					Prompt:   prompt,
					Response: raw,
				}),
			}
		}
	}

	return e.validate(parsed, prompt, raw)
}

// validate checks the parsed extraction response field by field, naming every
// missing field explicitly.
func (e *Extractor) validate(parsed json.RawMessage, prompt, raw string) (*ExtractionResult, error) {
	var shape struct {
		Characters *[]string `json:"characters"`
		Places     *[]string `json:"places"`
		Terms      *[]string `json:"terms"`
		Summary    *string   `json:"summary"`
	}
	if err := json.Unmarshal(parsed, &shape); err != nil {
		// Parsed JSON of the wrong overall type (array, scalar) or with
		// wrong-typed members.
		verr := &ValidationError{Reason: err.Error()}
		verr.Report = e.formatter.Analysis(report.Report{
			Kind:     KindValidation,
			Message:  verr.Error(),
			Prompt:   prompt,
			Response: raw,
		})
		return nil, verr
	}

	var missing []string
	if shape.Characters == nil {
		missing = append(missing, "characters")
	}
	if shape.Places == nil {
		missing = append(missing, "places")
	}
	if shape.Terms == nil {
		missing = append(missing, "terms")
	}
	if shape.Summary == nil || normalize.IsBlank(*shape.Summary) {
		missing = append(missing, "summary")
	}
	if len(missing) > 0 {
		verr := &ValidationError{MissingFields: missing}
		verr.Report = e.formatter.Analysis(report.Report{
			Kind:     KindValidation,
			Message:  verr.Error(),
			Prompt:   prompt,
			Response: raw,
			Missing:  missing,
		})
		return nil, verr
	}

	// Schema backstop for malformation the tolerant decode let through.
	if err := providers.ValidateStructuredJSON(extractionCoreSchema, parsed); err != nil {
		verr := &ValidationError{Reason: err.Error()}
		verr.Report = e.formatter.Analysis(report.Report{
			Kind:     KindValidation,
			Message:  verr.Error(),
			Prompt:   prompt,
			Response: raw,
		})
		return nil, verr
	}

	return &ExtractionResult{
		Characters: normalize.Names(*shape.Characters),
		Places:     normalize.Names(*shape.Places),
		Terms:      normalize.Names(*shape.Terms),
		Summary:    *shape.Summary,
	}, nil
}
