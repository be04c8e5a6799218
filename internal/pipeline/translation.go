package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hoanglong/serica/internal/prompts"
	"github.com/hoanglong/serica/internal/providers"
	"github.com/hoanglong/serica/internal/report"
)

// PreviousChapter is one already-translated chapter supplied as rolling
// context.
type PreviousChapter struct {
	Number  int
	Excerpt string
}

// TranslateInput is one chapter to translate into one target language.
type TranslateInput struct {
	ChapterNumber  int
	SourceLanguage string
	TargetLanguage string
	Title          string
	Content        string
	Previous       []PreviousChapter

	// Escalation lists entity names a prior attempt failed to map. When
	// non-empty the prompt re-lists them with a strengthened instruction.
	Escalation []string
}

// TranslationResult is the parsed, validated output of one translation call.
type TranslationResult struct {
	Title          string            `json:"title"`
	Content        string            `json:"content"`
	EntityMappings map[string]string `json:"entity_mappings"`

	// Prompt is the rendered prompt that produced this result and Raw the
	// provider's unparsed response text, both retained for diagnostics.
	Prompt string `json:"-"`
	Raw    string `json:"-"`
}

// TranslatorConfig tunes the translation client.
type TranslatorConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
	// ContextChapters caps how many previous translated chapters are included.
	ContextChapters int
	// ContextExcerptRunes caps the excerpt taken from each previous chapter.
	ContextExcerptRunes int
}

// DefaultTranslatorConfig returns production defaults.
func DefaultTranslatorConfig() TranslatorConfig {
	return TranslatorConfig{
		MaxTokens:           16384,
		ContextChapters:     5,
		ContextExcerptRunes: 1500,
	}
}

// Translator invokes an LLM to translate a chapter given the glossary
// context, and parses the structured response. Semantic completeness of
// entity_mappings is checked separately by ValidateMappings so persistence
// only ever happens after full validation.
type Translator struct {
	client    providers.LLMClient
	formatter *report.Formatter
	cfg       TranslatorConfig
}

// NewTranslator creates a translation client on top of an LLM backend.
func NewTranslator(client providers.LLMClient, formatter *report.Formatter, cfg TranslatorConfig) *Translator {
	def := DefaultTranslatorConfig()
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.ContextChapters == 0 {
		cfg.ContextChapters = def.ContextChapters
	}
	if cfg.ContextExcerptRunes == 0 {
		cfg.ContextExcerptRunes = def.ContextExcerptRunes
	}
	if formatter == nil {
		formatter = report.NewFormatter(report.DefaultLimits())
	}
	return &Translator{client: client, formatter: formatter, cfg: cfg}
}

// Translate sends one translation request and parses the response. Failure
// modes: *APIError, *ResponseParsingError, *ValidationError (missing/blank
// title or content, wrong-typed entity_mappings). Completeness of the
// mappings against the new-entity set is ValidateMappings' job.
func (t *Translator) Translate(ctx context.Context, in TranslateInput, tc *TranslationContext) (*TranslationResult, error) {
	prompt, err := t.renderPrompt(in, tc)
	if err != nil {
		return nil, fmt.Errorf("render translation prompt: %w", err)
	}

	req := &providers.ChatRequest{
		Messages:    []providers.Message{{Role: "user", Content: prompt}},
		Model:       t.cfg.Model,
		Temperature: t.cfg.Temperature,
		MaxTokens:   t.cfg.MaxTokens,
		ResponseFormat: &providers.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: translationSchema,
		},
	}

	result, err := t.client.Chat(ctx, req)
	if err != nil {
		return nil, &APIError{Provider: t.client.Name(), Err: err}
	}

	raw := result.Content
	parsed := result.ParsedJSON
	if len(parsed) == 0 {
		parsed, err = providers.ParseStructuredJSON(raw)
		if err != nil {
			return nil, &ResponseParsingError{
				Raw: raw,
				Err: err,
				Report: t.formatter.Translation(report.Report{
					Kind:     KindResponseParsing,
					Message:  err.Error(),
					Prompt:   prompt,
					Response: raw,
				}),
			}
		}
	}

	return t.validate(parsed, prompt, raw)
}

func (t *Translator) renderPrompt(in TranslateInput, tc *TranslationContext) (string, error) {
	count := len(in.Previous)
	if count > t.cfg.ContextChapters {
		count = t.cfg.ContextChapters
	}
	// Copy before truncating so the caller's slice stays intact.
	previous := make([]PreviousChapter, count)
	for i, prev := range in.Previous[:count] {
		prev.Excerpt = report.Truncate(prev.Excerpt, t.cfg.ContextExcerptRunes)
		previous[i] = prev
	}

	prompt, err := prompts.Render(prompts.KeyTranslateChapter, map[string]any{
		"SourceLanguage": in.SourceLanguage,
		"TargetLanguage": in.TargetLanguage,
		"ChapterNumber":  in.ChapterNumber,
		"Title":          in.Title,
		"Content":        in.Content,
		"Known":          tc.Known,
		"New":            tc.New,
		"Previous":       previous,
	})
	if err != nil {
		return "", err
	}

	if len(in.Escalation) > 0 {
		var b strings.Builder
		b.WriteString(prompt)
		b.WriteString("\n\nIMPORTANT: your previous response omitted translations for these entities. ")
		b.WriteString("The entity_mappings object MUST contain a non-empty translation for each of:\n")
		for _, name := range in.Escalation {
			fmt.Fprintf(&b, "- %s\n", name)
		}
		prompt = b.String()
	}

	return prompt, nil
}

func (t *Translator) validate(parsed json.RawMessage, prompt, raw string) (*TranslationResult, error) {
	var shape struct {
		Title          *string            `json:"title"`
		Content        *string            `json:"content"`
		EntityMappings *map[string]string `json:"entity_mappings"`
	}
	if err := json.Unmarshal(parsed, &shape); err != nil {
		verr := &ValidationError{Reason: err.Error()}
		verr.Report = t.formatter.Translation(report.Report{
			Kind:     KindValidation,
			Message:  verr.Error(),
			Prompt:   prompt,
			Response: raw,
		})
		return nil, verr
	}

	var missing []string
	if shape.Title == nil || strings.TrimSpace(*shape.Title) == "" {
		missing = append(missing, "title")
	}
	if shape.Content == nil || strings.TrimSpace(*shape.Content) == "" {
		missing = append(missing, "content")
	}
	if shape.EntityMappings == nil {
		missing = append(missing, "entity_mappings")
	}
	if len(missing) > 0 {
		verr := &ValidationError{MissingFields: missing}
		verr.Report = t.formatter.Translation(report.Report{
			Kind:     KindValidation,
			Message:  verr.Error(),
			Prompt:   prompt,
			Response: raw,
			Missing:  missing,
		})
		return nil, verr
	}

	if err := providers.ValidateStructuredJSON(translationCoreSchema, parsed); err != nil {
		verr := &ValidationError{Reason: err.Error()}
		verr.Report = t.formatter.Translation(report.Report{
			Kind:     KindValidation,
			Message:  verr.Error(),
			Prompt:   prompt,
			Response: raw,
		})
		return nil, verr
	}

	return &TranslationResult{
		Title:          *shape.Title,
		Content:        *shape.Content,
		EntityMappings: *shape.EntityMappings,
		Prompt:         prompt,
		Raw:            raw,
	}, nil
}
