// Package report renders bounded, human-diffable diagnostic blocks for failed
// provider calls. The output is what gets persisted into a job's error field,
// so it has to be self-contained: error kind and message, a truncated prompt
// excerpt, a truncated response excerpt, and any itemized missing fields or
// entity names.
package report

import (
	"fmt"
	"strings"
)

// Limits bounds the size of each excerpt in a formatted report.
// Passed explicitly so tests and callers can vary budgets per case.
type Limits struct {
	// AnalysisPreview bounds prompt/response excerpts for extraction calls.
	AnalysisPreview int
	// TranslationPreview bounds prompt/response excerpts for translation calls.
	TranslationPreview int
	// ContentPreview bounds raw chapter content excerpts.
	ContentPreview int
}

// DefaultLimits returns the production excerpt budgets.
func DefaultLimits() Limits {
	return Limits{
		AnalysisPreview:    2000,
		TranslationPreview: 3000,
		ContentPreview:     500,
	}
}

// Report carries the raw material for one formatted diagnostic block.
type Report struct {
	Kind     string // error type identifier, e.g. "missing_entity_mappings"
	Message  string // one-line error description
	Prompt   string // full prompt text sent to the provider
	Response string // full raw response text received
	Missing  []string
}

// Formatter renders Reports within configured limits.
type Formatter struct {
	limits Limits
}

// NewFormatter creates a formatter with the given limits. Zero or negative
// budgets fall back to the defaults.
func NewFormatter(limits Limits) *Formatter {
	def := DefaultLimits()
	if limits.AnalysisPreview <= 0 {
		limits.AnalysisPreview = def.AnalysisPreview
	}
	if limits.TranslationPreview <= 0 {
		limits.TranslationPreview = def.TranslationPreview
	}
	if limits.ContentPreview <= 0 {
		limits.ContentPreview = def.ContentPreview
	}
	return &Formatter{limits: limits}
}

// Analysis formats a report using the analysis excerpt budget.
func (f *Formatter) Analysis(r Report) string {
	return f.format(r, f.limits.AnalysisPreview)
}

// Translation formats a report using the translation excerpt budget.
func (f *Formatter) Translation(r Report) string {
	return f.format(r, f.limits.TranslationPreview)
}

// Content truncates raw chapter content to the content budget, for inline use
// in log attributes.
func (f *Formatter) Content(text string) string {
	return Truncate(text, f.limits.ContentPreview)
}

func (f *Formatter) format(r Report, budget int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "error: %s\n", r.Kind)
	if r.Message != "" {
		fmt.Fprintf(&b, "message: %s\n", r.Message)
	}
	if len(r.Missing) > 0 {
		fmt.Fprintf(&b, "missing (%d): %s\n", len(r.Missing), strings.Join(r.Missing, ", "))
	}
	if r.Prompt != "" {
		fmt.Fprintf(&b, "--- prompt (%d chars", len([]rune(r.Prompt)))
		if truncated(r.Prompt, budget) {
			fmt.Fprintf(&b, ", showing %d", budget)
		}
		b.WriteString(") ---\n")
		b.WriteString(Truncate(r.Prompt, budget))
		b.WriteString("\n")
	}
	if r.Response != "" {
		fmt.Fprintf(&b, "--- response (%d chars", len([]rune(r.Response)))
		if truncated(r.Response, budget) {
			fmt.Fprintf(&b, ", showing %d", budget)
		}
		b.WriteString(") ---\n")
		b.WriteString(Truncate(r.Response, budget))
		b.WriteString("\n")
	}

	return b.String()
}

// Truncate cuts text to at most limit runes. The cut is clean: no ellipsis or
// marker is appended, so a truncated JSON excerpt cannot be mistaken for a
// complete document (the framing header carries the original length instead).
// Inputs shorter than the limit pass through unchanged.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func truncated(text string, limit int) bool {
	return len([]rune(text)) > limit
}
