package pipeline

import (
	"strings"
	"testing"

	"github.com/hoanglong/serica/internal/providers"
)

func TestRenderPromptLeavesPreviousIntact(t *testing.T) {
	tr := NewTranslator(providers.NewMockClient(), nil, TranslatorConfig{
		ContextChapters:     2,
		ContextExcerptRunes: 10,
	})

	long := strings.Repeat("x", 50)
	in := TranslateInput{
		ChapterNumber:  3,
		SourceLanguage: "zh",
		TargetLanguage: "en",
		Title:          "第三章",
		Content:        "正文",
		Previous: []PreviousChapter{
			{Number: 2, Excerpt: long},
			{Number: 1, Excerpt: long},
		},
	}

	prompt, err := tr.renderPrompt(in, &TranslationContext{})
	if err != nil {
		t.Fatalf("renderPrompt() error = %v", err)
	}

	if !strings.Contains(prompt, strings.Repeat("x", 10)+"\n") {
		t.Errorf("prompt is missing the truncated excerpt")
	}
	if strings.Contains(prompt, strings.Repeat("x", 11)) {
		t.Errorf("prompt excerpt exceeds the configured budget")
	}
	for i, prev := range in.Previous {
		if prev.Excerpt != long {
			t.Errorf("Previous[%d].Excerpt mutated to %d runes, want untouched", i, len(prev.Excerpt))
		}
	}
}

func TestRenderPromptCapsPreviousChapters(t *testing.T) {
	tr := NewTranslator(providers.NewMockClient(), nil, TranslatorConfig{
		ContextChapters:     1,
		ContextExcerptRunes: 100,
	})

	in := TranslateInput{
		SourceLanguage: "zh",
		TargetLanguage: "en",
		Title:          "T",
		Content:        "C",
		Previous: []PreviousChapter{
			{Number: 2, Excerpt: "second"},
			{Number: 1, Excerpt: "first"},
		},
	}

	prompt, err := tr.renderPrompt(in, &TranslationContext{})
	if err != nil {
		t.Fatalf("renderPrompt() error = %v", err)
	}

	if !strings.Contains(prompt, `chapter="2"`) {
		t.Error("prompt dropped the most recent previous chapter")
	}
	if strings.Contains(prompt, `chapter="1"`) {
		t.Error("prompt includes chapters beyond the configured cap")
	}
}
