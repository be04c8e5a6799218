package report

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	t.Run("short input passes through", func(t *testing.T) {
		if got := Truncate("hello", 100); got != "hello" {
			t.Errorf("Truncate() = %q", got)
		}
	})

	t.Run("cuts at rune boundary", func(t *testing.T) {
		got := Truncate("洞府灵气突破", 3)
		if got != "洞府灵" {
			t.Errorf("Truncate() = %q, want %q", got, "洞府灵")
		}
	})

	t.Run("zero limit yields empty", func(t *testing.T) {
		if got := Truncate("anything", 0); got != "" {
			t.Errorf("Truncate() = %q, want empty", got)
		}
	})
}

func TestFormatterBudgets(t *testing.T) {
	f := NewFormatter(DefaultLimits())

	longPrompt := strings.Repeat("x", 10000)
	out := f.Translation(Report{
		Kind:    "missing_entity_mappings",
		Message: "response omitted required entities",
		Prompt:  longPrompt,
	})

	// The prompt section must carry at most the translation budget of prompt
	// text; everything else is fixed framing.
	idx := strings.Index(out, "---\n")
	if idx < 0 {
		t.Fatalf("no prompt section in output:\n%s", out)
	}
	body := out[idx+len("---\n"):]
	body = strings.TrimSuffix(body, "\n")
	if len(body) > 3000 {
		t.Errorf("prompt excerpt is %d chars, budget is 3000", len(body))
	}
	if !strings.Contains(out, "showing 3000") {
		t.Errorf("expected truncation note in framing:\n%s", out[:200])
	}
}

func TestFormatterNeverPanics(t *testing.T) {
	f := NewFormatter(Limits{AnalysisPreview: 10, TranslationPreview: 10, ContentPreview: 10})

	cases := []Report{
		{},
		{Kind: "api_error"},
		{Prompt: "short"},
		{Response: strings.Repeat("很", 50), Missing: []string{"李明", "功法"}},
	}
	for _, r := range cases {
		_ = f.Analysis(r)
		_ = f.Translation(r)
	}
	_ = f.Content("")
}

func TestFormatterMissingList(t *testing.T) {
	f := NewFormatter(DefaultLimits())
	out := f.Analysis(Report{
		Kind:    "validation_error",
		Message: "required field absent",
		Missing: []string{"summary"},
	})
	if !strings.Contains(out, "missing (1): summary") {
		t.Errorf("itemized missing list absent:\n%s", out)
	}
}
