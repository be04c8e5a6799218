package prompts

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	for _, key := range []string{KeyExtractEntities, KeyTranslateChapter} {
		p, err := Get(key)
		if err != nil {
			t.Fatalf("Get(%s) error = %v", key, err)
		}
		if p.Text == "" {
			t.Errorf("prompt %s has empty text", key)
		}
		if p.Hash == "" {
			t.Errorf("prompt %s has empty hash", key)
		}
	}

	if _, err := Get("no.such.prompt"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestRenderExtractEntities(t *testing.T) {
	out, err := Render(KeyExtractEntities, map[string]any{
		"WorkTitle":      "凡人修仙传",
		"ChapterNumber":  3,
		"SourceLanguage": "zh",
		"Content":        "李明进入了洞府。",
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{"李明进入了洞府。", `"summary"`, `"characters"`} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered prompt missing %q", want)
		}
	}
}

func TestRenderTranslateChapter(t *testing.T) {
	type pair struct{ Source, Translated string }
	out, err := Render(KeyTranslateChapter, map[string]any{
		"SourceLanguage": "zh",
		"TargetLanguage": "en",
		"ChapterNumber":  4,
		"Title":          "突破",
		"Content":        "李明吸收灵气。",
		"Known":          []pair{{Source: "洞府", Translated: "Cave Abode"}},
		"New":            []string{"李明", "灵气"},
		"Previous":       nil,
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{"洞府 → Cave Abode", "- 李明", "- 灵气", `"entity_mappings"`} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered prompt missing %q", want)
		}
	}
}

func TestExtractVariables(t *testing.T) {
	vars := ExtractVariables("Hello {{.Name}}, {{ .Count }} items, {{.Name}} again")
	if len(vars) != 2 || vars[0] != "Count" || vars[1] != "Name" {
		t.Errorf("ExtractVariables() = %v", vars)
	}
}
