package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/hoanglong/serica/internal/report"
)

func TestValidateMappingsComplete(t *testing.T) {
	res := &TranslationResult{
		EntityMappings: map[string]string{
			"李明": "Li Ming",
			"灵气": "Spiritual Qi",
		},
	}
	if err := ValidateMappings([]string{"李明", "灵气"}, res, "{}", nil); err != nil {
		t.Fatalf("ValidateMappings() error = %v, want nil", err)
	}
}

func TestValidateMappingsNoNewEntities(t *testing.T) {
	res := &TranslationResult{EntityMappings: map[string]string{}}
	if err := ValidateMappings(nil, res, "{}", nil); err != nil {
		t.Fatalf("ValidateMappings() error = %v, want nil when nothing is required", err)
	}
}

func TestValidateMappingsEmptyObject(t *testing.T) {
	newNames := []string{"李明", "功法", "阵法", "灵气", "突破"}
	res := &TranslationResult{EntityMappings: map[string]string{}}

	err := ValidateMappings(newNames, res, `{"entity_mappings":{}}`, nil)
	var merr *MissingEntityMappingsError
	if !errors.As(err, &merr) {
		t.Fatalf("ValidateMappings() error = %T, want *MissingEntityMappingsError", err)
	}

	if len(merr.Missing) != len(newNames) {
		t.Fatalf("Missing = %v, want all %d names", merr.Missing, len(newNames))
	}
	for i, name := range newNames {
		if merr.Missing[i] != name {
			t.Errorf("Missing[%d] = %q, want %q (prompt presentation order)", i, merr.Missing[i], name)
		}
	}
	if merr.Expected != 5 || merr.Received != 0 {
		t.Errorf("Expected/Received = %d/%d, want 5/0", merr.Expected, merr.Received)
	}
	if !Retryable(err) {
		t.Error("missing mappings must be retryable")
	}
}

func TestValidateMappingsPartial(t *testing.T) {
	res := &TranslationResult{
		EntityMappings: map[string]string{"李明": "Li Ming"},
	}
	err := ValidateMappings([]string{"李明", "灵气", "突破"}, res, "{}", nil)
	var merr *MissingEntityMappingsError
	if !errors.As(err, &merr) {
		t.Fatalf("ValidateMappings() error = %T, want *MissingEntityMappingsError", err)
	}
	if len(merr.Missing) != 2 || merr.Missing[0] != "灵气" || merr.Missing[1] != "突破" {
		t.Errorf("Missing = %v, want [灵气 突破]", merr.Missing)
	}
}

func TestValidateMappingsBlankValueCountsAsMissing(t *testing.T) {
	res := &TranslationResult{
		EntityMappings: map[string]string{"李明": "   "},
	}
	err := ValidateMappings([]string{"李明"}, res, "{}", nil)
	var merr *MissingEntityMappingsError
	if !errors.As(err, &merr) {
		t.Fatalf("ValidateMappings() error = %T, want *MissingEntityMappingsError", err)
	}
	if len(merr.Missing) != 1 || merr.Missing[0] != "李明" {
		t.Errorf("Missing = %v, want [李明]", merr.Missing)
	}
}

func TestValidateMappingsDeduplicatesNames(t *testing.T) {
	res := &TranslationResult{EntityMappings: map[string]string{}}
	err := ValidateMappings([]string{"李明", "李明", " 李明 "}, res, "{}", nil)
	var merr *MissingEntityMappingsError
	if !errors.As(err, &merr) {
		t.Fatalf("ValidateMappings() error = %T, want *MissingEntityMappingsError", err)
	}
	if len(merr.Missing) != 1 {
		t.Errorf("Missing = %v, want a single deduplicated entry", merr.Missing)
	}
	if merr.Expected != 1 {
		t.Errorf("Expected = %d, want 1", merr.Expected)
	}
}

func TestValidateMappingsReportIsBoundedAndItemized(t *testing.T) {
	longPrompt := strings.Repeat("翻译上下文", 2000) // far past the excerpt budget
	res := &TranslationResult{
		EntityMappings: map[string]string{},
		Prompt:         longPrompt,
	}
	formatter := report.NewFormatter(report.DefaultLimits())

	err := ValidateMappings([]string{"李明", "灵气"}, res, `{"title":"x"}`, formatter)
	var merr *MissingEntityMappingsError
	if !errors.As(err, &merr) {
		t.Fatalf("ValidateMappings() error = %T, want *MissingEntityMappingsError", err)
	}

	if merr.Report == "" {
		t.Fatal("expected a diagnostic report")
	}
	for _, name := range []string{"李明", "灵气"} {
		if !strings.Contains(merr.Report, name) {
			t.Errorf("report does not itemize missing entity %q", name)
		}
	}
	// The prompt excerpt must respect the translation budget even though the
	// source prompt is much larger.
	if strings.Count(merr.Report, "翻译上下文") > 700 {
		t.Error("report carries an untruncated prompt")
	}
}
