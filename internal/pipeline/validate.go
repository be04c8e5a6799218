package pipeline

import (
	"github.com/hoanglong/serica/internal/report"
	"github.com/hoanglong/serica/pkg/normalize"
)

// ValidateMappings checks that a structurally valid translation response is
// semantically complete: entity_mappings must carry a non-blank translation
// for every name in newNames. This is the gate between a provider response
// and any glossary write. Providers are observed to acknowledge the mapping
// request yet return an empty object, a silent failure that would otherwise
// poison terminology consistency across every later chapter.
//
// On failure it returns *MissingEntityMappingsError whose Missing list is
// deduplicated and ordered exactly as the names were presented in the prompt,
// so the failure is actionable and retry prompts can re-list the names.
func ValidateMappings(newNames []string, res *TranslationResult, raw string, formatter *report.Formatter) error {
	if formatter == nil {
		formatter = report.NewFormatter(report.DefaultLimits())
	}

	received := make(map[string]string, len(res.EntityMappings))
	for name, translated := range res.EntityMappings {
		received[normalize.Name(name)] = translated
	}

	var missing []string
	seen := make(map[string]struct{}, len(newNames))
	for _, name := range newNames {
		name = normalize.Name(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		translated, ok := received[name]
		// A present-but-blank mapping counts as missing: it looks like an
		// answer but records nothing usable.
		if !ok || normalize.IsBlank(translated) {
			missing = append(missing, name)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	merr := &MissingEntityMappingsError{
		Missing:  missing,
		Expected: len(seen),
		Received: len(res.EntityMappings),
	}
	merr.Report = formatter.Translation(report.Report{
		Kind:     KindMissingEntityMappings,
		Message:  merr.Error(),
		Prompt:   res.Prompt,
		Response: raw,
		Missing:  missing,
	})
	return merr
}
