package glossary

import "context"

// Store is the terminology persistence boundary. Both mutating operations are
// atomic per call: either all rows commit or none do, so a mid-batch failure
// never leaves the glossary partially consistent.
type Store interface {
	// UpsertEntities creates an Entity row for each candidate name not
	// already present for (workID, type). Idempotent: re-running with the
	// same candidates creates no duplicates. Returns the newly created
	// entities only.
	UpsertEntities(ctx context.Context, workID string, chapter int, candidates []Candidate) ([]Entity, error)

	// KnownTranslations returns every recorded source_name → translated_name
	// pair for the work and target language.
	KnownTranslations(ctx context.Context, workID, language string) (map[string]string, error)

	// RecordTranslations writes one Translation row per (name, translated)
	// pair for entities of the work that do not yet have one in the target
	// language. Existing rows win: an incoming value for an already-recorded
	// pair is ignored.
	RecordTranslations(ctx context.Context, workID, language string, mappings map[string]string) error

	// Entities returns all entities of a work in presentation order
	// (characters, places, terms; creation order within a type).
	Entities(ctx context.Context, workID string) ([]Entity, error)
}
