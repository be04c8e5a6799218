// Package glossary is the terminology store: the durable mapping from
// source-language entity names to per-target-language translations, scoped per
// work. It is the system's cross-chapter consistency memory: once an entity
// has a translation on record for a language, every later chapter must reuse
// it.
package glossary

import "time"

// EntityType classifies an extracted entity.
type EntityType string

const (
	TypeCharacter EntityType = "character"
	TypePlace     EntityType = "place"
	TypeTerm      EntityType = "term"
)

// Types lists entity types in presentation order: the order entity names are
// rendered into prompts and diffed against responses.
func Types() []EntityType {
	return []EntityType{TypeCharacter, TypePlace, TypeTerm}
}

// Entity is a named character/place/term extracted from source chapters.
// SourceName is unique per (WorkID, Type) and never renamed once created.
type Entity struct {
	ID               string     `json:"id"`
	WorkID           string     `json:"work_id"`
	Type             EntityType `json:"type"`
	SourceName       string     `json:"source_name"`
	FirstSeenChapter int        `json:"first_seen_chapter"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Translation is the rendering of one entity into one target language.
// Unique per (EntityID, Language); immutable once written. Later writes for
// the same pair are ignored (first-write-wins).
type Translation struct {
	EntityID       string    `json:"entity_id"`
	Language       string    `json:"language"`
	TranslatedName string    `json:"translated_name"`
	CreatedAt      time.Time `json:"created_at"`
}

// Candidate is a name observed in an extraction result, to be upserted.
type Candidate struct {
	Type EntityType
	Name string
}
