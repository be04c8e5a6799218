package library

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a work or chapter does not exist.
var ErrNotFound = errors.New("not found")

// Store is the content persistence boundary.
type Store interface {
	CreateWork(ctx context.Context, w *Work) error
	GetWork(ctx context.Context, id string) (*Work, error)
	ListWorks(ctx context.Context) ([]*Work, error)

	CreateChapter(ctx context.Context, c *Chapter) error
	GetChapter(ctx context.Context, id string) (*Chapter, error)
	ListChapters(ctx context.Context, workID string) ([]*Chapter, error)
	SetChapterSummary(ctx context.Context, chapterID, summary string) error

	// SaveTranslation stores a validated translation, replacing any earlier
	// one for the same (chapter, language).
	SaveTranslation(ctx context.Context, t *TranslatedChapter) error
	GetTranslation(ctx context.Context, chapterID, language string) (*TranslatedChapter, error)

	// RecentTranslations returns up to limit translated chapters of the work
	// in the language, with chapter number below before, most recent chapter
	// first. Used to build rolling prompt context.
	RecentTranslations(ctx context.Context, workID, language string, before, limit int) ([]*TranslatedChapter, error)
}
