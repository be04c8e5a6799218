// Package library stores works and their chapters: the source content the
// pipeline reads and the translated content it writes. Translated chapters are
// only written after a translation job passes validation, so readers never see
// partially validated output.
package library

import "time"

// Work is a webnovel/series. Taxonomy fields are plain strings here; rendering
// and browsing UI is out of scope.
type Work struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Author         string    `json:"author,omitempty"`
	SourceLanguage string    `json:"source_language"`
	Section        string    `json:"section,omitempty"`
	Genres         []string  `json:"genres,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Chapter is one source-language chapter of a work. Number is the reading
// order reference used for job ordering and first-seen tracking.
type Chapter struct {
	ID        string    `json:"id"`
	WorkID    string    `json:"work_id"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Summary   string    `json:"summary,omitempty"` // written by analysis jobs
	CreatedAt time.Time `json:"created_at"`
}

// TranslatedChapter is the validated translation of one chapter into one
// target language.
type TranslatedChapter struct {
	ChapterID string    `json:"chapter_id"`
	WorkID    string    `json:"work_id"`
	Number    int       `json:"number"`
	Language  string    `json:"language"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
