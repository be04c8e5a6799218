package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hoanglong/serica/internal/glossary"
	"github.com/hoanglong/serica/internal/library"
	"github.com/hoanglong/serica/internal/report"
)

// JobTypeTranslate identifies chapter translation jobs.
const JobTypeTranslate = "translate_chapter"

// TranslateChapterJob translates one chapter into one target language with
// glossary-consistent entity names. Jobs for one (work, language) pair share
// a lane: chapter N's known-entity context depends on the glossary rows
// chapter N-1's job committed.
type TranslateChapterJob struct {
	WorkID    string
	ChapterID string
	Language  string

	Library    library.Store
	Glossary   glossary.Store
	Extractor  *Extractor
	Translator *Translator
	Logger     *slog.Logger

	// escalation carries names a prior attempt failed to map. Attempts run
	// serially on the job's lane, so plain assignment is safe.
	escalation []string
}

func (j *TranslateChapterJob) Type() string { return JobTypeTranslate }

func (j *TranslateChapterJob) Lane() string { return j.WorkID + ":" + j.Language }

// Execute runs the full chapter pipeline: extract entities, register them,
// partition known against new for the target language, translate with the
// glossary in the prompt, then verify every new entity came back mapped.
// Translation and glossary rows are written only after that final check, so
// a failed attempt leaves no partial state behind.
func (j *TranslateChapterJob) Execute(ctx context.Context) error {
	logger := j.logger()

	chapter, err := j.Library.GetChapter(ctx, j.ChapterID)
	if err != nil {
		return fmt.Errorf("load chapter %s: %w", j.ChapterID, err)
	}
	work, err := j.Library.GetWork(ctx, chapter.WorkID)
	if err != nil {
		return fmt.Errorf("load work %s: %w", chapter.WorkID, err)
	}

	// Translations are immutable: the first validated translation of a
	// chapter wins and re-submissions are no-ops.
	if existing, err := j.Library.GetTranslation(ctx, chapter.ID, j.Language); err == nil && existing != nil {
		logger.Info("translation already exists, skipping",
			"chapter", chapter.Number, "language", j.Language)
		return nil
	} else if err != nil && !errors.Is(err, library.ErrNotFound) {
		return fmt.Errorf("check existing translation: %w", err)
	}

	extraction, err := j.Extractor.Extract(ctx, ExtractInput{
		WorkTitle:      work.Title,
		ChapterNumber:  chapter.Number,
		SourceLanguage: work.SourceLanguage,
		Content:        chapter.Content,
	})
	if err != nil {
		return err
	}

	if _, err := j.Glossary.UpsertEntities(ctx, work.ID, chapter.Number, extraction.Candidates()); err != nil {
		return fmt.Errorf("upsert entities: %w", err)
	}

	tc, err := BuildContext(ctx, j.Glossary, work.ID, j.Language, extraction)
	if err != nil {
		return fmt.Errorf("build translation context: %w", err)
	}

	previous, err := j.previousChapters(ctx, work.ID, chapter.Number)
	if err != nil {
		return fmt.Errorf("load previous chapters: %w", err)
	}

	result, err := j.Translator.Translate(ctx, TranslateInput{
		ChapterNumber:  chapter.Number,
		SourceLanguage: work.SourceLanguage,
		TargetLanguage: j.Language,
		Title:          chapter.Title,
		Content:        chapter.Content,
		Previous:       previous,
		Escalation:     j.escalation,
	}, tc)
	if err != nil {
		return err
	}

	if err := ValidateMappings(tc.New, result, result.Raw, j.Translator.formatter); err != nil {
		var missing *MissingEntityMappingsError
		if errors.As(err, &missing) {
			j.escalation = missing.Missing
		}
		return err
	}

	if err := j.Glossary.RecordTranslations(ctx, work.ID, j.Language, result.EntityMappings); err != nil {
		return fmt.Errorf("record entity translations: %w", err)
	}
	if err := j.Library.SaveTranslation(ctx, &library.TranslatedChapter{
		ChapterID: chapter.ID,
		WorkID:    work.ID,
		Number:    chapter.Number,
		Language:  j.Language,
		Title:     result.Title,
		Content:   result.Content,
	}); err != nil {
		return fmt.Errorf("save translation: %w", err)
	}

	logger.Info("chapter translated",
		"work", work.ID,
		"chapter", chapter.Number,
		"language", j.Language,
		"known_entities", len(tc.Known),
		"new_entities", len(tc.New))
	return nil
}

// previousChapters collects recent translated chapters for rolling prompt
// context, bounded by the translator's config.
func (j *TranslateChapterJob) previousChapters(ctx context.Context, workID string, before int) ([]PreviousChapter, error) {
	cfg := j.Translator.cfg
	if cfg.ContextChapters <= 0 {
		return nil, nil
	}
	recent, err := j.Library.RecentTranslations(ctx, workID, j.Language, before, cfg.ContextChapters)
	if err != nil {
		return nil, err
	}
	out := make([]PreviousChapter, 0, len(recent))
	for _, ch := range recent {
		out = append(out, PreviousChapter{
			Number:  ch.Number,
			Excerpt: report.Truncate(ch.Content, cfg.ContextExcerptRunes),
		})
	}
	return out, nil
}

func (j *TranslateChapterJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
