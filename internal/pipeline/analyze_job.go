package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hoanglong/serica/internal/glossary"
	"github.com/hoanglong/serica/internal/library"
)

// JobTypeAnalyze identifies chapter analysis jobs.
const JobTypeAnalyze = "analyze_chapter"

// AnalyzeChapterJob extracts entities and a summary from one chapter and
// records them. Analysis jobs for one work share a lane so first-seen chapter
// tracking follows reading order.
type AnalyzeChapterJob struct {
	WorkID    string
	ChapterID string

	Library   library.Store
	Glossary  glossary.Store
	Extractor *Extractor
	Logger    *slog.Logger
}

func (j *AnalyzeChapterJob) Type() string { return JobTypeAnalyze }

func (j *AnalyzeChapterJob) Lane() string { return "analysis:" + j.WorkID }

// Execute runs extraction and persists the outcome. Nothing is written when
// the LLM response fails validation, so a retried attempt starts clean.
func (j *AnalyzeChapterJob) Execute(ctx context.Context) error {
	logger := j.logger()

	chapter, err := j.Library.GetChapter(ctx, j.ChapterID)
	if err != nil {
		return fmt.Errorf("load chapter %s: %w", j.ChapterID, err)
	}
	work, err := j.Library.GetWork(ctx, chapter.WorkID)
	if err != nil {
		return fmt.Errorf("load work %s: %w", chapter.WorkID, err)
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

	if err := j.Library.SetChapterSummary(ctx, chapter.ID, extraction.Summary); err != nil {
		return fmt.Errorf("save chapter summary: %w", err)
	}

	created, err := j.Glossary.UpsertEntities(ctx, work.ID, chapter.Number, extraction.Candidates())
	if err != nil {
		return fmt.Errorf("upsert entities: %w", err)
	}

	logger.Info("chapter analyzed",
		"work", work.ID,
		"chapter", chapter.Number,
		"extracted", len(extraction.Names()),
		"new_entities", len(created))
	return nil
}

func (j *AnalyzeChapterJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
