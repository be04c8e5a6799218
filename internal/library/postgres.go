package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on pgx.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a library store backed by a pgx pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateWork(ctx context.Context, w *Work) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO works (id, title, author, source_language, section, genres, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at;
	`, w.ID, w.Title, w.Author, w.SourceLanguage, w.Section, w.Genres, w.Tags).Scan(&w.CreatedAt)
	if err != nil {
		return fmt.Errorf("create work: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetWork(ctx context.Context, id string) (*Work, error) {
	w := &Work{}
	err := s.db.QueryRow(ctx, `
		SELECT id, title, author, source_language, section, genres, tags, created_at
		FROM works WHERE id = $1;
	`, id).Scan(&w.ID, &w.Title, &w.Author, &w.SourceLanguage, &w.Section, &w.Genres, &w.Tags, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("work %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get work: %w", err)
	}
	return w, nil
}

func (s *PostgresStore) ListWorks(ctx context.Context) ([]*Work, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, title, author, source_language, section, genres, tags, created_at
		FROM works ORDER BY created_at;
	`)
	if err != nil {
		return nil, fmt.Errorf("list works: %w", err)
	}
	defer rows.Close()

	var out []*Work
	for rows.Next() {
		w := &Work{}
		if err := rows.Scan(&w.ID, &w.Title, &w.Author, &w.SourceLanguage, &w.Section, &w.Genres, &w.Tags, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan work: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateChapter(ctx context.Context, c *Chapter) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO chapters (id, work_id, number, title, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at;
	`, c.ID, c.WorkID, c.Number, c.Title, c.Content).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create chapter: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetChapter(ctx context.Context, id string) (*Chapter, error) {
	c := &Chapter{}
	err := s.db.QueryRow(ctx, `
		SELECT id, work_id, number, title, content, COALESCE(summary, ''), created_at
		FROM chapters WHERE id = $1;
	`, id).Scan(&c.ID, &c.WorkID, &c.Number, &c.Title, &c.Content, &c.Summary, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("chapter %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get chapter: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListChapters(ctx context.Context, workID string) ([]*Chapter, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, work_id, number, title, content, COALESCE(summary, ''), created_at
		FROM chapters WHERE work_id = $1 ORDER BY number;
	`, workID)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer rows.Close()

	var out []*Chapter
	for rows.Next() {
		c := &Chapter{}
		if err := rows.Scan(&c.ID, &c.WorkID, &c.Number, &c.Title, &c.Content, &c.Summary, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SetChapterSummary(ctx context.Context, chapterID, summary string) error {
	tag, err := s.db.Exec(ctx, `UPDATE chapters SET summary = $2 WHERE id = $1;`, chapterID, summary)
	if err != nil {
		return fmt.Errorf("set chapter summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("chapter %s: %w", chapterID, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) SaveTranslation(ctx context.Context, t *TranslatedChapter) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO translated_chapters (chapter_id, work_id, number, language, title, content)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (chapter_id, language)
		DO UPDATE SET title = EXCLUDED.title, content = EXCLUDED.content
		RETURNING created_at;
	`, t.ChapterID, t.WorkID, t.Number, t.Language, t.Title, t.Content).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("save translation: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTranslation(ctx context.Context, chapterID, language string) (*TranslatedChapter, error) {
	t := &TranslatedChapter{}
	err := s.db.QueryRow(ctx, `
		SELECT chapter_id, work_id, number, language, title, content, created_at
		FROM translated_chapters WHERE chapter_id = $1 AND language = $2;
	`, chapterID, language).Scan(&t.ChapterID, &t.WorkID, &t.Number, &t.Language, &t.Title, &t.Content, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("translation %s/%s: %w", chapterID, language, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get translation: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) RecentTranslations(ctx context.Context, workID, language string, before, limit int) ([]*TranslatedChapter, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.Query(ctx, `
		SELECT chapter_id, work_id, number, language, title, content, created_at
		FROM translated_chapters
		WHERE work_id = $1 AND language = $2 AND number < $3
		ORDER BY number DESC LIMIT $4;
	`, workID, language, before, limit)
	if err != nil {
		return nil, fmt.Errorf("recent translations: %w", err)
	}
	defer rows.Close()

	var out []*TranslatedChapter
	for rows.Next() {
		t := &TranslatedChapter{}
		if err := rows.Scan(&t.ChapterID, &t.WorkID, &t.Number, &t.Language, &t.Title, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan translation: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

var _ Store = (*PostgresStore)(nil)
