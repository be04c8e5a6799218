package glossary

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hoanglong/serica/pkg/normalize"
)

// PostgresStore implements Store on pgx. Row-level uniqueness constraints on
// (work_id, entity_type, source_name) and (entity_id, language) are the
// enforcement mechanism for the idempotent-upsert and first-write-wins
// invariants; each mutating call runs in one transaction.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a glossary store backed by a pgx pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// UpsertEntities implements Store.
func (s *PostgresStore) UpsertEntities(ctx context.Context, workID string, chapter int, candidates []Candidate) ([]Entity, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin upsert_entities: %w", err)
	}
	defer tx.Rollback(ctx)

	var created []Entity
	for _, c := range candidates {
		name := normalize.Name(c.Name)
		if name == "" {
			continue
		}
		var e Entity
		err := tx.QueryRow(ctx, `
			INSERT INTO entities (id, work_id, entity_type, source_name, first_seen_chapter)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (work_id, entity_type, source_name) DO NOTHING
			RETURNING id, work_id, entity_type, source_name, first_seen_chapter, created_at;
		`, uuid.NewString(), workID, string(c.Type), name, chapter).
			Scan(&e.ID, &e.WorkID, &e.Type, &e.SourceName, &e.FirstSeenChapter, &e.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			continue // already present
		}
		if err != nil {
			return nil, fmt.Errorf("upsert entity %q: %w", name, err)
		}
		created = append(created, e)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit upsert_entities: %w", err)
	}
	return created, nil
}

// KnownTranslations implements Store.
func (s *PostgresStore) KnownTranslations(ctx context.Context, workID, language string) (map[string]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT ON (e.source_name) e.source_name, t.translated_name
		FROM entities e
		JOIN entity_translations t ON t.entity_id = e.id
		WHERE e.work_id = $1 AND t.language = $2
		ORDER BY e.source_name,
			CASE e.entity_type WHEN 'character' THEN 0 WHEN 'place' THEN 1 ELSE 2 END;
	`, workID, language)
	if err != nil {
		return nil, fmt.Errorf("known_translations: %w", err)
	}
	defer rows.Close()

	known := make(map[string]string)
	for rows.Next() {
		var name, translated string
		if err := rows.Scan(&name, &translated); err != nil {
			return nil, fmt.Errorf("scan known_translation: %w", err)
		}
		known[name] = translated
	}
	return known, rows.Err()
}

// RecordTranslations implements Store.
func (s *PostgresStore) RecordTranslations(ctx context.Context, workID, language string, mappings map[string]string) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin record_translations: %w", err)
	}
	defer tx.Rollback(ctx)

	for name, translated := range mappings {
		name = normalize.Name(name)
		if name == "" || normalize.IsBlank(translated) {
			continue
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO entity_translations (entity_id, language, translated_name)
			SELECT id, $3, $4 FROM entities
			WHERE work_id = $1 AND source_name = $2
			ON CONFLICT (entity_id, language) DO NOTHING;
		`, workID, name, language, translated)
		if err != nil {
			return fmt.Errorf("record translation %q: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit record_translations: %w", err)
	}
	return nil
}

// Entities implements Store.
func (s *PostgresStore) Entities(ctx context.Context, workID string) ([]Entity, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, work_id, entity_type, source_name, first_seen_chapter, created_at
		FROM entities
		WHERE work_id = $1
		ORDER BY CASE entity_type WHEN 'character' THEN 0 WHEN 'place' THEN 1 ELSE 2 END,
			created_at, source_name;
	`, workID)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	var out []Entity
	for rows.Next() {
		var e Entity
		if err := rows.Scan(&e.ID, &e.WorkID, &e.Type, &e.SourceName, &e.FirstSeenChapter, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ Store = (*PostgresStore)(nil)
