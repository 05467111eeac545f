// Package lexicon implements the export sink repository using PostgreSQL.
// It manages 4 tables (lexemes + 3 child tables) as an append-only store.
// Inserts use ON CONFLICT DO NOTHING; writers resolve already-stored titles
// through GetLexemeIDsByNormalizedTitles and skip their subtrees, which
// keeps re-exports idempotent without orphaning child rows.
package lexicon

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lennon-c/de-wiktio/internal/domain"
)

// Repo provides lexicon persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	sq   squirrel.StatementBuilderType
}

// New creates a new lexicon repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		sq:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ---------------------------------------------------------------------------
// Batch insert methods (pgx.Batch API)
// ---------------------------------------------------------------------------

// BulkInsertLexemes inserts lexemes using pgx.Batch. Existing lexemes
// (by title_normalized) are skipped via ON CONFLICT DO NOTHING.
// Returns the number of actually inserted rows.
func (r *Repo) BulkInsertLexemes(ctx context.Context, lexemes []domain.Lexeme) (int, error) {
	if len(lexemes) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, l := range lexemes {
		batch.Queue(
			`INSERT INTO lexemes (id, title, title_normalized, status, created_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (title_normalized) DO NOTHING`,
			l.ID, l.Title, l.TitleNormalized, l.Status, l.CreatedAt,
		)
	}

	return r.sendBatchExec(ctx, batch)
}

// BulkInsertWordForms inserts word_forms using pgx.Batch.
// Existing word forms (by id) are skipped via ON CONFLICT DO NOTHING.
func (r *Repo) BulkInsertWordForms(ctx context.Context, forms []domain.WordFormRecord) (int, error) {
	if len(forms) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, f := range forms {
		batch.Queue(
			`INSERT INTO word_forms (id, lexeme_id, heading, position, status)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO NOTHING`,
			f.ID, f.LexemeID, f.Heading, f.Position, f.Status,
		)
	}

	return r.sendBatchExec(ctx, batch)
}

// BulkInsertPOSTags inserts pos_tags using pgx.Batch.
// Existing tags (by unique constraint) are skipped via ON CONFLICT DO NOTHING.
func (r *Repo) BulkInsertPOSTags(ctx context.Context, tags []domain.POSTag) (int, error) {
	if len(tags) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, t := range tags {
		batch.Queue(
			`INSERT INTO pos_tags (word_form_id, tag, position)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (word_form_id, position) DO NOTHING`,
			t.WordFormID, t.Tag, t.Position,
		)
	}

	return r.sendBatchExec(ctx, batch)
}

// BulkInsertInflections inserts inflection_values using pgx.Batch.
// Existing values (by id) are skipped via ON CONFLICT DO NOTHING.
func (r *Repo) BulkInsertInflections(ctx context.Context, values []domain.InflectionValue) (int, error) {
	if len(values) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, v := range values {
		batch.Queue(
			`INSERT INTO inflection_values (id, word_form_id, source, table_index, name, value, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO NOTHING`,
			v.ID, v.WordFormID, string(v.Source), v.TableIndex, v.Name, v.Value, v.Position,
		)
	}

	return r.sendBatchExec(ctx, batch)
}

// ---------------------------------------------------------------------------
// Lookup methods (for the export pipeline)
// ---------------------------------------------------------------------------

// GetLexemeIDsByNormalizedTitles returns a map of title_normalized → UUID
// for all matching lexemes. The export pipeline uses it to skip lexemes a
// previous run already wrote: their freshly minted IDs were never inserted,
// so child rows pointing at them would break the foreign keys.
func (r *Repo) GetLexemeIDsByNormalizedTitles(ctx context.Context, titles []string) (map[string]uuid.UUID, error) {
	if len(titles) == 0 {
		return map[string]uuid.UUID{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT title_normalized, id FROM lexemes WHERE title_normalized = ANY($1)`,
		titles,
	)
	if err != nil {
		return nil, fmt.Errorf("get lexeme IDs by titles: %w", err)
	}
	defer rows.Close()

	result := make(map[string]uuid.UUID, len(titles))
	for rows.Next() {
		var title string
		var id uuid.UUID
		if err := rows.Scan(&title, &id); err != nil {
			return nil, fmt.Errorf("scan lexeme ID: %w", err)
		}
		result[title] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lexeme IDs: %w", err)
	}

	return result, nil
}

// ---------------------------------------------------------------------------
// Read-back methods (export summary and --verify)
// ---------------------------------------------------------------------------

// CountByTable returns the row count of one of the lexicon tables.
// Only the four known table names are accepted.
func (r *Repo) CountByTable(ctx context.Context, table string) (int64, error) {
	switch table {
	case "lexemes", "word_forms", "pos_tags", "inflection_values":
	default:
		return 0, fmt.Errorf("unknown lexicon table %q", table)
	}

	sql, args, err := r.sq.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var count int64
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return count, nil
}

// CountLexemesByStatus returns the number of lexemes per extraction status.
// When onlyStatus is non-empty, the result is restricted to that status.
func (r *Repo) CountLexemesByStatus(ctx context.Context, onlyStatus string) (map[string]int64, error) {
	q := r.sq.Select("status", "COUNT(*)").
		From("lexemes").
		GroupBy("status").
		OrderBy("status")
	if onlyStatus != "" {
		q = q.Where(squirrel.Eq{"status": onlyStatus})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build status count query: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("count lexemes by status: %w", err)
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		result[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}

	return result, nil
}

// ---------------------------------------------------------------------------
// Internal: batch execution helper
// ---------------------------------------------------------------------------

// sendBatchExec sends a pgx.Batch and counts affected rows from Exec results.
func (r *Repo) sendBatchExec(ctx context.Context, batch *pgx.Batch) (int, error) {
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int
	for range batch.Len() {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("batch exec: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}
