// Package pagecache persists and serves the per-namespace title-to-wikitext
// mappings built from a dump. Each namespace gets its own SQLite file; a
// process-wide Registry loads every namespace at most once per session.
package pagecache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go sqlite driver
)

// ErrNoCache is returned by Load when no cache file exists for a namespace.
var ErrNoCache = errors.New("pagecache: no cache for namespace")

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	title    TEXT PRIMARY KEY,
	wikitext TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS cache_meta (
	build_id   TEXT    NOT NULL,
	source     TEXT    NOT NULL,
	page_count INTEGER NOT NULL,
	built_at   TEXT    NOT NULL
);`

// Meta describes one persisted namespace cache.
type Meta struct {
	BuildID   string
	Source    string
	PageCount int
	BuiltAt   time.Time
}

// Store reads and writes namespace cache files under a directory.
type Store struct {
	dir string
	log *slog.Logger
}

// NewStore creates a Store rooted at dir. The directory is created on the
// first Save.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{dir: dir, log: logger.With("adapter", "pagecache")}
}

// Path returns the cache file location for a namespace.
func (s *Store) Path(ns string) string {
	return filepath.Join(s.dir, "wikidict_"+ns+".db")
}

// Save writes the full mapping for a namespace, replacing any previous
// content, in a single transaction. source records where the pages came from
// (usually the dump file path).
func (s *Store) Save(ctx context.Context, ns string, pages map[string]string, source string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("pagecache: create dir %s: %w", s.dir, err)
	}

	db, err := sqlx.Open("sqlite", s.Path(ns))
	if err != nil {
		return fmt.Errorf("pagecache: open %s: %w", s.Path(ns), err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("pagecache: create schema: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pagecache: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pages`); err != nil {
		return fmt.Errorf("pagecache: clear pages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cache_meta`); err != nil {
		return fmt.Errorf("pagecache: clear meta: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO pages (title, wikitext) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("pagecache: prepare insert: %w", err)
	}
	defer stmt.Close()

	// Sorted titles keep the file layout deterministic across builds.
	titles := make([]string, 0, len(pages))
	for title := range pages {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	for _, title := range titles {
		if _, err := stmt.ExecContext(ctx, title, pages[title]); err != nil {
			return fmt.Errorf("pagecache: insert %q: %w", title, err)
		}
	}

	meta := Meta{
		BuildID:   uuid.NewString(),
		Source:    source,
		PageCount: len(pages),
		BuiltAt:   time.Now().UTC(),
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cache_meta (build_id, source, page_count, built_at) VALUES (?, ?, ?, ?)`,
		meta.BuildID, meta.Source, meta.PageCount, meta.BuiltAt.Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("pagecache: insert meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pagecache: commit: %w", err)
	}

	s.log.Info("cache saved",
		slog.String("ns", ns),
		slog.Int("pages", meta.PageCount),
		slog.String("build_id", meta.BuildID),
	)
	return nil
}

// Load reads the full mapping for a namespace into memory.
// Returns ErrNoCache when the cache file does not exist.
func (s *Store) Load(ctx context.Context, ns string) (map[string]string, error) {
	path := s.Path(ns)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: ns %s at %s", ErrNoCache, ns, path)
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("pagecache: open %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.QueryxContext(ctx, `SELECT title, wikitext FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("pagecache: select pages: %w", err)
	}
	defer rows.Close()

	pages := make(map[string]string)
	for rows.Next() {
		var title, wikitext string
		if err := rows.Scan(&title, &wikitext); err != nil {
			return nil, fmt.Errorf("pagecache: scan page: %w", err)
		}
		pages[title] = wikitext
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pagecache: iterate pages: %w", err)
	}

	s.log.Debug("cache loaded", slog.String("ns", ns), slog.Int("pages", len(pages)))
	return pages, nil
}

// Meta returns the build metadata of a persisted cache.
func (s *Store) Meta(ctx context.Context, ns string) (Meta, error) {
	path := s.Path(ns)
	if _, err := os.Stat(path); err != nil {
		return Meta{}, fmt.Errorf("%w: ns %s at %s", ErrNoCache, ns, path)
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return Meta{}, fmt.Errorf("pagecache: open %s: %w", path, err)
	}
	defer db.Close()

	var row struct {
		BuildID   string `db:"build_id"`
		Source    string `db:"source"`
		PageCount int    `db:"page_count"`
		BuiltAt   string `db:"built_at"`
	}
	if err := db.GetContext(ctx, &row, `SELECT build_id, source, page_count, built_at FROM cache_meta LIMIT 1`); err != nil {
		return Meta{}, fmt.Errorf("pagecache: select meta: %w", err)
	}

	builtAt, err := time.Parse(time.RFC3339, row.BuiltAt)
	if err != nil {
		return Meta{}, fmt.Errorf("pagecache: parse built_at: %w", err)
	}
	return Meta{
		BuildID:   row.BuildID,
		Source:    row.Source,
		PageCount: row.PageCount,
		BuiltAt:   builtAt,
	}, nil
}
