// Command export runs bulk extraction over the namespace-0 page cache and
// loads the results into the PostgreSQL lexicon. It is intended to be run
// offline after cmd/dumpindex has built the caches.
//
// Flags:
//
//	--config        path to YAML config file (overrides DEWIKTIO_CONFIG)
//	--dry-run       extract and count without writing to DB
//	--limit         process at most N titles (0 = all)
//	--with-flexion  resolve companion Flexion pages for verbs and adjectives
//	--batch-size    rows per insert batch (default 500)
//	--migrate       apply goose migrations before exporting
//	--verify        print table counts and per-status lexeme counts after the run
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/lennon-c/de-wiktio/internal/app"
	"github.com/lennon-c/de-wiktio/internal/config"
	"github.com/lennon-c/de-wiktio/internal/entry"
	"github.com/lennon-c/de-wiktio/internal/exporter"
	"github.com/lennon-c/de-wiktio/internal/mediawiki"
	"github.com/lennon-c/de-wiktio/internal/pagecache"
	"github.com/lennon-c/de-wiktio/internal/postgres"
	"github.com/lennon-c/de-wiktio/internal/postgres/lexicon"
)

// Compile-time interface assertion.
var _ exporter.Repo = (*lexicon.Repo)(nil)

func main() {
	configFlag := flag.String("config", "", "path to YAML config file")
	dryRunFlag := flag.Bool("dry-run", false, "extract and count without writing to DB")
	limitFlag := flag.Int("limit", 0, "process at most N titles (0 = all)")
	withFlexionFlag := flag.Bool("with-flexion", false, "resolve companion Flexion pages")
	batchSizeFlag := flag.Int("batch-size", 500, "rows per insert batch")
	migrateFlag := flag.Bool("migrate", false, "apply goose migrations before exporting")
	verifyFlag := flag.Bool("verify", false, "print table counts after the run")
	migrationsFlag := flag.String("migrations", "./migrations", "path to goose migrations directory")
	flag.Parse()

	if *configFlag != "" {
		os.Setenv("DEWIKTIO_CONFIG", *configFlag)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	if *migrateFlag && !*dryRunFlag {
		if err := migrate(ctx, cfg.Database.DSN, *migrationsFlag); err != nil {
			logger.Error("migrate", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	store := pagecache.NewStore(cfg.Wiki.CacheDir, logger)
	registry := pagecache.NewRegistry(store)
	fetcher := mediawiki.NewClientWithBaseURL(cfg.Wiki.BaseURL, logger)
	loader := entry.NewLoader(fetcher, registry, logger)

	var repo exporter.Repo
	var lexRepo *lexicon.Repo
	if !*dryRunFlag {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Error("connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()
		lexRepo = lexicon.New(pool)
		repo = lexRepo
	}

	pipeline := exporter.NewPipeline(logger, repo, loader, registry, exporter.Config{
		DryRun:      *dryRunFlag,
		Limit:       *limitFlag,
		WithFlexion: *withFlexionFlag,
		BatchSize:   *batchSizeFlag,
	})

	summary, err := pipeline.Run(ctx)
	if err != nil {
		logger.Error("export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	for status, n := range summary.ByStatus {
		logger.Info("status count", slog.String("status", status), slog.Int("pages", n))
	}

	if *verifyFlag && lexRepo != nil {
		if err := verify(ctx, lexRepo); err != nil {
			logger.Error("verify", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
}

func migrate(ctx context.Context, dsn, dir string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, os.DirFS(dir))
	if err != nil {
		return fmt.Errorf("goose new provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func verify(ctx context.Context, repo *lexicon.Repo) error {
	for _, table := range []string{"lexemes", "word_forms", "pos_tags", "inflection_values"} {
		n, err := repo.CountByTable(ctx, table)
		if err != nil {
			return err
		}
		fmt.Printf("%-18s %d\n", table, n)
	}

	counts, err := repo.CountLexemesByStatus(ctx, "")
	if err != nil {
		return err
	}
	for status, n := range counts {
		fmt.Printf("lexemes[%s] %d\n", status, n)
	}
	return nil
}
