// Command dumpindex scans a full MediaWiki XML dump once and saves a SQLite
// page cache per requested namespace. The caches feed cmd/wiktio --dump and
// cmd/export.
//
// Flags:
//
//	--dump    path to the XML dump (overrides wiki.dump_file from config)
//	--ns      comma-separated namespaces to index (default "0,108")
//	--config  path to YAML config file (overrides DEWIKTIO_CONFIG)
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lennon-c/de-wiktio/internal/app"
	"github.com/lennon-c/de-wiktio/internal/config"
	"github.com/lennon-c/de-wiktio/internal/dump"
	"github.com/lennon-c/de-wiktio/internal/pagecache"
)

func main() {
	dumpFlag := flag.String("dump", "", "path to the XML dump")
	nsFlag := flag.String("ns", "0,108", "comma-separated namespaces to index")
	configFlag := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if *configFlag != "" {
		os.Setenv("DEWIKTIO_CONFIG", *configFlag)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	dumpPath := cfg.Wiki.DumpFile
	if *dumpFlag != "" {
		dumpPath = *dumpFlag
	}
	if dumpPath == "" {
		logger.Error("no dump file: set --dump or wiki.dump_file")
		os.Exit(1)
	}

	namespaces := strings.Split(*nsFlag, ",")
	for i := range namespaces {
		namespaces[i] = strings.TrimSpace(namespaces[i])
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	pages, stats, err := dump.Scan(ctx, dumpPath, namespaces, logger)
	if err != nil {
		logger.Error("dump scan failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("dump scan finished",
		slog.Int("pages_total", stats.PagesTotal),
		slog.Duration("elapsed", stats.Elapsed),
	)
	for ns, n := range stats.PagesKept {
		logger.Info("namespace indexed", slog.String("ns", ns), slog.Int("pages", n))
	}

	store := pagecache.NewStore(cfg.Wiki.CacheDir, logger)

	for _, ns := range namespaces {
		if err := store.Save(ctx, ns, pages[ns], dumpPath); err != nil {
			logger.Error("save cache",
				slog.String("ns", ns), slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("cache written",
			slog.String("ns", ns), slog.String("path", store.Path(ns)))
	}
}
