// Command wiktio extracts one dictionary entry and prints the result as
// JSON. Pages come from the live site by default; --dump reads the local
// page cache built by cmd/dumpindex instead.
//
// Flags:
//
//	--title    page title to extract (required)
//	--dump     read from the local page cache instead of the live site
//	--api      fetch through the Action API instead of Spezial:Exportieren
//	--all      keep image and positional keys in overview tables
//	--label    print one labeled section (e.g. Bedeutungen) as plain text
//	--outline  print the heading tree instead of extracting
//	--config   path to YAML config file (overrides DEWIKTIO_CONFIG)
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/lennon-c/de-wiktio/internal/app"
	"github.com/lennon-c/de-wiktio/internal/config"
	"github.com/lennon-c/de-wiktio/internal/entry"
	"github.com/lennon-c/de-wiktio/internal/mediawiki"
	"github.com/lennon-c/de-wiktio/internal/pagecache"
)

type wordFormOut struct {
	Heading  string           `json:"heading"`
	Status   string           `json:"status"`
	POS      []string         `json:"pos"`
	Overview []entry.ParamMap `json:"overview"`
	Extended []entry.ParamMap `json:"extended,omitempty"`
	Label    string           `json:"label,omitempty"`
}

type entryOut struct {
	Title     string        `json:"title"`
	Origin    string        `json:"origin"`
	Status    string        `json:"status"`
	WordForms []wordFormOut `json:"word_forms"`
}

func main() {
	titleFlag := flag.String("title", "", "page title to extract (required)")
	dumpFlag := flag.Bool("dump", false, "read from the local page cache")
	apiFlag := flag.Bool("api", false, "fetch through the Action API")
	allFlag := flag.Bool("all", false, "keep image and positional keys in overview tables")
	labelFlag := flag.String("label", "", "print one labeled section as plain text")
	outlineFlag := flag.Bool("outline", false, "print the heading tree instead of extracting")
	configFlag := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if *titleFlag == "" {
		flag.Usage()
		os.Exit(1)
	}
	if *configFlag != "" {
		os.Setenv("DEWIKTIO_CONFIG", *configFlag)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := mediawiki.NewClientWithBaseURL(cfg.Wiki.BaseURL, logger)
	var fetcher entry.Fetcher = client
	if *apiFlag {
		fetcher = entry.FetcherFunc(client.FetchPageAPI)
	}
	registry := pagecache.NewRegistry(pagecache.NewStore(cfg.Wiki.CacheDir, logger))
	loader := entry.NewLoader(fetcher, registry, logger)

	var e *entry.Entry
	if *dumpFlag {
		e, err = loader.EntryFromDump(ctx, *titleFlag)
	} else {
		e, err = loader.EntryFromExport(ctx, *titleFlag)
	}
	if err != nil {
		logger.Error("load entry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *outlineFlag {
		fmt.Print(e.Outline())
		return
	}

	out, err := extract(ctx, e, *allFlag, *labelFlag)
	if err != nil {
		logger.Error("extract entry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		logger.Error("encode result", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func extract(ctx context.Context, e *entry.Entry, all bool, label string) (entryOut, error) {
	out := entryOut{
		Title:  e.Title(),
		Origin: string(e.Origin()),
	}

	for _, wf := range e.WordForms() {
		wfOut := wordFormOut{
			POS:      wf.POSTags(),
			Overview: wf.OverviewTables(all),
		}
		if h := wf.Heading(); h != nil {
			wfOut.Heading = h.Title
		}

		ext, err := wf.ExtendedInflections(ctx)
		if err != nil {
			return entryOut{}, fmt.Errorf("companion lookup: %w", err)
		}
		wfOut.Extended = ext

		if label != "" {
			if text, ok := wf.LabeledSection(label, true, nil); ok {
				wfOut.Label = text
			}
		}

		wfOut.Status = wf.Status().String()
		out.WordForms = append(out.WordForms, wfOut)
	}

	out.Status = e.Status().String()
	return out, nil
}
