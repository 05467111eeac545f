// Package dump reads a full MediaWiki XML dump in one streaming pass and
// collects per-namespace title-to-wikitext mappings. Dumps run to many
// gigabytes, so no DOM is ever built.
package dump

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Stats summarizes one scan.
type Stats struct {
	PagesTotal int
	PagesKept  map[string]int
	Elapsed    time.Duration
}

// checkEvery bounds how often the context is polled during a scan.
const checkEvery = 1024

type dumpPage struct {
	Title     string `xml:"title"`
	Namespace string `xml:"ns"`
	Revision  struct {
		Text string `xml:"text"`
	} `xml:"revision"`
}

// Scan reads the dump at xmlPath and returns, for every requested namespace,
// the mapping from page title to wikitext. A missing or unreadable dump file
// is an error: it signals a misconfigured environment, not corpus variance.
func Scan(ctx context.Context, xmlPath string, namespaces []string, logger *slog.Logger) (map[string]map[string]string, Stats, error) {
	log := logger.With("component", "dump")
	start := time.Now()

	wanted := make(map[string]bool, len(namespaces))
	result := make(map[string]map[string]string, len(namespaces))
	for _, ns := range namespaces {
		wanted[ns] = true
		result[ns] = make(map[string]string)
	}

	f, err := os.Open(xmlPath)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("dump: open %s: %w", xmlPath, err)
	}
	defer f.Close()

	log.Info("dump scan started", slog.String("path", xmlPath), slog.Any("namespaces", namespaces))

	stats := Stats{PagesKept: make(map[string]int, len(namespaces))}
	dec := xml.NewDecoder(f)
	for {
		if stats.PagesTotal%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, Stats{}, fmt.Errorf("dump: scan cancelled: %w", err)
			}
		}

		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, Stats{}, fmt.Errorf("dump: read token: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "page" {
			continue
		}

		var page dumpPage
		if err := dec.DecodeElement(&page, &se); err != nil {
			return nil, Stats{}, fmt.Errorf("dump: decode page: %w", err)
		}
		stats.PagesTotal++

		if !wanted[page.Namespace] {
			continue
		}
		// Titles are stored NFC so cache lookups, which normalize their
		// keys the same way, always hit.
		result[page.Namespace][norm.NFC.String(page.Title)] = page.Revision.Text
		stats.PagesKept[page.Namespace]++
	}

	stats.Elapsed = time.Since(start)
	log.Info("dump scan finished",
		slog.Int("pages_total", stats.PagesTotal),
		slog.Any("pages_kept", stats.PagesKept),
		slog.Duration("elapsed", stats.Elapsed),
	)
	return result, stats, nil
}
