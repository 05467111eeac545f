package entry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/lennon-c/de-wiktio/internal/mediawiki"
)

// Fetcher retrieves one page from the live wiki. Satisfied by
// *mediawiki.Client; the Action API variant works through FetcherFunc.
type Fetcher interface {
	FetchPage(ctx context.Context, title string) (mediawiki.Page, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, title string) (mediawiki.Page, error)

func (f FetcherFunc) FetchPage(ctx context.Context, title string) (mediawiki.Page, error) {
	return f(ctx, title)
}

// CacheRegistry provides the per-namespace title-to-wikitext mappings built
// from a dump. Satisfied by *pagecache.Registry.
type CacheRegistry interface {
	Pages(ctx context.Context, ns string) (map[string]string, error)
}

// Loader builds Entry and Flexion pages from the two page sources. Pages
// keep a reference to their loader so companion lookups reuse the same
// sources as the parent.
type Loader struct {
	fetch  Fetcher
	caches CacheRegistry
	log    *slog.Logger
}

// NewLoader wires a loader. Either source may be nil when a tool only uses
// the other; requesting a page from a missing source is an error.
func NewLoader(f Fetcher, c CacheRegistry, logger *slog.Logger) *Loader {
	return &Loader{fetch: f, caches: c, log: logger.With("component", "loader")}
}

// EntryFromExport fetches a main-content page from the live wiki. Empty
// wikitext records StatusNoContent; a page from another namespace records
// StatusWrongNamespace and its wikitext is discarded. Transport failures are
// returned as errors.
func (l *Loader) EntryFromExport(ctx context.Context, title string) (*Entry, error) {
	title = normalizeTitle(title)
	text, status, err := l.fromExport(ctx, title, NamespaceEntry)
	if err != nil {
		return nil, err
	}
	e := newEntry(title, text, status, OriginExport, l)
	l.logLoaded(ctx, "entry", title, OriginExport, e.Status())
	return e, nil
}

// EntryFromDump looks a main-content page up in the namespace-0 dump cache.
// A missing title records StatusNoContent; a missing cache is an error.
func (l *Loader) EntryFromDump(ctx context.Context, title string) (*Entry, error) {
	title = normalizeTitle(title)
	text, status, err := l.fromDump(ctx, title, NamespaceEntry)
	if err != nil {
		return nil, err
	}
	e := newEntry(title, text, status, OriginDump, l)
	l.logLoaded(ctx, "entry", title, OriginDump, e.Status())
	return e, nil
}

// FlexionFromExport fetches an inflection-table page from the live wiki.
func (l *Loader) FlexionFromExport(ctx context.Context, title string) (*Flexion, error) {
	title = normalizeTitle(title)
	text, status, err := l.fromExport(ctx, title, NamespaceFlexion)
	if err != nil {
		return nil, err
	}
	f := newFlexion(title, text, status, OriginExport, l)
	l.logLoaded(ctx, "flexion", title, OriginExport, f.Status())
	return f, nil
}

// FlexionFromDump looks an inflection-table page up in the namespace-108
// dump cache.
func (l *Loader) FlexionFromDump(ctx context.Context, title string) (*Flexion, error) {
	title = normalizeTitle(title)
	text, status, err := l.fromDump(ctx, title, NamespaceFlexion)
	if err != nil {
		return nil, err
	}
	f := newFlexion(title, text, status, OriginDump, l)
	l.logLoaded(ctx, "flexion", title, OriginDump, f.Status())
	return f, nil
}

func (l *Loader) fromExport(ctx context.Context, title, ns string) (string, Status, error) {
	if l.fetch == nil {
		return "", StatusOK, errors.New("entry: loader has no live page source")
	}
	page, err := l.fetch.FetchPage(ctx, title)
	if err != nil {
		return "", StatusOK, fmt.Errorf("entry: fetch %q: %w", title, err)
	}
	switch {
	case page.Wikitext == "":
		return "", StatusNoContent, nil
	case page.Namespace != ns:
		return "", StatusWrongNamespace, nil
	default:
		return page.Wikitext, StatusOK, nil
	}
}

func (l *Loader) fromDump(ctx context.Context, title, ns string) (string, Status, error) {
	if l.caches == nil {
		return "", StatusOK, errors.New("entry: loader has no dump cache source")
	}
	pages, err := l.caches.Pages(ctx, ns)
	if err != nil {
		return "", StatusOK, fmt.Errorf("entry: dump cache ns %s: %w", ns, err)
	}
	text := pages[title]
	if text == "" {
		return "", StatusNoContent, nil
	}
	return text, StatusOK, nil
}

func (l *Loader) logLoaded(ctx context.Context, kind, title string, origin Origin, status Status) {
	l.log.DebugContext(ctx, "page loaded",
		slog.String("kind", kind),
		slog.String("title", title),
		slog.String("origin", string(origin)),
		slog.String("status", status.String()),
	)
}

// normalizeTitle brings lookup titles to NFC so decomposed umlauts from shell
// input or foreign files match dump titles.
func normalizeTitle(title string) string {
	return norm.NFC.String(strings.TrimSpace(title))
}
