package entry

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lennon-c/de-wiktio/internal/mediawiki"
)

func TestLoaderEntryFromExport(t *testing.T) {
	tests := []struct {
		name       string
		page       mediawiki.Page
		wantStatus Status
		wantText   bool
	}{
		{
			name:       "ok",
			page:       mediawiki.Page{Title: "Haus", Namespace: "0", Wikitext: hausMarkup},
			wantStatus: StatusOK,
			wantText:   true,
		},
		{
			name:       "missing page",
			page:       mediawiki.Page{},
			wantStatus: StatusNoContent,
		},
		{
			name:       "wrong namespace discards wikitext",
			page:       mediawiki.Page{Title: "Hilfe:Haus", Namespace: "12", Wikitext: "irrelevant"},
			wantStatus: StatusWrongNamespace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &countingFetcher{
				pages: map[string]mediawiki.Page{"Haus": tt.page},
				calls: make(map[string]int),
			}
			loader := NewLoader(fetcher, nil, slog.Default())

			e, err := loader.EntryFromExport(context.Background(), "Haus")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, e.Status())
			assert.Equal(t, OriginExport, e.Origin())
			if tt.wantText {
				assert.NotEmpty(t, e.Wikitext())
			} else {
				assert.Empty(t, e.Wikitext())
			}
		})
	}
}

func TestLoaderTransportErrorPropagates(t *testing.T) {
	loader := NewLoader(failingFetcher{}, nil, slog.Default())

	_, err := loader.EntryFromExport(context.Background(), "Haus")
	require.Error(t, err)
}

func TestLoaderMissingSourcesAreErrors(t *testing.T) {
	loader := NewLoader(nil, nil, slog.Default())

	_, err := loader.EntryFromExport(context.Background(), "Haus")
	assert.Error(t, err, "no fetcher wired")

	_, err = loader.EntryFromDump(context.Background(), "Haus")
	assert.Error(t, err, "no cache registry wired")
}

func TestLoaderDumpCacheErrorPropagates(t *testing.T) {
	cacheErr := errors.New("no cache file")
	loader := NewLoader(nil, failingRegistry{err: cacheErr}, slog.Default())

	_, err := loader.EntryFromDump(context.Background(), "Haus")
	require.Error(t, err)
	assert.ErrorIs(t, err, cacheErr)
}

func TestLoaderNormalizesTitles(t *testing.T) {
	// "Bär" with a decomposed umlaut (a + combining diaeresis) must match
	// the NFC-composed dump title.
	decomposed := "Bär"
	markup := "== Bär ({{Sprache|Deutsch}}) ==\n=== {{Wortart|Substantiv|Deutsch}} ===\nx\n"

	loader, _ := testLoader(t, map[string]map[string]string{
		NamespaceEntry: {"Bär": markup},
	})

	e, err := loader.EntryFromDump(context.Background(), decomposed)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, e.Status())
	assert.Equal(t, "Bär", e.Title())
}

// failingRegistry is a CacheRegistry whose load always fails.
type failingRegistry struct{ err error }

func (f failingRegistry) Pages(context.Context, string) (map[string]string, error) {
	return nil, f.err
}

func TestLoaderFetcherFunc(t *testing.T) {
	var gotTitle string
	fn := FetcherFunc(func(_ context.Context, title string) (mediawiki.Page, error) {
		gotTitle = title
		return mediawiki.Page{Title: title, Namespace: "0", Wikitext: hausMarkup}, nil
	})
	loader := NewLoader(fn, nil, slog.Default())

	e, err := loader.EntryFromExport(context.Background(), "Haus")
	require.NoError(t, err)
	assert.Equal(t, "Haus", gotTitle)
	assert.Equal(t, StatusOK, e.Status())
}
