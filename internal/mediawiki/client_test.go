package mediawiki

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

const exportXML = `<mediawiki xmlns="http://www.mediawiki.org/xml/export-0.11/">
  <siteinfo><sitename>Wiktionary</sitename></siteinfo>
  <page>
    <title>Haus</title>
    <ns>0</ns>
    <revision>
      <text>== Haus ({{Sprache|Deutsch}}) ==</text>
    </revision>
  </page>
</mediawiki>`

const emptyExportXML = `<mediawiki xmlns="http://www.mediawiki.org/xml/export-0.11/">
  <siteinfo><sitename>Wiktionary</sitename></siteinfo>
</mediawiki>`

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestFetchPage(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, exportXML)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, testLogger())
	page, err := c.FetchPage(context.Background(), "Haus")
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	if page.Title != "Haus" {
		t.Errorf("title = %q, want Haus", page.Title)
	}
	if page.Namespace != "0" {
		t.Errorf("namespace = %q, want 0", page.Namespace)
	}
	if !strings.Contains(page.Wikitext, "{{Sprache|Deutsch}}") {
		t.Errorf("wikitext = %q, missing language template", page.Wikitext)
	}
	if gotPath != "/wiki/Spezial:Exportieren/Haus" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestFetchPage_TitleEscaping(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, exportXML)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, testLogger())
	if _, err := c.FetchPage(context.Background(), "Flexion:zu Ende gehen"); err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if !strings.Contains(gotPath, "Flexion:zu%20Ende%20gehen") {
		t.Errorf("path = %q, title not escaped", gotPath)
	}
}

func TestFetchPage_MissingPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, emptyExportXML)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, testLogger())
	page, err := c.FetchPage(context.Background(), "Gibtsnicht")
	if err != nil {
		t.Fatalf("missing page must not be an error, got %v", err)
	}
	if page != (Page{}) {
		t.Errorf("expected zero page, got %+v", page)
	}
}

func TestFetchPage_NotWikiXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>rate limited</body></html>")
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, testLogger())
	_, err := c.FetchPage(context.Background(), "Haus")
	if !errors.Is(err, ErrNotWikiXML) {
		t.Fatalf("expected ErrNotWikiXML, got %v", err)
	}
}

func TestFetchPage_RetryOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, exportXML)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, testLogger())
	page, err := c.FetchPage(context.Background(), "Haus")
	if err != nil {
		t.Fatalf("FetchPage after retry: %v", err)
	}
	if page.Title != "Haus" {
		t.Errorf("title = %q, want Haus", page.Title)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 requests, got %d", got)
	}
}

func TestFetchPage_NoSecondRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, testLogger())
	if _, err := c.FetchPage(context.Background(), "Haus"); err == nil {
		t.Fatal("expected error after exhausted retry")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected exactly 2 requests, got %d", got)
	}
}

func TestFetchPageAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/w/api.php" {
			t.Errorf("path = %q, want /w/api.php", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("action") != "query" || q.Get("exportnowrap") == "" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		if q.Get("titles") != "Haus" {
			t.Errorf("titles = %q, want Haus", q.Get("titles"))
		}
		fmt.Fprint(w, exportXML)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, testLogger())
	page, err := c.FetchPageAPI(context.Background(), "Haus")
	if err != nil {
		t.Fatalf("FetchPageAPI: %v", err)
	}
	if page.Namespace != "0" {
		t.Errorf("namespace = %q, want 0", page.Namespace)
	}
}

func TestFetchPage_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, testLogger())
	if _, err := c.FetchPage(context.Background(), "Haus"); err == nil {
		t.Fatal("expected error on 404")
	}
}
