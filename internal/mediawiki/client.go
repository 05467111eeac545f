// Package mediawiki fetches single pages from the live Wiktionary through
// the export tool (Spezial:Exportieren) or the Action API.
package mediawiki

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://de.wiktionary.org"

// ErrNotWikiXML is returned when a response is not a MediaWiki export document.
var ErrNotWikiXML = errors.New("mediawiki: response is not a mediawiki export document")

// Page is one exported page. A page that does not exist yields a zero Page
// (empty Wikitext), not an error.
type Page struct {
	Title     string
	Namespace string
	Wikitext  string
}

// Client fetches pages from a MediaWiki site.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client for the German Wiktionary.
func NewClient(logger *slog.Logger) *Client {
	return NewClientWithBaseURL(defaultBaseURL, logger)
}

// NewClientWithBaseURL creates a Client with a custom base URL (for testing).
func NewClientWithBaseURL(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logger.With("adapter", "mediawiki"),
	}
}

// FetchPage retrieves one page through the export tool:
// <base>/wiki/Spezial:Exportieren/<title>. Transport failures and unexpected
// statuses are errors; a missing page is not.
func (c *Client) FetchPage(ctx context.Context, title string) (Page, error) {
	reqURL := c.baseURL + "/wiki/Spezial:Exportieren/" + url.PathEscape(title)
	return c.fetch(ctx, title, reqURL)
}

// FetchPageAPI retrieves the same export document through the Action API:
// <base>/w/api.php?action=query&export&exportnowrap&titles=<title>.
func (c *Client) FetchPageAPI(ctx context.Context, title string) (Page, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("export", "1")
	q.Set("exportnowrap", "1")
	q.Set("titles", title)
	reqURL := c.baseURL + "/w/api.php?" + q.Encode()
	return c.fetch(ctx, title, reqURL)
}

func (c *Client) fetch(ctx context.Context, title, reqURL string) (Page, error) {
	c.log.DebugContext(ctx, "mediawiki request", slog.String("title", title))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("mediawiki: create request: %w", err)
	}

	resp, err := c.doWithRetry(ctx, req, title)
	if err != nil {
		c.log.ErrorContext(ctx, "mediawiki request failed",
			slog.String("title", title), slog.String("error", err.Error()))
		return Page{}, fmt.Errorf("mediawiki: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("mediawiki: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("mediawiki: read body: %w", err)
	}

	page, err := parseExport(body)
	if err != nil {
		return Page{}, err
	}

	c.log.DebugContext(ctx, "mediawiki response",
		slog.String("title", title),
		slog.String("ns", page.Namespace),
		slog.Int("wikitext_len", len(page.Wikitext)),
	)
	return page, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request, title string) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	// Don't retry if context is already cancelled.
	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	c.log.WarnContext(ctx, "mediawiki retry", slog.String("title", title), slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	time.Sleep(500 * time.Millisecond)

	return c.httpClient.Do(req)
}

// exportDoc mirrors the MediaWiki export XML shape. The export of a missing
// page has no <page> element at all.
type exportDoc struct {
	XMLName xml.Name     `xml:"mediawiki"`
	Pages   []exportPage `xml:"page"`
}

type exportPage struct {
	Title     string           `xml:"title"`
	Namespace string           `xml:"ns"`
	Revisions []exportRevision `xml:"revision"`
}

type exportRevision struct {
	Text string `xml:"text"`
}

func parseExport(body []byte) (Page, error) {
	var doc exportDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrNotWikiXML, err)
	}
	if len(doc.Pages) == 0 {
		return Page{}, nil
	}
	p := doc.Pages[0]
	page := Page{Title: p.Title, Namespace: p.Namespace}
	if len(p.Revisions) > 0 {
		page.Wikitext = p.Revisions[len(p.Revisions)-1].Text
	}
	return page, nil
}
