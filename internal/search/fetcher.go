// Package search fetches and extracts news search results for keywords.
package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/haeorum-lab/sosik-monitor/internal/domain"
	"github.com/haeorum-lab/sosik-monitor/internal/logger"
	"github.com/haeorum-lab/sosik-monitor/pkg/httpclient"
)

const (
	// DefaultBaseURL is the news search endpoint queried per keyword.
	DefaultBaseURL = "https://search.naver.com/search.naver"

	// The endpoint serves non-news responses to default client identifiers,
	// so every request carries a browser User-Agent.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	dateLayout = "2006.01.02"
)

// FetchError reports a failed search for one keyword. The pipeline treats it
// as non-fatal: the keyword contributes no articles and the run continues.
type FetchError struct {
	Keyword string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch keyword %q: %v", e.Keyword, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher issues one search request per keyword against the news endpoint.
type Fetcher struct {
	client  httpclient.Client
	baseURL string
	log     logger.Logger
}

// NewFetcher builds a Fetcher. An empty baseURL selects DefaultBaseURL; a nil
// logger discards output.
func NewFetcher(client httpclient.Client, baseURL string, log logger.Logger) *Fetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Fetcher{client: client, baseURL: baseURL, log: log}
}

// Fetch returns the raw HTML of the news search results for keyword within
// the date range. Inverted ranges are passed through unvalidated; the
// endpoint decides what they mean.
func (f *Fetcher) Fetch(ctx context.Context, keyword string, r domain.DateRange) (string, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return "", &FetchError{Keyword: keyword, Err: fmt.Errorf("keyword is empty")}
	}

	query := url.Values{}
	query.Set("where", "news")
	query.Set("query", keyword)
	query.Set("sort", "1")
	query.Set("ds", r.Start.Format(dateLayout))
	query.Set("de", r.End.Format(dateLayout))

	target := f.baseURL + "?" + query.Encode()

	f.log.DebugObj("fetching news search page", "search_fetch", map[string]any{
		"keyword": keyword,
		"ds":      r.Start.Format(dateLayout),
		"de":      r.End.Format(dateLayout),
	})

	resp, err := f.client.Get(ctx, target, map[string]string{
		"User-Agent": browserUserAgent,
	})
	if err != nil {
		return "", &FetchError{Keyword: keyword, Err: fmt.Errorf("http get: %w", err)}
	}

	if resp.StatusCode() != http.StatusOK {
		return "", &FetchError{
			Keyword: keyword,
			Err:     fmt.Errorf("status %d body: %s", resp.StatusCode(), responseSnippet(resp.Body())),
		}
	}

	return string(resp.Body()), nil
}

// responseSnippet returns a truncated snippet of the response body for error
// messages.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
