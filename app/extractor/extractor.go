// Package extractor fetches an entry's article page and extracts its
// readable content, for feeds that syndicate truncated bodies.
package extractor

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minBodyLength is the syndicated body length below which fetching the
// full article page is worthwhile.
const minBodyLength = 500

// Fetcher retrieves raw bytes from a URL.
type Fetcher interface {
	Run(ctx context.Context, url string) ([]byte, error)
}

type Extractor struct {
	fetcher Fetcher
}

func NewExtractor(fetcher Fetcher) *Extractor {
	return &Extractor{fetcher: fetcher}
}

// Enrich returns a fuller body for entries whose syndicated body is
// short, and reports whether enrichment happened. Extraction failures
// fall back to the original body; they never fail an ingestion.
func (e *Extractor) Enrich(ctx context.Context, link, body string) (string, bool) {
	if link == "" || len(body) >= minBodyLength {
		return body, false
	}

	data, err := e.fetcher.Run(ctx, link)
	if err != nil {
		slog.Debug("Content extraction fetch failed", "link", link, "error", err)
		return body, false
	}

	pageURL, err := url.Parse(link)
	if err != nil {
		return body, false
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), pageURL)
	if err != nil || article.Content == "" {
		slog.Debug("Content extraction produced nothing usable", "link", link, "error", err)
		return body, false
	}

	slog.Debug("Content extracted", "link", link, "content_length", len(article.Content))

	return article.Content, true
}
