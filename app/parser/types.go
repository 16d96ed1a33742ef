package parser

import (
	"time"
)

// Meta is feed-level metadata extracted from the document.
type Meta struct {
	Title       string
	Description string
}

// Entry is one normalized feed entry. Content has already been
// sanitized; ContentHash fingerprints the raw syndicated body before
// any enrichment or sanitization, so duplicate detection is stable
// across per-feed settings.
type Entry struct {
	Title       string
	Link        string
	PublishedAt time.Time
	Content     string
	ContentHash string
	Author      string
}

// ExtractFunc can replace an entry's raw body with a fuller one (for
// feeds that syndicate truncated articles) before sanitization. It
// returns the body to use and whether a replacement happened.
type ExtractFunc func(link, body string) (string, bool)

// Options control per-run normalization behavior.
type Options struct {
	AllowImages bool
	Extract     ExtractFunc
}
