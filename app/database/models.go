package database

import (
	"time"
)

// Fetch status values. A feed carries the outcome of its most recent
// fetch attempt; every attempt overwrites the previous value.
const (
	StatusSuccess      = "success"
	StatusNotFound     = "not_found"
	StatusMalformedXML = "malformed_xml"
	StatusCORSError    = "cors_error"
	StatusTimeout      = "timeout"
)

// FeedSettings holds per-feed ingestion knobs.
type FeedSettings struct {
	FetchImages    bool  `json:"fetch_images"`
	MaxSizeBytes   int64 `json:"max_size_bytes"`
	ExtractContent bool  `json:"extract_content"`
}

// Feed is one subscribed source. ID is the fingerprint of the URL, so
// re-adding the same URL always resolves to the same record.
type Feed struct {
	ID              string       `json:"id"`
	URL             string       `json:"url"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	LastFetchedAt   time.Time    `json:"last_fetched_at"`
	LastFetchStatus string       `json:"last_fetch_status"`
	LastFetchError  string       `json:"last_fetch_error,omitempty"`
	TotalSizeBytes  int64        `json:"total_size_bytes"`
	Settings        FeedSettings `json:"settings"`
}

// Item is one accepted entry. Immutable after creation except for the
// read flag. ContentHash fingerprints the raw pre-sanitized body and
// exists for cross-refresh duplicate detection; it is distinct from
// ID, which fingerprints link+title.
type Item struct {
	ID          string    `json:"id"`
	FeedID      string    `json:"feed_id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
	Content     string    `json:"content"`
	Read        bool      `json:"read"`
	ContentHash string    `json:"content_hash"`
	Author      string    `json:"author,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
}
