// Package ingest implements the feed ingestion pipeline: fetch, parse,
// deduplicate, apply the per-feed size budget and persist.
package ingest

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"feedstash/app/database"
	"feedstash/app/fetch"
	"feedstash/app/hash"
	"feedstash/app/metrics"
	"feedstash/app/parser"
)

// DefaultMaxSizeBytes is the per-feed content budget applied when a feed
// is added without explicit settings.
const DefaultMaxSizeBytes = 7 * 1 << 20

const refreshParallelism = 4

// WarningBudgetExceeded is attached to a refresh result when the size
// budget cut the entry list short. The refresh itself still succeeds.
const WarningBudgetExceeded = "size budget exceeded, loaded partial content"

type Fetcher interface {
	Run(ctx context.Context, url string) ([]byte, error)
}

type Extractor interface {
	Enrich(ctx context.Context, link, body string) (string, bool)
}

// Result describes the outcome of one ingestion run for a feed.
type Result struct {
	Feed     database.Feed
	Accepted []database.Item
	Skipped  int
	Dropped  int
	Warning  string
}

type Pipeline struct {
	feedRepo  database.FeedRegistry
	itemRepo  database.ItemRegistry
	fetcher   Fetcher
	parser    *parser.Parser
	extractor Extractor
}

func NewPipeline(feedRepo database.FeedRegistry, itemRepo database.ItemRegistry,
	fetcher Fetcher, p *parser.Parser, extractor Extractor) *Pipeline {
	return &Pipeline{
		feedRepo:  feedRepo,
		itemRepo:  itemRepo,
		fetcher:   fetcher,
		parser:    p,
		extractor: extractor,
	}
}

// AddFeed registers a new feed and runs an initial ingestion. Unlike
// RefreshFeed, failures are returned to the caller so a bad URL is
// rejected up front.
func (p *Pipeline) AddFeed(ctx context.Context, url string) (*Result, error) {
	return p.AddFeedWithSettings(ctx, url, database.FeedSettings{
		MaxSizeBytes: DefaultMaxSizeBytes,
	})
}

func (p *Pipeline) AddFeedWithSettings(ctx context.Context, url string, settings database.FeedSettings) (*Result, error) {
	if !strings.HasPrefix(url, "https://") {
		return nil, ErrUnsupportedScheme
	}

	feedID := hash.FingerprintString(url)

	existing, err := p.feedRepo.GetFeed(feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to check feed %s: %w", feedID, err)
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	if settings.MaxSizeBytes <= 0 {
		settings.MaxSizeBytes = DefaultMaxSizeBytes
	}

	feed := database.Feed{
		ID:       feedID,
		URL:      url,
		Settings: settings,
	}

	result, err := p.ingest(ctx, &feed)
	if err != nil {
		return nil, err
	}

	if err := p.persist(result); err != nil {
		return nil, err
	}

	return result, nil
}

// RefreshFeed re-ingests an existing feed. Errors never propagate:
// failures are recorded on the feed as a fetch status and message so
// one broken feed cannot fail a refresh cycle.
func (p *Pipeline) RefreshFeed(ctx context.Context, feed database.Feed) Result {
	result, err := p.ingest(ctx, &feed)
	if err != nil {
		status, message := classify(err)
		feed.LastFetchedAt = time.Now()
		feed.LastFetchStatus = status
		feed.LastFetchError = message
		result = &Result{Feed: feed}

		slog.Warn("Feed refresh failed", "feed_id", feed.ID, "url", feed.URL,
			"status", status, "error", err)
	}

	metrics.RecordRefresh(result.Feed.LastFetchStatus)

	if err := p.persist(result); err != nil {
		slog.Error("Failed to persist refresh result", "feed_id", feed.ID, "error", err)
	}

	return *result
}

// RefreshAll refreshes every known feed with bounded parallelism and
// returns the reloaded feed and item sets.
func (p *Pipeline) RefreshAll(ctx context.Context) ([]database.Feed, []database.Item, error) {
	feeds, err := p.feedRepo.GetAllFeeds()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load feeds: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshParallelism)

	for _, feed := range feeds {
		g.Go(func() error {
			p.RefreshFeed(ctx, feed)
			return nil
		})
	}
	_ = g.Wait()

	updated, err := p.feedRepo.GetAllFeeds()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reload feeds: %w", err)
	}

	items, err := p.itemRepo.GetAllItems()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reload items: %w", err)
	}

	return updated, items, nil
}

func (p *Pipeline) ingest(ctx context.Context, feed *database.Feed) (*Result, error) {
	start := time.Now()
	data, err := p.fetcher.Run(ctx, feed.URL)
	metrics.ObserveFetchDuration(time.Since(start))
	if err != nil {
		return nil, err
	}

	opts := parser.Options{AllowImages: feed.Settings.FetchImages}
	if feed.Settings.ExtractContent && p.extractor != nil {
		opts.Extract = func(link, body string) (string, bool) {
			return p.extractor.Enrich(ctx, link, body)
		}
	}

	meta, entries, err := p.parser.Run(data, opts)
	if err != nil {
		return nil, err
	}

	feed.Title = cmp.Or(meta.Title, feed.Title)
	feed.Description = cmp.Or(meta.Description, feed.Description)
	feed.LastFetchedAt = time.Now()
	feed.LastFetchStatus = database.StatusSuccess
	feed.LastFetchError = ""

	result := &Result{Feed: *feed}
	seen := map[string]bool{}
	total := feed.TotalSizeBytes
	budgetHit := false

	for _, entry := range entries {
		itemID := hash.FingerprintString(entry.Link + entry.Title)
		if seen[itemID] {
			result.Skipped++
			continue
		}
		seen[itemID] = true

		known, err := p.itemRepo.HasContentHash(entry.ContentHash)
		if err != nil {
			return nil, fmt.Errorf("failed to check content hash: %w", err)
		}
		if known {
			result.Skipped++
			continue
		}

		if budgetHit {
			result.Dropped++
			continue
		}

		item := database.Item{
			ID:          itemID,
			FeedID:      feed.ID,
			Title:       entry.Title,
			Link:        entry.Link,
			PublishedAt: entry.PublishedAt,
			Content:     entry.Content,
			ContentHash: entry.ContentHash,
			Author:      entry.Author,
		}
		item.SizeBytes = itemSize(item)

		if total+item.SizeBytes > feed.Settings.MaxSizeBytes {
			result.Warning = WarningBudgetExceeded
			result.Dropped++
			budgetHit = true
			continue
		}

		total += item.SizeBytes
		result.Accepted = append(result.Accepted, item)
	}

	result.Feed.TotalSizeBytes = total
	metrics.RecordIngest(len(result.Accepted), result.Skipped, result.Dropped)

	return result, nil
}

// persist writes the feed row first: items carry a foreign key to
// their feed, so on an initial add the feed must exist before any
// item insert.
func (p *Pipeline) persist(result *Result) error {
	if err := p.feedRepo.PutFeeds([]database.Feed{result.Feed}); err != nil {
		return fmt.Errorf("failed to store feed: %w", err)
	}

	if len(result.Accepted) > 0 {
		if err := p.itemRepo.PutItems(result.Accepted); err != nil {
			return fmt.Errorf("failed to store items: %w", err)
		}
	}

	return nil
}

// itemSize approximates the stored footprint of an item using its
// serialized form, matching how TotalSizeBytes is accounted.
func itemSize(item database.Item) int64 {
	data, err := json.Marshal(item)
	if err != nil {
		return int64(len(item.Content))
	}
	return int64(len(data))
}

func classify(err error) (status, message string) {
	switch {
	case errors.Is(err, fetch.ErrNotFound):
		return database.StatusNotFound, "feed not found (404)"
	case errors.Is(err, parser.ErrMalformedXML):
		return database.StatusMalformedXML, "invalid RSS/Atom feed format"
	case errors.Is(err, fetch.ErrTransport):
		return database.StatusCORSError, "network error: cannot access feed"
	default:
		return database.StatusTimeout, err.Error()
	}
}
