package database

import (
	"database/sql"
	"fmt"
)

var _ FeedRegistry = (*FeedRepository)(nil)

// FeedRepository handles database operations for feeds
type FeedRepository struct {
	db *DB
}

func NewFeedRepository(db *DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// PutFeeds upserts feed records in a single transaction.
func (r *FeedRepository) PutFeeds(feeds []Feed) error {
	if len(feeds) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, feed := range feeds {
		_, err := tx.Exec(`
			INSERT INTO feeds (
				id, url, title, description, last_fetched_at,
				last_fetch_status, last_fetch_error, total_size_bytes,
				fetch_images, max_size_bytes, extract_content
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				url = excluded.url,
				title = excluded.title,
				description = excluded.description,
				last_fetched_at = excluded.last_fetched_at,
				last_fetch_status = excluded.last_fetch_status,
				last_fetch_error = excluded.last_fetch_error,
				total_size_bytes = excluded.total_size_bytes,
				fetch_images = excluded.fetch_images,
				max_size_bytes = excluded.max_size_bytes,
				extract_content = excluded.extract_content
		`, feed.ID, feed.URL, feed.Title, feed.Description, feed.LastFetchedAt.UTC(),
			feed.LastFetchStatus, feed.LastFetchError, feed.TotalSizeBytes,
			feed.Settings.FetchImages, feed.Settings.MaxSizeBytes, feed.Settings.ExtractContent)
		if err != nil {
			return fmt.Errorf("failed to upsert feed %s: %w", feed.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit feeds: %w", err)
	}

	return nil
}

// GetAllFeeds returns every subscribed feed.
func (r *FeedRepository) GetAllFeeds() ([]Feed, error) {
	rows, err := r.db.Query(`
		SELECT id, url, title, description, last_fetched_at,
		       last_fetch_status, last_fetch_error, total_size_bytes,
		       fetch_images, max_size_bytes, extract_content
		FROM feeds
		ORDER BY title, url
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}

// GetFeed returns a feed by id, or nil when it does not exist.
func (r *FeedRepository) GetFeed(id string) (*Feed, error) {
	row := r.db.QueryRow(`
		SELECT id, url, title, description, last_fetched_at,
		       last_fetch_status, last_fetch_error, total_size_bytes,
		       fetch_images, max_size_bytes, extract_content
		FROM feeds
		WHERE id = ?
	`, id)

	feed, err := scanFeed(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &feed, nil
}

func (r *FeedRepository) GetFeedCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM feeds`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count feeds: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeed(row rowScanner) (Feed, error) {
	var feed Feed
	err := row.Scan(
		&feed.ID, &feed.URL, &feed.Title, &feed.Description, &feed.LastFetchedAt,
		&feed.LastFetchStatus, &feed.LastFetchError, &feed.TotalSizeBytes,
		&feed.Settings.FetchImages, &feed.Settings.MaxSizeBytes, &feed.Settings.ExtractContent,
	)
	if err == sql.ErrNoRows {
		return feed, err
	}
	if err != nil {
		return feed, fmt.Errorf("failed to scan feed row: %w", err)
	}
	return feed, nil
}
