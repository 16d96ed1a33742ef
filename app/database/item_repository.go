package database

import (
	"database/sql"
	"fmt"
)

var _ ItemRegistry = (*ItemRepository)(nil)

// ItemRepository handles database operations for items
type ItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// PutItems inserts accepted items in a single transaction. Item ids
// are content-derived, so a conflicting insert is a duplicate of an
// identical record and is skipped rather than treated as an error.
func (r *ItemRepository) PutItems(items []Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		_, err := tx.Exec(`
			INSERT INTO items (
				id, feed_id, title, link, published_at, content,
				is_read, content_hash, author, size_bytes
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING
		`, item.ID, item.FeedID, item.Title, item.Link, item.PublishedAt.UTC(),
			item.Content, item.Read, item.ContentHash, item.Author, item.SizeBytes)
		if err != nil {
			return fmt.Errorf("failed to store item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit items: %w", err)
	}

	return nil
}

// PutItem updates a single item record. Used for read-state toggling.
func (r *ItemRepository) PutItem(item Item) error {
	_, err := r.db.Exec(`
		INSERT INTO items (
			id, feed_id, title, link, published_at, content,
			is_read, content_hash, author, size_bytes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			is_read = excluded.is_read
	`, item.ID, item.FeedID, item.Title, item.Link, item.PublishedAt.UTC(),
		item.Content, item.Read, item.ContentHash, item.Author, item.SizeBytes)
	if err != nil {
		return fmt.Errorf("failed to update item %s: %w", item.ID, err)
	}

	return nil
}

// GetItem returns a single item, or nil when no such item exists.
func (r *ItemRepository) GetItem(id string) (*Item, error) {
	items, err := r.queryItems(`
		SELECT id, feed_id, title, link, published_at, content,
		       is_read, content_hash, author, size_bytes
		FROM items
		WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// GetAllItems returns the full corpus, newest first.
func (r *ItemRepository) GetAllItems() ([]Item, error) {
	return r.queryItems(`
		SELECT id, feed_id, title, link, published_at, content,
		       is_read, content_hash, author, size_bytes
		FROM items
		ORDER BY published_at DESC
	`)
}

// GetItemsByFeed returns one feed's items, newest first.
func (r *ItemRepository) GetItemsByFeed(feedID string) ([]Item, error) {
	return r.queryItems(`
		SELECT id, feed_id, title, link, published_at, content,
		       is_read, content_hash, author, size_bytes
		FROM items
		WHERE feed_id = ?
		ORDER BY published_at DESC
	`, feedID)
}

// HasContentHash reports whether any item in the corpus carries the
// given content hash. The check is global: duplicates are suppressed
// across feeds, not per feed.
func (r *ItemRepository) HasContentHash(hash string) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM items WHERE content_hash = ? LIMIT 1`, hash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check content hash: %w", err)
	}
	return true, nil
}

// GetItemStats returns corpus totals for the stats endpoint.
func (r *ItemRepository) GetItemStats() (int, int, int64, error) {
	var total, unread int
	var sizeBytes int64
	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN is_read = 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(size_bytes), 0)
		FROM items
	`).Scan(&total, &unread, &sizeBytes)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get item stats: %w", err)
	}
	return total, unread, sizeBytes, nil
}

func (r *ItemRepository) queryItems(query string, args ...any) ([]Item, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		err := rows.Scan(
			&item.ID, &item.FeedID, &item.Title, &item.Link, &item.PublishedAt,
			&item.Content, &item.Read, &item.ContentHash, &item.Author, &item.SizeBytes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}
