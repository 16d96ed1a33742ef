package database

// FeedRegistry is the persistence contract for feed records. Any store
// providing these operations is substitutable.
type FeedRegistry interface {
	PutFeeds(feeds []Feed) error
	GetAllFeeds() ([]Feed, error)
	GetFeed(id string) (*Feed, error)
	GetFeedCount() (int, error)
}

// ItemRegistry is the persistence contract for item records.
// GetAllItems and GetItemsByFeed return items sorted by published_at
// descending. HasContentHash is the global duplicate-detection index.
type ItemRegistry interface {
	PutItems(items []Item) error
	PutItem(item Item) error
	GetItem(id string) (*Item, error)
	GetAllItems() ([]Item, error)
	GetItemsByFeed(feedID string) ([]Item, error)
	HasContentHash(hash string) (bool, error)
	GetItemStats() (total int, unread int, sizeBytes int64, err error)
}
