package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"feedstash/app/database"
)

type RefreshFeedTask struct {
	Task
	feed      database.Feed
	refresher FeedRefresher
}

func NewRefreshFeedTask(feed database.Feed, refresher FeedRefresher) *RefreshFeedTask {
	return &RefreshFeedTask{
		Task:      NewTask(TaskTypeRefreshFeed, feed.ID),
		feed:      feed,
		refresher: refresher,
	}
}

func (t *RefreshFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result := t.refresher.RefreshFeed(ctx, t.feed)

	if result.Feed.LastFetchStatus != database.StatusSuccess {
		return fmt.Errorf("refresh recorded status %s: %s",
			result.Feed.LastFetchStatus, result.Feed.LastFetchError)
	}

	slog.Info("Task completed",
		"type", "RefreshFeed",
		"feed_id", t.FeedID,
		"duration", t.GetDuration(),
		"new", len(result.Accepted),
		"duplicates", result.Skipped,
		"dropped", result.Dropped)

	if result.Warning != "" {
		slog.Warn("Feed refresh warning", "feed_id", t.FeedID, "warning", result.Warning)
	}

	return nil
}
