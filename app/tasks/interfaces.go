package tasks

import (
	"context"

	"feedstash/app/database"
	"feedstash/app/ingest"
)

// TaskSchedulerInterface defines the background task processing
// surface used by the main application.
// Example usage:
//
//	scheduler := NewScheduler(pipeline, feedRepo)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// FeedRefresher is the slice of the ingestion pipeline the refresh
// task needs.
type FeedRefresher interface {
	RefreshFeed(ctx context.Context, feed database.Feed) ingest.Result
}
