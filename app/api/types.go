package api

import (
	"context"

	"feedstash/app/database"
	"feedstash/app/ingest"
	"feedstash/app/quota"
)

// PipelineInterface is the slice of the ingestion pipeline exposed
// over HTTP.
type PipelineInterface interface {
	AddFeed(ctx context.Context, url string) (*ingest.Result, error)
	RefreshFeed(ctx context.Context, feed database.Feed) ingest.Result
	RefreshAll(ctx context.Context) ([]database.Feed, []database.Item, error)
}

var _ PipelineInterface = (*ingest.Pipeline)(nil)

// QuotaInterface reports the disk footprint of the content store.
type QuotaInterface interface {
	Run() (quota.Usage, error)
}

var _ QuotaInterface = (*quota.Probe)(nil)

type Handler struct {
	feedRepo database.FeedRegistry
	itemRepo database.ItemRegistry
	pipeline PipelineInterface
	quota    QuotaInterface
}

type addFeedRequest struct {
	URL string `json:"url" binding:"required"`
}

type updateItemRequest struct {
	Read *bool `json:"read" binding:"required"`
}
