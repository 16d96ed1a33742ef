package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"feedstash/app/database"
	"feedstash/app/fetch"
	"feedstash/app/ingest"
	"feedstash/app/opml"
	"feedstash/app/parser"
)

func NewHandler(feedRepo database.FeedRegistry, itemRepo database.ItemRegistry,
	pipeline PipelineInterface, quota QuotaInterface) *Handler {
	return &Handler{
		feedRepo: feedRepo,
		itemRepo: itemRepo,
		pipeline: pipeline,
		quota:    quota,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
	}
	if total, _, _, err := h.itemRepo.GetItemStats(); err == nil {
		health["items"] = total
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	total, unread, sizeBytes, err := h.itemRepo.GetItemStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_item_stats", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	feedCount, err := h.feedRepo.GetFeedCount()
	if err != nil {
		slog.Error("Database error", "operation", "get_feed_count", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds":            feedCount,
		"items":            total,
		"unread_items":     unread,
		"total_size_bytes": sizeBytes,
	})
}

func (h *Handler) GetStorage(c *gin.Context) {
	usage, err := h.quota.Run()
	if err != nil {
		slog.Error("Storage probe failed", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, usage)
}

func (h *Handler) ListFeeds(c *gin.Context) {
	feeds, err := h.feedRepo.GetAllFeeds()
	if err != nil {
		slog.Error("Database error", "operation", "get_feeds", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"feeds": feeds, "count": len(feeds)})
}

func (h *Handler) AddFeed(c *gin.Context) {
	var req addFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	result, err := h.pipeline.AddFeed(c.Request.Context(), req.URL)
	if err != nil {
		status, message := addFeedError(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	response := gin.H{
		"feed":       result.Feed,
		"new":        len(result.Accepted),
		"duplicates": result.Skipped,
		"dropped":    result.Dropped,
	}
	if result.Warning != "" {
		response["warning"] = result.Warning
	}

	c.JSON(http.StatusCreated, response)
}

func addFeedError(err error) (int, string) {
	switch {
	case errors.Is(err, ingest.ErrUnsupportedScheme):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ingest.ErrAlreadyExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, fetch.ErrNotFound):
		return http.StatusBadGateway, "feed not found (404)"
	case errors.Is(err, parser.ErrMalformedXML):
		return http.StatusUnprocessableEntity, "invalid RSS/Atom feed format"
	default:
		return http.StatusBadGateway, err.Error()
	}
}

func (h *Handler) RefreshFeed(c *gin.Context) {
	id := c.Param("id")

	feed, err := h.feedRepo.GetFeed(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_feed", "feed_id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if feed == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "feed not found"})
		return
	}

	result := h.pipeline.RefreshFeed(c.Request.Context(), *feed)

	response := gin.H{
		"feed":       result.Feed,
		"new":        len(result.Accepted),
		"duplicates": result.Skipped,
		"dropped":    result.Dropped,
	}
	if result.Warning != "" {
		response["warning"] = result.Warning
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) RefreshAll(c *gin.Context) {
	feeds, items, err := h.pipeline.RefreshAll(c.Request.Context())
	if err != nil {
		slog.Error("Refresh cycle failed", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": feeds,
		"items": len(items),
	})
}

func (h *Handler) ListItems(c *gin.Context) {
	var items []database.Item
	var err error

	if feedID := c.Query("feed"); feedID != "" {
		items, err = h.itemRepo.GetItemsByFeed(feedID)
	} else {
		items, err = h.itemRepo.GetAllItems()
	}
	if err != nil {
		slog.Error("Database error", "operation", "get_items", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if c.Query("unread") == "true" {
		unread := make([]database.Item, 0, len(items))
		for _, item := range items {
			if !item.Read {
				unread = append(unread, item)
			}
		}
		items = unread
	}

	if items == nil {
		items = []database.Item{}
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *Handler) UpdateItem(c *gin.Context) {
	id := c.Param("id")

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Read == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read flag is required"})
		return
	}

	item, err := h.itemRepo.GetItem(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_item", "item_id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}

	item.Read = *req.Read
	if err := h.itemRepo.PutItem(*item); err != nil {
		slog.Error("Database error", "operation", "put_item", "item_id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, item)
}

// ImportOPML registers every https feed referenced by the uploaded
// OPML document. Feeds that already exist or fail their initial fetch
// are reported per URL instead of failing the import.
func (h *Handler) ImportOPML(c *gin.Context) {
	urls, err := opml.ExtractURLs(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid OPML document"})
		return
	}

	added := 0
	skipped := 0
	failures := map[string]string{}

	for _, url := range urls {
		_, err := h.pipeline.AddFeed(c.Request.Context(), url)
		switch {
		case err == nil:
			added++
		case errors.Is(err, ingest.ErrAlreadyExists):
			skipped++
		default:
			failures[url] = err.Error()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"added":    added,
		"skipped":  skipped,
		"failures": failures,
	})
}
