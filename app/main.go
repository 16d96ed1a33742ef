package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feedstash/app/api"
	"feedstash/app/cfg"
	"feedstash/app/database"
	"feedstash/app/extractor"
	"feedstash/app/fetch"
	"feedstash/app/ingest"
	"feedstash/app/parser"
	"feedstash/app/quota"
	"feedstash/app/sanitize"
	"feedstash/app/subscriptions"
	"feedstash/app/tasks"
)

const storageWarningThreshold = 80.0

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("Starting Feedstash server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	feedRepo := database.NewFeedRepository(db)
	itemRepo := database.NewItemRepository(db)

	httpClient := &http.Client{}
	fetchClient := fetch.NewClient(httpClient, appCfg.UserAgent,
		time.Duration(appCfg.FetchTimeout)*time.Second)
	feedParser := parser.NewParser(sanitize.NewSanitizer())
	contentExtractor := extractor.NewExtractor(fetchClient)

	pipeline := ingest.NewPipeline(feedRepo, itemRepo, fetchClient, feedParser, contentExtractor)

	seedSubscriptions(pipeline, appCfg.SubscriptionsFile)

	storageProbe := quota.NewProbe(appCfg.DBPath)
	if usage, err := storageProbe.Run(); err != nil {
		slog.Warn("Storage probe failed", "error", err)
	} else if usage.Percentage >= storageWarningThreshold {
		slog.Warn("Storage nearly full", "used_bytes", usage.UsedBytes,
			"total_bytes", usage.TotalBytes, "percentage", fmt.Sprintf("%.1f", usage.Percentage))
	}

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount,
		"interval_seconds", appCfg.RefreshInterval)
	scheduler := tasks.NewScheduler(pipeline, feedRepo)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(feedRepo, itemRepo, pipeline, storageProbe)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port,
			"auth_enabled", appCfg.APIAccessKey != "")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// seedSubscriptions registers feeds from the optional subscriptions
// file. Already-registered feeds are skipped; any other failure is
// logged and does not block startup.
func seedSubscriptions(pipeline *ingest.Pipeline, path string) {
	subs, err := subscriptions.Load(path)
	if err != nil {
		slog.Warn("Failed to load subscriptions file", "path", path, "error", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	slog.Info("Seeding subscriptions", "path", path, "count", len(subs))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for _, sub := range subs {
		settings := database.FeedSettings{
			FetchImages:    sub.FetchImages,
			MaxSizeBytes:   sub.MaxSizeBytes,
			ExtractContent: sub.ExtractContent,
		}
		_, err := pipeline.AddFeedWithSettings(ctx, sub.URL, settings)
		switch {
		case err == nil:
			slog.Info("Subscribed to feed", "url", sub.URL)
		case errors.Is(err, ingest.ErrAlreadyExists):
			slog.Debug("Feed already registered", "url", sub.URL)
		default:
			slog.Warn("Failed to subscribe to feed", "url", sub.URL, "error", err)
		}
	}
}
