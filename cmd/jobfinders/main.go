// Package main wires together the job acquisition service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/job-finders/app/internal/api"
	"github.com/job-finders/app/internal/cache"
	"github.com/job-finders/app/internal/clock/system"
	"github.com/job-finders/app/internal/config"
	"github.com/job-finders/app/internal/extractor"
	"github.com/job-finders/app/internal/fetcher"
	"github.com/job-finders/app/internal/id/uuid"
	"github.com/job-finders/app/internal/logging"
	"github.com/job-finders/app/internal/metrics"
	"github.com/job-finders/app/internal/scheduler"
	"github.com/job-finders/app/internal/scraper"
	"github.com/job-finders/app/internal/store"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := system.New()
	idGen := uuid.New()

	responseCache, err := cache.New(cache.Config{
		Dir:        cfg.Cache.Dir,
		MaxEntries: cfg.Cache.MaxEntries,
		DefaultTTL: cfg.CacheTTL(),
	}, clock, logger)
	if err != nil {
		logger.Fatal("cache init failed", zap.Error(err))
	}

	baseFetcher := fetcher.New(fetcher.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.Timeout(),
	}, logger)
	cachedFetcher := fetcher.NewCached(baseFetcher, responseCache, cfg.CacheTTL(), cfg.StaleGrace(), logger)

	ex, err := extractor.New(cfg.Scrape.BaseURL, idGen, logger)
	if err != nil {
		logger.Fatal("extractor init failed", zap.Error(err))
	}

	termScraper := scraper.New(cachedFetcher, ex, scraper.Config{
		BaseURL:     cfg.Scrape.BaseURL,
		PageLimit:   cfg.Scrape.PageLimit,
		Concurrency: cfg.Scrape.Concurrency,
	}, logger)
	// Repeated scrapes of a term inside one scheduling interval replay the
	// previous batch instead of re-fetching.
	scrape := cache.Memoize(responseCache, "scrape", cfg.Interval(), termScraper.Run)

	jobStore := store.New()
	sched := scheduler.New(scrape, jobStore, scheduler.Config{
		Interval: cfg.Interval(),
		Terms:    cfg.Scrape.Terms,
	}, clock, logger)

	server := api.NewServer(jobStore, cfg.Scrape.Terms, logger)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go sched.Run(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("job finders service started",
		zap.Int("port", cfg.Server.Port),
		zap.Int("terms", len(cfg.Scrape.Terms)),
		zap.Duration("interval", cfg.Interval()),
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server failed", zap.Error(err))
	}
	logger.Info("job finders service stopped")
}
