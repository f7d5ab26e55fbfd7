// Package scraper orchestrates the per-term scrape: listing pages in,
// validated Job records out.
package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/job-finders/app/internal/extractor"
	"github.com/job-finders/app/internal/jobs"
)

// Config bounds a single term's scrape.
type Config struct {
	BaseURL     string
	PageLimit   int
	Concurrency int
}

// Scraper fans out concurrent detail fetches for every listing found on a
// term's listing pages and joins them before the term is finalized.
type Scraper struct {
	fetcher   jobs.Fetcher
	extractor *extractor.Extractor
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Scraper.
func New(fetcher jobs.Fetcher, ex *extractor.Extractor, cfg Config, logger *zap.Logger) *Scraper {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 1
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	return &Scraper{
		fetcher:   fetcher,
		extractor: ex,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run scrapes one search term. Fetch and extraction misses cost single
// records; only context cancellation is an error.
func (s *Scraper) Run(ctx context.Context, term string) ([]jobs.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scrape %s: %w", term, err)
	}

	links := s.listingLinks(ctx, term)
	if len(links) == 0 {
		s.logger.Info("no listings found", zap.String("term", term))
		return []jobs.Job{}, nil
	}

	results := make([]jobs.DetailResult, len(links))
	sem := make(chan struct{}, s.cfg.Concurrency)
	var wg sync.WaitGroup
	for i, link := range links {
		wg.Add(1)
		go func(i int, link string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			body, ok := s.fetcher.Fetch(ctx, link)
			if !ok {
				results[i] = jobs.Skip("detail fetch failed")
				return
			}
			results[i] = s.extractor.Detail(body, term, link)
		}(i, link)
	}
	wg.Wait()

	out := make([]jobs.Job, 0, len(results))
	skipped := 0
	for _, res := range results {
		if res.Skipped {
			skipped++
			continue
		}
		if err := res.Job.Validate(); err != nil {
			// A record that extracted cleanly but fails validation means
			// the schema itself drifted; drop the whole batch rather than
			// merge a partial list of unknown provenance.
			s.logger.Warn("batch validation failed",
				zap.String("term", term),
				zap.Error(err),
			)
			return []jobs.Job{}, nil
		}
		out = append(out, res.Job)
	}

	s.logger.Info("term scraped",
		zap.String("term", term),
		zap.Int("listings", len(links)),
		zap.Int("jobs", len(out)),
		zap.Int("skipped", skipped),
	)
	return out, nil
}

// listingLinks walks the term's listing pages up to the page limit. A page
// that fails to fetch contributes no links and is not fatal.
func (s *Scraper) listingLinks(ctx context.Context, term string) []string {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	var links []string
	for page := 1; page <= s.cfg.PageLimit; page++ {
		url := fmt.Sprintf("%s/jobs/%s?page=%d", base, term, page)
		body, ok := s.fetcher.Fetch(ctx, url)
		if !ok {
			continue
		}
		links = append(links, s.extractor.ListingLinks(body)...)
	}
	return links
}
