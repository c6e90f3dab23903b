package biz

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mktud1/arq503/internal/analysis/types"
	"github.com/mktud1/arq503/internal/pkg/logger"
)

// GathererConfig tunes evidence collection. Zero values pick the defaults
// the engine was tuned with.
type GathererConfig struct {
	MaxResultsPerQuery int           // 10
	MaxUniqueURLs      int           // 15
	MinPageChars       int           // 200
	QueryDelay         time.Duration // 1s between searches
	PageDelay          time.Duration // 500ms between extractions
}

func (c *GathererConfig) withDefaults() GathererConfig {
	out := *c
	if out.MaxResultsPerQuery == 0 {
		out.MaxResultsPerQuery = 10
	}
	if out.MaxUniqueURLs == 0 {
		out.MaxUniqueURLs = 15
	}
	if out.MinPageChars == 0 {
		out.MinPageChars = 200
	}
	if out.QueryDelay == 0 {
		out.QueryDelay = time.Second
	}
	if out.PageDelay == 0 {
		out.PageDelay = 500 * time.Millisecond
	}
	return out
}

// EvidenceGatherer collects search results and page text for a query set.
// Individual collaborator failures are logged and skipped; a thin bundle
// is the gate's problem, not the gatherer's.
type EvidenceGatherer struct {
	searcher     Searcher
	extractor    PageExtractor
	cfg          GathererConfig
	queryLimiter *rate.Limiter
	pageLimiter  *rate.Limiter
	logger       *logger.Logger
}

// NewEvidenceGatherer creates a gatherer over the given collaborators.
func NewEvidenceGatherer(searcher Searcher, extractor PageExtractor, cfg GathererConfig, log *logger.Logger) *EvidenceGatherer {
	cfg = cfg.withDefaults()
	return &EvidenceGatherer{
		searcher:     searcher,
		extractor:    extractor,
		cfg:          cfg,
		queryLimiter: rate.NewLimiter(rate.Every(cfg.QueryDelay), 1),
		pageLimiter:  rate.NewLimiter(rate.Every(cfg.PageDelay), 1),
		logger:       log,
	}
}

// Gather runs every query, then extracts up to MaxUniqueURLs deduplicated
// result URLs. Only context cancellation aborts it.
func (g *EvidenceGatherer) Gather(ctx context.Context, queries []string, progress ProgressFunc) (*types.EvidenceBundle, error) {
	bundle := &types.EvidenceBundle{Queries: queries}

	for i, query := range queries {
		if err := g.queryLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		notify(progress, StageSearch, fmt.Sprintf("searching %d/%d: %s", i+1, len(queries), query))

		records, err := g.searcher.Search(ctx, query, g.cfg.MaxResultsPerQuery)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			g.logger.Warn("search query failed, skipping",
				zap.String("query", query),
				zap.Error(err))
			continue
		}

		for _, rec := range records {
			if rec.URL == "" {
				continue
			}
			bundle.SearchResults = append(bundle.SearchResults, rec)
		}
	}

	urls := g.uniqueURLs(bundle.SearchResults)

	for i, pageURL := range urls {
		if err := g.pageLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		notify(progress, StageExtract, fmt.Sprintf("extracting %d/%d: %s", i+1, len(urls), pageURL))

		page, err := g.extractor.Extract(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			g.logger.Warn("page extraction failed, skipping",
				zap.String("url", pageURL),
				zap.Error(err))
			continue
		}

		if len(page.Content) <= g.cfg.MinPageChars {
			g.logger.Debug("page content too short, skipping",
				zap.String("url", pageURL),
				zap.Int("length", len(page.Content)))
			continue
		}

		page.ContentLength = len(page.Content)
		bundle.ExtractedPages = append(bundle.ExtractedPages, *page)
		bundle.TotalContentChars += page.ContentLength
	}

	return bundle, nil
}

// uniqueURLs deduplicates result URLs in first-seen order, capped at
// MaxUniqueURLs.
func (g *EvidenceGatherer) uniqueURLs(records []types.SearchRecord) []string {
	seen := make(map[string]struct{}, len(records))
	var urls []string
	for _, rec := range records {
		if _, ok := seen[rec.URL]; ok {
			continue
		}
		seen[rec.URL] = struct{}{}
		urls = append(urls, rec.URL)
		if len(urls) >= g.cfg.MaxUniqueURLs {
			break
		}
	}
	return urls
}
