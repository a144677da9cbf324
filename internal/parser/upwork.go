package parser

import (
	"context"
	"time"

	"upwork-scraper/internal/config"
	"upwork-scraper/internal/errors"
	"upwork-scraper/internal/models"
	"upwork-scraper/internal/telemetry"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ListingSink receives the listings of every successful scrape. Sink failures
// are logged and never change the scrape result.
type ListingSink interface {
	SaveListings(ctx context.Context, listings []*models.JobListing) error
	Name() string
}

type UpworkParser struct {
	renderer  Renderer
	extractor *Extractor
	sinks     []ListingSink
	sem       *semaphore.Weighted
	baseURL   string
	pageSize  int
	logger    *zap.Logger
}

// NewUpworkParser creates a parser. A zero MaxConcurrentScrapes leaves the
// number of simultaneous browsers unbounded.
func NewUpworkParser(cfg *config.Config, renderer Renderer, sinks []ListingSink, logger *zap.Logger) *UpworkParser {
	p := &UpworkParser{
		renderer:  renderer,
		extractor: NewExtractor(cfg.BaseURL),
		sinks:     sinks,
		baseURL:   cfg.BaseURL,
		pageSize:  cfg.PageSize,
		logger:    logger,
	}
	if cfg.MaxConcurrentScrapes > 0 {
		p.sem = semaphore.NewWeighted(cfg.MaxConcurrentScrapes)
	}
	return p
}

// ParseListings scrapes one page of search results for query.
func (p *UpworkParser) ParseListings(ctx context.Context, query string, page int) ([]*models.JobListing, error) {
	ctx, span := tracer.Start(ctx, "UpworkParser.ParseListings")
	defer span.End()
	span.SetAttributes(
		telemetry.String("scrape.query", query),
		telemetry.Int("scrape.page", page),
	)

	if p.sem != nil {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return nil, errors.Unavailable("scrape cancelled while waiting for a browser slot", err)
		}
		defer p.sem.Release(1)
	}

	pageURL := SearchURL(p.baseURL, query, page, p.pageSize)
	start := time.Now()

	html, err := p.renderer.Render(ctx, pageURL, p.extractor.Selectors.Listing)
	if err != nil {
		span.RecordError(err)
		p.logger.Error("failed to render search page",
			zap.String("url", pageURL),
			zap.Error(err))
		return nil, err
	}

	listings, err := p.extract(ctx, html)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Internal("failed to extract listings", err)
	}

	span.SetAttributes(telemetry.Int("scrape.listings", len(listings)))
	p.logger.Info("scraped search page",
		zap.String("url", pageURL),
		zap.Int("listings", len(listings)),
		zap.Duration("elapsed", time.Since(start)))

	if len(listings) == 0 {
		p.diagnose(pageURL, html)
		return listings, nil
	}

	p.saveListings(ctx, listings)
	return listings, nil
}

func (p *UpworkParser) extract(ctx context.Context, html string) ([]*models.JobListing, error) {
	_, span := tracer.Start(ctx, "Extractor.Extract")
	defer span.End()
	return p.extractor.Extract(html)
}

func (p *UpworkParser) diagnose(pageURL, html string) {
	d, err := Diagnose(html, p.extractor.Selectors)
	if err != nil {
		p.logger.Warn("no listings found and snapshot could not be analyzed",
			zap.String("url", pageURL),
			zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.String("url", pageURL),
		zap.String("title", d.Title),
		zap.Bool("likely_blocked", d.LikelyBlocked()),
		zap.Strings("blocking_keywords", d.Blocked),
		zap.String("body_sample", d.BodySample),
	}
	for _, c := range d.Selectors {
		fields = append(fields, zap.Int("selector "+c.Selector, c.Count))
	}
	p.logger.Warn("no listings found on search page", fields...)
}

func (p *UpworkParser) saveListings(ctx context.Context, listings []*models.JobListing) {
	for _, sink := range p.sinks {
		sinkCtx, span := tracer.Start(ctx, "ListingSink.SaveListings")
		span.SetAttributes(telemetry.String("sink.name", sink.Name()))
		if err := sink.SaveListings(sinkCtx, listings); err != nil {
			span.RecordError(err)
			p.logger.Warn("failed to save listings",
				zap.String("sink", sink.Name()),
				zap.Error(err))
		}
		span.End()
	}
}
