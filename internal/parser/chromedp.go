package parser

import (
	"context"
	"fmt"

	"upwork-scraper/internal/config"
	"upwork-scraper/internal/errors"
	"upwork-scraper/internal/telemetry"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ChromedpRenderer is the Renderer behind BROWSER_DRIVER=chromedp.
type ChromedpRenderer struct {
	cfg    config.BrowserConfig
	logger *zap.Logger
}

func NewChromedpRenderer(cfg config.BrowserConfig, logger *zap.Logger) *ChromedpRenderer {
	return &ChromedpRenderer{cfg: cfg, logger: logger}
}

func (r *ChromedpRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", r.cfg.Headless),
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(r.cfg.UserAgent),
		chromedp.WindowSize(viewportWidth, viewportHeight),
	)
	if r.cfg.Bin != "" {
		opts = append(opts, chromedp.ExecPath(r.cfg.Bin))
	}
	return opts
}

func (r *ChromedpRenderer) Render(ctx context.Context, pageURL, waitSelector string) (string, error) {
	ctx, span := tracer.Start(ctx, "ChromedpRenderer.Render")
	defer span.End()
	span.SetAttributes(telemetry.String("http.url", pageURL))

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	// An empty Run starts the browser, so launch failures surface on their own.
	if err := chromedp.Run(browserCtx); err != nil {
		span.RecordError(err)
		return "", errors.Browser("failed to launch browser", err)
	}

	tracker := newRequestTracker()
	chromedp.ListenTarget(browserCtx, tracker.handle)

	runCtx, runCancel := context.WithTimeout(browserCtx, r.cfg.Timeout)
	defer runCancel()

	if err := chromedp.Run(runCtx, network.Enable(), chromedp.Navigate(pageURL)); err != nil {
		span.RecordError(err)
		return "", errors.Navigation(fmt.Sprintf("failed to navigate to %s", pageURL), err)
	}

	if err := tracker.wait(runCtx, r.cfg.IdleTime); err != nil {
		span.RecordError(err)
		return "", errors.Navigation(fmt.Sprintf("network did not go idle on %s", pageURL), err)
	}

	var html string
	if err := chromedp.Run(runCtx,
		chromedp.WaitReady(waitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		span.RecordError(err)
		return "", errors.Navigation(fmt.Sprintf("waiting for selector %q failed", waitSelector), err)
	}

	r.logger.Debug("rendered page",
		zap.String("url", pageURL),
		zap.Int("bytes", len(html)))
	return html, nil
}
