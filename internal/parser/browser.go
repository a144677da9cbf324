package parser

import (
	"context"
	"fmt"

	"upwork-scraper/internal/config"
	"upwork-scraper/internal/errors"
	"upwork-scraper/internal/telemetry"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

const (
	viewportWidth  = 1920
	viewportHeight = 1080
)

var tracer = telemetry.GetTracer("upwork-scraper/parser")

// Renderer loads a URL in a headless browser and returns the page HTML once
// an element matching waitSelector is present. Each call owns its browser.
type Renderer interface {
	Render(ctx context.Context, pageURL, waitSelector string) (string, error)
}

// NewRenderer picks the browser driver named in cfg.
func NewRenderer(cfg *config.Config, logger *zap.Logger) Renderer {
	if cfg.Browser.Driver == config.DriverChromedp {
		return NewChromedpRenderer(cfg.Browser, logger)
	}
	return NewRodRenderer(cfg.Browser, logger)
}

type RodRenderer struct {
	cfg    config.BrowserConfig
	logger *zap.Logger
}

func NewRodRenderer(cfg config.BrowserConfig, logger *zap.Logger) *RodRenderer {
	return &RodRenderer{cfg: cfg, logger: logger}
}

func (r *RodRenderer) launcher(ctx context.Context) *launcher.Launcher {
	l := launcher.New().Context(ctx)
	if r.cfg.Bin != "" {
		l = l.Bin(r.cfg.Bin)
	}

	// Additional Chrome flags for running inside containers
	return l.Headless(r.cfg.Headless).
		NoSandbox(true).
		Set("disable-setuid-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-extensions").
		Set("no-first-run")
}

// Render launches a fresh browser, renders pageURL, and tears the browser down
// on every return path.
func (r *RodRenderer) Render(ctx context.Context, pageURL, waitSelector string) (string, error) {
	ctx, span := tracer.Start(ctx, "RodRenderer.Render")
	defer span.End()
	span.SetAttributes(telemetry.String("http.url", pageURL))

	l := r.launcher(ctx)
	controlURL, err := l.Launch()
	if err != nil {
		span.RecordError(err)
		return "", errors.Browser("failed to launch browser", err)
	}
	defer func() {
		l.Kill()
		l.Cleanup()
	}()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		span.RecordError(err)
		return "", errors.Browser("failed to connect to browser", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			r.logger.Debug("browser close returned error", zap.Error(err))
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		span.RecordError(err)
		return "", errors.Browser("failed to create page", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  viewportWidth,
		Height: viewportHeight,
	}); err != nil {
		return "", errors.Browser("failed to set viewport", err)
	}
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.cfg.UserAgent}); err != nil {
		return "", errors.Browser("failed to set user agent", err)
	}

	page = page.Timeout(r.cfg.Timeout)

	waitIdle := page.WaitRequestIdle(r.cfg.IdleTime, nil, nil, nil)
	if err := page.Navigate(pageURL); err != nil {
		span.RecordError(err)
		return "", errors.Navigation(fmt.Sprintf("failed to navigate to %s", pageURL), err)
	}
	waitIdle()

	if _, err := page.Element(waitSelector); err != nil {
		span.RecordError(err)
		return "", errors.Navigation(fmt.Sprintf("waiting for selector %q failed", waitSelector), err)
	}

	html, err := page.HTML()
	if err != nil {
		span.RecordError(err)
		return "", errors.Browser("failed to read page HTML", err)
	}

	r.logger.Debug("rendered page",
		zap.String("url", pageURL),
		zap.Int("bytes", len(html)))
	return html, nil
}
