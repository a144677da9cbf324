package events

import (
	"context"
	"encoding/json"
	"time"

	"upwork-scraper/internal/config"
	"upwork-scraper/internal/errors"
	"upwork-scraper/internal/models"
	"upwork-scraper/internal/telemetry"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("upwork-scraper/events")

// ScrapeEvent is published once per scrape that found listings.
type ScrapeEvent struct {
	Count     int                  `json:"count"`
	ScrapedAt time.Time            `json:"scraped_at"`
	Listings  []*models.JobListing `json:"listings"`
}

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	Close()
}

type Publisher struct {
	conn    conn
	subject string
	logger  *zap.Logger
	now     func() time.Time
}

func NewPublisher(cfg config.NATSConfig, logger *zap.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name("upwork-scraper"),
		nats.Timeout(cfg.ConnTimeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("disconnected from NATS", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, errors.Unavailable("connecting to NATS", err)
	}

	return newPublisher(nc, cfg.Subject, logger), nil
}

func newPublisher(c conn, subject string, logger *zap.Logger) *Publisher {
	return &Publisher{
		conn:    c,
		subject: subject,
		logger:  logger,
		now:     time.Now,
	}
}

func (p *Publisher) Name() string { return "nats" }

// SaveListings publishes the listings of one scrape as a single event.
func (p *Publisher) SaveListings(ctx context.Context, listings []*models.JobListing) error {
	_, span := tracer.Start(ctx, "PublishScrapeEvent")
	defer span.End()

	event := ScrapeEvent{
		Count:     len(listings),
		ScrapedAt: p.now().UTC(),
		Listings:  listings,
	}

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling scrape event", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", p.subject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(p.subject, data); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish scrape event",
			zap.Int("count", event.Count),
			zap.Error(err))
		return errors.Unavailable("publishing to NATS", err)
	}

	p.logger.Debug("published scrape event",
		zap.String("subject", p.subject),
		zap.Int("count", event.Count))
	return nil
}

func (p *Publisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
