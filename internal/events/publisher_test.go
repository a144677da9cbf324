package events

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"upwork-scraper/internal/config"
	"upwork-scraper/internal/errors"
	"upwork-scraper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type message struct {
	subject string
	data    []byte
}

type fakeConn struct {
	err      error
	messages []message
	closed   bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, message{subject: subject, data: data})
	return nil
}

func (c *fakeConn) Close() { c.closed = true }

func TestPublisher_SaveListings(t *testing.T) {
	fc := &fakeConn{}
	p := newPublisher(fc, "jobs.scraped", zap.NewNop())
	p.now = func() time.Time {
		return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	}

	listings := []*models.JobListing{
		{ID: "a", Title: "First", Skills: []string{"Go"}},
		{ID: "b", Title: "Second", Skills: []string{}},
	}
	require.NoError(t, p.SaveListings(context.Background(), listings))
	require.Len(t, fc.messages, 1)
	assert.Equal(t, "jobs.scraped", fc.messages[0].subject)

	var event ScrapeEvent
	require.NoError(t, json.Unmarshal(fc.messages[0].data, &event))
	assert.Equal(t, 2, event.Count)
	assert.True(t, event.ScrapedAt.Equal(p.now()))
	assert.Equal(t, listings, event.Listings)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(fc.messages[0].data, &raw))
	assert.Equal(t, "2024-03-01T12:00:00Z", raw["scraped_at"])
}

func TestPublisher_PublishError(t *testing.T) {
	fc := &fakeConn{err: fmt.Errorf("nats: connection closed")}
	p := newPublisher(fc, "jobs.scraped", zap.NewNop())

	err := p.SaveListings(context.Background(), []*models.JobListing{{ID: "a"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTypeUnavailable))
}

func TestPublisher_Close(t *testing.T) {
	fc := &fakeConn{}
	p := newPublisher(fc, "jobs.scraped", zap.NewNop())

	require.NoError(t, p.Close())
	assert.True(t, fc.closed)
}

func TestNewPublisher_Unreachable(t *testing.T) {
	_, err := NewPublisher(config.NATSConfig{
		URL:         "nats://127.0.0.1:1",
		Subject:     "jobs.scraped",
		ConnTimeout: time.Second,
	}, zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTypeUnavailable))
}
