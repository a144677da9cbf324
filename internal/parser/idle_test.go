package parser

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker() (*requestTracker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}
	tr := newRequestTracker()
	tr.now = clock.now
	tr.last = clock.now()
	return tr, clock
}

func TestRequestTracker_IdleAfterQuietPeriod(t *testing.T) {
	tr, clock := newTestTracker()
	idle := 500 * time.Millisecond

	tr.handle(&network.EventRequestWillBeSent{RequestID: "doc", Type: network.ResourceTypeDocument})
	tr.handle(&network.EventRequestWillBeSent{RequestID: "xhr", Type: network.ResourceTypeXHR})
	clock.advance(time.Second)
	assert.False(t, tr.idle(idle), "requests still in flight")

	tr.handle(&network.EventLoadingFinished{RequestID: "doc"})
	clock.advance(time.Second)
	assert.False(t, tr.idle(idle), "xhr still in flight")

	tr.handle(&network.EventLoadingFailed{RequestID: "xhr"})
	clock.advance(idle / 2)
	assert.False(t, tr.idle(idle), "quiet period not over")

	clock.advance(idle / 2)
	assert.True(t, tr.idle(idle))
}

func TestRequestTracker_IgnoresStreams(t *testing.T) {
	tr, clock := newTestTracker()

	tr.handle(&network.EventRequestWillBeSent{RequestID: "ws", Type: network.ResourceTypeWebSocket})
	tr.handle(&network.EventRequestWillBeSent{RequestID: "sse", Type: network.ResourceTypeEventSource})
	clock.advance(time.Second)

	assert.True(t, tr.idle(500*time.Millisecond))
}

func TestRequestTracker_UnknownEventsDoNotResetQuietPeriod(t *testing.T) {
	tr, clock := newTestTracker()

	clock.advance(time.Second)
	tr.handle(&network.EventLoadingFinished{RequestID: "never-started"})
	tr.handle(&network.EventResponseReceived{RequestID: "other"})

	assert.True(t, tr.idle(500*time.Millisecond))
}

func TestRequestTracker_WaitHonoursContext(t *testing.T) {
	tr, _ := newTestTracker()
	tr.handle(&network.EventRequestWillBeSent{RequestID: "pending", Type: network.ResourceTypeFetch})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := tr.wait(ctx, time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRequestTracker_WaitReturnsWhenIdle(t *testing.T) {
	tr := newRequestTracker()
	tr.handle(&network.EventRequestWillBeSent{RequestID: "doc", Type: network.ResourceTypeDocument})
	tr.handle(&network.EventLoadingFinished{RequestID: "doc"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, tr.wait(ctx, 20*time.Millisecond))
}
