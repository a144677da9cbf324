package parser

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
)

const idlePollInterval = 50 * time.Millisecond

// Long-lived streams never finish loading and would keep the page busy forever.
var ignoredResourceTypes = map[network.ResourceType]struct{}{
	network.ResourceTypeWebSocket:   {},
	network.ResourceTypeEventSource: {},
}

// requestTracker counts in-flight requests from CDP network events and
// reports when none have been pending for a quiet period.
type requestTracker struct {
	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
	last     time.Time
	now      func() time.Time
}

func newRequestTracker() *requestTracker {
	t := &requestTracker{
		inflight: make(map[network.RequestID]struct{}),
		now:      time.Now,
	}
	t.last = t.now()
	return t
}

// handle is registered with chromedp.ListenTarget.
func (t *requestTracker) handle(ev interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		if _, ok := ignoredResourceTypes[e.Type]; ok {
			return
		}
		t.inflight[e.RequestID] = struct{}{}
	case *network.EventLoadingFinished:
		if _, ok := t.inflight[e.RequestID]; !ok {
			return
		}
		delete(t.inflight, e.RequestID)
	case *network.EventLoadingFailed:
		if _, ok := t.inflight[e.RequestID]; !ok {
			return
		}
		delete(t.inflight, e.RequestID)
	default:
		return
	}
	t.last = t.now()
}

// idle reports whether nothing has been in flight for at least d.
func (t *requestTracker) idle(d time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight) == 0 && t.now().Sub(t.last) >= d
}

// wait blocks until the network has been idle for d or ctx is done.
func (t *requestTracker) wait(ctx context.Context, d time.Duration) error {
	ticker := time.NewTicker(idlePollInterval)
	defer ticker.Stop()

	for !t.idle(d) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
