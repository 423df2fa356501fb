package tourism

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"tourstats/pkg/models"
)

// Fetcher retrieves a fresh envelope from the upstream analytics
// source. Implementations may decorate the raw transport (audit log,
// refresh notifications).
type Fetcher interface {
	Fetch(ctx context.Context) (models.Envelope, error)
}

// Entry is one immutable cache generation. Refreshes replace the whole
// entry in a single assignment, so a concurrent read observes either
// the old or the new generation, never a mix.
type Entry struct {
	Envelope  models.Envelope
	FetchedAt time.Time
	Ready     bool
	LastErr   error
}

// Cache holds the most recent raw dataset envelope and a readiness
// flag. Refresh is purely request-triggered: a read past the TTL
// refetches, there is no background timer.
//
// Concurrent stale reads each trigger their own refetch; there is
// deliberately no single-flight coalescing here (a known inefficiency
// of the upstream design, kept as-is).
type Cache struct {
	fetcher Fetcher
	clock   clockwork.Clock

	mu    sync.Mutex
	entry Entry
}

func NewCache(fetcher Fetcher, clock clockwork.Clock) *Cache {
	return &Cache{fetcher: fetcher, clock: clock}
}

// WarmUp performs the initial fetch. A failure is recorded on the
// entry and returned for logging, but must not abort startup.
func (c *Cache) WarmUp(ctx context.Context) error {
	if _, err := c.refresh(ctx); err != nil {
		return err
	}
	return nil
}

// Ready reports whether any fetch has ever succeeded. Once true it
// never reverts, even if later refreshes fail: stale-but-ready beats
// unavailable.
func (c *Cache) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entry.Ready
}

// Snapshot returns the current entry for callers that tolerate
// staleness (e.g. diagnostics).
func (c *Cache) Snapshot() Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entry
}

// GetOrRefresh returns the cached envelope when it is younger than ttl,
// tagged "cache"; otherwise it refetches from origin and returns the
// new envelope tagged "origin". A failed refetch propagates the error —
// the stale entry is not implicitly served.
func (c *Cache) GetOrRefresh(ctx context.Context, ttl time.Duration) (models.Envelope, string, error) {
	c.mu.Lock()
	entry := c.entry
	now := c.clock.Now()
	c.mu.Unlock()

	if entry.Envelope != nil && now.Sub(entry.FetchedAt) < ttl {
		return entry.Envelope, "cache", nil
	}

	env, err := c.refresh(ctx)
	if err != nil {
		return nil, "", err
	}
	return env, "origin", nil
}

// Refresh forces an origin fetch regardless of TTL.
func (c *Cache) Refresh(ctx context.Context) (models.Envelope, error) {
	return c.refresh(ctx)
}

func (c *Cache) refresh(ctx context.Context) (models.Envelope, error) {
	env, err := c.fetcher.Fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
		// keep the previous envelope and readiness; record the failure
		c.entry = Entry{
			Envelope:  c.entry.Envelope,
			FetchedAt: c.entry.FetchedAt,
			Ready:     c.entry.Ready,
			LastErr:   wrapped,
		}
		log.Printf("[cache] refresh failed: %v", err)
		return nil, wrapped
	}

	c.entry = Entry{
		Envelope:  env,
		FetchedAt: c.clock.Now(),
		Ready:     true,
		LastErr:   nil,
	}
	return env, nil
}
