package tourism

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"tourstats/pkg/models"
)

type fakeFetcher struct {
	calls int
	env   models.Envelope
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context) (models.Envelope, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.env, nil
}

func testEnvelope() models.Envelope {
	return models.Envelope{"rows": []any{
		map[string]any{"anno": "2024", "mese": float64(1)},
	}}
}

func TestCacheServesFromCacheWithinTTL(t *testing.T) {
	fetcher := &fakeFetcher{env: testEnvelope()}
	clock := clockwork.NewFakeClock()
	cache := NewCache(fetcher, clock)

	if err := cache.WarmUp(context.Background()); err != nil {
		t.Fatalf("WarmUp: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("calls after warm-up: got %d, want 1", fetcher.calls)
	}

	clock.Advance(10 * time.Minute)

	_, source, err := cache.GetOrRefresh(context.Background(), 30*time.Minute)
	if err != nil {
		t.Fatalf("GetOrRefresh: %v", err)
	}
	if source != "cache" {
		t.Errorf("source: got %q, want %q", source, "cache")
	}
	if fetcher.calls != 1 {
		t.Errorf("calls within TTL: got %d, want 1", fetcher.calls)
	}
}

func TestCacheRefreshesAfterTTL(t *testing.T) {
	fetcher := &fakeFetcher{env: testEnvelope()}
	clock := clockwork.NewFakeClock()
	cache := NewCache(fetcher, clock)

	if err := cache.WarmUp(context.Background()); err != nil {
		t.Fatalf("WarmUp: %v", err)
	}

	clock.Advance(31 * time.Minute)

	_, source, err := cache.GetOrRefresh(context.Background(), 30*time.Minute)
	if err != nil {
		t.Fatalf("GetOrRefresh: %v", err)
	}
	if source != "origin" {
		t.Errorf("source: got %q, want %q", source, "origin")
	}
	if fetcher.calls != 2 {
		t.Errorf("calls after expiry: got %d, want exactly 2", fetcher.calls)
	}
}

func TestCacheNotReadyUntilFirstSuccess(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("upstream down")}
	cache := NewCache(fetcher, clockwork.NewFakeClock())

	if err := cache.WarmUp(context.Background()); err == nil {
		t.Fatal("WarmUp: want error, got nil")
	}
	if cache.Ready() {
		t.Error("Ready after failed warm-up: got true, want false")
	}
	if entry := cache.Snapshot(); entry.LastErr == nil {
		t.Error("Snapshot().LastErr: got nil, want recorded error")
	}

	fetcher.err = nil
	fetcher.env = testEnvelope()
	if _, _, err := cache.GetOrRefresh(context.Background(), time.Minute); err != nil {
		t.Fatalf("GetOrRefresh after recovery: %v", err)
	}
	if !cache.Ready() {
		t.Error("Ready after successful fetch: got false, want true")
	}
}

func TestCacheStaysReadyAfterLaterFailure(t *testing.T) {
	fetcher := &fakeFetcher{env: testEnvelope()}
	clock := clockwork.NewFakeClock()
	cache := NewCache(fetcher, clock)

	if err := cache.WarmUp(context.Background()); err != nil {
		t.Fatalf("WarmUp: %v", err)
	}

	fetcher.err = errors.New("upstream down")
	clock.Advance(time.Hour)

	_, _, err := cache.GetOrRefresh(context.Background(), time.Minute)
	if err == nil {
		t.Fatal("GetOrRefresh with failing fetcher: want error, got nil")
	}
	if !errors.Is(err, ErrUpstreamFetch) {
		t.Errorf("error: got %v, want ErrUpstreamFetch", err)
	}
	if !cache.Ready() {
		t.Error("Ready must stay true after a failed refresh")
	}
	if entry := cache.Snapshot(); entry.Envelope == nil {
		t.Error("stale envelope must be kept after a failed refresh")
	}
}

func TestCacheForcedRefreshBypassesTTL(t *testing.T) {
	fetcher := &fakeFetcher{env: testEnvelope()}
	cache := NewCache(fetcher, clockwork.NewFakeClock())

	if err := cache.WarmUp(context.Background()); err != nil {
		t.Fatalf("WarmUp: %v", err)
	}
	if _, err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if fetcher.calls != 2 {
		t.Errorf("calls after forced refresh: got %d, want 2", fetcher.calls)
	}
}
