package live

import (
	"context"
	"time"

	"tourstats/internal/tourism"
	"tourstats/pkg/models"
)

// Fetcher decorates another fetcher and broadcasts a refresh event to
// the hub after every successful fetch.
type Fetcher struct {
	Next tourism.Fetcher
	Hub  *Hub
}

func Notify(next tourism.Fetcher, hub *Hub) *Fetcher {
	return &Fetcher{Next: next, Hub: hub}
}

func (f *Fetcher) Fetch(ctx context.Context) (models.Envelope, error) {
	env, err := f.Next.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	rows := 0
	if records, rerr := tourism.EnvelopeRows(env); rerr == nil {
		rows = len(records)
	}
	f.Hub.BroadcastJSON(RefreshEvent{
		Type:   "dataset.refresh",
		Source: "origin",
		Rows:   rows,
		At:     time.Now().UTC(),
	})
	return env, nil
}
