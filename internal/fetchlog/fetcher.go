package fetchlog

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"tourstats/internal/tourism"
	"tourstats/pkg/models"
)

// Fetcher decorates another fetcher so every attempt, successful or
// not, lands in the audit log. Logging failures are reported but never
// turn a good fetch into a bad one.
type Fetcher struct {
	Next tourism.Fetcher
	Repo *Repo
}

func Wrap(next tourism.Fetcher, repo *Repo) *Fetcher {
	return &Fetcher{Next: next, Repo: repo}
}

func (f *Fetcher) Fetch(ctx context.Context) (models.Envelope, error) {
	env, err := f.Next.Fetch(ctx)

	rec := Record{ID: uuid.NewString(), FetchedAt: time.Now()}
	if err != nil {
		rec.Error = err.Error()
	} else {
		rec.OK = true
		if records, rerr := tourism.EnvelopeRows(env); rerr == nil {
			rec.RowCount = len(records)
		}
	}

	// the request context may already be dead when the fetch failed
	if dbErr := f.Repo.Record(context.WithoutCancel(ctx), rec); dbErr != nil {
		log.Printf("[fetchlog] record failed: %v", dbErr)
	}
	return env, err
}
