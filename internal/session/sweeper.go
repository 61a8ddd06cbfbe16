// Package session provides the periodic sweeper that garbage-collects stale
// session rows. The registry itself lives in session/repository.
package session

import (
	"context"
	"log"
	"time"
)

// Sweepable is the part of the session registry the sweeper needs.
type Sweepable interface {
	DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper periodically deletes inactive sessions older than the retention
// window. Purely janitorial: request handling never depends on it, and each
// sweep is a single statement so it holds no locks the request path needs.
type Sweeper struct {
	registry  Sweepable
	retention time.Duration
	interval  time.Duration
}

// NewSweeper returns a Sweeper deleting inactive sessions whose last activity
// is older than retention, every interval.
func NewSweeper(registry Sweepable, retention, interval time.Duration) *Sweeper {
	return &Sweeper{registry: registry, retention: retention, interval: interval}
}

// Run sweeps on a ticker until ctx is cancelled. Sweep failures are logged and
// retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	cutoff := time.Now().UTC().Add(-s.retention)
	n, err := s.registry.DeleteInactiveBefore(sweepCtx, cutoff)
	if err != nil {
		log.Printf("session: sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("session: swept %d stale session(s)", n)
	}
}
