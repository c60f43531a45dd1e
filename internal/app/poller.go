package app

import (
	"context"
	"log"
	"time"

	"github.com/five82/tally/internal/state"
	"github.com/five82/tally/internal/stopwatch"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// infoSource is the read side of the stopwatch service.
type infoSource interface {
	Info(ctx context.Context, now time.Time) (stopwatch.Info, error)
}

// StartPoller launches a background goroutine that refreshes the store. The
// cadence is interval while the API answers and backs off exponentially
// while it does not. The poller only reads; queued events are delivered by
// user actions and explicit syncs. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, source infoSource, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			refresh(ctx, store, source)
			timer.Reset(calculateBackoff(store.Snapshot().ConsecutiveFailures, interval))
		}
	}()
}

func refresh(ctx context.Context, store *state.Store, source infoSource) {
	info, err := source.Info(ctx, time.Now())
	if err != nil && ctx.Err() != nil {
		return // shutting down
	}
	store.Update(info, err)
	if err != nil {
		log.Printf("session poll failed: %v", err)
	}
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
