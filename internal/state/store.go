package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/tally/internal/pending"
	"github.com/five82/tally/internal/stopwatch"
	"github.com/five82/tally/internal/timeline"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Events              []timeline.Event // authoritative history plus unsent local events
	HasHistory          bool
	Pending             int
	Delivery            pending.Stats
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive refresh failures
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// StateAt reconstructs the timer at now from the stored history.
func (s Snapshot) StateAt(now time.Time) timeline.State {
	return timeline.Reconstruct(s.Events, now)
}

// LastEvent returns the newest event in the history, if any.
func (s Snapshot) LastEvent() (timeline.Event, bool) {
	if len(s.Events) == 0 {
		return timeline.Event{}, false
	}
	return s.Events[len(s.Events)-1], true
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored snapshot. When err is non-nil the previous
// history is kept, extended with any local events it has not seen, and the
// error is recorded for visibility. Queue counters in info are local and
// always applied.
func (s *Store) Update(info stopwatch.Info, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Pending = info.Pending
	s.snapshot.Delivery = info.Delivery
	s.snapshot.LastUpdated = time.Now()

	if err != nil {
		s.snapshot.Events = stopwatch.MergePending(s.snapshot.Events, info.Queued)
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Events = timeline.Clone(info.Events)
	s.snapshot.HasHistory = true
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Events = timeline.Clone(s.snapshot.Events)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
