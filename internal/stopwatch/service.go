// Package stopwatch ties the pending queue, the remote event store and the
// timeline fold together into the operations a UI needs.
package stopwatch

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/five82/tally/internal/pending"
	"github.com/five82/tally/internal/remote"
	"github.com/five82/tally/internal/timeline"
)

// Remote is the subset of the study-session API the service calls.
type Remote interface {
	FetchEvents(ctx context.Context, session string) ([]timeline.Event, error)
	StartSession(ctx context.Context, session string, req remote.StartRequest) error
	FinishSession(ctx context.Context, session string, finishedAt time.Time) error
}

var _ Remote = (*remote.Client)(nil)

// Queue is the subset of *pending.Queue the service uses.
type Queue interface {
	Append(ctx context.Context, kind timeline.Kind, at time.Time) (timeline.Event, error)
	Record(ctx context.Context, kind timeline.Kind, at time.Time) (timeline.Event, error)
	Flush(ctx context.Context) error
	FlushAsync(ctx context.Context) <-chan error
	Pending() []timeline.Event
	Stats() pending.Stats
}

var _ Queue = (*pending.Queue)(nil)

// Info is the reconstructed view of the current session.
type Info struct {
	State     timeline.State
	Events    []timeline.Event
	LastEvent *timeline.Event
	Queued    []timeline.Event // unacknowledged local events, set even on error
	Pending   int
	Delivery  pending.Stats
}

const defaultTitle = "Study session"

// Service records timer actions and derives timer state.
type Service struct {
	queue   Queue
	api     Remote
	session string

	mu      sync.Mutex
	suspect string // last history problem logged
}

// New builds a Service for session.
func New(queue Queue, api Remote, session string) *Service {
	session = strings.TrimSpace(session)
	if session == "" {
		session = remote.DefaultSession
	}
	return &Service{queue: queue, api: api, session: session}
}

// Session returns the session reference the service writes to.
func (s *Service) Session() string {
	return s.session
}

// Info rebuilds timer state at now from the remote history plus any local
// events the remote has not acknowledged yet. When the history cannot be
// fetched the zero state is returned together with the error.
//
// The queue is read after the fetch: a flush that lands in between has
// already removed its events from the queue, so they are counted once.
func (s *Service) Info(ctx context.Context, now time.Time) (Info, error) {
	history, fetchErr := s.api.FetchEvents(ctx, s.session)

	queued := s.queue.Pending()
	info := Info{Queued: queued, Pending: len(queued), Delivery: s.queue.Stats()}
	if fetchErr != nil {
		return info, fmt.Errorf("fetch events: %w", fetchErr)
	}

	events := MergePending(history, queued)
	s.noteSuspect(timeline.Validate(events))
	info.Events = events
	info.State = timeline.Reconstruct(events, now)
	if n := len(events); n > 0 {
		last := events[n-1]
		info.LastEvent = &last
	}
	return info, nil
}

// noteSuspect logs a history problem once per distinct problem. The history is
// folded regardless.
func (s *Service) noteSuspect(err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	s.mu.Lock()
	changed := msg != s.suspect
	s.suspect = msg
	s.mu.Unlock()
	if changed && err != nil {
		log.Printf("stopwatch: session %s history is suspect, folding anyway: %v", s.session, err)
	}
}

// Start queues a start event, opens the remote session and then delivers the
// queue. The event is durable before any network call, so a crash or an
// offline remote never loses it; the remote error is still returned for
// display.
func (s *Service) Start(ctx context.Context, at time.Time, title, notes string) error {
	if _, err := s.queue.Append(ctx, timeline.KindStart, at); err != nil {
		return err
	}

	req := remote.StartRequest{Title: strings.TrimSpace(title), Notes: strings.TrimSpace(notes), StartedAt: at}
	if req.Title == "" {
		req.Title = defaultTitle
	}
	startErr := s.api.StartSession(ctx, s.session, req)

	if err := s.queue.Flush(ctx); err != nil {
		log.Printf("stopwatch: start event stored locally, will sync later: %v", err)
	}
	if startErr != nil {
		return fmt.Errorf("start session: %w", startErr)
	}
	return nil
}

// Pause records a pause event.
func (s *Service) Pause(ctx context.Context, at time.Time) error {
	_, err := s.queue.Record(ctx, timeline.KindPause, at)
	return err
}

// Resume records a resume event.
func (s *Service) Resume(ctx context.Context, at time.Time) error {
	_, err := s.queue.Record(ctx, timeline.KindResume, at)
	return err
}

// Stop records a stop event and finishes the remote session.
func (s *Service) Stop(ctx context.Context, at time.Time) error {
	if _, err := s.queue.Record(ctx, timeline.KindStop, at); err != nil {
		return err
	}
	if err := s.api.FinishSession(ctx, s.session, at); err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return nil
}

// Sync delivers queued events now. It returns when the flush finishes or ctx
// is done, whichever comes first; an abandoned flush keeps running and its
// outcome shows up in the queue stats.
func (s *Service) Sync(ctx context.Context) error {
	select {
	case err := <-s.queue.FlushAsync(ctx):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MergePending appends queued events the remote history does not contain.
// Queued events were recorded after everything the remote acknowledged, so
// they go at the tail.
func MergePending(history, queued []timeline.Event) []timeline.Event {
	merged := timeline.Clone(history)
	if len(queued) == 0 {
		return merged
	}
	seen := make(map[string]struct{}, len(history))
	for _, ev := range history {
		if ev.ID != "" {
			seen[ev.ID] = struct{}{}
		}
	}
	for _, ev := range queued {
		if _, ok := seen[ev.ID]; ok && ev.ID != "" {
			continue
		}
		merged = append(merged, ev)
	}
	return merged
}
