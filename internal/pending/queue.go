package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/five82/tally/internal/timeline"
)

var (
	// ErrNotLoaded is returned by Append, Record and Flush before Load has run.
	ErrNotLoaded = errors.New("pending queue not loaded")
	// ErrPersist marks a failure to write the durable snapshot.
	ErrPersist = errors.New("persist pending events")
)

const (
	// DefaultKey is the durable key the queue snapshot lives under.
	DefaultKey     = "pending_events"
	defaultSession = "active"
	offlineAfter   = 2
)

// Store is the durable key-value store the snapshot is written to.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Deleter is implemented by stores that can drop a key. When the store
// supports it an empty queue removes its key instead of writing "[]".
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

// Appender delivers a batch of events to the remote store atomically.
type Appender interface {
	AppendEvents(ctx context.Context, session string, batch []timeline.Event) error
}

// Options configure a Queue. Zero values use defaults.
type Options struct {
	Session string
	Key     string
	Logger  *log.Logger
	Now     func() time.Time
}

// Stats describes delivery health for display.
type Stats struct {
	Pending             int
	LastAttempt         time.Time
	LastFlush           time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline reports repeated delivery failures.
func (s Stats) IsOffline() bool {
	return s.ConsecutiveFailures >= offlineAfter
}

// Queue buffers events until the remote store accepts them. The in-memory
// list and the durable snapshot always match after any call returns,
// except when a snapshot write itself fails.
type Queue struct {
	store   Store
	remote  Appender
	session string
	key     string
	logger  *log.Logger
	now     func() time.Time

	mu     sync.Mutex // guards events, loaded, stats and snapshot writes
	events []timeline.Event
	loaded bool
	stats  Stats

	flushMu sync.Mutex // one delivery in flight at a time
}

// New builds a Queue. Load must complete before Record or Flush are used.
func New(store Store, remote Appender, opts Options) *Queue {
	session := strings.TrimSpace(opts.Session)
	if session == "" {
		session = defaultSession
	}
	key := strings.TrimSpace(opts.Key)
	if key == "" {
		key = KeyFor(session)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Queue{
		store:   store,
		remote:  remote,
		session: session,
		key:     key,
		logger:  logger,
		now:     now,
	}
}

// KeyFor returns the durable key for session's queue. The default session
// uses DefaultKey so existing snapshots stay readable.
func KeyFor(session string) string {
	session = strings.TrimSpace(session)
	if session == "" || session == defaultSession {
		return DefaultKey
	}
	return DefaultKey + "/" + session
}

// Load reads the last persisted snapshot. A missing snapshot is an empty
// queue. If the snapshot cannot be read or decoded the queue starts empty and
// the error is returned; the queue is usable either way.
func (q *Queue) Load(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.loaded = true
	q.events = nil

	raw, ok, err := q.store.Get(ctx, q.key)
	if err != nil {
		q.logger.Printf("pending: load snapshot failed, starting empty: %v", err)
		return fmt.Errorf("load pending events: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}

	var events []timeline.Event
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		q.logger.Printf("pending: decode snapshot failed, starting empty: %v", err)
		return fmt.Errorf("decode pending events: %w", err)
	}
	q.events = events
	return nil
}

// Append builds a new event and persists it without contacting the remote.
// On a persist failure the event is dropped from memory again and a wrapped
// ErrPersist is returned.
func (q *Queue) Append(ctx context.Context, kind timeline.Kind, at time.Time) (timeline.Event, error) {
	if !kind.Valid() {
		return timeline.Event{}, fmt.Errorf("record event: unknown kind %q", string(kind))
	}
	ev := timeline.NewEvent(kind, at)

	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.loaded {
		return timeline.Event{}, ErrNotLoaded
	}
	next := append(timeline.Clone(q.events), ev)
	if err := q.persistLocked(ctx, next); err != nil {
		return timeline.Event{}, err
	}
	q.events = next
	return ev, nil
}

// Record appends a new event, persists the queue and then tries to deliver
// it. Only a persist failure is returned: once the event is durable, delivery
// failures are logged and left for a later flush.
func (q *Queue) Record(ctx context.Context, kind timeline.Kind, at time.Time) (timeline.Event, error) {
	ev, err := q.Append(ctx, kind, at)
	if err != nil {
		return timeline.Event{}, err
	}
	if err := q.Flush(ctx); err != nil {
		q.logger.Printf("pending: %s event stored locally, will sync later: %v", ev.Kind, err)
	}
	return ev, nil
}

// Flush sends every queued event to the remote store in one batch. On
// success that batch is removed; on failure nothing changes. An empty queue
// succeeds without contacting the remote.
func (q *Queue) Flush(ctx context.Context) error {
	q.flushMu.Lock()
	defer q.flushMu.Unlock()

	q.mu.Lock()
	if !q.loaded {
		q.mu.Unlock()
		return ErrNotLoaded
	}
	batch := timeline.Clone(q.events)
	q.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	err := q.remote.AppendEvents(ctx, q.session, batch)

	q.mu.Lock()
	defer q.mu.Unlock()

	q.stats.LastAttempt = q.now()
	if err != nil {
		q.stats.LastError = err
		q.stats.ConsecutiveFailures++
		return fmt.Errorf("flush %d pending events: %w", len(batch), err)
	}

	q.stats.LastFlush = q.stats.LastAttempt
	q.stats.LastError = nil
	q.stats.ConsecutiveFailures = 0

	// Only Append adds events while a flush is in flight, so the batch is still
	// the queue prefix.
	var remaining []timeline.Event
	if len(q.events) > len(batch) {
		remaining = timeline.Clone(q.events[len(batch):])
	}
	q.events = remaining
	if err := q.persistLocked(ctx, remaining); err != nil {
		// Delivered but the snapshot still lists the batch; a restart will
		// resend it and the remote drops duplicates by event ID.
		q.logger.Printf("pending: clear snapshot after delivery failed: %v", err)
		return err
	}
	return nil
}

// FlushAsync runs Flush on its own goroutine and reports the result on the
// returned channel, which receives exactly one value.
func (q *Queue) FlushAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- q.Flush(ctx)
		close(done)
	}()
	return done
}

// Pending returns a copy of the queued events.
func (q *Queue) Pending() []timeline.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	return timeline.Clone(q.events)
}

// Stats returns current delivery stats.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	stats := q.stats
	stats.Pending = len(q.events)
	return stats
}

func (q *Queue) persistLocked(ctx context.Context, events []timeline.Event) error {
	if len(events) == 0 {
		if d, ok := q.store.(Deleter); ok {
			if err := d.Delete(ctx, q.key); err != nil {
				return fmt.Errorf("%w: %w", ErrPersist, err)
			}
			return nil
		}
		events = []timeline.Event{}
	}
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrPersist, err)
	}
	if err := q.store.Set(ctx, q.key, string(data)); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}
