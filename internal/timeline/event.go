package timeline

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind names the user action an Event records.
type Kind string

const (
	KindStart  Kind = "start"
	KindPause  Kind = "pause"
	KindResume Kind = "resume"
	KindStop   Kind = "stop"
)

// wireTimeLayout keeps millisecond precision on the wire.
const wireTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// ParseKind converts a wire name into a Kind.
func ParseKind(value string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(value))); k {
	case KindStart, KindPause, KindResume, KindStop:
		return k, nil
	default:
		return "", fmt.Errorf("unknown event kind %q", value)
	}
}

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	_, err := ParseKind(string(k))
	return err == nil
}

// Event is an immutable timestamped fact in a session's history.
type Event struct {
	ID   string
	Kind Kind
	Time time.Time
}

// NewEvent stamps a fresh event ID and truncates at to millisecond precision.
func NewEvent(kind Kind, at time.Time) Event {
	return Event{
		ID:   uuid.NewString(),
		Kind: kind,
		Time: at.Truncate(time.Millisecond),
	}
}

type wireEvent struct {
	ID   string `json:"id,omitempty"`
	Kind string `json:"event_type"`
	Time string `json:"event_time"`
}

// MarshalJSON encodes the event in the study-session API shape.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEvent{
		ID:   e.ID,
		Kind: string(e.Kind),
		Time: e.Time.UTC().Format(wireTimeLayout),
	})
}

// UnmarshalJSON decodes an event, rejecting bad timestamps. Unknown kinds
// are kept as-is so one unrecognised event does not make a whole history
// unreadable; Reconstruct skips them and Validate reports them.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw wireEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kind := Kind(strings.ToLower(strings.TrimSpace(raw.Kind)))
	at, err := parseTime(raw.Time)
	if err != nil {
		return err
	}
	*e = Event{ID: raw.ID, Kind: kind, Time: at}
	return nil
}

func parseTime(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("event_time is empty")
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Truncate(time.Millisecond), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse event_time %q", value)
}

// Clone returns an independent copy of events.
func Clone(events []Event) []Event {
	if len(events) == 0 {
		return nil
	}
	dup := make([]Event, len(events))
	copy(dup, events)
	return dup
}
