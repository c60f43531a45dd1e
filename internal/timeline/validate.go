package timeline

import (
	"fmt"
	"time"
)

// OrderError reports an event timestamped before its predecessor.
type OrderError struct {
	Index    int
	Time     time.Time
	Previous time.Time
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("event %d at %s precedes previous event at %s",
		e.Index, e.Time.Format(wireTimeLayout), e.Previous.Format(wireTimeLayout))
}

// KindError reports an event whose kind is not one of the known kinds.
type KindError struct {
	Index int
	Kind  Kind
}

func (e *KindError) Error() string {
	return fmt.Sprintf("event %d has unknown kind %q", e.Index, string(e.Kind))
}

// Validate returns the first ordering or kind problem in events, or nil.
// Reconstruct does not call it; callers use it to flag a suspect history
// without refusing to fold it.
func Validate(events []Event) error {
	for i, ev := range events {
		if !ev.Kind.Valid() {
			return &KindError{Index: i, Kind: ev.Kind}
		}
		if i > 0 && ev.Time.Before(events[i-1].Time) {
			return &OrderError{Index: i, Time: ev.Time, Previous: events[i-1].Time}
		}
	}
	return nil
}
