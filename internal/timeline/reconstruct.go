package timeline

import "time"

// State is the timer view derived from an event history. It is never stored.
type State struct {
	Elapsed time.Duration
	Paused  time.Duration
	Running bool
}

// ElapsedMs returns active time in whole milliseconds.
func (s State) ElapsedMs() int64 {
	return s.Elapsed.Milliseconds()
}

// PausedMs returns paused time in whole milliseconds.
func (s State) PausedMs() int64 {
	return s.Paused.Milliseconds()
}

// Total is active plus paused time since the session started.
func (s State) Total() time.Duration {
	return s.Elapsed + s.Paused
}

// Reconstruct folds events, assumed sorted by Time, into the timer state at
// now. An open running interval is extended to now, as is an open pause.
// Input is trusted: ordering and kind sequencing are not checked here.
func Reconstruct(events []Event, now time.Time) State {
	var (
		state     State
		lastStart *time.Time
		lastPause *time.Time
	)

	for i := range events {
		at := events[i].Time
		switch events[i].Kind {
		case KindStart:
			state.Elapsed = 0
			state.Paused = 0
			lastStart = &at
			state.Running = true
		case KindResume:
			if lastPause != nil {
				state.Paused += at.Sub(*lastPause)
				lastPause = nil
			}
			lastStart = &at
			state.Running = true
		case KindPause:
			if lastStart != nil {
				state.Elapsed += at.Sub(*lastStart)
				lastStart = nil
			}
			lastPause = &at
			state.Running = false
		case KindStop:
			if lastStart != nil {
				state.Elapsed += at.Sub(*lastStart)
			}
			state.Running = false
		}
	}

	if state.Running && lastStart != nil {
		state.Elapsed += now.Sub(*lastStart)
	}
	if !state.Running && lastPause != nil {
		state.Paused += now.Sub(*lastPause)
	}
	return state
}
