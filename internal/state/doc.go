// Package state provides thread-safe state sharing between the Tally poller
// and the UI.
//
// # Overview
//
// The poller periodically asks the stopwatch service for the session's
// event history and stores the result here. The UI reads snapshots on its
// own tick and reconstructs the timer from the stored events at the current
// instant, so the displayed clock advances between polls without anything
// being written.
//
// # Architecture
//
//	Producer (Poller):             Consumer (UI):
//	┌────────────────┐            ┌──────────────────┐
//	│ service.Info() │            │                  │
//	│      ↓         │            │                  │
//	│ store.Update() │───────────→│ store.Snapshot() │
//	│      ↓         │  (mutex)   │      ↓           │
//	│  repeat...     │            │ snap.StateAt(now)│
//	└────────────────┘            └──────────────────┘
//
// # What Is Stored
//
// The Snapshot holds events, not a TimerState. Timer state is always derived
// from the history by timeline.Reconstruct, so a read can never drift from
// the append-only log.
//
// # Update Semantics
//
//	// Success case: replace the history
//	store.Update(info, nil)
//	→ snapshot.Events = info.Events
//	→ snapshot.LastError = nil
//
//	// Error case: keep the old history, record the error
//	store.Update(info, err)
//	→ snapshot.Events = <unchanged>
//	→ snapshot.LastError = err
//
// Pending and Delivery describe the local queue and are applied in both
// cases: they never depend on the remote being reachable.
//
// # Defensive Copying
//
// Update and Snapshot copy the event slice and the error value, so the UI
// and the poller never share mutable data.
//
// # Testing Considerations
//
// The zero Store is ready to use:
//
//	store := &state.Store{}
package state
