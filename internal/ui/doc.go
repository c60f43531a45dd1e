// Package ui provides the Tally terminal interface, built on Bubble Tea.
//
// The screen is a single stopwatch: a header with the session, the timer
// status and the number of events waiting to be delivered; a clock panel
// showing elapsed and paused time; the outcome of the last action; and the
// newest lines of the log file, which is where delivery failures land.
//
// The clock is recomputed from the event history on every 100ms tick, so
// the displayed time is always a function of the events and the current
// instant rather than a counter kept in the model. The history itself comes
// from state.Store, which the background poller keeps current.
//
// Key actions (start, pause/resume, stop, sync) run as tea.Cmds so a slow
// or unreachable API never blocks rendering. Only one action is in flight
// at a time. After each action the store is refreshed immediately rather
// than waiting for the next poll.
//
// Themes (Nightfox, Kanagawa, Slate) cycle with T and the choice is saved to
// the preferences file.
package ui
