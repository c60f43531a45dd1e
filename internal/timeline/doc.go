// Package timeline models study-session timing events and derives timer
// state from them.
//
// # Overview
//
// A session's history is an append-only list of Event values, one per user
// action: start, pause, resume, stop. Nothing else is stored. The running
// flag, active time and paused time are recomputed from the history on
// demand by Reconstruct, so a client that was killed or offline recovers the
// same state as soon as it can read the history again.
//
// # Reconstruction
//
// Reconstruct is a left fold over the events in slice order:
//
//	start   elapsed=0, paused=0, open a running interval
//	pause   close the running interval into elapsed, open a pause
//	resume  close the pause into paused, open a running interval
//	stop    close the running interval into elapsed, stop running
//
// After the fold, an interval still open is measured up to the supplied
// now. Calling Reconstruct with the same slice and instant always yields the
// same State.
//
// # Ordering
//
// The fold trusts its input. Events must already be sorted by Time; a
// history with a later index but earlier timestamp folds in index order.
// Validate is available for callers that want to reject such histories
// before reconstructing.
//
// # Wire Format
//
// Events marshal to the study-session API shape:
//
//	{"id": "8f2c...", "event_type": "pause", "event_time": "2026-10-19T10:00:05.000Z"}
//
// Timestamps carry millisecond precision. The id lets the remote store drop
// duplicates of an event delivered more than once.
package timeline
