// Package app provides the orchestration layer for the Tally application.
//
// # Overview
//
// This package wires together configuration, the local pending-event store,
// the API client, the stopwatch service, polling and the UI. It is the
// composition root: every dependency is built here and nowhere else.
//
// # Startup
//
//  1. Load config (~/.config/tally/config.toml) and prefs
//  2. Redirect the standard logger to <data_dir>/tally.log
//  3. Open the key-value store (SQLite or YAML) under data_dir
//  4. Build the HTTP client and the pending queue, then Load the queue
//  5. Deliver events left over from a previous run
//  6. Start the poller, do one refresh, run the TUI until quit
//
// A queue that fails to load is logged and starts empty; Tally keeps
// running rather than refusing to record new events.
//
// # Polling Behavior
//
// The poller asks the stopwatch service for the session history on a
// timer (default 2 seconds) and stores the result in state.Store. While the
// API is failing the delay doubles per consecutive failure, capped at 30
// seconds. The poller only reads: queued events are delivered when the
// user records an action or presses sync.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Invalid configuration
//   - Data directory, log file or local store cannot be opened
//   - Invalid API URL
//
// Everything else (API outages, failed deliveries) is logged and surfaced
// in the UI.
package app
