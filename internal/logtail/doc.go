// Package logtail reads the tail of Tally's log file for display in the TUI.
//
// While the terminal UI is running, the standard logger is redirected to a
// file under the data directory. Queue delivery failures ("event stored
// locally, will sync later") end up there, and the UI shows the most recent
// ones so the user can see why the pending count is not draining.
//
// Read keeps a ring buffer of the last maxLines lines, so memory use is
// bounded by the window rather than the file size. Each line is split into
// the standard log timestamp (2006/01/02 15:04:05) and the message; lines
// without that prefix are returned with a zero timestamp.
//
// A missing log file is not an error: Read returns nil, nil.
package logtail
