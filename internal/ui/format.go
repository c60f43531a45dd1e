package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/five82/tally/internal/pending"
	"github.com/five82/tally/internal/remote"
	"github.com/five82/tally/internal/state"
	"github.com/five82/tally/internal/timeline"
)

const (
	statusIdle    = "idle"
	statusRunning = "running"
	statusPaused  = "paused"
	statusStopped = "stopped"
)

// timerStatus classifies the timer from the newest event. Running comes from
// the reconstructed state so it agrees with the clock.
func timerStatus(snap state.Snapshot, now time.Time) string {
	last, ok := snap.LastEvent()
	if !ok {
		return statusIdle
	}
	if snap.StateAt(now).Running {
		return statusRunning
	}
	switch last.Kind {
	case timeline.KindPause:
		return statusPaused
	case timeline.KindStop:
		return statusStopped
	default:
		return statusIdle
	}
}

// formatClock renders d as hh:mm:ss.t with tenths. Negative durations keep
// their sign; they only appear when the history is out of order.
func formatClock(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	d = d.Truncate(100 * time.Millisecond)
	h := int64(d / time.Hour)
	m := int64(d%time.Hour) / int64(time.Minute)
	s := int64(d%time.Minute) / int64(time.Second)
	t := int64(d%time.Second) / int64(100*time.Millisecond)
	return fmt.Sprintf("%s%02d:%02d:%02d.%d", sign, h, m, s, t)
}

// describeResult turns an action outcome into a one-line notice. The bool
// reports whether the notice is an error.
func describeResult(label string, err error) (string, bool) {
	if err == nil {
		if label == "sync" {
			return "synced", false
		}
		return label + " recorded", false
	}
	switch {
	case errors.Is(err, pending.ErrPersist):
		return label + " failed: could not save locally", true
	case errors.Is(err, remote.ErrUnauthorized):
		return label + ": not authorized, check api_token", true
	case remote.IsTransient(err):
		if label == "sync" {
			return "sync failed: api unreachable, events kept locally", true
		}
		return label + " saved offline, will sync later", false
	default:
		return label + ": " + err.Error(), true
	}
}

// classifyConnectionError returns a short description of a poll error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case errors.Is(err, remote.ErrUnauthorized):
		return "UNAUTHORIZED"
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// truncateMiddle shortens s to max runes, keeping both ends.
func truncateMiddle(s string, max int) string {
	r := []rune(s)
	if max <= 3 || len(r) <= max {
		return s
	}
	keep := max - 3
	head := keep / 2
	tail := keep - head
	return string(r[:head]) + "..." + string(r[len(r)-tail:])
}
