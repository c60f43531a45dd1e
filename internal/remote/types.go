package remote

import (
	"time"

	"github.com/five82/tally/internal/timeline"
)

// DefaultSession addresses the caller's current study session.
const DefaultSession = "active"

const apiTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// EventsPayload is the body of both the events listing and the append call.
type EventsPayload struct {
	Events []timeline.Event `json:"events"`
}

// StartRequest describes a new study session.
type StartRequest struct {
	Title     string
	Notes     string
	StartedAt time.Time
}

type startPayload struct {
	Title     string `json:"title"`
	Notes     string `json:"notes,omitempty"`
	StartedAt string `json:"started_at"`
}

func (r StartRequest) payload() startPayload {
	started := r.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	return startPayload{
		Title:     r.Title,
		Notes:     r.Notes,
		StartedAt: formatTime(started),
	}
}

type finishRequest struct {
	FinishedAt string `json:"finished_at,omitempty"`
}

func finishPayload(at time.Time) finishRequest {
	if at.IsZero() {
		return finishRequest{}
	}
	return finishRequest{FinishedAt: formatTime(at)}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(apiTimestampLayout)
}
