package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/five82/tally/internal/timeline"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultAPIURL {
		t.Fatalf("url = %q, want %q", u.String(), defaultAPIURL)
	}

	u, err = parseBaseURL("example.com:1234/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "example.com:1234" {
		t.Fatalf("url = %q, want http://example.com:1234", u.String())
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestClient_FetchAndAppendEvents(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)
	var gotAuth, gotUserAgent, gotContentType string
	var appended EventsPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUserAgent = r.Header.Get("User-Agent")
		if r.URL.Path != "/api/sessions/s%201/events" && r.URL.Path != "/api/sessions/s 1/events" {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"events":[
				{"id":"e1","event_type":"start","event_time":"2026-10-19T09:00:00.000Z"},
				{"event_type":"pause","event_time":"2026-10-19T09:00:05.000Z"}
			]}`))
		case http.MethodPost:
			gotContentType = r.Header.Get("Content-Type")
			if err := json.NewDecoder(r.Body).Decode(&appended); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, Options{Token: " secret "})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	events, err := c.FetchEvents(ctx, "s 1")
	if err != nil {
		t.Fatalf("FetchEvents returned error: %v", err)
	}
	if len(events) != 2 || events[0].ID != "e1" || events[1].Kind != timeline.KindPause {
		t.Fatalf("FetchEvents = %+v, want start(e1), pause", events)
	}
	if !events[1].Time.Equal(start.Add(5 * time.Second)) {
		t.Fatalf("pause time = %v, want %v", events[1].Time, start.Add(5*time.Second))
	}

	batch := []timeline.Event{{ID: "e3", Kind: timeline.KindResume, Time: start.Add(8 * time.Second)}}
	if err := c.AppendEvents(ctx, "s 1", batch); err != nil {
		t.Fatalf("AppendEvents returned error: %v", err)
	}
	if len(appended.Events) != 1 || appended.Events[0].ID != "e3" || appended.Events[0].Kind != timeline.KindResume {
		t.Fatalf("server received %+v, want resume e3", appended.Events)
	}
	if gotContentType != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("Authorization = %q, want Bearer secret", gotAuth)
	}
	if !strings.HasPrefix(gotUserAgent, "tally/") {
		t.Fatalf("User-Agent = %q, want tally/*", gotUserAgent)
	}
}

func TestClient_FetchEventsKeepsUnknownKinds(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"events":[
			{"id":"e1","event_type":"start","event_time":"2026-10-19T09:00:00.000Z"},
			{"id":"e2","event_type":"lap","event_time":"2026-10-19T09:00:03.000Z"}
		]}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, Options{})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	events, err := client.FetchEvents(context.Background(), "")
	if err != nil {
		t.Fatalf("FetchEvents returned error: %v", err)
	}
	if len(events) != 2 || events[1].Kind != timeline.Kind("lap") {
		t.Fatalf("events = %+v, want start plus lap", events)
	}
}

func TestClient_AppendEmptyBatchSkipsRequest(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, Options{})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := c.AppendEvents(context.Background(), "", nil); err != nil {
		t.Fatalf("AppendEvents returned error: %v", err)
	}
	if calls != 0 {
		t.Fatalf("server calls = %d, want 0", calls)
	}
}

func TestClient_SessionLifecycle(t *testing.T) {
	t.Parallel()

	var startBody, finishBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/sessions/active/start":
			_ = json.NewDecoder(r.Body).Decode(&startBody)
		case "/api/sessions/active/finish":
			_ = json.NewDecoder(r.Body).Decode(&finishBody)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, Options{})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	at := time.Date(2026, time.October, 19, 9, 0, 0, 250_000_000, time.UTC)

	if err := c.StartSession(context.Background(), "", StartRequest{}); err == nil {
		t.Fatalf("StartSession without title returned nil error")
	}
	if err := c.StartSession(context.Background(), "", StartRequest{Title: "Algebra", StartedAt: at}); err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	if startBody["title"] != "Algebra" || startBody["started_at"] != "2026-10-19T09:00:00.250Z" {
		t.Fatalf("start body = %v, want title and started_at", startBody)
	}
	if _, ok := startBody["notes"]; ok {
		t.Fatalf("start body = %v, want notes omitted", startBody)
	}

	if err := c.FinishSession(context.Background(), "active", at.Add(time.Hour)); err != nil {
		t.Fatalf("FinishSession returned error: %v", err)
	}
	if finishBody["finished_at"] != "2026-10-19T10:00:00.250Z" {
		t.Fatalf("finish body = %v, want finished_at", finishBody)
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/sessions/bad-json/events":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		case "/api/sessions/busy/events":
			http.Error(w, `{"message":"try later"}`, http.StatusServiceUnavailable)
		case "/api/sessions/denied/events":
			w.WriteHeader(http.StatusUnauthorized)
		case "/api/sessions/invalid/events":
			http.Error(w, "events out of order", http.StatusUnprocessableEntity)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, Options{})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()

	_, err = c.FetchEvents(ctx, "bad-json")
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchEvents error = %v, want decode response error", err)
	}

	_, err = c.FetchEvents(ctx, "busy")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != 503 || statusErr.Message != "try later" {
		t.Fatalf("FetchEvents error = %v, want 503 try later", err)
	}
	if !IsTransient(err) {
		t.Fatalf("IsTransient(503) = false, want true")
	}

	_, err = c.FetchEvents(ctx, "denied")
	if !errors.Is(err, ErrUnauthorized) || IsTransient(err) {
		t.Fatalf("FetchEvents error = %v, want non-transient ErrUnauthorized", err)
	}

	err = c.AppendEvents(ctx, "invalid", []timeline.Event{{Kind: timeline.KindStop, Time: time.Now()}})
	if err == nil || !strings.Contains(err.Error(), "returned status 422: events out of order") {
		t.Fatalf("AppendEvents error = %v, want status 422 with message", err)
	}
	if IsTransient(err) {
		t.Fatalf("IsTransient(422) = true, want false")
	}
}

func TestClient_UnreachableIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := server.URL
	server.Close()

	c, err := NewClient(addr, Options{Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.FetchEvents(context.Background(), "")
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("FetchEvents error = %v, want ErrUnreachable", err)
	}
	if !IsTransient(err) {
		t.Fatalf("IsTransient(unreachable) = false, want true")
	}
}
