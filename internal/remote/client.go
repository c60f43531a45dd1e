package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/five82/tally/internal/timeline"
)

// EventStore is the authoritative history for a session. Appends are
// accepted or rejected as a whole batch.
type EventStore interface {
	FetchEvents(ctx context.Context, session string) ([]timeline.Event, error)
	AppendEvents(ctx context.Context, session string, batch []timeline.Event) error
}

// Ensure Client implements EventStore at compile time.
var _ EventStore = (*Client)(nil)

// Client talks to the study-session HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	token     string
}

const (
	defaultAPIURL    = "http://127.0.0.1:8080"
	defaultUserAgent = "tally/0.1"
	defaultTimeout   = 10 * time.Second
	maxErrorBody     = 4 * 1024
)

// Options tune a Client. Zero values use defaults.
type Options struct {
	Token   string
	Timeout time.Duration
}

// NewClient builds a Client for the API rooted at apiURL.
func NewClient(apiURL string, opts Options) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
		token:     strings.TrimSpace(opts.Token),
	}, nil
}

// FetchEvents retrieves the ordered event history of session.
func (c *Client) FetchEvents(ctx context.Context, session string) ([]timeline.Event, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload EventsPayload
	if err := c.do(ctx, http.MethodGet, sessionPath(session, "events"), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Events, nil
}

// AppendEvents submits batch in one request. Any 2xx response means the whole
// batch was accepted.
func (c *Client) AppendEvents(ctx context.Context, session string, batch []timeline.Event) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if len(batch) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPost, sessionPath(session, "events"), EventsPayload{Events: batch}, nil)
}

// StartSession opens (or replaces) the remote session record.
func (c *Client) StartSession(ctx context.Context, session string, req StartRequest) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("session title required")
	}
	return c.do(ctx, http.MethodPost, sessionPath(session, "start"), req.payload(), nil)
}

// FinishSession marks the remote session completed at finishedAt.
func (c *Client) FinishSession(ctx context.Context, session string, finishedAt time.Time) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodPost, sessionPath(session, "finish"), finishPayload(finishedAt), nil)
}

func sessionPath(session, leaf string) string {
	ref := strings.TrimSpace(session)
	if ref == "" {
		ref = DefaultSession
	}
	return "/api/sessions/" + url.PathEscape(ref) + "/" + leaf
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("parse path %q: %w", path, err)
	}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w: %w", ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return newStatusError(path, resp)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", apiURL)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
