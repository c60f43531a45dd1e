// Package remote provides an HTTP client for the study-session API, the
// authoritative store of session event histories.
//
// # Overview
//
// The server is a black box that keeps one ordered event list per session
// and accepts appends atomically: a batch is stored in full or not at all.
// Tally never assumes more than that.
//
// # Client Usage
//
//	client, err := remote.NewClient(cfg.APIURL, remote.Options{Token: cfg.APIToken})
//	if err != nil {
//		log.Fatalf("failed to create client: %v", err)
//	}
//
//	events, err := client.FetchEvents(ctx, "active")
//	if err != nil {
//		log.Printf("fetch failed: %v", err)
//	}
//
// # API Endpoints
//
//   - GET  /api/sessions/{session}/events  -> {"events": [...]}
//   - POST /api/sessions/{session}/events  <- {"events": [...]}
//   - POST /api/sessions/{session}/start   <- {"title", "notes", "started_at"}
//   - POST /api/sessions/{session}/finish  <- {"finished_at"}
//
// The session reference "active" addresses the caller's current session.
//
// # Error Handling
//
// Errors fall into three groups:
//
//   - Transport failures wrap ErrUnreachable. The caller is offline or the
//     server is down; queued work should simply wait.
//   - 401 and 403 responses are *StatusError values that match
//     ErrUnauthorized with errors.Is.
//   - Any other status >= 400 is a *StatusError carrying the server's
//     error message when the body has one.
//
// IsTransient groups the failures worth retrying later: unreachable, 408,
// 429 and 5xx.
package remote
