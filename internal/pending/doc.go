// Package pending implements the offline-durable queue of timing events that
// have not yet been accepted by the remote store.
//
// # Lifecycle
//
//  1. New builds the queue around a durable Store and a remote Appender.
//  2. Load reads the last snapshot. Append, Record and Flush return
//     ErrNotLoaded until it has run.
//  3. Append adds an event and overwrites the snapshot. Record is Append
//     followed by a Flush attempt.
//  4. Flush sends the whole queue as one batch and drops it on success. An
//     emptied queue deletes its key when the Store is also a Deleter.
//
// # Delivery Model
//
// Delivery is at-least-once, best effort and caller-triggered. There is no
// background retry timer: a queue stays non-empty until the next Record or
// an explicit Flush (or FlushAsync) reaches a healthy remote.
//
// The remote accepts or rejects a batch as a whole. A failed flush leaves
// both the in-memory queue and the snapshot exactly as they were.
//
// # Failures
//
// Persist failures in Record are returned wrapped in ErrPersist and the
// event is not kept: an event that is not durable is never reported as
// recorded. Delivery failures are never returned from Record; they are
// logged and counted in Stats, and Stats.IsOffline turns true after two in a
// row.
//
// # Concurrency
//
// A mutex guards the queue and the snapshot writes. A second mutex
// serializes flushes, so a flush started while another is in flight waits
// and then sees the queue left by the first. Record holds the queue mutex
// only while appending and persisting, never across the network call.
package pending
