// Package service contains the state-synchronization engine: the per-feed
// order cache, the adaptive poller driving it, the connectivity monitor and
// the offline request queue. The rendering layer is an external collaborator
// reached only through the snapshot/connectivity callbacks.
package service

import (
	"context"
	"encoding/json"

	"github.com/mrodrigc/campuseats-client/models"
)

// FetchFunc retrieves the authoritative order list for one feed.
type FetchFunc func(ctx context.Context) ([]models.Order, error)

// RefreshFunc is one poll cycle; changed reports whether a state change was
// detected.
type RefreshFunc func(ctx context.Context) (changed bool, err error)

// SnapshotListener is the view-refresh bridge: invoked with the full current
// order list whenever the cache replaces its snapshot.
type SnapshotListener func(feed models.Feed, orders []models.Order)

// EventSink receives order transition/creation events. The notification
// dispatcher implements it.
type EventSink interface {
	Dispatch(ctx context.Context, events []models.OrderEvent)
}

// SyncCache is the single source of truth for the current known orders of one
// feed. Only one fetch per feed is ever in flight; concurrent callers coalesce
// onto the same result.
type SyncCache interface {
	// Get returns the cached orders when fresh, otherwise fetches. A fetch
	// failure serves the last good snapshot; the error is surfaced only when
	// no snapshot exists at all.
	Get(ctx context.Context, force bool) ([]models.Order, error)

	// Refresh forces a fetch and reports whether the feed's contents changed.
	Refresh(ctx context.Context) (changed bool, err error)

	// InsertPending adds an optimistic local order shown until the
	// authoritative list confirms or supersedes it.
	InsertPending(order models.Order)

	// Feed identifies the stream this cache owns.
	Feed() models.Feed

	// LastSnapshot returns the current snapshot, if any.
	LastSnapshot() (models.Snapshot, bool)
}

// Poller owns the repeating sync timer of one feed.
type Poller interface {
	// Start launches the polling loop. A second Start while running is a
	// no-op, never a duplicate timer.
	Start(ctx context.Context)
	// Stop cancels the loop and waits for it to exit. Idempotent.
	Stop()
	// SetPageVisible pauses polling when the page is hidden and resumes with
	// an immediate refresh when it becomes visible again.
	SetPageVisible(visible bool)
	// SetFeedVisible slows polling while the orders feed is not the active
	// view. Polling never stops entirely.
	SetFeedVisible(visible bool)
	// RecordActivity marks a user interaction, delaying the idle slowdown.
	RecordActivity()
	// Bump resets the interval to the floor and triggers an immediate
	// refresh, typically after a user mutation.
	Bump()
}

// Monitor produces a confirmed online/offline state, more reliable than any
// single raw signal.
type Monitor interface {
	Start(ctx context.Context)
	Stop()
	// Online returns the current confirmed state.
	Online() bool
	// Subscribe registers a callback invoked on confirmed transitions only.
	Subscribe(fn func(online bool))
	// ReportSuccess and ReportFailure feed raw transport outcomes into the
	// debounced state machine.
	ReportSuccess()
	ReportFailure()
}

// Queue durably defers mutating calls issued while disconnected.
type Queue interface {
	// Enqueue persists the request immediately and returns the stored entry.
	Enqueue(ctx context.Context, method, url string, payload json.RawMessage) models.QueuedRequest
	// Drain replays queued requests in order. Non-reentrant: a drain already
	// in progress makes the call a no-op.
	Drain(ctx context.Context)
	// Depth returns the number of pending requests.
	Depth() int
}
