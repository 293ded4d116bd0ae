package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mrodrigc/campuseats-client/internal/fingerprint"
	"github.com/mrodrigc/campuseats-client/internal/logger"
	"github.com/mrodrigc/campuseats-client/internal/store"
	"github.com/mrodrigc/campuseats-client/models"
)

// SyncCacheConfig tunes one feed's cache.
type SyncCacheConfig struct {
	Feed models.Feed
	// TTL is the snapshot freshness window; shorter on hosted deployments.
	TTL time.Duration
	// ReconcileWindow bounds optimistic-insert matching by creation-time
	// proximity. Pending orders older than the window are dropped silently.
	ReconcileWindow time.Duration
}

type syncCache struct {
	cfg        SyncCacheConfig
	fetch      FetchFunc
	localStore store.LocalStore
	events     EventSink
	onSnapshot SnapshotListener
	log        *logger.Logger
	now        func() time.Time

	mu       sync.Mutex
	snap     *models.Snapshot
	pending  []models.Order
	inFlight bool
	waiters  []chan fetchOutcome
	// nextSeq/appliedSeq guard against a stale response regressing the cache
	// after a newer cycle already applied.
	nextSeq    uint64
	appliedSeq uint64
}

type fetchOutcome struct {
	orders  []models.Order
	changed bool
	err     error
}

// NewSyncCache builds the cache for one feed and seeds it from the local
// store, so status diffs keep working across process restarts. events and
// onSnapshot may be nil.
func NewSyncCache(
	ctx context.Context,
	cfg SyncCacheConfig,
	fetch FetchFunc,
	localStore store.LocalStore,
	events EventSink,
	onSnapshot SnapshotListener,
	log *logger.Logger,
) SyncCache {
	c := &syncCache{
		cfg:        cfg,
		fetch:      fetch,
		localStore: localStore,
		events:     events,
		onSnapshot: onSnapshot,
		log:        log,
		now:        time.Now,
	}

	if localStore != nil {
		snap, err := localStore.LoadSnapshot(ctx, cfg.Feed)
		if err == nil {
			c.snap = &snap
		}
	}

	return c
}

func (c *syncCache) Feed() models.Feed {
	return c.cfg.Feed
}

func (c *syncCache) LastSnapshot() (models.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap == nil {
		return models.Snapshot{}, false
	}
	return *c.snap, true
}

func (c *syncCache) Get(ctx context.Context, force bool) ([]models.Order, error) {
	out := c.sync(ctx, force)
	return out.orders, out.err
}

func (c *syncCache) Refresh(ctx context.Context) (bool, error) {
	out := c.sync(ctx, true)
	return out.changed, out.err
}

// sync serves from cache when fresh, coalesces onto an in-flight fetch when
// one is pending, and otherwise performs the fetch itself.
func (c *syncCache) sync(ctx context.Context, force bool) fetchOutcome {
	c.mu.Lock()

	if !force && c.snap != nil && c.now().Sub(c.snap.CapturedAt) < c.cfg.TTL {
		out := fetchOutcome{orders: c.mergedLocked(c.snap.Orders)}
		c.mu.Unlock()
		return out
	}

	if c.inFlight {
		ch := make(chan fetchOutcome, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()

		select {
		case out := <-ch:
			return out
		case <-ctx.Done():
			return fetchOutcome{err: ctx.Err()}
		}
	}

	c.inFlight = true
	c.nextSeq++
	seq := c.nextSeq
	c.mu.Unlock()

	orders, err := c.fetch(ctx)
	out := c.apply(ctx, seq, orders, err)

	c.mu.Lock()
	c.inFlight = false
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- out
	}
	return out
}

func (c *syncCache) apply(ctx context.Context, seq uint64, fetched []models.Order, err error) fetchOutcome {
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.snap != nil {
			// stale data beats no data; the next poll tick retries
			c.log.Warn().Err(err).Str("feed", string(c.cfg.Feed)).Msg("sync failed, serving cached snapshot")
			return fetchOutcome{orders: c.mergedLocked(c.snap.Orders)}
		}
		c.log.Error().Err(err).Str("feed", string(c.cfg.Feed)).Msg("sync failed with empty cache")
		return fetchOutcome{err: err}
	}

	c.mu.Lock()

	if seq <= c.appliedSeq {
		// a newer cycle already applied; never regress to older data
		var orders []models.Order
		if c.snap != nil {
			orders = c.mergedLocked(c.snap.Orders)
		}
		c.mu.Unlock()
		return fetchOutcome{orders: orders}
	}
	c.appliedSeq = seq

	c.reconcileLocked(fetched)

	next := models.Snapshot{
		Feed:        c.cfg.Feed,
		Orders:      fetched,
		Fingerprint: fingerprint.Fingerprint(fetched),
		CapturedAt:  c.now(),
	}

	prev := c.snap
	changed := prev == nil || fingerprint.Changed(prev.Fingerprint, next.Fingerprint)

	var events []models.OrderEvent
	if changed {
		events = c.diffLocked(prev, next)
	}

	c.snap = &next
	orders := c.mergedLocked(next.Orders)
	c.mu.Unlock()

	if changed {
		if c.localStore != nil {
			if serr := c.localStore.SaveSnapshot(ctx, next); serr != nil {
				// in-memory state stays authoritative for the session
				c.log.Warn().Err(serr).Str("feed", string(c.cfg.Feed)).Msg("persist snapshot failed")
			}
		}
		if c.events != nil && len(events) > 0 {
			go c.events.Dispatch(ctx, events)
		}
		if c.onSnapshot != nil {
			c.onSnapshot(c.cfg.Feed, orders)
		}
	}

	return fetchOutcome{orders: orders, changed: changed}
}

// diffLocked compares the new snapshot against the previous one by order key.
// Unseen keys produce created events, status differences produce transition
// events. Transitions outside the expected graph are accepted (trust server)
// and logged as anomalous.
func (c *syncCache) diffLocked(prev *models.Snapshot, next models.Snapshot) []models.OrderEvent {
	prevStatus := map[string]models.OrderStatus{}
	if prev != nil {
		prevStatus = prev.StatusByKey()
	}

	var events []models.OrderEvent
	for _, o := range next.Orders {
		before, seen := prevStatus[o.Key()]
		if !seen {
			events = append(events, models.OrderEvent{
				Kind:  models.OrderCreated,
				Feed:  c.cfg.Feed,
				Order: o,
			})
			continue
		}
		if before == o.Status {
			continue
		}
		if !models.KnownTransition(before, o.Status) {
			c.log.Warn().
				Str("feed", string(c.cfg.Feed)).
				Str("order", o.Key()).
				Str("from", string(before)).
				Str("to", string(o.Status)).
				Msg("unexpected status transition")
		}
		events = append(events, models.OrderEvent{
			Kind:       models.OrderTransitioned,
			Feed:       c.cfg.Feed,
			Order:      o,
			PrevStatus: before,
		})
	}

	return events
}

func (c *syncCache) InsertPending(order models.Order) {
	if order.LocalID == "" {
		order.LocalID = "local-" + uuid.NewString()
	}
	if order.Status == "" {
		order.Status = models.StatusPending
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = c.now()
	}

	c.mu.Lock()
	c.pending = append(c.pending, order)
	var orders []models.Order
	if c.snap != nil {
		orders = c.mergedLocked(c.snap.Orders)
	} else {
		orders = c.mergedLocked(nil)
	}
	c.mu.Unlock()

	if c.onSnapshot != nil {
		c.onSnapshot(c.cfg.Feed, orders)
	}
}

// reconcileLocked removes optimistic inserts confirmed (or superseded) by the
// authoritative list. Matching is by server id when the checkout response
// provided one, otherwise by creation-time proximity, narrowed by store name
// when the pending order carries one. A pending order that found no match
// within the window is dropped silently rather than duplicated.
func (c *syncCache) reconcileLocked(fetched []models.Order) {
	if len(c.pending) == 0 {
		return
	}

	kept := c.pending[:0]
	for _, p := range c.pending {
		if c.matchesAuthoritative(p, fetched) {
			continue
		}
		if c.now().Sub(p.CreatedAt) > c.cfg.ReconcileWindow {
			c.log.Debug().Str("feed", string(c.cfg.Feed)).Str("order", p.Key()).Msg("dropping unmatched pending order")
			continue
		}
		kept = append(kept, p)
	}
	c.pending = kept
}

func (c *syncCache) matchesAuthoritative(p models.Order, fetched []models.Order) bool {
	for _, f := range fetched {
		if p.ID != 0 {
			if f.ID == p.ID {
				return true
			}
			continue
		}
		// A deferred checkout never saw the server response, so the
		// pending order may not know its store. Name equality applies
		// only when it does; creation-time proximity always bounds the
		// match.
		if p.StoreName != "" && f.StoreName != p.StoreName {
			continue
		}
		delta := f.CreatedAt.Sub(p.CreatedAt)
		if delta < 0 {
			delta = -delta
		}
		if delta <= c.cfg.ReconcileWindow {
			return true
		}
	}
	return false
}

// mergedLocked returns pending optimistic inserts followed by the snapshot
// orders, as a fresh slice so callers never alias the cache.
func (c *syncCache) mergedLocked(orders []models.Order) []models.Order {
	merged := make([]models.Order, 0, len(c.pending)+len(orders))
	merged = append(merged, c.pending...)
	merged = append(merged, orders...)
	return merged
}
