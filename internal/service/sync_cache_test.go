package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrodrigc/campuseats-client/internal/fingerprint"
	"github.com/mrodrigc/campuseats-client/internal/logger"
	"github.com/mrodrigc/campuseats-client/models"
)

func testCacheConfig(feed models.Feed) SyncCacheConfig {
	return SyncCacheConfig{
		Feed:            feed,
		TTL:             time.Minute,
		ReconcileWindow: 10 * time.Minute,
	}
}

func TestSyncCache_StatusTransitionProducesEvent(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}

	responses := [][]models.Order{
		{{ID: 42, Status: models.StatusPending, Total: 7.50, StoreName: "Cafetería Central"}},
		{{ID: 42, Status: models.StatusPreparing, Total: 7.50, StoreName: "Cafetería Central"}},
	}
	var calls atomic.Int32
	fetch := func(ctx context.Context) ([]models.Order, error) {
		n := calls.Add(1)
		return responses[n-1], nil
	}

	cache := NewSyncCache(ctx, testCacheConfig(models.FeedBuyer), fetch, newFakeStore(), sink, nil, logger.Nop())

	changed, err := cache.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = cache.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == 2
	}, time.Second, 10*time.Millisecond)

	events := sink.snapshot()
	assert.Equal(t, models.OrderCreated, events[0].Kind)

	transition := events[1]
	assert.Equal(t, models.OrderTransitioned, transition.Kind)
	assert.Equal(t, "42", transition.Order.Key())
	assert.Equal(t, models.StatusPending, transition.PrevStatus)
	assert.Equal(t, models.StatusPreparing, transition.Order.Status)
}

func TestSyncCache_FetchErrorServesCachedOrders(t *testing.T) {
	ctx := context.Background()

	var calls atomic.Int32
	fetch := func(ctx context.Context) ([]models.Order, error) {
		if calls.Add(1) == 1 {
			return []models.Order{{ID: 7, Status: models.StatusReady, StoreName: "Jugos Naturales"}}, nil
		}
		return nil, errors.New("connection refused")
	}

	cache := NewSyncCache(ctx, testCacheConfig(models.FeedBuyer), fetch, newFakeStore(), nil, nil, logger.Nop())

	_, err := cache.Refresh(ctx)
	require.NoError(t, err)

	orders, err := cache.Get(ctx, true)
	require.NoError(t, err, "a failed sync with cached data must not surface an error")
	require.Len(t, orders, 1)
	assert.Equal(t, int64(7), orders[0].ID)

	snap, ok := cache.LastSnapshot()
	require.True(t, ok)
	assert.Equal(t, models.StatusReady, snap.Orders[0].Status)
}

func TestSyncCache_FetchErrorWithEmptyCache(t *testing.T) {
	ctx := context.Background()
	fetchErr := errors.New("connection refused")
	fetch := func(ctx context.Context) ([]models.Order, error) { return nil, fetchErr }

	cache := NewSyncCache(ctx, testCacheConfig(models.FeedBuyer), fetch, newFakeStore(), nil, nil, logger.Nop())

	_, err := cache.Get(ctx, true)
	require.ErrorIs(t, err, fetchErr)
}

func TestSyncCache_EmptyToNonEmptyEmitsCreated(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}

	responses := [][]models.Order{
		{},
		{
			{ID: 1, Status: models.StatusPending, StoreName: "Tacos El Güero"},
			{ID: 2, Status: models.StatusPending, StoreName: "Tacos El Güero"},
		},
	}
	var calls atomic.Int32
	fetch := func(ctx context.Context) ([]models.Order, error) {
		return responses[calls.Add(1)-1], nil
	}

	cache := NewSyncCache(ctx, testCacheConfig(models.FeedVendor), fetch, newFakeStore(), sink, nil, logger.Nop())

	changed, err := cache.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, changed, "first sync of an empty feed establishes the baseline without a change")

	snap, ok := cache.LastSnapshot()
	require.True(t, ok)
	assert.Equal(t, fingerprint.Empty, snap.Fingerprint)

	changed, err = cache.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == 2
	}, time.Second, 10*time.Millisecond)
	for _, ev := range sink.snapshot() {
		assert.Equal(t, models.OrderCreated, ev.Kind)
		assert.Equal(t, models.FeedVendor, ev.Feed)
	}
}

func TestSyncCache_TTLServesWithoutFetch(t *testing.T) {
	ctx := context.Background()

	var calls atomic.Int32
	fetch := func(ctx context.Context) ([]models.Order, error) {
		calls.Add(1)
		return []models.Order{{ID: 3, Status: models.StatusPending}}, nil
	}

	cache := NewSyncCache(ctx, testCacheConfig(models.FeedBuyer), fetch, newFakeStore(), nil, nil, logger.Nop())

	_, err := cache.Get(ctx, false)
	require.NoError(t, err)

	orders, err := cache.Get(ctx, false)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int32(1), calls.Load(), "a fresh snapshot must be served without hitting the network")

	_, err = cache.Get(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "force bypasses the freshness window")
}

func TestSyncCache_ConcurrentGetsCoalesce(t *testing.T) {
	ctx := context.Background()

	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context) ([]models.Order, error) {
		calls.Add(1)
		<-release
		return []models.Order{{ID: 9, Status: models.StatusPending}}, nil
	}

	cache := NewSyncCache(ctx, testCacheConfig(models.FeedBuyer), fetch, newFakeStore(), nil, nil, logger.Nop())

	var wg sync.WaitGroup
	results := make([][]models.Order, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			orders, err := cache.Get(ctx, true)
			require.NoError(t, err)
			results[i] = orders
		}(i)
	}

	c := cache.(*syncCache)
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return calls.Load() == 1 && len(c.waiters) == 3
	}, time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "overlapping syncs per feed must share one request")
	for _, orders := range results {
		require.Len(t, orders, 1)
		assert.Equal(t, int64(9), orders[0].ID)
	}
}

func TestSyncCache_OptimisticInsertReconciles(t *testing.T) {
	ctx := context.Background()

	responses := [][]models.Order{
		{},
		{{ID: 100, Status: models.StatusPending, StoreName: "Cafetería Central", CreatedAt: time.Now()}},
	}
	var calls atomic.Int32
	fetch := func(ctx context.Context) ([]models.Order, error) {
		return responses[calls.Add(1)-1], nil
	}

	cache := NewSyncCache(ctx, testCacheConfig(models.FeedBuyer), fetch, newFakeStore(), nil, nil, logger.Nop())

	_, err := cache.Refresh(ctx)
	require.NoError(t, err)

	cache.InsertPending(models.Order{StoreName: "Cafetería Central"})

	orders, err := cache.Get(ctx, false)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.True(t, orders[0].Synthetic())
	assert.Equal(t, models.StatusPending, orders[0].Status)

	_, err = cache.Refresh(ctx)
	require.NoError(t, err)

	orders, err = cache.Get(ctx, false)
	require.NoError(t, err)
	require.Len(t, orders, 1, "the confirmed order must replace the optimistic one, never duplicate it")
	assert.Equal(t, int64(100), orders[0].ID)
	assert.False(t, orders[0].Synthetic())
}

func TestSyncCache_ReconcilesDeferredCheckoutWithoutStoreName(t *testing.T) {
	ctx := context.Background()

	responses := [][]models.Order{
		{},
		{{ID: 100, Status: models.StatusPending, Total: 90, StoreName: "Cafetería Central", CreatedAt: time.Now()}},
	}
	var calls atomic.Int32
	fetch := func(ctx context.Context) ([]models.Order, error) {
		return responses[calls.Add(1)-1], nil
	}

	cache := NewSyncCache(ctx, testCacheConfig(models.FeedBuyer), fetch, newFakeStore(), nil, nil, logger.Nop())

	_, err := cache.Refresh(ctx)
	require.NoError(t, err)

	// an offline checkout only knows what the request form knew: no server
	// id and no store name
	cache.InsertPending(models.Order{Status: models.StatusPending, Total: 90})

	orders, err := cache.Get(ctx, false)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.True(t, orders[0].Synthetic())

	_, err = cache.Refresh(ctx)
	require.NoError(t, err)

	orders, err = cache.Get(ctx, false)
	require.NoError(t, err)
	require.Len(t, orders, 1, "the replayed order must replace the optimistic one, never duplicate it")
	assert.Equal(t, int64(100), orders[0].ID)
	assert.False(t, orders[0].Synthetic())
}

func TestSyncCache_SeedsFromPersistedSnapshot(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	st := newFakeStore()

	prior := []models.Order{{ID: 42, Status: models.StatusPending, StoreName: "Cafetería Central"}}
	require.NoError(t, st.SaveSnapshot(ctx, models.Snapshot{
		Feed:        models.FeedBuyer,
		Orders:      prior,
		Fingerprint: fingerprint.Fingerprint(prior),
		CapturedAt:  time.Now().Add(-time.Hour),
	}))

	fetch := func(ctx context.Context) ([]models.Order, error) {
		return []models.Order{{ID: 42, Status: models.StatusReady, StoreName: "Cafetería Central"}}, nil
	}
	cache := NewSyncCache(ctx, testCacheConfig(models.FeedBuyer), fetch, st, sink, nil, logger.Nop())

	changed, err := cache.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)

	ev := sink.snapshot()[0]
	assert.Equal(t, models.OrderTransitioned, ev.Kind, "persisted snapshots keep status diffs working across restarts")
	assert.Equal(t, models.StatusPending, ev.PrevStatus)
}

func TestSyncCache_PersistFailureKeepsServing(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.saveSnapshotErr = errors.New("disk full")

	fetch := func(ctx context.Context) ([]models.Order, error) {
		return []models.Order{{ID: 5, Status: models.StatusPending}}, nil
	}
	cache := NewSyncCache(ctx, testCacheConfig(models.FeedBuyer), fetch, st, nil, nil, logger.Nop())

	orders, err := cache.Get(ctx, true)
	require.NoError(t, err)
	require.Len(t, orders, 1)
}
