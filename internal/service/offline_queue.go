package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/mrodrigc/campuseats-client/internal/adapter"
	"github.com/mrodrigc/campuseats-client/internal/logger"
	"github.com/mrodrigc/campuseats-client/internal/store"
	"github.com/mrodrigc/campuseats-client/models"
)

// ExecFunc replays one queued request against the API.
type ExecFunc func(ctx context.Context, req models.QueuedRequest) error

// DropReport is invoked when a request exceeded the retry ceiling and was
// removed. The user must learn the action did not happen.
type DropReport func(req models.QueuedRequest, err error)

type offlineQueue struct {
	localStore store.LocalStore
	exec       ExecFunc
	limit      int
	onDrop     DropReport
	log        *logger.Logger

	mu       sync.Mutex
	items    []models.QueuedRequest
	draining bool
}

// NewOfflineQueue builds the queue and reloads any entries persisted by a
// previous run, so a full restart does not lose pending writes.
func NewOfflineQueue(
	ctx context.Context,
	localStore store.LocalStore,
	exec ExecFunc,
	retryLimit int,
	onDrop DropReport,
	log *logger.Logger,
) Queue {
	q := &offlineQueue{
		localStore: localStore,
		exec:       exec,
		limit:      retryLimit,
		onDrop:     onDrop,
		log:        log,
	}

	if localStore != nil {
		items, err := localStore.LoadQueue(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("reload offline queue failed")
		} else {
			q.items = items
		}
	}

	return q
}

func (q *offlineQueue) Enqueue(ctx context.Context, method, url string, payload json.RawMessage) models.QueuedRequest {
	req := models.QueuedRequest{
		ID:         uuid.NewString(),
		Method:     method,
		URL:        url,
		Payload:    payload,
		EnqueuedAt: time.Now(),
	}

	q.mu.Lock()
	q.items = append(q.items, req)
	q.persistLocked(ctx)
	q.mu.Unlock()

	q.log.Info().Str("id", req.ID).Str("url", url).Msg("request deferred while offline")
	return req
}

func (q *offlineQueue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain replays queued requests in order. It is non-reentrant: overlapping
// calls return immediately, so no request is ever executed twice
// concurrently. The drain aborts when connectivity is lost again and resumes
// on the next confirmed online transition.
func (q *offlineQueue) Drain(ctx context.Context) {
	q.mu.Lock()
	if q.draining || len(q.items) == 0 {
		q.mu.Unlock()
		return
	}
	q.draining = true
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.draining = false
		q.mu.Unlock()
	}()

	idx := 0
	for {
		q.mu.Lock()
		if idx >= len(q.items) {
			q.mu.Unlock()
			return
		}
		item := q.items[idx]
		q.mu.Unlock()

		err := q.attempt(ctx, item)

		q.mu.Lock()
		if err == nil {
			q.items = append(q.items[:idx], q.items[idx+1:]...)
			q.persistLocked(ctx)
			q.mu.Unlock()
			q.log.Info().Str("id", item.ID).Msg("queued request replayed")
			continue
		}

		q.items[idx].RetryCount++
		dropped := q.items[idx].RetryCount > q.limit
		var droppedItem models.QueuedRequest
		if dropped {
			droppedItem = q.items[idx]
			q.items = append(q.items[:idx], q.items[idx+1:]...)
		}
		q.persistLocked(ctx)
		q.mu.Unlock()

		if dropped {
			q.log.Error().Str("id", droppedItem.ID).Err(err).Msg("queued request dropped past retry ceiling")
			if q.onDrop != nil {
				q.onDrop(droppedItem, err)
			}
		}

		if errors.Is(err, adapter.ErrUnavailable) || ctx.Err() != nil {
			return
		}
		if !dropped {
			idx++
		}
	}
}

// attempt wraps a single replay in a short exponential backoff for transient
// unavailability; anything else fails straight through to the retry-count
// accounting in Drain.
func (q *offlineQueue) attempt(ctx context.Context, item models.QueuedRequest) error {
	b := retry.WithMaxRetries(1, retry.NewExponential(300*time.Millisecond))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := q.exec(ctx, item)
		if errors.Is(err, adapter.ErrUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (q *offlineQueue) persistLocked(ctx context.Context) {
	if q.localStore == nil {
		return
	}
	if err := q.localStore.SaveQueue(ctx, q.items); err != nil {
		// storage failure: the in-memory queue stays authoritative
		q.log.Warn().Err(err).Msg("persist offline queue failed")
	}
}
