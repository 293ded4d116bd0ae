package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mrodrigc/campuseats-client/internal/store"
	"github.com/mrodrigc/campuseats-client/models"
)

// fakeStore is an in-memory LocalStore. Reconstructing a second component on
// top of the same fakeStore simulates a page reload against persisted state.
type fakeStore struct {
	mu        sync.Mutex
	snapshots map[models.Feed]models.Snapshot
	queue     []models.QueuedRequest
	hasQueue  bool
	cart      json.RawMessage
	session   *models.Session

	saveQueueErr    error
	saveSnapshotErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{snapshots: make(map[models.Feed]models.Snapshot)}
}

func (f *fakeStore) SaveSnapshot(_ context.Context, snap models.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveSnapshotErr != nil {
		return f.saveSnapshotErr
	}
	f.snapshots[snap.Feed] = snap
	return nil
}

func (f *fakeStore) LoadSnapshot(_ context.Context, feed models.Feed) (models.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, ok := f.snapshots[feed]
	if !ok {
		return models.Snapshot{}, store.ErrNotFound
	}
	return snap, nil
}

func (f *fakeStore) SaveQueue(_ context.Context, items []models.QueuedRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveQueueErr != nil {
		return f.saveQueueErr
	}
	f.queue = append([]models.QueuedRequest(nil), items...)
	f.hasQueue = true
	return nil
}

func (f *fakeStore) LoadQueue(_ context.Context) ([]models.QueuedRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.hasQueue {
		return nil, nil
	}
	return append([]models.QueuedRequest(nil), f.queue...), nil
}

func (f *fakeStore) SaveCart(_ context.Context, cart json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cart = cart
	return nil
}

func (f *fakeStore) LoadCart(_ context.Context) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cart == nil {
		return nil, store.ErrNotFound
	}
	return f.cart, nil
}

func (f *fakeStore) SaveSession(_ context.Context, session models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = &session
	return nil
}

func (f *fakeStore) LoadSession(_ context.Context) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return models.Session{}, store.ErrNotFound
	}
	return *f.session, nil
}

func (f *fakeStore) Close() error { return nil }

// recordingSink collects dispatched events and signals arrival.
type recordingSink struct {
	mu     sync.Mutex
	events []models.OrderEvent
}

func (r *recordingSink) Dispatch(_ context.Context, events []models.OrderEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *recordingSink) snapshot() []models.OrderEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.OrderEvent(nil), r.events...)
}
