// Package store persists the client's durable state between runs: the
// last-known snapshot per feed, the offline request queue, the cart and the
// session. Everything lives in one SQLite table keyed by namespaced strings;
// every write touches exactly one key so unrelated state is never clobbered.
package store

import (
	"context"
	"encoding/json"

	"github.com/mrodrigc/campuseats-client/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/local_store_mock.go -package=mock

// LocalStore is the durable client storage consumed by the sync engine.
//
// Snapshot and cart reads honor the configured expiry: values stored longer
// ago than the expiry window behave as missing. The offline queue and the
// session never expire, pending writes must survive arbitrary downtime.
type LocalStore interface {
	SaveSnapshot(ctx context.Context, snap models.Snapshot) error
	LoadSnapshot(ctx context.Context, feed models.Feed) (models.Snapshot, error)

	SaveQueue(ctx context.Context, items []models.QueuedRequest) error
	LoadQueue(ctx context.Context) ([]models.QueuedRequest, error)

	SaveCart(ctx context.Context, cart json.RawMessage) error
	LoadCart(ctx context.Context) (json.RawMessage, error)

	SaveSession(ctx context.Context, session models.Session) error
	LoadSession(ctx context.Context) (models.Session, error)

	Close() error
}
