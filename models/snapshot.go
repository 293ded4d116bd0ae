package models

import "time"

// Feed identifies one logical stream of orders.
type Feed string

const (
	// FeedBuyer is the buyer's own orders ("mis pedidos").
	FeedBuyer Feed = "buyer"
	// FeedVendor is the vendor dashboard's store orders.
	FeedVendor Feed = "vendor"
)

// Snapshot is the cached set of orders for one feed at a point in time.
// It is replaced atomically on every successful sync and never partially
// mutated. Fingerprint is always recomputed from Orders, never carried over.
type Snapshot struct {
	Feed        Feed      `json:"feed"`
	Orders      []Order   `json:"orders"`
	Fingerprint string    `json:"fingerprint"`
	CapturedAt  time.Time `json:"captured_at"`
}

// StatusByKey returns the order-state-by-id map used to diff two snapshots.
func (s Snapshot) StatusByKey() map[string]OrderStatus {
	m := make(map[string]OrderStatus, len(s.Orders))
	for _, o := range s.Orders {
		m[o.Key()] = o.Status
	}
	return m
}
