package models

import (
	"strconv"
	"time"
)

// OrderStatus is the server-side lifecycle state of an order. Values are the
// literal strings sent on the wire; unknown values are carried through as-is
// so a forward-compatible server change never breaks the feed.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDIENTE"
	StatusPreparing OrderStatus = "EN_PREPARACION"
	StatusReady     OrderStatus = "LISTO"
	StatusCompleted OrderStatus = "COMPLETADO"
	StatusCancelled OrderStatus = "CANCELADO"
)

// transitions is the expected status graph. Terminal states have no edges.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusCompleted},
}

// Known reports whether the status is one of the enumerated lifecycle states.
func (s OrderStatus) Known() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status is absorbing (no further transitions).
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// KnownTransition reports whether from -> to is an edge of the expected status
// graph. A false result is informational only: the transition is still applied,
// the caller merely logs it as anomalous.
func KnownTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// LineItem is one position of an order.
type LineItem struct {
	ProductID int64   `json:"productoId"`
	Name      string  `json:"nombre"`
	Quantity  int     `json:"cantidad"`
	UnitPrice float64 `json:"precioUnitario"`
}

// Order is the client's read-only copy of a server order. It is mutated only
// by replacing it with a freshly fetched value, never edited in place. The one
// exception is an optimistic insert created right after checkout: it carries a
// synthetic LocalID until the authoritative list confirms or supersedes it.
type Order struct {
	ID        int64       `json:"id"`
	Status    OrderStatus `json:"estado"`
	Total     float64     `json:"total"`
	StoreName string      `json:"nombreTienda,omitempty"`
	BuyerName string      `json:"nombreComprador,omitempty"`
	CreatedAt time.Time   `json:"fechaCreacion"`
	Items     []LineItem  `json:"detalles"`

	// LocalID is set only on optimistic inserts that have no server id yet.
	LocalID string `json:"-"`
}

// Key returns the identity used for diffing and event matching: the synthetic
// LocalID for optimistic inserts, the server id otherwise.
func (o Order) Key() string {
	if o.LocalID != "" {
		return o.LocalID
	}
	return strconv.FormatInt(o.ID, 10)
}

// Synthetic reports whether the order is an unconfirmed optimistic insert.
func (o Order) Synthetic() bool {
	return o.LocalID != ""
}
