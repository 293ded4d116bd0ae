package models

// OrderEventKind distinguishes a newly seen order from a status change of a
// known one.
type OrderEventKind string

const (
	OrderCreated      OrderEventKind = "created"
	OrderTransitioned OrderEventKind = "transitioned"
)

// OrderEvent is emitted by the sync cache for every order whose state differs
// from the previous snapshot. Transitions carry the prior status.
type OrderEvent struct {
	Kind       OrderEventKind
	Feed       Feed
	Order      Order
	PrevStatus OrderStatus
}
