// Package adapter provides the transport layer for the campus marketplace
// REST API.
//
// The primary abstraction is [OrderAPI], which decouples the sync engine from
// the HTTP specifics. The shipped implementation ([NewHTTPOrderAPI]) is built
// on resty; it attaches the bearer token to every authenticated request, the
// CSRF token to every mutating request, and maps transport and status errors
// to the sentinel values in errors.go so callers can use [errors.Is]
// (in particular [ErrUnavailable], which routes a failed mutation into the
// offline queue).
package adapter

import (
	"context"
	"encoding/json"

	"github.com/mrodrigc/campuseats-client/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/order_api_mock.go -package=mock

// OrderAction is a vendor/buyer lifecycle action applied to an order. The
// value doubles as the final path segment of the corresponding endpoint.
type OrderAction string

const (
	ActionAccept  OrderAction = "aceptar"
	ActionReady   OrderAction = "listo"
	ActionDeliver OrderAction = "entregar"
	ActionCancel  OrderAction = "cancelar"
)

// Reporter receives the raw outcome of every API round trip. The connectivity
// monitor implements it; raw signals feed its debounced state machine and are
// never acted on directly.
type Reporter interface {
	ReportSuccess()
	ReportFailure()
}

// OrderAPI is the transport-agnostic surface of the marketplace API consumed
// by the sync engine.
type OrderAPI interface {
	// SetToken stores the bearer token attached to all subsequent
	// authenticated requests.
	SetToken(token string)

	// Token returns the currently stored bearer token, or "" when the
	// client is not authenticated yet.
	Token() string

	// Login authenticates against the API, stores the returned bearer token
	// via SetToken and returns the session with the user id parsed from the
	// token's subject claim.
	Login(ctx context.Context, creds models.Credentials) (models.Session, error)

	// MyOrders fetches the buyer feed ("mis pedidos").
	MyOrders(ctx context.Context) ([]models.Order, error)

	// StoreOrders fetches the vendor feed (the store's active orders).
	StoreOrders(ctx context.Context) ([]models.Order, error)

	// CreateOrder places a new order. Returns the authoritative order as
	// confirmed by the server.
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (models.Order, error)

	// AdvanceOrder applies a lifecycle action (accept/ready/deliver/cancel)
	// to an order. Returns ErrUnavailable (wrapped) when the request never
	// reached the server, so the caller can defer it.
	AdvanceOrder(ctx context.Context, orderID int64, action OrderAction) error

	// Do replays an arbitrary queued request. Method and url are stored
	// verbatim in the queue, so the replay hits the same endpoint the
	// original call would have.
	Do(ctx context.Context, method, url string, payload json.RawMessage) error
}
