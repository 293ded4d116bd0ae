package models

import "time"

// Credentials are the login inputs for the marketplace API.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session holds the bearer token returned by the API and the user id parsed
// from its subject claim. Persisted locally so a restart can resume without
// re-authenticating.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateOrderRequest is the checkout payload for a new order.
type CreateOrderRequest struct {
	StoreID int64      `json:"tiendaId"`
	Items   []LineItem `json:"detalles"`
}
