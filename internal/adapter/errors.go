package adapter

import "errors"

var (
	// ErrUnavailable marks a request that never reached the server (transport
	// failure, timeout). Mutating calls failing with it belong in the offline
	// queue; reads failing with it are served from cache.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized is returned for HTTP 401 responses.
	ErrUnauthorized = errors.New("client unauthorized")
)
