// Package client wires the sync engine together: local store, API adapter,
// connectivity monitor, offline queue, per-feed caches with their pollers and
// the notification dispatcher. The dashboard talks to the engine only through
// App's methods; the engine talks back only through the attached UI callbacks.
package client
