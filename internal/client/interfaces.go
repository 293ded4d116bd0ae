package client

import (
	"github.com/mrodrigc/campuseats-client/internal/notify"
	"github.com/mrodrigc/campuseats-client/models"
)

// UI is the rendering layer as seen by the engine. It carries the guaranteed
// toast channel, the permission prompter and the refresh bridge callbacks.
type UI interface {
	notify.Toaster
	notify.Prompter

	// OnSnapshotChanged delivers the full current order list of a feed
	// whenever its cache replaces the snapshot.
	OnSnapshotChanged(feed models.Feed, orders []models.Order)

	// OnConnectivityChanged delivers confirmed online/offline transitions.
	OnConnectivityChanged(online bool)

	// OnQueueDrop reports a deferred request abandoned past the retry
	// ceiling.
	OnQueueDrop(req models.QueuedRequest, err error)
}
