package tui

import (
	"github.com/mrodrigc/campuseats-client/internal/notify"
	"github.com/mrodrigc/campuseats-client/models"
)

type snapshotMsg struct {
	feed   models.Feed
	orders []models.Order
}

type connectivityMsg struct {
	online bool
}

type toastMsg struct {
	level   notify.ToastLevel
	message string
}

type clearToastMsg struct{}

// permissionPromptMsg opens the consent overlay; the answer is written to
// reply exactly once.
type permissionPromptMsg struct {
	reply chan<- bool
}

type loginResultMsg struct {
	session models.Session
	err     error
}

type ordersLoadedMsg struct {
	orders []models.Order
	err    error
}

type orderPlacedMsg struct {
	queued bool
	err    error
}

type actionDoneMsg struct {
	action string
	queued bool
	err    error
}
