// Package tui renders the campus orders dashboard. It is the stand-in for the
// marketplace web page: the engine pushes snapshot and connectivity changes in
// as bubbletea messages, and the dashboard reports focus, activity and user
// actions back.
package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mrodrigc/campuseats-client/internal/adapter"
	"github.com/mrodrigc/campuseats-client/internal/logger"
	"github.com/mrodrigc/campuseats-client/internal/notify"
	"github.com/mrodrigc/campuseats-client/models"
)

var ErrUserQuit = errors.New("salió del programa")

// Engine is the surface of the sync engine the dashboard drives.
type Engine interface {
	ActiveFeed() models.Feed
	Orders(ctx context.Context, force bool) ([]models.Order, error)
	PlaceOrder(ctx context.Context, req models.CreateOrderRequest) (queued bool, err error)
	Advance(ctx context.Context, orderID int64, action adapter.OrderAction) (queued bool, err error)
	Login(ctx context.Context, creds models.Credentials) (models.Session, error)
	RestoreSession(ctx context.Context) (models.Session, error)
	RequestPermission(ctx context.Context, trigger notify.Trigger) notify.Permission
	Online() bool
	QueueDepth() int
	SetPageVisible(visible bool)
	SetFeedVisible(visible bool)
	RecordActivity()
	Refresh()
}

// TUI owns the terminal programs and doubles as the engine's rendering-side
// callbacks: toast channel, permission prompter and the snapshot/connectivity
// bridge.
type TUI struct {
	engine Engine
	role   string
	log    *logger.Logger

	mu      sync.Mutex
	program *tea.Program
}

func New(engine Engine, role string, log *logger.Logger) *TUI {
	return &TUI{engine: engine, role: role, log: log}
}

// Run drives the whole session: restore or ask for credentials, then hold the
// dashboard until the user quits.
func (t *TUI) Run(ctx context.Context) error {
	if _, err := t.engine.RestoreSession(ctx); err != nil {
		if err = t.loginFlow(ctx); err != nil {
			return err
		}
	}
	return t.dashboardLoop(ctx)
}

func (t *TUI) loginFlow(ctx context.Context) error {
	final, err := tea.NewProgram(newLoginModel(ctx, t.engine), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}

	result, ok := final.(loginModel)
	if !ok {
		return tea.ErrProgramKilled
	}
	if result.quitByUser {
		return ErrUserQuit
	}
	return nil
}

func (t *TUI) dashboardLoop(ctx context.Context) error {
	model := newDashboardModel(ctx, t.engine, t.role)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus())

	t.mu.Lock()
	t.program = program
	t.mu.Unlock()

	_, err := program.Run()

	t.mu.Lock()
	t.program = nil
	t.mu.Unlock()

	return err
}

func (t *TUI) send(msg tea.Msg) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program != nil {
		program.Send(msg)
	}
}

// Toast implements notify.Toaster.
func (t *TUI) Toast(level notify.ToastLevel, message string) {
	t.send(toastMsg{level: level, message: message})
}

// AskNotificationPermission implements notify.Prompter. It blocks the calling
// goroutine (a notify trigger, never the render loop) until the user answers
// the overlay.
func (t *TUI) AskNotificationPermission(ctx context.Context) (bool, error) {
	reply := make(chan bool, 1)
	t.send(permissionPromptMsg{reply: reply})

	select {
	case granted := <-reply:
		return granted, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// OnSnapshotChanged feeds a replaced cache snapshot into the render loop.
func (t *TUI) OnSnapshotChanged(feed models.Feed, orders []models.Order) {
	t.send(snapshotMsg{feed: feed, orders: orders})
}

// OnConnectivityChanged feeds a confirmed connectivity transition into the
// render loop.
func (t *TUI) OnConnectivityChanged(online bool) {
	t.send(connectivityMsg{online: online})
}

// OnQueueDrop surfaces a request dropped past the retry ceiling; the user
// must learn the action did not happen.
func (t *TUI) OnQueueDrop(req models.QueuedRequest, err error) {
	t.log.Warn().Str("id", req.ID).Err(err).Msg("deferred request abandoned")
	t.send(toastMsg{level: notify.ToastError, message: "Una acción pendiente no pudo completarse"})
}
