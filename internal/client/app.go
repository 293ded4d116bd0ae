package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/mrodrigc/campuseats-client/internal/adapter"
	"github.com/mrodrigc/campuseats-client/internal/config"
	"github.com/mrodrigc/campuseats-client/internal/logger"
	"github.com/mrodrigc/campuseats-client/internal/notify"
	"github.com/mrodrigc/campuseats-client/internal/service"
	"github.com/mrodrigc/campuseats-client/internal/store"
	"github.com/mrodrigc/campuseats-client/internal/workers"
	"github.com/mrodrigc/campuseats-client/models"
)

// App owns every engine component and their shared lifecycle. Construction
// wires them; Attach hands over the rendering callbacks; Start/Stop bound the
// background work.
type App struct {
	cfg *config.Config
	log *logger.Logger

	localStore store.LocalStore
	api        adapter.OrderAPI
	monitor    service.Monitor
	queue      service.Queue
	caches     map[models.Feed]service.SyncCache
	poller     service.Poller
	group      *workers.Group

	runCtx context.Context

	mu         sync.Mutex
	ui         UI
	dispatcher *notify.Dispatcher
	session    models.Session
}

// New builds the full engine for the configured role. ctx bounds the
// background goroutines started later by Start.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	monitor := service.NewConnectivityMonitor(service.MonitorConfig{
		Hosted:           cfg.Hosted(),
		ProbeURL:         probeURL(cfg),
		FallbackProbeURL: cfg.API.FallbackProbeURL,
		ProbeTimeout:     cfg.API.ProbeTimeout,
		Debounce:         cfg.Sync.OfflineDebounce,
		VerifyInterval:   cfg.Sync.VerifyInterval,
	}, log.Child())

	api := adapter.NewHTTPOrderAPI(adapter.HTTPClientConfig{
		BaseURL:   cfg.API.BaseURL,
		CSRFToken: cfg.API.CSRFToken,
		Timeout:   cfg.API.RequestTimeout,
	}, monitor)

	return newApp(ctx, cfg, log, api, store.New(db, cfg.Storage.KeyPrefix, cfg.Storage.Expiry), monitor), nil
}

// newApp wires the engine over already-built leaf dependencies.
func newApp(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	api adapter.OrderAPI,
	localStore store.LocalStore,
	monitor service.Monitor,
) *App {
	a := &App{
		cfg:        cfg,
		log:        log,
		api:        api,
		localStore: localStore,
		monitor:    monitor,
		caches:     make(map[models.Feed]service.SyncCache),
		runCtx:     ctx,
	}

	a.queue = service.NewOfflineQueue(ctx, a.localStore, a.replay, cfg.Sync.QueueRetryLimit, a.reportDrop, log.Child())

	cacheCfg := service.SyncCacheConfig{
		TTL:             cfg.SnapshotTTL(),
		ReconcileWindow: cfg.Sync.ReconcileWindow,
	}
	fetchers := map[models.Feed]service.FetchFunc{
		models.FeedBuyer:  a.api.MyOrders,
		models.FeedVendor: a.api.StoreOrders,
	}
	for feed, fetch := range fetchers {
		c := cacheCfg
		c.Feed = feed
		a.caches[feed] = service.NewSyncCache(ctx, c, fetch, a.localStore, a, a.forwardSnapshot, log.Child())
	}

	// only the active feed polls; the other cache stays a passive store the
	// way an unopened page would
	a.poller = service.NewAdaptivePoller(service.PollingPolicy{
		MinInterval:      cfg.Sync.MinInterval,
		MaxInterval:      cfg.Sync.MaxInterval,
		GrowthFactor:     cfg.Sync.GrowthFactor,
		IdleAfter:        cfg.Sync.IdleAfter,
		BackgroundFactor: cfg.Sync.BackgroundFactor,
	}, a.activeCache().Refresh, log.Child())

	a.monitor.Subscribe(a.onConnectivity)
	a.group = workers.NewGroup(a.monitor, a.poller)

	return a
}

// Attach hands the engine its rendering callbacks and resolves the
// notification channels. Must be called before Start.
func (a *App) Attach(ui UI) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ui = ui
	a.dispatcher = notify.NewDispatcher(
		ui,
		notify.NewDesktopChannel(),
		notify.NewBellSound(a.cfg.Notify.MuteSound),
		notify.NewVibrator(),
		ui,
		a.cfg.Notify.Gap,
		a.log.Child(),
	)
}

// Start launches the connectivity monitor and the active feed's poller.
func (a *App) Start() {
	a.group.Start(a.runCtx)
}

// Stop shuts the background workers down and closes the local store.
func (a *App) Stop() {
	a.group.Stop()
	if err := a.localStore.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close local store")
	}
}

// ActiveFeed is the feed the configured role watches.
func (a *App) ActiveFeed() models.Feed {
	if a.cfg.App.Role == config.RoleVendor {
		return models.FeedVendor
	}
	return models.FeedBuyer
}

func (a *App) activeCache() service.SyncCache {
	return a.caches[a.ActiveFeed()]
}

// Orders returns the active feed's current order list, from cache when fresh.
func (a *App) Orders(ctx context.Context, force bool) ([]models.Order, error) {
	return a.activeCache().Get(ctx, force)
}

// PlaceOrder runs the checkout. When the server is unreachable the request is
// deferred into the offline queue and an optimistic order keeps the feed
// honest until the replay confirms it.
func (a *App) PlaceOrder(ctx context.Context, req models.CreateOrderRequest) (queued bool, err error) {
	order, err := a.api.CreateOrder(ctx, req)
	if err == nil {
		a.caches[models.FeedBuyer].InsertPending(order)
		a.poller.Bump()
		return false, nil
	}
	if !errors.Is(err, adapter.ErrUnavailable) {
		return false, err
	}

	payload, merr := json.Marshal(req)
	if merr != nil {
		return false, fmt.Errorf("encode deferred order: %w", merr)
	}
	a.queue.Enqueue(ctx, "POST", "/api/pedidos", payload)

	var total float64
	for _, item := range req.Items {
		total += float64(item.Quantity) * item.UnitPrice
	}
	a.caches[models.FeedBuyer].InsertPending(models.Order{
		Status: models.StatusPending,
		Total:  total,
		Items:  req.Items,
	})
	return true, nil
}

// Advance applies a lifecycle action to an order, deferring it when the
// server is unreachable.
func (a *App) Advance(ctx context.Context, orderID int64, action adapter.OrderAction) (queued bool, err error) {
	err = a.api.AdvanceOrder(ctx, orderID, action)
	if err == nil {
		a.poller.Bump()
		return false, nil
	}
	if !errors.Is(err, adapter.ErrUnavailable) {
		return false, err
	}

	url := "/api/vendedor/pedidos/" + strconv.FormatInt(orderID, 10) + "/" + string(action)
	a.queue.Enqueue(ctx, "POST", url, nil)
	return true, nil
}

// Login authenticates and persists the session for the next start.
func (a *App) Login(ctx context.Context, creds models.Credentials) (models.Session, error) {
	session, err := a.api.Login(ctx, creds)
	if err != nil {
		return models.Session{}, err
	}

	a.mu.Lock()
	a.session = session
	a.mu.Unlock()

	if err := a.localStore.SaveSession(ctx, session); err != nil {
		a.log.Warn().Err(err).Msg("persist session failed")
	}
	return session, nil
}

// RestoreSession resumes a persisted session, if one survives.
func (a *App) RestoreSession(ctx context.Context) (models.Session, error) {
	session, err := a.localStore.LoadSession(ctx)
	if err != nil {
		return models.Session{}, err
	}

	a.api.SetToken(session.Token)
	a.mu.Lock()
	a.session = session
	a.mu.Unlock()
	return session, nil
}

// Session returns the current authenticated session, zero when logged out.
func (a *App) Session() models.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// RequestPermission forwards a sanctioned consent trigger to the dispatcher.
func (a *App) RequestPermission(ctx context.Context, trigger notify.Trigger) notify.Permission {
	a.mu.Lock()
	d := a.dispatcher
	a.mu.Unlock()

	if d == nil {
		return notify.PermissionDefault
	}
	return d.RequestPermission(ctx, trigger)
}

func (a *App) Online() bool { return a.monitor.Online() }

func (a *App) QueueDepth() int { return a.queue.Depth() }

func (a *App) SetPageVisible(visible bool) { a.poller.SetPageVisible(visible) }

func (a *App) SetFeedVisible(visible bool) { a.poller.SetFeedVisible(visible) }

func (a *App) RecordActivity() { a.poller.RecordActivity() }

// Refresh forces an immediate poll cycle.
func (a *App) Refresh() { a.poller.Bump() }

// SaveCart and LoadCart are opaque passthroughs: the cart belongs to the
// checkout page, the engine only keeps it durable.
func (a *App) SaveCart(ctx context.Context, cart json.RawMessage) error {
	return a.localStore.SaveCart(ctx, cart)
}

func (a *App) LoadCart(ctx context.Context) (json.RawMessage, error) {
	return a.localStore.LoadCart(ctx)
}

// Dispatch implements service.EventSink by forwarding to the notification
// dispatcher once a UI is attached. Events raised before that are dropped;
// nothing polls until Start anyway.
func (a *App) Dispatch(ctx context.Context, events []models.OrderEvent) {
	a.mu.Lock()
	d := a.dispatcher
	a.mu.Unlock()

	if d != nil {
		d.Dispatch(ctx, events)
	}
}

func (a *App) forwardSnapshot(feed models.Feed, orders []models.Order) {
	a.mu.Lock()
	ui := a.ui
	a.mu.Unlock()

	if ui != nil {
		ui.OnSnapshotChanged(feed, orders)
	}
}

// onConnectivity reacts to confirmed transitions: back online means replay
// the deferred writes and refresh immediately.
func (a *App) onConnectivity(online bool) {
	if online {
		go a.queue.Drain(a.runCtx)
		a.poller.Bump()
	}

	a.mu.Lock()
	ui := a.ui
	a.mu.Unlock()

	if ui != nil {
		ui.OnConnectivityChanged(online)
	}
}

// replay executes one queued request against the live API.
func (a *App) replay(ctx context.Context, req models.QueuedRequest) error {
	return a.api.Do(ctx, req.Method, req.URL, req.Payload)
}

func (a *App) reportDrop(req models.QueuedRequest, err error) {
	a.mu.Lock()
	ui := a.ui
	a.mu.Unlock()

	if ui != nil {
		ui.OnQueueDrop(req, err)
	}
}

func probeURL(cfg *config.Config) string {
	if cfg.API.ProbeURL != "" {
		return cfg.API.ProbeURL
	}
	return cfg.API.BaseURL + "/api/health"
}
