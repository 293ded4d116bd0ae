package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mrodrigc/campuseats-client/internal/logger"
)

// MonitorConfig tunes the connectivity monitor.
type MonitorConfig struct {
	// Hosted enables active probe confirmation. Local deployments trust raw
	// transport outcomes directly; probes there hit local quirks and produce
	// false positives.
	Hosted bool
	// ProbeURL is the primary reachability target (the API health endpoint).
	ProbeURL string
	// FallbackProbeURL is tried when the primary probe itself errors.
	FallbackProbeURL string
	// ProbeTimeout bounds one probe request.
	ProbeTimeout time.Duration
	// Debounce delays acting on an offline determination so a momentary blip
	// never flickers the indicator.
	Debounce time.Duration
	// VerifyInterval is the periodic re-verification cadence on hosted
	// deployments. Zero disables periodic checks.
	VerifyInterval time.Duration
}

type connectivityMonitor struct {
	cfg    MonitorConfig
	client *resty.Client
	log    *logger.Logger

	mu     sync.Mutex
	online bool
	subs   []func(bool)
	cancel context.CancelFunc
	wg     sync.WaitGroup

	raw chan bool
}

// NewConnectivityMonitor builds the monitor. The initial state is online;
// subscribers are only called on confirmed transitions.
func NewConnectivityMonitor(cfg MonitorConfig, log *logger.Logger) Monitor {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 3 * time.Second
	}

	return &connectivityMonitor{
		cfg:    cfg,
		client: resty.New().SetTimeout(cfg.ProbeTimeout),
		log:    log,
		online: true,
		raw:    make(chan bool, 8),
	}
}

func (m *connectivityMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
}

func (m *connectivityMonitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

func (m *connectivityMonitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *connectivityMonitor) Subscribe(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// ReportSuccess feeds a raw "reachable" signal from a completed API call.
func (m *connectivityMonitor) ReportSuccess() {
	m.signal(true)
}

// ReportFailure feeds a raw "unreachable" signal from a failed API call.
func (m *connectivityMonitor) ReportFailure() {
	m.signal(false)
}

func (m *connectivityMonitor) signal(online bool) {
	select {
	case m.raw <- online:
	default:
		// channel full: signals are level, not edge; dropping one is harmless
	}
}

func (m *connectivityMonitor) run(ctx context.Context) {
	defer m.wg.Done()

	var tick <-chan time.Time
	if m.cfg.Hosted && m.cfg.VerifyInterval > 0 {
		t := time.NewTicker(m.cfg.VerifyInterval)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-m.raw:
			m.consider(ctx, sig)
		case <-tick:
			m.consider(ctx, m.probe(ctx))
		}
	}
}

// consider runs the confirmation pipeline for one raw signal: same-state
// signals are ignored, offline determinations are debounced, and on hosted
// deployments both directions are verified with an active probe before the
// state flips.
func (m *connectivityMonitor) consider(ctx context.Context, rawOnline bool) {
	if rawOnline == m.Online() {
		return
	}

	if rawOnline {
		if m.cfg.Hosted && !m.probe(ctx) {
			return
		}
		m.flip(true)
		return
	}

	if m.cfg.Debounce > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.cfg.Debounce):
		}
		if m.drainedOnline() {
			// a success raced in during the delay: the blip already recovered
			return
		}
	}
	if m.cfg.Hosted && m.probe(ctx) {
		// transient blip: still reachable after the delay
		return
	}
	m.flip(false)
}

// drainedOnline flushes raw signals buffered during the debounce delay and
// reports whether any of them was a success.
func (m *connectivityMonitor) drainedOnline() bool {
	recovered := false
	for {
		select {
		case sig := <-m.raw:
			if sig {
				recovered = true
			}
		default:
			return recovered
		}
	}
}

// probe performs a lightweight HEAD request against the primary target,
// falling back to the secondary one when the first errors. Any HTTP response
// counts as reachable.
func (m *connectivityMonitor) probe(ctx context.Context) bool {
	if m.cfg.ProbeURL == "" {
		return true
	}

	if _, err := m.client.R().SetContext(ctx).Head(m.cfg.ProbeURL); err == nil {
		return true
	}
	if m.cfg.FallbackProbeURL == "" {
		return false
	}
	_, err := m.client.R().SetContext(ctx).Head(m.cfg.FallbackProbeURL)
	return err == nil
}

func (m *connectivityMonitor) flip(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := make([]func(bool), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	m.log.Info().Bool("online", online).Msg("connectivity state changed")
	for _, fn := range subs {
		fn(online)
	}
}
