package service

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/mrodrigc/campuseats-client/internal/logger"
)

// PollingPolicy is the canonical adaptive polling policy, shared by both
// feeds. All behavior is tunable here, nothing is hard-coded in the loop.
type PollingPolicy struct {
	// MinInterval is used right after a detected change.
	MinInterval time.Duration
	// MaxInterval is reached after repeated no-change results or inactivity.
	MaxInterval time.Duration
	// GrowthFactor multiplies the interval per consecutive no-change result.
	GrowthFactor float64
	// IdleAfter forces MaxInterval once the user has been inactive this long.
	IdleAfter time.Duration
	// BackgroundFactor slows polling while the feed is not the active view.
	BackgroundFactor float64
}

type adaptivePoller struct {
	policy  PollingPolicy
	refresh RefreshFunc
	log     *logger.Logger

	mu           sync.Mutex
	cancel       context.CancelFunc
	done         chan struct{}
	noChange     int
	lastActivity time.Time
	feedVisible  bool
	pageVisible  bool

	// kick requests an immediate cycle (visibility resume, user mutation)
	kick chan struct{}
}

// NewAdaptivePoller builds an idle poller; it ticks only after Start.
func NewAdaptivePoller(policy PollingPolicy, refresh RefreshFunc, log *logger.Logger) Poller {
	if policy.GrowthFactor < 1 {
		policy.GrowthFactor = 1
	}
	if policy.BackgroundFactor < 1 {
		policy.BackgroundFactor = 1
	}
	return &adaptivePoller{
		policy:       policy,
		refresh:      refresh,
		log:          log,
		lastActivity: time.Now(),
		feedVisible:  true,
		pageVisible:  true,
		kick:         make(chan struct{}, 1),
	}
}

// Start launches the polling goroutine. Calling Start while already running
// is a no-op: there is never more than one active timer.
func (p *adaptivePoller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	go p.run(runCtx, done)
}

// Stop cancels the polling goroutine and blocks until it has exited. Safe to
// call repeatedly, when not running, and concurrently with Start: each run
// owns its done channel, so an overlapping Start never disturbs the wait.
func (p *adaptivePoller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// run creates a fresh timer per cycle from the current policy state, so a
// policy change takes effect on the next tick without overlapping timers or
// accumulated drift.
func (p *adaptivePoller) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	timer := time.NewTimer(p.interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.kick:
		case <-timer.C:
		}

		if !p.visible() {
			// hidden page: no wasted cycles; wait for resume or shutdown
			select {
			case <-ctx.Done():
				return
			case <-p.kick:
			}
		}

		changed, err := p.refresh(ctx)
		p.record(changed, err)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(p.interval())
	}
}

func (p *adaptivePoller) record(changed bool, err error) {
	if err != nil {
		// leave the counter alone, the next tick retries
		p.log.Debug().Err(err).Msg("poll cycle failed")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if changed {
		p.noChange = 0
	} else {
		p.noChange++
	}
}

// interval derives the next delay from the policy and observed activity.
func (p *adaptivePoller) interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	d := time.Duration(float64(p.policy.MinInterval) * math.Pow(p.policy.GrowthFactor, float64(p.noChange)))
	if d > p.policy.MaxInterval {
		d = p.policy.MaxInterval
	}

	if p.policy.IdleAfter > 0 && time.Since(p.lastActivity) > p.policy.IdleAfter {
		d = p.policy.MaxInterval
	}

	if !p.feedVisible {
		d = time.Duration(float64(d) * p.policy.BackgroundFactor)
		if d > p.policy.MaxInterval {
			d = p.policy.MaxInterval
		}
	}

	if d < p.policy.MinInterval {
		d = p.policy.MinInterval
	}
	return d
}

func (p *adaptivePoller) visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pageVisible
}

func (p *adaptivePoller) SetPageVisible(visible bool) {
	p.mu.Lock()
	was := p.pageVisible
	p.pageVisible = visible
	p.mu.Unlock()

	if visible && !was {
		// resume with an immediate refresh so the display is never stale
		p.nudge()
	}
}

func (p *adaptivePoller) SetFeedVisible(visible bool) {
	p.mu.Lock()
	p.feedVisible = visible
	p.mu.Unlock()
}

func (p *adaptivePoller) RecordActivity() {
	p.mu.Lock()
	p.lastActivity = time.Now()
	p.mu.Unlock()
}

// Bump drops back to the minimum interval and triggers an immediate cycle.
func (p *adaptivePoller) Bump() {
	p.mu.Lock()
	p.noChange = 0
	p.lastActivity = time.Now()
	p.mu.Unlock()

	p.nudge()
}

func (p *adaptivePoller) nudge() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}
