package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrodrigc/campuseats-client/internal/logger"
)

func testPolicy() PollingPolicy {
	return PollingPolicy{
		MinInterval:      10 * time.Second,
		MaxInterval:      2 * time.Minute,
		GrowthFactor:     1.5,
		IdleAfter:        5 * time.Minute,
		BackgroundFactor: 2,
	}
}

func TestAdaptivePoller_IntervalGrowsAndCaps(t *testing.T) {
	p := NewAdaptivePoller(testPolicy(), nil, logger.Nop()).(*adaptivePoller)

	prev := p.interval()
	assert.Equal(t, 10*time.Second, prev)

	for i := 0; i < 20; i++ {
		p.record(false, nil)
		next := p.interval()
		assert.GreaterOrEqual(t, next, prev, "the interval must never shrink while nothing changes")
		assert.LessOrEqual(t, next, 2*time.Minute)
		prev = next
	}
	assert.Equal(t, 2*time.Minute, prev)
}

func TestAdaptivePoller_ChangeResetsInterval(t *testing.T) {
	p := NewAdaptivePoller(testPolicy(), nil, logger.Nop()).(*adaptivePoller)

	for i := 0; i < 5; i++ {
		p.record(false, nil)
	}
	require.Greater(t, p.interval(), 10*time.Second)

	p.record(true, nil)
	assert.Equal(t, 10*time.Second, p.interval())
}

func TestAdaptivePoller_ErrorLeavesIntervalAlone(t *testing.T) {
	p := NewAdaptivePoller(testPolicy(), nil, logger.Nop()).(*adaptivePoller)

	p.record(false, nil)
	p.record(false, nil)
	before := p.interval()

	p.record(false, errors.New("connection refused"))
	assert.Equal(t, before, p.interval())
}

func TestAdaptivePoller_IdleForcesMaxInterval(t *testing.T) {
	p := NewAdaptivePoller(testPolicy(), nil, logger.Nop()).(*adaptivePoller)

	p.mu.Lock()
	p.lastActivity = time.Now().Add(-time.Hour)
	p.mu.Unlock()

	assert.Equal(t, 2*time.Minute, p.interval())

	p.RecordActivity()
	assert.Equal(t, 10*time.Second, p.interval())
}

func TestAdaptivePoller_BackgroundFeedSlowsDown(t *testing.T) {
	p := NewAdaptivePoller(testPolicy(), nil, logger.Nop()).(*adaptivePoller)

	p.SetFeedVisible(false)
	assert.Equal(t, 20*time.Second, p.interval())

	for i := 0; i < 20; i++ {
		p.record(false, nil)
	}
	assert.Equal(t, 2*time.Minute, p.interval(), "the background factor respects the cap")

	p.SetFeedVisible(true)
	p.record(true, nil)
	assert.Equal(t, 10*time.Second, p.interval())
}

func TestAdaptivePoller_BumpResetsBackoff(t *testing.T) {
	p := NewAdaptivePoller(testPolicy(), nil, logger.Nop()).(*adaptivePoller)

	for i := 0; i < 8; i++ {
		p.record(false, nil)
	}
	require.Equal(t, 2*time.Minute, p.interval())

	p.Bump()
	assert.Equal(t, 10*time.Second, p.interval())
}

func TestAdaptivePoller_StartIsIdempotent(t *testing.T) {
	policy := testPolicy()
	policy.MinInterval = 5 * time.Millisecond
	policy.MaxInterval = 5 * time.Millisecond

	var cycles atomic.Int32
	refresh := func(ctx context.Context) (bool, error) {
		cycles.Add(1)
		return false, nil
	}

	p := NewAdaptivePoller(policy, refresh, logger.Nop())
	ctx := context.Background()

	p.Start(ctx)
	p.Start(ctx)
	p.Start(ctx)

	require.Eventually(t, func() bool {
		return cycles.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	p.Stop()
	settled := cycles.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, cycles.Load(), "one Stop must end the single polling goroutine")
}

func TestAdaptivePoller_StopIsIdempotent(t *testing.T) {
	p := NewAdaptivePoller(testPolicy(), func(ctx context.Context) (bool, error) {
		return false, nil
	}, logger.Nop())

	p.Stop() // never started

	p.Start(context.Background())
	p.Stop()
	p.Stop()
}

func TestAdaptivePoller_ConcurrentStartStop(t *testing.T) {
	policy := testPolicy()
	policy.MinInterval = time.Millisecond
	policy.MaxInterval = time.Millisecond

	var cycles atomic.Int32
	refresh := func(ctx context.Context) (bool, error) {
		cycles.Add(1)
		return false, nil
	}

	p := NewAdaptivePoller(policy, refresh, logger.Nop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				p.Start(ctx)
				p.Stop()
			}
		}()
	}
	wg.Wait()

	p.Stop()
	settled := cycles.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, settled, cycles.Load(), "no goroutine may outlive its Stop")
}

func TestAdaptivePoller_HiddenPagePausesCycles(t *testing.T) {
	policy := testPolicy()
	policy.MinInterval = 5 * time.Millisecond
	policy.MaxInterval = 5 * time.Millisecond

	var cycles atomic.Int32
	refresh := func(ctx context.Context) (bool, error) {
		cycles.Add(1)
		return false, nil
	}

	p := NewAdaptivePoller(policy, refresh, logger.Nop())
	defer p.Stop()

	p.SetPageVisible(false)
	p.Start(context.Background())

	time.Sleep(60 * time.Millisecond)
	paused := cycles.Load()
	assert.LessOrEqual(t, paused, int32(1), "a hidden page must not burn poll cycles")

	p.SetPageVisible(true)
	require.Eventually(t, func() bool {
		return cycles.Load() > paused
	}, time.Second, 5*time.Millisecond, "resume must trigger an immediate refresh")
}
