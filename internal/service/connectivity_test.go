package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrodrigc/campuseats-client/internal/logger"
)

// transitionLog records confirmed connectivity transitions.
type transitionLog struct {
	mu     sync.Mutex
	states []bool
}

func (l *transitionLog) record(online bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, online)
}

func (l *transitionLog) snapshot() []bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]bool(nil), l.states...)
}

func TestConnectivityMonitor_OfflineAfterDebounce(t *testing.T) {
	m := NewConnectivityMonitor(MonitorConfig{Debounce: 20 * time.Millisecond}, logger.Nop())
	transitions := &transitionLog{}
	m.Subscribe(transitions.record)

	m.Start(context.Background())
	defer m.Stop()

	require.True(t, m.Online(), "the monitor starts online")

	m.ReportFailure()

	require.Eventually(t, func() bool {
		return !m.Online()
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []bool{false}, transitions.snapshot())

	m.ReportSuccess()
	require.Eventually(t, func() bool {
		return m.Online()
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []bool{false, true}, transitions.snapshot())
}

func TestConnectivityMonitor_BlipDoesNotFlicker(t *testing.T) {
	m := NewConnectivityMonitor(MonitorConfig{Debounce: 50 * time.Millisecond}, logger.Nop())
	transitions := &transitionLog{}
	m.Subscribe(transitions.record)

	m.Start(context.Background())
	defer m.Stop()

	// a failure immediately followed by a success: one dropped packet, not an
	// outage
	m.ReportFailure()
	m.ReportSuccess()

	time.Sleep(150 * time.Millisecond)
	assert.True(t, m.Online())
	assert.Empty(t, transitions.snapshot(), "subscribers must only see confirmed transitions")
}

func TestConnectivityMonitor_SameStateSignalsIgnored(t *testing.T) {
	m := NewConnectivityMonitor(MonitorConfig{Debounce: time.Millisecond}, logger.Nop())
	transitions := &transitionLog{}
	m.Subscribe(transitions.record)

	m.Start(context.Background())
	defer m.Stop()

	m.ReportSuccess()
	m.ReportSuccess()

	time.Sleep(50 * time.Millisecond)
	assert.True(t, m.Online())
	assert.Empty(t, transitions.snapshot())
}

func TestConnectivityMonitor_HostedProbeConfirmsRecovery(t *testing.T) {
	var reachable bool
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ok := reachable
		mu.Unlock()
		if !ok {
			panic(http.ErrAbortHandler)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	m := NewConnectivityMonitor(MonitorConfig{
		Hosted:       true,
		ProbeURL:     srv.URL,
		ProbeTimeout: time.Second,
		Debounce:     5 * time.Millisecond,
	}, logger.Nop())

	m.Start(context.Background())
	defer m.Stop()

	m.ReportFailure()
	require.Eventually(t, func() bool {
		return !m.Online()
	}, time.Second, 5*time.Millisecond)

	// the raw signal claims recovery but the probe still fails
	m.ReportSuccess()
	time.Sleep(100 * time.Millisecond)
	assert.False(t, m.Online(), "an online flip on hosted deployments needs probe confirmation")

	mu.Lock()
	reachable = true
	mu.Unlock()

	m.ReportSuccess()
	require.Eventually(t, func() bool {
		return m.Online()
	}, time.Second, 5*time.Millisecond)
}

func TestConnectivityMonitor_ProbeFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	m := NewConnectivityMonitor(MonitorConfig{
		Hosted:           true,
		ProbeURL:         "http://127.0.0.1:1", // nothing listens here
		FallbackProbeURL: srv.URL,
		ProbeTimeout:     time.Second,
	}, logger.Nop()).(*connectivityMonitor)

	assert.True(t, m.probe(context.Background()))
}

func TestConnectivityMonitor_StartStopIdempotent(t *testing.T) {
	m := NewConnectivityMonitor(MonitorConfig{}, logger.Nop())

	m.Stop() // never started

	ctx := context.Background()
	m.Start(ctx)
	m.Start(ctx)
	m.Stop()
	m.Stop()
}
