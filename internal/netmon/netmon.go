// Package netmon reports online/offline transitions to the sync engine
// by polling the server's health endpoint.
package netmon

import (
	"sync"
	"time"

	"github.com/existcore/focal/internal/logger"
)

// Prober answers whether the server is currently reachable.
type Prober interface {
	Ping() bool
}

// Monitor polls a Prober and notifies subscribers on state changes.
type Monitor struct {
	prober   Prober
	interval time.Duration

	mu     sync.Mutex
	online bool
	subs   []func(online bool)
	stopCh chan struct{}
	once   sync.Once
}

// New creates a monitor with an initial synchronous probe so callers
// see a real state immediately.
func New(prober Prober, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		prober:   prober,
		interval: interval,
		online:   prober.Ping(),
		stopCh:   make(chan struct{}),
	}
}

// Online returns the last observed connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers a callback invoked on every online/offline
// transition. Callbacks run on the monitor's goroutine and must not
// block.
func (m *Monitor) Subscribe(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// Start begins background polling.
func (m *Monitor) Start() {
	go m.pollLoop()
}

// Stop halts polling.
func (m *Monitor) Stop() {
	m.once.Do(func() { close(m.stopCh) })
}

func (m *Monitor) pollLoop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.probe()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) probe() {
	online := m.prober.Ping()

	m.mu.Lock()
	changed := online != m.online
	m.online = online
	subs := make([]func(bool), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	if !changed {
		return
	}

	if online {
		logger.Info("Connection restored")
	} else {
		logger.Info("Connection lost, operating offline")
	}

	for _, fn := range subs {
		fn(online)
	}
}
