package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/Vicinity/internal/report"
)

var ErrTooManySessions = errors.New("too many active sessions")

// Gauge is told the session count whenever it changes.
type Gauge interface {
	SetActiveSessions(n int)
}

// Options tune a Manager.
type Options struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	// MaxSessions caps live sessions; 0 means unlimited.
	MaxSessions int
	Gauge       Gauge
}

type entry struct {
	orch     *report.Orchestrator
	lastSeen time.Time
	// inFlight counts runs holding the session; Sweep skips it while non-zero.
	inFlight int
}

// Manager keeps one Orchestrator per client session and evicts sessions
// that have been idle for longer than IdleTimeout.
type Manager struct {
	builder *report.Builder
	opts    Options
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewManager(b *report.Builder, opts Options, logger *slog.Logger) *Manager {
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	return &Manager{
		builder:  b,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*entry),
		stopCh:   make(chan struct{}),
	}
}

// Get returns the Orchestrator for id, creating it on first use.
func (m *Manager) Get(id string) (*report.Orchestrator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.getLocked(id)
	if err != nil {
		return nil, err
	}
	return e.orch, nil
}

// Acquire is Get for callers that run work against the session. The session
// is not evicted until release is called, and release counts as activity.
func (m *Manager) Acquire(id string) (*report.Orchestrator, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.getLocked(id)
	if err != nil {
		return nil, nil, err
	}
	e.inFlight++

	var once sync.Once
	release := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			e.inFlight--
			e.lastSeen = m.now()
		})
	}
	return e.orch, release, nil
}

// getLocked must be called with mu held.
func (m *Manager) getLocked(id string) (*entry, error) {
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = m.now()
		return e, nil
	}
	if m.opts.MaxSessions > 0 && len(m.sessions) >= m.opts.MaxSessions {
		return nil, ErrTooManySessions
	}
	e := &entry{orch: m.builder.New(), lastSeen: m.now()}
	m.sessions[id] = e
	m.logger.Debug("session created", "session_id", id, "active", len(m.sessions))
	m.updateGauge()
	return e, nil
}

// Lookup returns the Orchestrator for id without creating one.
func (m *Manager) Lookup(id string) (*report.Orchestrator, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = m.now()
	return e.orch, true
}

// Delete drops the session and reports whether it existed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	m.updateGauge()
	return true
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.sweepLoop(ctx)
}

func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()
}

func (m *Manager) sweepLoop(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Sweep evicts idle sessions and returns how many were removed. Sessions
// held through Acquire are never evicted.
func (m *Manager) Sweep() int {
	if m.opts.IdleTimeout <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.opts.IdleTimeout)
	evicted := 0
	for id, e := range m.sessions {
		if e.inFlight == 0 && e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		m.logger.Info("evicted idle sessions", "count", evicted, "active", len(m.sessions))
		m.updateGauge()
	}
	return evicted
}

// updateGauge must be called with mu held.
func (m *Manager) updateGauge() {
	if m.opts.Gauge != nil {
		m.opts.Gauge.SetActiveSessions(len(m.sessions))
	}
}
