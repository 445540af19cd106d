package beacon

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Event is delivered to subscribers. It is either a RangedEvent or a
// RegionStateEvent.
type Event interface {
	event()
}

// RangedEvent carries the region's beacons from one detection cycle.
type RangedEvent struct {
	Region  Region
	Beacons []Beacon
	At      time.Time
}

// RegionStateEvent reports that monitoring determined a region state.
type RegionStateEvent struct {
	Region Region
	State  RegionState
	At     time.Time
}

func (RangedEvent) event()      {}
func (RegionStateEvent) event() {}

// Manager turns detection cycles from a Source into ranging and monitoring
// events for one region.
type Manager struct {
	source     Source
	region     Region
	exitPeriod time.Duration
	now        func() time.Time

	// dispatchMu is held from state evaluation through delivery, so every
	// subscriber sees events in the order the state changed.
	dispatchMu sync.Mutex

	mu         sync.Mutex
	ranging    bool
	monitoring bool
	state      RegionState
	lastMatch  time.Time
	subs       map[uint64]func(Event)
	nextID     uint64
}

// NewManager creates a manager with ranging and monitoring stopped. The
// region is left once no matching beacon has been seen for exitPeriod.
func NewManager(source Source, region Region, exitPeriod time.Duration) *Manager {
	return &Manager{
		source:     source,
		region:     region,
		exitPeriod: exitPeriod,
		now:        time.Now,
		subs:       make(map[uint64]func(Event)),
	}
}

// Start starts the underlying source.
func (m *Manager) Start(ctx context.Context) error {
	return m.source.Start(ctx, m.handleCycle)
}

// Stop stops the underlying source. Subscriptions stay registered until
// their owners close them.
func (m *Manager) Stop() {
	m.source.Stop()
}

// Region returns the managed region.
func (m *Manager) Region() Region {
	return m.region
}

// Subscription is a registered event handler. Close releases it.
type Subscription struct {
	m    *Manager
	id   uint64
	once sync.Once
}

// Subscribe registers fn for every event published after the call. fn runs
// on the source goroutine. It may block, which holds back later events, but
// must not call StartMonitoring.
func (m *Manager) Subscribe(fn func(Event)) *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	m.subs[m.nextID] = fn
	return &Subscription{m: m, id: m.nextID}
}

// Close stops delivery to the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.m.mu.Lock()
		delete(s.m.subs, s.id)
		s.m.mu.Unlock()
	})
}

// StartRanging begins publishing a RangedEvent for every detection cycle.
func (m *Manager) StartRanging() {
	m.mu.Lock()
	m.ranging = true
	m.mu.Unlock()
}

// StopRanging stops publishing RangedEvents.
func (m *Manager) StopRanging() {
	m.mu.Lock()
	m.ranging = false
	m.mu.Unlock()
}

// Ranging reports whether ranging is active.
func (m *Manager) Ranging() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ranging
}

// StartMonitoring begins tracking region entry and exit. The current state
// is determined from recent cycles and published once immediately.
func (m *Manager) StartMonitoring() {
	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	now := m.now()

	m.mu.Lock()
	m.monitoring = true
	m.state = Outside
	if !m.lastMatch.IsZero() && now.Sub(m.lastMatch) < m.exitPeriod {
		m.state = Inside
	}
	ev := RegionStateEvent{Region: m.region, State: m.state, At: now}
	subs := m.snapshotLocked()
	m.mu.Unlock()

	dispatch(subs, ev)
}

// StopMonitoring stops region state tracking.
func (m *Manager) StopMonitoring() {
	m.mu.Lock()
	m.monitoring = false
	m.mu.Unlock()
}

// Monitoring reports whether monitoring is active.
func (m *Manager) Monitoring() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.monitoring
}

// State returns the last determined region state.
func (m *Manager) State() RegionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) handleCycle(c Cycle) {
	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	matched := m.region.Filter(c.Beacons)

	var events []Event

	m.mu.Lock()
	if len(matched) > 0 {
		m.lastMatch = c.At
	}
	if m.ranging {
		events = append(events, RangedEvent{Region: m.region, Beacons: matched, At: c.At})
	}
	if m.monitoring {
		switch {
		case len(matched) > 0 && m.state == Outside:
			m.state = Inside
			events = append(events, RegionStateEvent{Region: m.region, State: Inside, At: c.At})
		case len(matched) == 0 && m.state == Inside && c.At.Sub(m.lastMatch) >= m.exitPeriod:
			m.state = Outside
			events = append(events, RegionStateEvent{Region: m.region, State: Outside, At: c.At})
		}
	}
	subs := m.snapshotLocked()
	m.mu.Unlock()

	for _, ev := range events {
		dispatch(subs, ev)
	}
}

// snapshotLocked returns the handlers in subscription order. m.mu must be held.
func (m *Manager) snapshotLocked() []func(Event) {
	ids := make([]uint64, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fns := make([]func(Event), len(ids))
	for i, id := range ids {
		fns[i] = m.subs[id]
	}
	return fns
}

func dispatch(subs []func(Event), ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}
