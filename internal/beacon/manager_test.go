package beacon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeSource hands the emit callback back to the test.
type fakeSource struct {
	emit     func(Cycle)
	startErr error
	stopped  bool
}

func (s *fakeSource) Start(_ context.Context, emit func(Cycle)) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.emit = emit
	return nil
}

func (s *fakeSource) Stop() { s.stopped = true }

type recorder struct {
	events []Event
}

func (r *recorder) handle(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) states() []RegionState {
	var out []RegionState
	for _, ev := range r.events {
		if s, ok := ev.(RegionStateEvent); ok {
			out = append(out, s.State)
		}
	}
	return out
}

func (r *recorder) ranged() []RangedEvent {
	var out []RangedEvent
	for _, ev := range r.events {
		if s, ok := ev.(RangedEvent); ok {
			out = append(out, s)
		}
	}
	return out
}

func at(sec int) time.Time { return time.Unix(int64(sec), 0) }

func newTestManager(t *testing.T, region Region) (*Manager, *fakeSource) {
	t.Helper()
	src := &fakeSource{}
	m := NewManager(src, region, 10*time.Second)
	m.now = func() time.Time { return at(0) }
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return m, src
}

func TestManager_StartError(t *testing.T) {
	src := &fakeSource{startErr: errors.New("adapter busy")}
	m := NewManager(src, Region{ID: "r"}, time.Second)
	if err := m.Start(context.Background()); err == nil {
		t.Fatal("expected start error")
	}
}

func TestManager_RangingOnlyWhenEnabled(t *testing.T) {
	m, src := newTestManager(t, Region{ID: "all"})
	rec := &recorder{}
	sub := m.Subscribe(rec.handle)
	defer sub.Close()

	src.emit(Cycle{Beacons: []Beacon{{ID: "A"}}, At: at(1)})
	if len(rec.ranged()) != 0 {
		t.Fatalf("Expected no ranged events before StartRanging, got %d", len(rec.ranged()))
	}

	m.StartRanging()
	if !m.Ranging() {
		t.Fatal("Ranging() should be true")
	}
	src.emit(Cycle{Beacons: []Beacon{{ID: "A"}, {ID: "B"}}, At: at(2)})
	src.emit(Cycle{At: at(3)})

	got := rec.ranged()
	if len(got) != 2 {
		t.Fatalf("Expected 2 ranged events, got %d", len(got))
	}
	if len(got[0].Beacons) != 2 || len(got[1].Beacons) != 0 {
		t.Errorf("Unexpected batches: %d, %d", len(got[0].Beacons), len(got[1].Beacons))
	}
	if got[0].Region.ID != "all" {
		t.Errorf("Region: got %q", got[0].Region.ID)
	}

	m.StopRanging()
	src.emit(Cycle{Beacons: []Beacon{{ID: "A"}}, At: at(4)})
	if len(rec.ranged()) != 2 {
		t.Errorf("Expected no ranged events after StopRanging")
	}
}

func TestManager_RangingFiltersRegion(t *testing.T) {
	m, src := newTestManager(t, Region{ID: "apple", CompanyIDs: []uint16{0x004C}})
	rec := &recorder{}
	defer m.Subscribe(rec.handle).Close()

	m.StartRanging()
	src.emit(Cycle{Beacons: []Beacon{{ID: "A", CompanyID: 0x004C}, {ID: "N", CompanyID: 0x0059}}, At: at(1)})

	got := rec.ranged()
	if len(got) != 1 || len(got[0].Beacons) != 1 || got[0].Beacons[0].ID != "A" {
		t.Errorf("Expected only A ranged, got %+v", got)
	}
}

func TestManager_MonitoringTransitions(t *testing.T) {
	m, src := newTestManager(t, Region{ID: "all"})
	rec := &recorder{}
	defer m.Subscribe(rec.handle).Close()

	m.StartMonitoring()
	if want := []RegionState{Outside}; !equalStates(rec.states(), want) {
		t.Fatalf("Initial determination: got %v, want %v", rec.states(), want)
	}

	src.emit(Cycle{Beacons: []Beacon{{ID: "A"}}, At: at(1)})
	src.emit(Cycle{Beacons: []Beacon{{ID: "A"}}, At: at(2)})
	if m.State() != Inside {
		t.Fatalf("Expected inside after detection, got %v", m.State())
	}

	// Quiet, but not for a full exit period yet.
	src.emit(Cycle{At: at(5)})
	src.emit(Cycle{At: at(11)})
	if m.State() != Inside {
		t.Fatalf("Left region too early")
	}

	src.emit(Cycle{At: at(12)})
	if m.State() != Outside {
		t.Fatalf("Expected outside after exit period, got %v", m.State())
	}
	src.emit(Cycle{At: at(13)})

	want := []RegionState{Outside, Inside, Outside}
	if !equalStates(rec.states(), want) {
		t.Errorf("Transitions: got %v, want %v", rec.states(), want)
	}
}

func TestManager_MonitoringRedeterminesState(t *testing.T) {
	m, src := newTestManager(t, Region{ID: "all"})
	rec := &recorder{}
	defer m.Subscribe(rec.handle).Close()

	// Cycles arrive while monitoring is off; they still count as sightings.
	src.emit(Cycle{Beacons: []Beacon{{ID: "A"}}, At: at(0)})
	if len(rec.events) != 0 {
		t.Fatalf("Expected no events with monitoring and ranging off")
	}

	m.now = func() time.Time { return at(3) }
	m.StartMonitoring()
	if !m.Monitoring() {
		t.Fatal("Monitoring() should be true")
	}
	if got := rec.states(); !equalStates(got, []RegionState{Inside}) {
		t.Errorf("Expected inside from recent sighting, got %v", got)
	}

	m.StopMonitoring()
	m.now = func() time.Time { return at(60) }
	m.StartMonitoring()
	if got := rec.states(); !equalStates(got, []RegionState{Inside, Outside}) {
		t.Errorf("Expected outside after long silence, got %v", got)
	}
}

func TestManager_DeliversStatesInOrder(t *testing.T) {
	m, src := newTestManager(t, Region{ID: "all"})

	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var seen []RegionState
	calls := 0
	defer m.Subscribe(func(ev Event) {
		s, ok := ev.(RegionStateEvent)
		if !ok {
			return
		}
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			// A slow consumer, like Program.Send while Update is busy
			close(entered)
			<-release
		}
		mu.Lock()
		seen = append(seen, s.State)
		mu.Unlock()
	}).Close()

	monitored := make(chan struct{})
	go func() {
		m.StartMonitoring()
		close(monitored)
	}()
	<-entered

	emitted := make(chan struct{})
	go func() {
		src.emit(Cycle{Beacons: []Beacon{{ID: "A"}}, At: at(1)})
		close(emitted)
	}()

	// Give the cycle every chance to overtake the blocked determination.
	time.Sleep(50 * time.Millisecond)
	close(release)
	<-monitored
	<-emitted

	mu.Lock()
	defer mu.Unlock()
	if want := []RegionState{Outside, Inside}; !equalStates(seen, want) {
		t.Errorf("Delivery order: got %v, want %v", seen, want)
	}
	if m.State() != Inside {
		t.Errorf("State: got %v, want inside", m.State())
	}
}

func TestManager_SubscriptionClose(t *testing.T) {
	m, src := newTestManager(t, Region{ID: "all"})
	first := &recorder{}
	second := &recorder{}
	subFirst := m.Subscribe(first.handle)
	subSecond := m.Subscribe(second.handle)
	defer subSecond.Close()

	m.StartRanging()
	src.emit(Cycle{At: at(1)})

	subFirst.Close()
	subFirst.Close() // idempotent
	src.emit(Cycle{At: at(2)})

	if len(first.events) != 1 {
		t.Errorf("Closed subscription got %d events, want 1", len(first.events))
	}
	if len(second.events) != 2 {
		t.Errorf("Open subscription got %d events, want 2", len(second.events))
	}
}

func TestManager_Stop(t *testing.T) {
	m, src := newTestManager(t, Region{ID: "all"})
	m.Stop()
	if !src.stopped {
		t.Error("Stop should stop the source")
	}
}

func equalStates(got, want []RegionState) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
