package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"beacon-alarm.klederson.com/internal/beacon"
	"beacon-alarm.klederson.com/internal/config"
	"beacon-alarm.klederson.com/internal/metrics"
	"beacon-alarm.klederson.com/internal/radar"
	"beacon-alarm.klederson.com/internal/ui"
)

// Alarm is the proximity alarm driven by ranging results.
type Alarm interface {
	Start() bool
	Stop() bool
	Playing() bool
}

// Notifier shows user-visible notifications outside the terminal.
type Notifier interface {
	Notify(title, body string) error
}

// shared holds state shared between the Bubble Tea model copies and main.go.
// Because Bubble Tea uses value receivers, pointer fields ensure all copies
// see the same underlying data.
type shared struct {
	cache    *beacon.VisibilityCache
	manager  *beacon.Manager
	alarm    Alarm
	notifier Notifier
	history  *distanceHistory
	sweep    *radar.Sweep
	sub      *beacon.Subscription
	stopOnce sync.Once
}

// Options wires the model to its collaborators.
type Options struct {
	Config   *config.Config
	Cache    *beacon.VisibilityCache
	Manager  *beacon.Manager
	Alarm    Alarm
	Notifier Notifier
}

// AppModel is the root Bubble Tea model for Beacon Alarm.
type AppModel struct {
	width  int
	height int

	demoMode      bool
	adapter       string
	cursor        int
	focused       bool
	silenced      bool
	alarmDistance float64
	region        beacon.RegionState
	status        string
	dialog        *ui.Dialog

	now    func() time.Time
	shared *shared

	// Visible beacons, nearest first
	beacons []beacon.Beacon
}

// New creates a new AppModel. Ranging and monitoring start from Init.
func New(opts Options) AppModel {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	return AppModel{
		demoMode:      cfg.Demo,
		adapter:       cfg.Adapter,
		focused:       true,
		alarmDistance: cfg.Alarm.Distance,
		status:        "No beacons detected",
		now:           time.Now,
		shared: &shared{
			cache:    opts.Cache,
			manager:  opts.Manager,
			alarm:    opts.Alarm,
			notifier: opts.Notifier,
			history:  newDistanceHistory(config.HistorySize),
			sweep:    radar.NewSweep(time.Now()),
		},
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.startScanningCmd(),
		m.notifyCmd("Scanning for Beacons", "Beacon scanning is active"),
	)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	// Losing focus pauses the alarm the way backgrounding an app would.
	case tea.FocusMsg:
		m.focused = true
		m.evaluateAlarm()
		return m, nil

	case tea.BlurMsg:
		m.focused = false
		m.evaluateAlarm()
		return m, nil

	case TickMsg:
		m.shared.sweep.Update(time.Time(msg))
		if m.shared.manager.Ranging() {
			m.refresh()
		}
		return m, tickCmd()

	case RangedMsg:
		return m.handleRanged(beacon.RangedEvent(msg))

	case RegionStateMsg:
		return m.handleRegionState(beacon.RegionStateEvent(msg))

	case ConfigReloadedMsg:
		m.shared.cache.SetWindow(msg.Config.SmoothingWindow)
		m.alarmDistance = msg.Config.Alarm.Distance
		m.refresh()
		m.evaluateAlarm()
		return m, nil
	}

	return m, nil
}

func (m AppModel) handleRanged(ev beacon.RangedEvent) (tea.Model, tea.Cmd) {
	// Late delivery after ranging was switched off
	if !m.shared.manager.Ranging() {
		return m, nil
	}

	m.shared.cache.Record(ev.Beacons...)
	metrics.ObserveCycle(len(ev.Beacons))

	samples := make([]beaconSample, len(ev.Beacons))
	for i, b := range ev.Beacons {
		samples[i] = beaconSample{id: b.ID, distance: b.Distance}
	}
	m.shared.history.record(samples)

	m.refresh()
	m.status = fmt.Sprintf("Ranging enabled: %d beacon(s) detected", len(m.beacons))
	m.evaluateAlarm()
	return m, nil
}

func (m AppModel) handleRegionState(ev beacon.RegionStateEvent) (tea.Model, tea.Cmd) {
	metrics.SetRegionInside(ev.Region.ID, ev.State == beacon.Inside)

	changed := ev.State != m.region
	m.region = ev.State

	if ev.State == beacon.Outside {
		m.status = "Outside of the beacon region -- no beacons detected"
		// The next ranged cycle repopulates the list.
		m.beacons = nil
		m.cursor = 0
		m.evaluateAlarm()
		if changed {
			m.dialog = &ui.Dialog{
				Title:   "No beacons detected",
				Message: "Left the beacon region: no beacon has been seen for the exit period.",
			}
		}
		return m, nil
	}

	m.status = "Inside the beacon region."
	if !changed {
		return m, nil
	}
	m.dialog = &ui.Dialog{
		Title:   "Beacons detected",
		Message: "Entered the beacon region.",
	}
	return m, m.notifyCmd(config.AppName, "A beacon is nearby.")
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		m.Shutdown()
		return m, tea.Quit
	}

	// A dialog swallows every other key until dismissed.
	if m.dialog != nil {
		switch msg.String() {
		case "enter", "esc", " ":
			m.dialog = nil
		}
		return m, nil
	}

	switch msg.String() {
	case "r", "R":
		m.toggleRanging()

	case "m", "M":
		return m.toggleMonitoring()

	case "a", "A":
		if m.shared.alarm.Stop() {
			m.silenced = true
			metrics.SetAlarmActive(false)
		}

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.beacons)-1 {
			m.cursor++
		}

	case "home":
		m.cursor = 0

	case "end":
		if len(m.beacons) > 0 {
			m.cursor = len(m.beacons) - 1
		}
	}

	return m, nil
}

func (m *AppModel) toggleRanging() {
	mgr := m.shared.manager
	if mgr.Ranging() {
		mgr.StopRanging()
		m.status = "Ranging disabled -- no beacons detected"
		m.beacons = nil
		m.cursor = 0
		m.evaluateAlarm()
		return
	}
	mgr.StartRanging()
	m.status = "Ranging enabled -- awaiting first callback"
}

func (m AppModel) toggleMonitoring() (tea.Model, tea.Cmd) {
	mgr := m.shared.manager
	if mgr.Monitoring() {
		mgr.StopMonitoring()
		m.dialog = &ui.Dialog{
			Title:   "Beacon monitoring stopped.",
			Message: "You will no longer see dialogs when beacons start/stop being detected.",
		}
		return m, nil
	}

	m.dialog = &ui.Dialog{
		Title:   "Beacon monitoring started.",
		Message: "You will see a dialog if a beacon is detected, and another if beacons then stop being detected.",
	}
	// StartMonitoring publishes the current state, which is delivered back
	// through Program.Send, so it must not run on the Update goroutine.
	return m, func() tea.Msg {
		mgr.StartMonitoring()
		return nil
	}
}

// refresh re-reads the visible beacons from the cache.
func (m *AppModel) refresh() {
	visible := m.shared.cache.VisibleBeacons()
	beacon.SortByDistance(visible)
	m.beacons = visible

	if m.cursor >= len(m.beacons) {
		m.cursor = len(m.beacons) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	metrics.UpdateCache(m.shared.cache, len(visible))
}

// evaluateAlarm sounds the alarm while any visible beacon is farther away
// than the alarm distance. Silencing holds until that is no longer true.
func (m *AppModel) evaluateAlarm() {
	far := false
	for _, b := range m.beacons {
		if b.Distance > m.alarmDistance {
			far = true
			break
		}
	}
	if !far {
		m.silenced = false
	}

	if far && m.focused && !m.silenced && m.shared.manager.Ranging() {
		m.shared.alarm.Start()
	} else {
		m.shared.alarm.Stop()
	}
	metrics.SetAlarmActive(m.shared.alarm.Playing())
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing Beacon Alarm..."
	}

	mgr := m.shared.manager

	menuBar := ui.RenderMenuBar(m.width, m.adapter, mgr.Ranging(), mgr.Monitoring())

	bodyH := m.height - 2
	if bodyH < 8 {
		bodyH = 8
	}

	var body string
	if m.dialog != nil {
		body = ui.RenderDialog(*m.dialog, m.width, bodyH)
	} else if m.width >= config.RadarMinWidth {
		listW := int(float64(m.width) * config.RadarListRatio)
		radarW := m.width - listW
		body = ui.SideBySide(m.renderList(listW, bodyH), m.renderRadar(radarW, bodyH))
	} else {
		body = m.renderList(m.width, bodyH)
	}

	status := m.status
	if m.demoMode {
		status = "[DEMO] " + status
	}
	statusBar := ui.RenderStatusBar(m.width, ui.StatusInfo{
		Text:     status,
		Ranging:  mgr.Ranging(),
		Visible:  len(m.beacons),
		Tracked:  m.shared.cache.Len(),
		Window:   m.shared.cache.Window(),
		Alarm:    m.shared.alarm.Playing(),
		Distance: m.alarmDistance,
	})

	return ui.ComposeLayout(menuBar, body, statusBar)
}

func (m AppModel) renderList(width, height int) string {
	var history []float64
	if m.cursor < len(m.beacons) {
		history = m.shared.history.values(m.beacons[m.cursor].ID)
	}
	return ui.RenderBeaconList(m.beacons, width, height, ui.ListState{
		Cursor:        m.cursor,
		AlarmDistance: m.alarmDistance,
		History:       history,
		Now:           m.now(),
	})
}

func (m AppModel) renderRadar(width, height int) string {
	opts := radar.Options{
		Range:         config.RadarRange,
		AlarmDistance: m.alarmDistance,
		Sweep:         m.shared.sweep,
	}
	if m.cursor < len(m.beacons) {
		opts.Selected = m.beacons[m.cursor].ID
	}

	// Border, title and legend
	innerW := width - 4
	innerH := height - 4
	if innerW < 10 {
		innerW = 10
	}
	if innerH < 5 {
		innerH = 5
	}
	scope := radar.Render(innerW, innerH, m.beacons, opts)
	return ui.RenderRadarPanel(width, height, scope, radar.RenderLegend(innerW, opts))
}

// StartScanners subscribes the program to the manager and starts the
// source. Must be called before p.Run().
func (m *AppModel) StartScanners(p *tea.Program) error {
	m.shared.sub = m.shared.manager.Subscribe(func(ev beacon.Event) {
		switch e := ev.(type) {
		case beacon.RangedEvent:
			p.Send(RangedMsg(e))
		case beacon.RegionStateEvent:
			p.Send(RegionStateMsg(e))
		}
	})

	if err := m.shared.manager.Start(context.Background()); err != nil {
		m.shared.sub.Close()
		return err
	}
	return nil
}

// Shutdown releases the subscription, stops scanning and silences the
// alarm. It is safe to call more than once.
func (m AppModel) Shutdown() {
	m.shared.stopOnce.Do(func() {
		if m.shared.sub != nil {
			m.shared.sub.Close()
		}
		m.shared.manager.Stop()
		m.shared.alarm.Stop()
		metrics.SetAlarmActive(false)
		log.WithField("component", "app").Info("scanning stopped")
	})
}

func (m AppModel) startScanningCmd() tea.Cmd {
	mgr := m.shared.manager
	return func() tea.Msg {
		mgr.StartMonitoring()
		mgr.StartRanging()
		return nil
	}
}

func (m AppModel) notifyCmd(title, body string) tea.Cmd {
	n := m.shared.notifier
	if n == nil {
		return nil
	}
	return func() tea.Msg {
		_ = n.Notify(title, body)
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(config.TargetFPS), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
