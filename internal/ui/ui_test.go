package ui

import (
	"strings"
	"testing"
	"time"

	"beacon-alarm.klederson.com/internal/beacon"
	"github.com/charmbracelet/lipgloss"
)

func testBeacons(now time.Time) []beacon.Beacon {
	return []beacon.Beacon{
		{ID: "AA:BB:CC:DD:EE:01", Name: "Keyring Tag", Manufacturer: "Apple", RSSI: -50, Distance: 0.44, LastSeen: now},
		{ID: "AA:BB:CC:DD:EE:02", RSSI: -80, Distance: 6.31, CompanyID: 0x1234, LastSeen: now.Add(-3 * time.Second)},
	}
}

func TestRenderBeaconList_Entries(t *testing.T) {
	now := time.Unix(100, 0)
	out := RenderBeaconList(testBeacons(now), 60, 30, ListState{Cursor: 0, AlarmDistance: 0.5, Now: now})

	for _, want := range []string{
		"BEACONS [2]",
		"Keyring Tag",
		"[unnamed]",
		"AA:BB:CC:DD:EE:02",
		"rssi: -80dBm",
		"est. distance: 6.31m",
		"0x1234",
		"3s ago",
		"Signal",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("list missing %q:\n%s", want, out)
		}
	}
	if got := lipgloss.Height(out); got != 30 {
		t.Errorf("height: got %d, want 30", got)
	}
}

func TestRenderBeaconList_Empty(t *testing.T) {
	out := RenderBeaconList(nil, 40, 12, ListState{Cursor: 0, AlarmDistance: 0.5})

	if !strings.Contains(out, "BEACONS [0]") || !strings.Contains(out, "--") {
		t.Errorf("empty list:\n%s", out)
	}
	if strings.Contains(out, "Signal") {
		t.Error("empty list should have no signal footer")
	}
}

func TestRenderBeaconList_ScrollsToCursor(t *testing.T) {
	now := time.Unix(100, 0)
	var beacons []beacon.Beacon
	for i := 0; i < 20; i++ {
		beacons = append(beacons, beacon.Beacon{ID: string(rune('A'+i)) + "-id", Distance: float64(i), LastSeen: now})
	}

	out := RenderBeaconList(beacons, 50, 20, ListState{Cursor: 15, AlarmDistance: 100, Now: now})
	if !strings.Contains(out, "P-id") {
		t.Errorf("cursor entry not in view:\n%s", out)
	}
	if strings.Contains(out, "A-id") {
		t.Errorf("first entry should have scrolled away:\n%s", out)
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := renderSparkline(nil, 10); got != "" {
		t.Errorf("empty: got %q", got)
	}
	if got := renderSparkline([]float64{1, 2, 3, 4, 5}, 10); got != "_.-~^" {
		t.Errorf("ramp: got %q", got)
	}
	if got := renderSparkline([]float64{1, 2, 3, 4, 5}, 2); len(got) != 2 {
		t.Errorf("width clamp: got %q", got)
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{200 * time.Millisecond, "now"},
		{4 * time.Second, "4s ago"},
		{2 * time.Minute, "2m ago"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.d); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestRenderDialog(t *testing.T) {
	out := RenderDialog(Dialog{Title: "Beacons detected", Message: "Entered the beacon region."}, 80, 20)

	if !strings.Contains(out, "Beacons detected") || !strings.Contains(out, "Entered the beacon region.") {
		t.Errorf("dialog:\n%s", out)
	}
	if got := lipgloss.Height(out); got != 20 {
		t.Errorf("dialog height: got %d, want 20", got)
	}
}

func TestRenderMenuBar(t *testing.T) {
	out := RenderMenuBar(120, "hci0", true, false)
	for _, want := range []string{"BEACON-ALARM", "Stop ranging", "Start monitoring", "Adapter: hci0"} {
		if !strings.Contains(out, want) {
			t.Errorf("menu bar missing %q: %s", want, out)
		}
	}
}

func TestRenderStatusBar(t *testing.T) {
	out := RenderStatusBar(140, StatusInfo{
		Text:     "Ranging enabled: 2 beacon(s) detected",
		Ranging:  true,
		Visible:  2,
		Tracked:  3,
		Window:   10 * time.Second,
		Alarm:    true,
		Distance: 0.5,
	})
	for _, want := range []string{"[RANGING]", "2 beacon(s) detected", "Tracked: 3", "Window: 10s", "ALARM"} {
		if !strings.Contains(out, want) {
			t.Errorf("status bar missing %q: %s", want, out)
		}
	}
}

func TestRenderRadarPanel(t *testing.T) {
	out := RenderRadarPanel(30, 10, "scope", "legend")

	for _, want := range []string{"PROXIMITY", "scope", "legend"} {
		if !strings.Contains(out, want) {
			t.Errorf("panel missing %q:\n%s", want, out)
		}
	}
	if got := lipgloss.Height(out); got != 10 {
		t.Errorf("height: got %d, want 10", got)
	}
}

func TestSideBySide(t *testing.T) {
	out := SideBySide("left\nleft", "right")
	if got := lipgloss.Width(out); got != len("left")+len("right") {
		t.Errorf("width: got %d", got)
	}
	if got := lipgloss.Height(out); got != 2 {
		t.Errorf("height: got %d, want 2", got)
	}
}
