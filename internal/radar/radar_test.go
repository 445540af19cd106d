package radar

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"beacon-alarm.klederson.com/internal/beacon"
)

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{5 * math.Pi, math.Pi},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRingChar(t *testing.T) {
	tests := []struct {
		angle float64
		want  rune
	}{
		{0, '-'},
		{math.Pi / 2, '|'},
		{math.Pi / 4, '/'},
		{3 * math.Pi / 4, '\\'},
	}
	for _, tt := range tests {
		if got := RingChar(tt.angle); got != tt.want {
			t.Errorf("RingChar(%v) = %q, want %q", tt.angle, got, tt.want)
		}
	}
}

func TestBearing_Stable(t *testing.T) {
	a := Bearing("AA:BB:CC:DD:EE:01")
	if a != Bearing("AA:BB:CC:DD:EE:01") {
		t.Error("bearing changed between calls")
	}
	if a < 0 || a >= 2*math.Pi {
		t.Errorf("bearing %v out of range", a)
	}
}

func TestGrid_ScaleClampsToEdge(t *testing.T) {
	g := newGrid(41, 21)
	if got := g.scale(10, 5); got != g.radius {
		t.Errorf("scale beyond range = %v, want %v", got, g.radius)
	}
	if got := g.scale(2.5, 5); math.Abs(got-g.radius/2) > 1e-9 {
		t.Errorf("scale half range = %v, want %v", got, g.radius/2)
	}

	col, row := g.place(0, 1.234)
	if col != g.centerX || row != g.centerY {
		t.Errorf("place(0) = (%d,%d), want center", col, row)
	}
}

func TestSweep(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSweep(start)

	s.Update(start)
	if s.Angle != 0 {
		t.Errorf("angle at start = %v, want 0", s.Angle)
	}
	if got := s.Intensity(0); got != 1 {
		t.Errorf("intensity under head = %v, want 1", got)
	}
	if got := s.Intensity(math.Pi); got != 0 {
		t.Errorf("intensity opposite head = %v, want 0", got)
	}

	// 30 rpm: a quarter turn takes half a second
	s.Update(start.Add(500 * time.Millisecond))
	if math.Abs(s.Angle-math.Pi/2) > 1e-9 {
		t.Errorf("angle after 0.5s = %v, want π/2", s.Angle)
	}

	var none *Sweep
	if none.Intensity(0) != 0 {
		t.Error("nil sweep should not glow")
	}
}

func TestRender(t *testing.T) {
	beacons := []beacon.Beacon{
		{ID: "AA:BB:CC:DD:EE:01", Name: "Keys", Distance: 0.3},
		{ID: "AA:BB:CC:DD:EE:02", Name: "Bag", Distance: 3},
	}
	out := Render(40, 20, beacons, Options{Range: 5, AlarmDistance: 0.5, Selected: beacons[0].ID})

	lines := strings.Split(out, "\n")
	if len(lines) != 20 {
		t.Fatalf("rendered %d rows, want 20", len(lines))
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w != 40 {
			t.Errorf("row %d width = %d, want 40", i, w)
		}
	}
	for _, want := range []string{"@", "!", "Keys", "Bag"} {
		if !strings.Contains(out, want) {
			t.Errorf("scope missing %q", want)
		}
	}
}

func TestRender_TooSmall(t *testing.T) {
	if out := Render(5, 3, nil, Options{Range: 5}); out != "" {
		t.Errorf("expected empty scope, got %q", out)
	}
}
