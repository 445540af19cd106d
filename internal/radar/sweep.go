package radar

import (
	"math"
	"time"

	"beacon-alarm.klederson.com/internal/config"
)

// Sweep is the rotating sweep line. Its angle is a pure function of the
// time passed to Update, which keeps rendering deterministic in tests.
type Sweep struct {
	Angle float64 // radians [0, 2π)
	start time.Time
	trail float64 // radians
}

// NewSweep creates a sweep pointing north at start.
func NewSweep(start time.Time) *Sweep {
	return &Sweep{start: start, trail: config.SweepTrailDeg * math.Pi / 180}
}

// Update moves the sweep to where it is at now.
func (s *Sweep) Update(now time.Time) {
	rps := float64(config.SweepSpeedRPM) / 60
	s.Angle = NormalizeAngle(now.Sub(s.start).Seconds() * rps * 2 * math.Pi)
}

// Intensity returns the glow [0, 1] at angle: 1 under the sweep head,
// fading linearly to 0 at the end of the trail.
func (s *Sweep) Intensity(angle float64) float64 {
	if s == nil {
		return 0
	}
	behind := NormalizeAngle(s.Angle - angle)
	if behind > s.trail {
		return 0
	}
	return 1 - behind/s.trail
}
