package radar

import (
	"hash/fnv"
	"math"

	"beacon-alarm.klederson.com/internal/config"
)

// grid maps terminal cells to polar coordinates around the radar center.
// Angles are radians in [0, 2π) with 0 = north, increasing clockwise.
type grid struct {
	centerX int
	centerY int
	radius  float64 // in columns
}

func newGrid(width, height int) grid {
	centerX := width / 2
	centerY := height / 2
	radius := math.Min(float64(centerX-1), float64(centerY-1)/config.AspectRatio)
	if radius < 3 {
		radius = 3
	}
	return grid{centerX: centerX, centerY: centerY, radius: radius}
}

// polar returns the distance (in columns) and angle of a cell.
func (g grid) polar(col, row int) (float64, float64) {
	dx := float64(col - g.centerX)
	dy := float64(row-g.centerY) / config.AspectRatio
	return math.Hypot(dx, dy), NormalizeAngle(math.Atan2(dx, -dy))
}

// place returns the cell for a point r columns from the center at angle.
func (g grid) place(r, angle float64) (int, int) {
	col := g.centerX + int(math.Round(r*math.Sin(angle)))
	row := g.centerY - int(math.Round(r*math.Cos(angle)*config.AspectRatio))
	return col, row
}

// scale converts meters to columns; anything past maxRange sits on the edge.
func (g grid) scale(meters, maxRange float64) float64 {
	if maxRange <= 0 || meters >= maxRange {
		return g.radius
	}
	if meters < 0 {
		meters = 0
	}
	return meters / maxRange * g.radius
}

var ringChars = [8]rune{'-', '/', '|', '\\', '-', '/', '|', '\\'}

// RingChar returns the ring glyph that best follows the circle at angle.
func RingChar(angle float64) rune {
	sector := int(math.Round(NormalizeAngle(angle)/(math.Pi/4))) % 8
	return ringChars[sector]
}

// NormalizeAngle wraps an angle to [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// Bearing returns a stable pseudo bearing for a beacon ID. Ranging yields
// only a distance, so the bearing just spreads beacons around the scope.
func Bearing(id string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return float64(h.Sum32()%3600) / 3600 * 2 * math.Pi
}
