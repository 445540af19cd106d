package beacon

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Beacon is one observation of a nearby Bluetooth LE beacon.
type Beacon struct {
	ID           string // Stable key, derived from the advertising address
	Address      string
	Name         string
	RSSI         int16   // dBm
	Distance     float64 // Estimated distance in meters
	CompanyID    uint16  // First advertised manufacturer, zero if none
	Manufacturer string
	LastSeen     time.Time
}

// IDFromAddress normalizes an advertising address into a beacon ID so the
// same device always maps to the same cache entry.
func IDFromAddress(addr string) string {
	return strings.ToUpper(strings.TrimSpace(addr))
}

// DisplayName returns the beacon name or "[unnamed]" if empty.
func (b *Beacon) DisplayName() string {
	if b.Name == "" {
		return "[unnamed]"
	}
	return b.Name
}

// Age reports how long ago the beacon was last seen.
func (b *Beacon) Age(now time.Time) time.Duration {
	return now.Sub(b.LastSeen)
}

// SortByDistance orders beacons nearest first. Ties keep ID order so the
// list does not jump around between frames.
func SortByDistance(beacons []Beacon) {
	sort.Slice(beacons, func(i, j int) bool {
		if beacons[i].Distance == beacons[j].Distance {
			return beacons[i].ID < beacons[j].ID
		}
		return beacons[i].Distance < beacons[j].Distance
	})
}

// RSSIToDistance estimates distance from RSSI using the log-distance path loss model.
// Formula: d = 10^((measuredPower - rssi) / (10 * n))
func RSSIToDistance(rssi, measuredPower, pathLossExp float64) float64 {
	if rssi >= 0 {
		return 0.1
	}
	d := math.Pow(10, (measuredPower-rssi)/(10*pathLossExp))
	if d < 0.1 {
		return 0.1
	}
	return d
}
