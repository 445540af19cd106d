package beacon

import (
	"fmt"
	"strings"
)

// Region selects the beacons that count for monitoring and ranging.
type Region struct {
	ID string

	// CompanyIDs limits the region to beacons whose manufacturer data comes
	// from one of these vendors. Empty matches every beacon.
	CompanyIDs []uint16
}

// Matches reports whether b belongs to the region.
func (r Region) Matches(b Beacon) bool {
	if len(r.CompanyIDs) == 0 {
		return true
	}
	for _, id := range r.CompanyIDs {
		if b.CompanyID == id {
			return true
		}
	}
	return false
}

// Filter returns the beacons that belong to the region.
func (r Region) Filter(beacons []Beacon) []Beacon {
	if len(r.CompanyIDs) == 0 {
		return beacons
	}
	matched := make([]Beacon, 0, len(beacons))
	for _, b := range beacons {
		if r.Matches(b) {
			matched = append(matched, b)
		}
	}
	return matched
}

func (r Region) String() string {
	if len(r.CompanyIDs) == 0 {
		return r.ID + " (any)"
	}
	ids := make([]string, len(r.CompanyIDs))
	for i, id := range r.CompanyIDs {
		ids[i] = fmt.Sprintf("0x%04X", id)
	}
	return r.ID + " (" + strings.Join(ids, ",") + ")"
}

// RegionState is the monitoring state of a region.
type RegionState int

const (
	Outside RegionState = iota
	Inside
)

func (s RegionState) String() string {
	if s == Inside {
		return "inside"
	}
	return "outside"
}
