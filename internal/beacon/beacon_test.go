package beacon

import (
	"math"
	"testing"
)

func TestRSSIToDistance(t *testing.T) {
	tests := []struct {
		rssi float64
		want float64
	}{
		{-59, 1.0},
		{-84, 10.0},
		{-34, 0.1},
		{0, 0.1},
		{10, 0.1},
	}
	for _, tt := range tests {
		got := RSSIToDistance(tt.rssi, -59, 2.5)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("RSSIToDistance(%v) = %v, want %v", tt.rssi, got, tt.want)
		}
	}
}

func TestSortByDistance(t *testing.T) {
	beacons := []Beacon{
		{ID: "far", Distance: 8},
		{ID: "b-tie", Distance: 2},
		{ID: "near", Distance: 0.3},
		{ID: "a-tie", Distance: 2},
	}
	SortByDistance(beacons)

	want := []string{"near", "a-tie", "b-tie", "far"}
	for i, id := range want {
		if beacons[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, beacons[i].ID, id)
		}
	}
}

func TestIDFromAddress(t *testing.T) {
	if got := IDFromAddress(" aa:bb:cc:dd:ee:ff "); got != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("IDFromAddress: got %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	b := Beacon{}
	if b.DisplayName() != "[unnamed]" {
		t.Errorf("empty name: got %q", b.DisplayName())
	}
	b.Name = "Desk"
	if b.DisplayName() != "Desk" {
		t.Errorf("named: got %q", b.DisplayName())
	}
}

func TestLookupManufacturer(t *testing.T) {
	if got := LookupManufacturer(0x004C); got != "Apple" {
		t.Errorf("0x004C: got %q", got)
	}
	if got := LookupManufacturer(0xFFFF); got != "" {
		t.Errorf("unknown id: got %q", got)
	}
}

func TestRegion_Matches(t *testing.T) {
	apple := Beacon{ID: "A", CompanyID: 0x004C}
	nordic := Beacon{ID: "N", CompanyID: 0x0059}
	none := Beacon{ID: "X"}

	all := Region{ID: "all-beacons"}
	for _, b := range []Beacon{apple, nordic, none} {
		if !all.Matches(b) {
			t.Errorf("all-beacons should match %s", b.ID)
		}
	}

	onlyApple := Region{ID: "apple", CompanyIDs: []uint16{0x004C}}
	if !onlyApple.Matches(apple) {
		t.Error("apple region should match apple beacon")
	}
	if onlyApple.Matches(nordic) || onlyApple.Matches(none) {
		t.Error("apple region should not match other beacons")
	}

	got := onlyApple.Filter([]Beacon{apple, nordic, none})
	if len(got) != 1 || got[0].ID != "A" {
		t.Errorf("Filter: got %v", got)
	}
}

func TestRegion_String(t *testing.T) {
	if got := (Region{ID: "all-beacons"}).String(); got != "all-beacons (any)" {
		t.Errorf("got %q", got)
	}
	if got := (Region{ID: "r", CompanyIDs: []uint16{0x4C, 0x59}}).String(); got != "r (0x004C,0x0059)" {
		t.Errorf("got %q", got)
	}
}

func TestRegionState_String(t *testing.T) {
	if Inside.String() != "inside" || Outside.String() != "outside" {
		t.Errorf("got %q / %q", Inside, Outside)
	}
}
