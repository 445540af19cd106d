package beacon

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"
	"time"
)

var mockBeaconTemplates = []struct {
	Name      string
	CompanyID uint16
	BaseRSSI  float64
}{
	{"Keyring Tag", 0x004C, -52}, // hovers around the 0.5m alarm distance
	{"Estimote Mint", 0x015D, -68},
	{"RadBeacon Dot", 0x0118, -75},
	{"Ruuvi Tag", 0x0499, -82},
	{"Desk Beacon", 0x0059, -61},
	{"Lobby iBeacon", 0x004C, -88},
}

type mockBeacon struct {
	addr      string
	name      string
	companyID uint16
	baseRSSI  float64
	phase     float64
	amplitude float64
	active    bool
}

// MockScanner generates fake beacons for demo mode.
type MockScanner struct {
	period        time.Duration
	measuredPower float64
	pathLossExp   float64
	beacons       []mockBeacon
	rng           *rand.Rand
	running       atomic.Bool
	cancel        context.CancelFunc
}

// NewMockScanner creates a mock scanner with a fixed set of fake beacons.
func NewMockScanner(period time.Duration, measuredPower, pathLossExp float64) *MockScanner {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	beacons := make([]mockBeacon, len(mockBeaconTemplates))
	for i, tmpl := range mockBeaconTemplates {
		beacons[i] = mockBeacon{
			addr:      randomMAC(rng),
			name:      tmpl.Name,
			companyID: tmpl.CompanyID,
			baseRSSI:  tmpl.BaseRSSI,
			phase:     rng.Float64() * 2 * math.Pi,
			amplitude: 3 + rng.Float64()*6, // 3-9 dBm fluctuation
			active:    true,
		}
	}

	return &MockScanner{
		period:        period,
		measuredPower: measuredPower,
		pathLossExp:   pathLossExp,
		beacons:       beacons,
		rng:           rng,
	}
}

// Start begins the mock scanner.
func (s *MockScanner) Start(ctx context.Context, emit func(Cycle)) error {
	s.running.Store(true)

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go s.loop(ctx, emit)
	return nil
}

func (s *MockScanner) loop(ctx context.Context, emit func(Cycle)) {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	t := 0.0
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !s.running.Load() {
				return
			}
			t += s.period.Seconds()
			emit(Cycle{Beacons: s.cycle(t, now), At: now})
		}
	}
}

func (s *MockScanner) cycle(t float64, now time.Time) []Beacon {
	var out []Beacon
	for i := range s.beacons {
		d := &s.beacons[i]

		// Beacons occasionally walk away or come back
		if s.rng.Float64() < 0.02 {
			d.active = !d.active
		}
		if !d.active {
			continue
		}
		// Missed advertisements are common; smoothing hides them
		if s.rng.Float64() < 0.25 {
			continue
		}

		rssi := d.baseRSSI + d.amplitude*math.Sin(t*0.3+d.phase) + (s.rng.Float64()-0.5)*4

		out = append(out, Beacon{
			ID:           IDFromAddress(d.addr),
			Address:      d.addr,
			Name:         d.name,
			RSSI:         int16(rssi),
			Distance:     RSSIToDistance(rssi, s.measuredPower, s.pathLossExp),
			CompanyID:    d.companyID,
			Manufacturer: LookupManufacturer(d.companyID),
			LastSeen:     now,
		})
	}
	return out
}

// Stop halts the mock scanner.
func (s *MockScanner) Stop() {
	s.running.Store(false)
	if s.cancel != nil {
		s.cancel()
	}
}

func randomMAC(rng *rand.Rand) string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = byte(rng.Intn(256))
	}
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[0], b[1], b[2], b[3], b[4], b[5])
}
