package beacon

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"tinygo.org/x/bluetooth"
)

// BLEScanner scans for Bluetooth LE advertisements and groups them into
// detection cycles of one scan period each.
type BLEScanner struct {
	adapter       *bluetooth.Adapter
	period        time.Duration
	measuredPower float64
	pathLossExp   float64

	mu      sync.Mutex
	pending map[string]Beacon

	running atomic.Bool
	cancel  context.CancelFunc
}

// NewBLEScanner creates a scanner on the default adapter.
func NewBLEScanner(period time.Duration, measuredPower, pathLossExp float64) *BLEScanner {
	return &BLEScanner{
		adapter:       bluetooth.DefaultAdapter,
		period:        period,
		measuredPower: measuredPower,
		pathLossExp:   pathLossExp,
		pending:       make(map[string]Beacon),
	}
}

// Start enables the adapter and begins scanning. Cycles are emitted every
// scan period, including empty ones, so the region monitor can notice a
// beacon going quiet.
func (s *BLEScanner) Start(ctx context.Context, emit func(Cycle)) error {
	if err := s.adapter.Enable(); err != nil {
		return fmt.Errorf("failed to enable BLE adapter: %w (try running with sudo or setcap cap_net_admin+ep)", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running.Store(true)

	go func() {
		err := s.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
			if !s.running.Load() {
				return
			}
			s.observe(result)
		})
		if err != nil {
			log.WithField("component", "scanner").WithError(err).Error("BLE scan stopped")
		}
	}()

	go s.flushLoop(ctx, emit)
	return nil
}

func (s *BLEScanner) observe(result bluetooth.ScanResult) {
	addr := result.Address.String()
	b := Beacon{
		ID:       IDFromAddress(addr),
		Address:  addr,
		Name:     result.LocalName(),
		RSSI:     result.RSSI,
		Distance: RSSIToDistance(float64(result.RSSI), s.measuredPower, s.pathLossExp),
		LastSeen: time.Now(),
	}

	if mfrs := result.ManufacturerData(); len(mfrs) > 0 {
		b.CompanyID = mfrs[0].CompanyID
		b.Manufacturer = LookupManufacturer(b.CompanyID)
	}

	// Fallback: identify the beacon by its manufacturer
	if b.Name == "" && b.Manufacturer != "" && len(addr) >= 17 {
		b.Name = b.Manufacturer + " " + addr[12:] // last 2 octets e.g. "EE:FF"
	}

	s.record(b)
}

// record adds b to the current batch. A beacon heard several times in one
// scan period keeps only its latest advertisement.
func (s *BLEScanner) record(b Beacon) {
	s.mu.Lock()
	s.pending[b.ID] = b
	s.mu.Unlock()
}

func (s *BLEScanner) flushLoop(ctx context.Context, emit func(Cycle)) {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			emit(Cycle{Beacons: s.drain(), At: now})
		}
	}
}

// drain returns the beacons heard since the last call and resets the batch.
func (s *BLEScanner) drain() []Beacon {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make([]Beacon, 0, len(s.pending))
	for _, b := range s.pending {
		batch = append(batch, b)
	}
	clear(s.pending)
	return batch
}

// Stop halts the BLE scanner.
func (s *BLEScanner) Stop() {
	s.running.Store(false)
	if s.cancel != nil {
		s.cancel()
	}
	_ = s.adapter.StopScan()
}
