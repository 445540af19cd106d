package beacon

import (
	"context"
	"time"
)

// Cycle is one detection cycle: every beacon observed during a scan period.
// Beacons may be empty when nothing was heard.
type Cycle struct {
	Beacons []Beacon
	At      time.Time
}

// Source produces detection cycles. Start must return once scanning is
// running; emit is then called from the source's own goroutine until Stop
// is called or ctx is cancelled.
type Source interface {
	Start(ctx context.Context, emit func(Cycle)) error
	Stop()
}
