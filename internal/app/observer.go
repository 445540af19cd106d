package app

import (
	"time"

	log "github.com/sirupsen/logrus"

	"beacon-alarm.klederson.com/internal/beacon"
)

// LogObserver returns a subscriber that logs every event the manager
// publishes. Ranged batches whose first beacon is older than staleAge are
// reported as ignored.
func LogObserver(staleAge time.Duration, now func() time.Time) func(beacon.Event) {
	logger := log.WithField("component", "observer")

	return func(ev beacon.Event) {
		switch e := ev.(type) {
		case beacon.RegionStateEvent:
			logger.WithFields(log.Fields{"region": e.Region.String(), "state": e.State.String()}).
				Info("monitoring state changed")

		case beacon.RangedEvent:
			var age time.Duration
			if len(e.Beacons) > 0 {
				age = now().Sub(e.Beacons[0].LastSeen)
			}
			if age >= staleAge {
				logger.WithField("age", age).Debug("ignoring stale ranged beacons")
				return
			}
			logger.WithField("count", len(e.Beacons)).Debug("ranged beacons")
			for _, b := range e.Beacons {
				logger.WithFields(log.Fields{
					"id":       b.ID,
					"rssi":     b.RSSI,
					"distance": b.Distance,
				}).Trace("ranged beacon")
			}
		}
	}
}
