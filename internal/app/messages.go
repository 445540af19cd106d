package app

import (
	"time"

	"beacon-alarm.klederson.com/internal/beacon"
	"beacon-alarm.klederson.com/internal/config"
)

// TickMsg triggers a refresh of the visible beacon list.
type TickMsg time.Time

// RangedMsg carries one ranged detection cycle into the program.
type RangedMsg beacon.RangedEvent

// RegionStateMsg carries a region entry or exit into the program.
type RegionStateMsg beacon.RegionStateEvent

// ConfigReloadedMsg delivers a config file change.
type ConfigReloadedMsg struct {
	Config *config.Config
}
