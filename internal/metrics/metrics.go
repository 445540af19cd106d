package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	visible = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "beacon_visible",
			Help: "Beacons seen within the smoothing window",
		},
	)

	tracked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "beacon_tracked",
			Help: "Beacons held in the visibility cache, stale ones included",
		},
	)

	cycles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "beacon_detection_cycles_total",
			Help: "Ranged detection cycles received",
		},
	)

	observations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "beacon_observations_total",
			Help: "Beacon observations received across all cycles",
		},
	)

	regionInside = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "beacon_region_inside",
			Help: "1 while the monitored region is entered",
		},
		[]string{"region"},
	)

	alarmActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "beacon_alarm_active",
			Help: "1 while the proximity alarm is sounding",
		},
	)
)

func init() {
	Registry.MustRegister(visible, tracked, cycles, observations, regionInside, alarmActive)
}

// CacheSizer is implemented by the visibility cache.
type CacheSizer interface {
	Len() int
}

// ObserveCycle counts one ranged cycle of n observations.
func ObserveCycle(n int) {
	cycles.Inc()
	observations.Add(float64(n))
}

// UpdateCache gauges the visible and held beacon counts.
func UpdateCache(c CacheSizer, visibleCount int) {
	visible.Set(float64(visibleCount))
	if c != nil {
		tracked.Set(float64(c.Len()))
	}
}

// SetRegionInside records the monitoring state of a region.
func SetRegionInside(region string, inside bool) {
	regionInside.WithLabelValues(region).Set(boolToFloat(inside))
}

// SetAlarmActive records whether the alarm is sounding.
func SetAlarmActive(active bool) {
	alarmActive.Set(boolToFloat(active))
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
