package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fixedSize int

func (f fixedSize) Len() int { return int(f) }

func TestObserveCycle(t *testing.T) {
	beforeCycles := testutil.ToFloat64(cycles)
	beforeObs := testutil.ToFloat64(observations)

	ObserveCycle(3)
	ObserveCycle(0)

	if got := testutil.ToFloat64(cycles) - beforeCycles; got != 2 {
		t.Errorf("cycles: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(observations) - beforeObs; got != 3 {
		t.Errorf("observations: got %v, want 3", got)
	}
}

func TestUpdateCache(t *testing.T) {
	UpdateCache(fixedSize(7), 2)

	if got := testutil.ToFloat64(visible); got != 2 {
		t.Errorf("visible: got %v", got)
	}
	if got := testutil.ToFloat64(tracked); got != 7 {
		t.Errorf("tracked: got %v", got)
	}

	UpdateCache(nil, 1)
	if got := testutil.ToFloat64(tracked); got != 7 {
		t.Errorf("nil sizer should leave tracked alone, got %v", got)
	}
}

func TestStateGauges(t *testing.T) {
	SetRegionInside("all-beacons", true)
	if got := testutil.ToFloat64(regionInside.WithLabelValues("all-beacons")); got != 1 {
		t.Errorf("region inside: got %v", got)
	}
	SetRegionInside("all-beacons", false)
	if got := testutil.ToFloat64(regionInside.WithLabelValues("all-beacons")); got != 0 {
		t.Errorf("region outside: got %v", got)
	}

	SetAlarmActive(true)
	if got := testutil.ToFloat64(alarmActive); got != 1 {
		t.Errorf("alarm: got %v", got)
	}
	SetAlarmActive(false)
}

func TestHandler(t *testing.T) {
	ObserveCycle(1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "beacon_detection_cycles_total") {
		t.Errorf("metrics output missing cycle counter:\n%s", body)
	}
}
