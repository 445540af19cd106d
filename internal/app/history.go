package app

// DistanceRing is a circular buffer of distance samples for one beacon.
type DistanceRing struct {
	buf   []float64
	pos   int
	count int
}

// NewDistanceRing creates a ring holding at most capacity samples.
func NewDistanceRing(capacity int) *DistanceRing {
	return &DistanceRing{
		buf: make([]float64, capacity),
	}
}

// Push adds a sample, overwriting the oldest once full.
func (r *DistanceRing) Push(val float64) {
	r.buf[r.pos] = val
	r.pos = (r.pos + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Values returns the samples oldest first.
func (r *DistanceRing) Values() []float64 {
	if r.count == 0 {
		return nil
	}
	result := make([]float64, r.count)
	if r.count < len(r.buf) {
		copy(result, r.buf[:r.count])
	} else {
		n := copy(result, r.buf[r.pos:])
		copy(result[n:], r.buf[:r.pos])
	}
	return result
}

// Len returns the number of stored samples.
func (r *DistanceRing) Len() int {
	return r.count
}

// distanceHistory keeps one ring per beacon ID. Like the visibility cache it
// only grows; the number of nearby beacons is small.
type distanceHistory struct {
	size  int
	rings map[string]*DistanceRing
}

func newDistanceHistory(size int) *distanceHistory {
	return &distanceHistory{size: size, rings: make(map[string]*DistanceRing)}
}

func (h *distanceHistory) record(beacons []beaconSample) {
	for _, b := range beacons {
		ring, ok := h.rings[b.id]
		if !ok {
			ring = NewDistanceRing(h.size)
			h.rings[b.id] = ring
		}
		ring.Push(b.distance)
	}
}

func (h *distanceHistory) values(id string) []float64 {
	if ring, ok := h.rings[id]; ok {
		return ring.Values()
	}
	return nil
}

type beaconSample struct {
	id       string
	distance float64
}
