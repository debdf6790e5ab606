package rbf

import "github.com/rbftrace/rbftrace/pkg/rtime"

// SparseMap stores the non-zero steps of an RBF curve in fixed-size
// buckets keyed by delta, so lookups and insertions near the most recent
// arrivals stay cheap regardless of how wide the curve's domain grows.
// Whenever a delta no longer fits, buckets double in width: neighbouring
// buckets are merged pairwise into the lower half, the bucket count stays
// the same, and no point is dropped, so the covered domain doubles.
type SparseMap struct {
	buckets    [][]Point
	capacity   int
	bucketSize uint64
	count      uint64
}

// NewSparseMap builds an empty SparseMap with the given bucket count.
func NewSparseMap(capacity int) *SparseMap {
	return &SparseMap{
		buckets:    make([][]Point, capacity),
		capacity:   capacity,
		bucketSize: 1,
	}
}

// Add inserts p, trimming away any existing points it dominates so the
// curve remains monotone non-decreasing.
func (m *SparseMap) Add(p Point) {
	m.updateMap(p, true)
}

// Insert places p verbatim, without enforcing monotonicity. Used when
// reconstructing a curve whose points are already known to be monotone
// (e.g. merging two curves produced by Add).
func (m *SparseMap) Insert(p Point) {
	m.updateMap(p, false)
}

func (m *SparseMap) updateMap(p Point, keepMonotonicity bool) {
	for p.Delta.ToNs() >= m.bucketSize*uint64(m.capacity) {
		m.doubleBuckets()
	}

	bi := m.bucketIndexOf(p.Delta)
	b := m.buckets[bi]

	insertIdx := -1
	updated := false
	for i := len(b) - 1; i >= 0; i-- {
		if b[i].Delta == p.Delta {
			b[i].Cost = p.Cost
			insertIdx = i
			updated = true
			break
		} else if b[i].Delta < p.Delta {
			insertIdx = i + 1
			break
		}
	}
	if insertIdx == -1 {
		insertIdx = 0
	}
	if !updated {
		b = append(b, Point{})
		copy(b[insertIdx+1:], b[insertIdx:len(b)-1])
		b[insertIdx] = p
		m.count++
	}
	m.buckets[bi] = b

	if !keepMonotonicity {
		return
	}

	// Monotonicity can only be broken by a contiguous run starting right
	// after the point we just placed: walk forward, across bucket
	// boundaries if needed, dropping every point whose cost does not
	// exceed p's, until one does or buckets run out.
	cbi := bi
	start := insertIdx + 1
	for {
		bucket := m.buckets[cbi]
		origLen := len(bucket)
		j := start
		for j < origLen && bucket[j].Cost <= p.Cost {
			j++
		}
		if j > start {
			bucket = append(bucket[:start], bucket[j:]...)
			m.buckets[cbi] = bucket
		}
		if j < origLen {
			break
		}
		cbi++
		if cbi >= m.capacity {
			break
		}
		start = 0
	}
}

// Get returns the curve's value at delta: the cost of the nearest point at
// or below delta, or 0 if none exists.
func (m *SparseMap) Get(delta rtime.Time) rtime.Time {
	bi := m.bucketIndexOf(delta)
	if bi >= m.capacity {
		bi = m.capacity - 1
	}
	for {
		b := m.buckets[bi]
		for i := len(b) - 1; i >= 0; i-- {
			if b[i].Delta <= delta {
				return b[i].Cost
			}
		}
		if bi == 0 {
			return 0
		}
		bi--
	}
}

func (m *SparseMap) bucketIndexOf(delta rtime.Time) int {
	return int(delta.ToNs() / m.bucketSize)
}

func (m *SparseMap) doubleBuckets() {
	half := m.capacity / 2
	merged := make([][]Point, m.capacity)
	for i := 0; i < half; i++ {
		combined := make([]Point, 0, len(m.buckets[2*i])+len(m.buckets[2*i+1]))
		combined = append(combined, m.buckets[2*i]...)
		combined = append(combined, m.buckets[2*i+1]...)
		merged[i] = combined
	}
	m.buckets = merged
	m.bucketSize *= 2
}

// Points returns every stored point in ascending delta order.
func (m *SparseMap) Points() []Point {
	out := make([]Point, 0, m.count)
	for _, b := range m.buckets {
		out = append(out, b...)
	}
	return out
}
