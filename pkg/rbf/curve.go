package rbf

import "github.com/rbftrace/rbftrace/pkg/rtime"

type arrival struct {
	t    rtime.Time
	cost rtime.Time
}

// Curve is the Request-Bound Function for a single task: the minimum
// distance over which a total cost of c could be observed, built
// incrementally from a stream of (arrival time, cost) pairs.
type Curve struct {
	lastArrivals []arrival
	windowSize   int
	Steps        *SparseMap
	WCET         rtime.Time
	TaskID       uint64
	Priority     int
}

// NewCurve builds an empty curve with windowSize bounding both the sliding
// arrival window and the SparseMap's bucket count.
func NewCurve(taskID uint64, windowSize int) *Curve {
	steps := NewSparseMap(windowSize)
	steps.Add(NewPoint(0, 0))
	return &Curve{
		lastArrivals: make([]arrival, 0, windowSize+1),
		windowSize:   windowSize,
		Steps:        steps,
		TaskID:       taskID,
	}
}

// AddArrival folds one more (instant, cost) observation into the curve.
// instant must be monotonically non-decreasing across calls.
func (c *Curve) AddArrival(instant, cost rtime.Time) {
	c.lastArrivals = append(c.lastArrivals, arrival{t: instant, cost: cost})

	var observedTotal rtime.Time
	for i := len(c.lastArrivals) - 1; i >= 0; i-- {
		a := c.lastArrivals[i]
		observedGap := instant.Sub(a.t).Add(rtime.FromNs(1))
		observedTotal = observedTotal.Add(a.cost)

		if observedTotal > c.Get(observedGap) {
			c.Steps.Add(NewPoint(observedGap, observedTotal))
		}
	}

	if len(c.lastArrivals) > c.windowSize {
		c.lastArrivals = c.lastArrivals[1:]
	}

	c.WCET = c.WCET.Max(cost)
}

// AddArrivals folds a batch of (instant, cost) pairs in order.
func (c *Curve) AddArrivals(arrivals [][2]rtime.Time) {
	for _, a := range arrivals {
		c.AddArrival(a[0], a[1])
	}
}

// Get returns the curve's value at delta.
func (c *Curve) Get(delta rtime.Time) rtime.Time {
	return c.Steps.Get(delta)
}

// Sum merges other's demand into c, in place, producing the RBF of the two
// tasks' combined demand under the same priority level.
func (c *Curve) Sum(other *Curve) {
	p1 := c.Steps.Points()
	p2 := other.Steps.Points()

	var lastCost1, lastCost2 rtime.Time
	i, j := 0, 0

	for i < len(p1) && j < len(p2) {
		a, b := p1[i], p2[j]
		switch {
		case a.Delta == b.Delta:
			c.Steps.Insert(NewPoint(a.Delta, a.Cost.Add(b.Cost)))
			lastCost1 = a.Cost
			lastCost2 = b.Cost
			i++
			j++
		case a.Delta < b.Delta:
			c.Steps.Insert(NewPoint(a.Delta, a.Cost.Add(lastCost2)))
			lastCost1 = a.Cost
			i++
		default:
			c.Steps.Insert(NewPoint(b.Delta, b.Cost.Add(lastCost1)))
			lastCost2 = b.Cost
			j++
		}
	}

	if i < len(p1) {
		c.Steps.Insert(NewPoint(p1[i].Delta, p1[i].Cost.Add(lastCost2)))
		lastCost1 = p1[i].Cost
		i++
	}
	if j < len(p2) {
		c.Steps.Insert(NewPoint(p2[j].Delta, p2[j].Cost.Add(lastCost1)))
		lastCost2 = p2[j].Cost
		j++
	}
	for ; i < len(p1); i++ {
		c.Steps.Insert(NewPoint(p1[i].Delta, p1[i].Cost.Add(lastCost2)))
	}
	for ; j < len(p2); j++ {
		c.Steps.Insert(NewPoint(p2[j].Delta, p2[j].Cost.Add(lastCost1)))
	}
}

// FromArrivals builds a Curve directly from a trace of (time, cost) pairs,
// mainly useful in tests.
func FromArrivals(arrivals [][2]rtime.Time) *Curve {
	c := NewCurve(1, 1000)
	c.AddArrivals(arrivals)
	return c
}
