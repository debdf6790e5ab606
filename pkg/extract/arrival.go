package extract

import "github.com/rbftrace/rbftrace/pkg/rtime"

// Arrival is one reconstructed invocation cycle of a task: its release
// instant, total cost (including any self-suspension time), and the
// self-suspension time/count observed within it.
//
// TAvgMin/TAvgMax/BufPriority are scratch fields maintained only by
// ArrivalSubset, tracking how much this arrival's average inter-arrival
// time has varied across the observations used to bound it.
type Arrival struct {
	Instant rtime.Time
	Idx     uint64
	Cost    rtime.Time
	SSTime  rtime.Time
	SSCount uint64

	TAvgMin     rtime.Time
	TAvgMax     rtime.Time
	BufPriority uint64
}

// NewArrival builds an Arrival with its priority-tracking fields
// initialized to their "never observed" extremes, matching the convention
// that the first comparison always widens the bound.
func NewArrival(instant, cost, ssTime rtime.Time, ssCount uint64) Arrival {
	return Arrival{
		Instant: instant,
		Cost:    cost,
		SSTime:  ssTime,
		SSCount: ssCount,
		TAvgMin: rtime.FromNs(^uint64(0)),
		TAvgMax: rtime.Zero,
	}
}

// HigherPriorityThan orders arrivals by descending buffer priority,
// tiebreaking toward the older observation (lower Idx) when priorities are
// equal. Sorting a slice with this order front-to-back puts the
// least-informative (evictable) arrival last.
func (a Arrival) HigherPriorityThan(other Arrival) bool {
	if a.BufPriority != other.BufPriority {
		return a.BufPriority > other.BufPriority
	}
	return a.Idx < other.Idx
}
