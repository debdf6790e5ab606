package extract

import (
	"math"
	"sort"

	"github.com/rbftrace/rbftrace/pkg/model"
	"github.com/rbftrace/rbftrace/pkg/rtime"
)

// PeriodRange is a closed [TMin, TMax] bound on a task's feasible period,
// or the empty range if no period can reconcile the observations seen so
// far.
type PeriodRange struct {
	TMin    rtime.Time
	TMax    rtime.Time
	IsEmpty bool
}

// NewPeriodRange builds a non-empty [tMin, tMax] range.
func NewPeriodRange(tMin, tMax rtime.Time) PeriodRange {
	return PeriodRange{TMin: tMin, TMax: tMax}
}

// DefaultPeriodRange is the unconstrained-but-marked-empty starting point:
// [1ns, maxUint64-1], with IsEmpty true until a first observation narrows it.
func DefaultPeriodRange() PeriodRange {
	return PeriodRange{
		TMin:    rtime.FromNs(1),
		TMax:    rtime.FromNs(^uint64(0) - 1),
		IsEmpty: true,
	}
}

// Intersect returns the overlap of the two ranges, and whether one exists.
func (r PeriodRange) Intersect(other PeriodRange) (PeriodRange, bool) {
	if other.TMin > r.TMax || r.TMin > other.TMax {
		return PeriodRange{}, false
	}
	return NewPeriodRange(r.TMin.Max(other.TMin), r.TMax.Min(other.TMax)), true
}

// Contains reports whether num falls within a non-empty range.
func (r PeriodRange) Contains(num rtime.Time) bool {
	if r.IsEmpty {
		return false
	}
	return r.TMin <= num && num <= r.TMax
}

// ArrivalSubset retains only the BufSize most "relevant" arrivals from a
// task's full arrival sequence: the ones whose average inter-arrival time,
// measured against every other retained arrival, has varied the most — the
// observations most likely to invalidate a previously inferred period.
type ArrivalSubset struct {
	TaskID         model.TaskID
	Arrivals       []Arrival
	BufSize        int
	lastArrival    *Arrival
	MinInterarrival rtime.Time
	WCET           rtime.Time
	TotObservations uint64

	TInterval PeriodRange

	// JitterBound bounds how much a single arrival's release can vary
	// from its ideal periodic instant; it widens the admissible period
	// window when converting a pairwise gap into a period estimate.
	JitterBound rtime.Time
}

// NewArrivalSubset builds an empty ArrivalSubset.
func NewArrivalSubset(taskID model.TaskID, bufSize int, jitterBound rtime.Time) *ArrivalSubset {
	return &ArrivalSubset{
		TaskID:      taskID,
		Arrivals:    make([]Arrival, 0, bufSize),
		BufSize:     bufSize,
		TInterval:   DefaultPeriodRange(),
		JitterBound: jitterBound,
	}
}

// AddArrival folds in one more arrival and returns the updated feasible
// period range, or false if the new observation proves no period is
// feasible (the estimated pairwise ranges no longer all intersect).
func (s *ArrivalSubset) AddArrival(newArrival Arrival) (PeriodRange, bool) {
	newArrival.Idx = s.TotObservations
	s.TotObservations++

	s.WCET = s.WCET.Max(newArrival.Cost)

	if s.lastArrival != nil {
		gap := newArrival.Instant.Sub(s.lastArrival.Instant)
		if s.MinInterarrival.IsZero() {
			s.MinInterarrival = gap
		} else {
			s.MinInterarrival = s.MinInterarrival.Min(gap)
		}
	}

	for i := range s.Arrivals {
		arr := &s.Arrivals[i]
		l := float64(newArrival.Idx - arr.Idx)
		tAvg := float64(newArrival.Instant.Sub(arr.Instant).ToNs()) / l
		errBound := float64(s.JitterBound.ToNs()) / l
		tMin := rtime.FromNs(uint64(math.Ceil(math.Max(tAvg-errBound, 1.0))))
		tMax := rtime.FromNs(uint64(math.Floor(tAvg + errBound)))

		candidate := NewPeriodRange(tMin, tMax)
		intersection, ok := s.TInterval.Intersect(candidate)
		if !ok {
			s.TInterval.IsEmpty = true
			return s.TInterval, false
		}
		intersection.IsEmpty = false
		s.TInterval = intersection

		tAvgFloor := rtime.FromNs(uint64(math.Floor(tAvg)))
		arr.TAvgMin = tAvgFloor.Min(arr.TAvgMin)
		arr.TAvgMax = tAvgFloor.Max(arr.TAvgMax)
		newArrival.TAvgMin = tAvgFloor.Min(newArrival.TAvgMin)
		newArrival.TAvgMax = tAvgFloor.Max(newArrival.TAvgMax)
		arr.BufPriority = arr.TAvgMax.Sub(arr.TAvgMin).ToNs()
		newArrival.BufPriority = newArrival.TAvgMax.Sub(newArrival.TAvgMin).ToNs()
	}

	sort.SliceStable(s.Arrivals, func(i, j int) bool {
		return s.Arrivals[i].HigherPriorityThan(s.Arrivals[j])
	})

	if len(s.Arrivals) >= s.BufSize {
		lowest := s.Arrivals[len(s.Arrivals)-1]
		s.Arrivals = s.Arrivals[:len(s.Arrivals)-1]
		if newArrival.BufPriority > lowest.BufPriority {
			s.Arrivals = append(s.Arrivals, newArrival)
		} else {
			s.Arrivals = append(s.Arrivals, lowest)
		}
	} else {
		s.Arrivals = append(s.Arrivals, newArrival)
	}

	s.lastArrival = &newArrival
	return s.TInterval, true
}
