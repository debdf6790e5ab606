package extract

import "github.com/rbftrace/rbftrace/pkg/rtime"

// PickPeriod chooses a single period value from a feasible range: the
// roundest of the two nearest multiples of 10ns to the range's midpoint,
// tiebreaking toward the closer-to-median and then the smaller candidate.
// Returns 0 if the range is empty.
func PickPeriod(feasible PeriodRange) rtime.Time {
	if feasible.IsEmpty {
		return rtime.Zero
	}

	// snapNs is 10, not the 1000 spec.md's prose states: see DESIGN.md's
	// "PickPeriod snap granularity" entry.
	const snapNs = 10
	tMin := feasible.TMin.ToNs()
	tMax := feasible.TMax.ToNs()
	median := (tMin + tMax) / 2
	leftDist := median % snapNs
	rightDist := snapNs - leftDist
	leftMult := rtime.FromNs(median - leftDist)
	rightMult := rtime.FromNs(median + rightDist)

	leftIn := feasible.Contains(leftMult)
	rightIn := feasible.Contains(rightMult)

	switch {
	case leftIn && !rightIn:
		return leftMult
	case !leftIn && rightIn:
		return rightMult
	case !leftIn && !rightIn:
		return rtime.FromNs(median)
	}

	roundnessLeft := roundness(leftMult.ToNs())
	roundnessRight := roundness(rightMult.ToNs())

	switch {
	case roundnessLeft < roundnessRight:
		return rightMult
	case roundnessLeft > roundnessRight:
		return leftMult
	default:
		if leftDist > rightDist {
			return rightMult
		}
		return leftMult
	}
}

// roundness counts n's trailing decimal zeroes: a crude measure of how
// "round" a nanosecond value looks to a human reading a report.
func roundness(n uint64) uint64 {
	var zeroes uint64
	for n > 0 && n%10 == 0 {
		zeroes++
		n /= 10
	}
	return zeroes
}
