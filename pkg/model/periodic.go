package model

import "github.com/rbftrace/rbftrace/pkg/rtime"

// PeriodicTask is the classic (P, J, O, WCET) model: a task released every
// Period, with up to Jitter release-time variance around an Offset, whose
// jobs never take longer than WCET to execute.
type PeriodicTask struct {
	Period rtime.Time
	Offset rtime.Time
	Jitter rtime.Time
	WCET   rtime.Time
}

// NewPeriodicTask builds a PeriodicTask.
func NewPeriodicTask(period, jitter, offset, wcet rtime.Time) PeriodicTask {
	return PeriodicTask{Period: period, Jitter: jitter, Offset: offset, WCET: wcet}
}

// PeriodicSelfSuspendingTask generalizes PeriodicTask to tasks that suspend
// partway through their execution: each job runs as an alternating sequence
// of up to len(WCET) computation segments and len(WCET)-1 suspension
// intervals. Segmented marks whether the m segments were told apart during
// extraction or folded into a single worst case (Segmented == false leaves
// WCET and SS empty; only TotalWCET and TotalWCSS are set).
type PeriodicSelfSuspendingTask struct {
	Period     rtime.Time
	TotalWCET  rtime.Time
	TotalWCSS  rtime.Time
	WCET       []rtime.Time // m segments
	SS         []rtime.Time // m-1 suspension intervals
	Segmented  bool
}

// ComputationSegments returns how many distinct execution segments (m) this
// task's job model has.
func (t PeriodicSelfSuspendingTask) ComputationSegments() int {
	return len(t.WCET)
}
