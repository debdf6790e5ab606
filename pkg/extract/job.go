package extract

import (
	"github.com/rbftrace/rbftrace/pkg/model"
	"github.com/rbftrace/rbftrace/pkg/rtime"
	"github.com/rbftrace/rbftrace/pkg/trace"
)

// JobExtractor reconstructs completed Jobs from a stream of trace events
// belonging to a single task: an Activation opens a job, a Deactivation
// closes it, and Preemption/Dispatch pairs in between are folded into the
// job's preemption time.
type JobExtractor struct {
	lastEvent      *trace.Event
	lastActivation *trace.Event
	preemptionTime rtime.Time
}

// NewJobExtractor returns an empty JobExtractor.
func NewJobExtractor() *JobExtractor {
	return &JobExtractor{}
}

// PushEvent folds one more event into the extractor's state. It returns the
// completed Job and true if this event was the Deactivation that closed it.
func (j *JobExtractor) PushEvent(event trace.Event) (model.Job, bool) {
	if event.Kind == trace.Activation {
		j.preemptionTime = rtime.Zero
		e := event
		j.lastActivation = &e
	}

	if event.Kind == trace.Deactivation && j.lastActivation != nil {
		job := model.Job{
			ExecutionTime:  event.Instant.Sub(j.lastActivation.Instant).Sub(j.preemptionTime),
			ArrivedAt:      j.lastActivation.Instant,
			CompletedAt:    event.Instant,
			PreemptionTime: j.preemptionTime,
		}
		e := event
		j.lastEvent = &e
		return job, true
	}

	if event.Kind == trace.Dispatch && j.lastEvent != nil && j.lastEvent.Kind == trace.Preemption {
		j.preemptionTime = j.preemptionTime.Add(event.Instant.Sub(j.lastEvent.Instant))
	}

	e := event
	j.lastEvent = &e
	return model.Job{}, false
}

// LastEventWasJobCompletion reports whether the most recently pushed event
// was a Deactivation.
func (j *JobExtractor) LastEventWasJobCompletion() bool {
	return j.lastEvent != nil && j.lastEvent.Kind == trace.Deactivation
}
