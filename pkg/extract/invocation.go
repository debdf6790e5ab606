package extract

import (
	"fmt"
	"log/slog"

	"github.com/rbftrace/rbftrace/pkg/model"
	"github.com/rbftrace/rbftrace/pkg/rtime"
	"github.com/rbftrace/rbftrace/pkg/trace"
)

// ICHeuristic selects how an InvocationCycle decides a job has completed.
type ICHeuristic int

const (
	// Suspension ends a cycle at the first Deactivation: any gap before
	// the next Activation is treated as a new, independent arrival.
	Suspension ICHeuristic = iota
	// SuspensionTimeout folds a Deactivation/Activation pair back into the
	// same cycle, as a self-suspension, as long as the gap stays under
	// Timeout; an exit always ends the cycle regardless.
	SuspensionTimeout
)

// InvocationCycle is the state machine that turns a task's raw scheduling
// events into Arrivals: each call to Update folds in one event and
// optionally emits the Arrival a completed cycle represents.
type InvocationCycle struct {
	taskID model.TaskID

	activation    rtime.Time
	lastEventKind *trace.EventKind
	lastEventTime rtime.Time

	currCost   rtime.Time
	currSSTime rtime.Time
	currSSCnt  uint64

	heuristic ICHeuristic
	timeout   rtime.Time

	nextIdx uint64
}

// NewInvocationCycle builds an InvocationCycle for taskID. timeout is only
// consulted when heuristic is SuspensionTimeout.
func NewInvocationCycle(taskID model.TaskID, heuristic ICHeuristic, timeout rtime.Time) *InvocationCycle {
	return &InvocationCycle{taskID: taskID, heuristic: heuristic, timeout: timeout}
}

func (c *InvocationCycle) reset() {
	c.activation = rtime.Zero
	c.lastEventKind = nil
	c.lastEventTime = rtime.Zero
	c.currCost = rtime.Zero
	c.currSSTime = rtime.Zero
	c.currSSCnt = 0
}

func kindPtr(k trace.EventKind) *trace.EventKind { return &k }

// Update folds one event into the cycle and returns the Arrival it
// completed, if any. Only Activation, Deactivation, and Exit events can
// complete a cycle.
func (c *InvocationCycle) Update(event trace.Event) (Arrival, bool) {
	switch event.Kind {
	case trace.Activation:
		return c.onActivation(event.Instant)
	case trace.Deactivation:
		return c.onDeactivation(event.Instant)
	case trace.Preemption:
		c.onPreemption(event.Instant)
		return Arrival{}, false
	case trace.Dispatch:
		c.onDispatch(event.Instant)
		return Arrival{}, false
	case trace.Exit:
		return c.onExit(event.Instant)
	default:
		return Arrival{}, false
	}
}

func (c *InvocationCycle) newArrival(activation, cost, ssTime rtime.Time, ssCnt uint64) Arrival {
	a := NewArrival(activation, cost, ssTime, ssCnt)
	a.Idx = c.nextIdx
	c.nextIdx++
	return a
}

func (c *InvocationCycle) onActivation(instant rtime.Time) (Arrival, bool) {
	switch {
	case c.lastEventKind == nil:
		c.reset()
		c.activation = instant
		c.lastEventTime = instant
		c.lastEventKind = kindPtr(trace.Activation)
		return Arrival{}, false

	case *c.lastEventKind == trace.Deactivation:
		sinceDeactivation := instant.Sub(c.lastEventTime)
		if sinceDeactivation > c.timeout {
			activation, cost, ssTime, ssCnt := c.activation, c.currCost, c.currSSTime, c.currSSCnt
			c.reset()
			c.activation = instant
			c.lastEventTime = instant
			c.lastEventKind = kindPtr(trace.Activation)
			return c.newArrival(activation, cost, ssTime, ssCnt), true
		}
		c.currSSTime = c.currSSTime.Add(sinceDeactivation)
		c.currSSCnt++
		c.lastEventTime = instant
		c.lastEventKind = kindPtr(trace.Activation)
		return Arrival{}, false

	default:
		slog.Warn("invocation cycle desync on activation", "task_id", c.taskID, "last_event", fmt.Sprint(*c.lastEventKind))
		c.reset()
		return Arrival{}, false
	}
}

func (c *InvocationCycle) onDispatch(instant rtime.Time) {
	if c.lastEventKind == nil {
		c.reset()
		return
	}
	switch *c.lastEventKind {
	case trace.Activation, trace.Preemption:
		c.lastEventKind = kindPtr(trace.Dispatch)
		c.lastEventTime = instant
	default:
		slog.Warn("invocation cycle desync on dispatch", "task_id", c.taskID, "last_event", fmt.Sprint(*c.lastEventKind))
		c.reset()
	}
}

func (c *InvocationCycle) onPreemption(instant rtime.Time) {
	switch {
	case c.lastEventKind == nil:
		c.reset()
	case *c.lastEventKind == trace.Dispatch:
		c.currCost = c.currCost.Add(instant.Sub(c.lastEventTime))
		c.lastEventKind = kindPtr(trace.Preemption)
		c.lastEventTime = instant
	default:
		slog.Warn("invocation cycle desync on preemption", "task_id", c.taskID, "last_event", fmt.Sprint(*c.lastEventKind))
		c.reset()
	}
}

func (c *InvocationCycle) onDeactivation(instant rtime.Time) (Arrival, bool) {
	if c.lastEventKind == nil {
		c.reset()
		return Arrival{}, false
	}
	if *c.lastEventKind != trace.Dispatch {
		slog.Warn("invocation cycle desync on deactivation", "task_id", c.taskID, "last_event", fmt.Sprint(*c.lastEventKind))
		c.reset()
		return Arrival{}, false
	}

	switch c.heuristic {
	case Suspension:
		activation := c.activation
		cost := c.currCost.Add(instant.Sub(c.lastEventTime))
		c.reset()
		return c.newArrival(activation, cost, rtime.Zero, 0), true
	default: // SuspensionTimeout
		c.lastEventKind = kindPtr(trace.Deactivation)
		c.currCost = c.currCost.Add(instant.Sub(c.lastEventTime))
		c.lastEventTime = instant
		return Arrival{}, false
	}
}

func (c *InvocationCycle) onExit(instant rtime.Time) (Arrival, bool) {
	if c.lastEventKind == nil {
		c.reset()
		return Arrival{}, false
	}

	activation := c.activation
	cost := c.currCost
	if *c.lastEventKind == trace.Dispatch {
		cost = cost.Add(instant.Sub(c.lastEventTime))
	}
	ssTime, ssCnt := c.currSSTime, c.currSSCnt
	c.reset()
	return c.newArrival(activation, cost, ssTime, ssCnt), true
}
