// Package trace holds the kernel scheduling event log a model extractor
// consumes: activation/dispatch/preemption/deactivation/exit events for
// every traced thread, in non-decreasing time order.
package trace

import (
	"github.com/rbftrace/rbftrace/pkg/model"
	"github.com/rbftrace/rbftrace/pkg/rtime"
)

// EventKind is the kind of scheduling transition a TraceEvent records.
type EventKind int

const (
	Activation EventKind = iota
	Deactivation
	Preemption
	Dispatch
	Exit
)

// ShortName returns the single-letter tag used in compact trace dumps.
func (k EventKind) ShortName() byte {
	switch k {
	case Activation:
		return 'A'
	case Deactivation:
		return 'D'
	case Preemption:
		return 'P'
	case Dispatch:
		return 'R'
	case Exit:
		return 'E'
	default:
		return '?'
	}
}

// MarshalYAML serializes EventKind by name, matching the on-disk trace
// format emitted by the ftrace bridge.
func (k EventKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// UnmarshalYAML parses an EventKind from its name.
func (k *EventKind) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch s {
	case "Activation":
		*k = Activation
	case "Deactivation":
		*k = Deactivation
	case "Preemption":
		*k = Preemption
	case "Dispatch":
		*k = Dispatch
	case "Exit":
		*k = Exit
	default:
		return ErrUnknownEventKind
	}
	return nil
}

func (k EventKind) String() string {
	switch k {
	case Activation:
		return "Activation"
	case Deactivation:
		return "Deactivation"
	case Preemption:
		return "Preemption"
	case Dispatch:
		return "Dispatch"
	case Exit:
		return "Exit"
	default:
		return "Unknown"
	}
}

// Event is a single scheduling transition for one task at one instant.
type Event struct {
	Kind    EventKind    `yaml:"etype"`
	TaskID  model.TaskID `yaml:"pid"`
	Instant rtime.Time   `yaml:"instant"`
}

// NewEvent builds an Event.
func NewEvent(kind EventKind, taskID model.TaskID, instant rtime.Time) Event {
	return Event{Kind: kind, TaskID: taskID, Instant: instant}
}

func Activate(taskID model.TaskID, instant rtime.Time) Event {
	return NewEvent(Activation, taskID, instant)
}

func Deactivate(taskID model.TaskID, instant rtime.Time) Event {
	return NewEvent(Deactivation, taskID, instant)
}

func Preempt(taskID model.TaskID, instant rtime.Time) Event {
	return NewEvent(Preemption, taskID, instant)
}

func DispatchEvent(taskID model.TaskID, instant rtime.Time) Event {
	return NewEvent(Dispatch, taskID, instant)
}

func ExitEvent(taskID model.TaskID, instant rtime.Time) Event {
	return NewEvent(Exit, taskID, instant)
}
