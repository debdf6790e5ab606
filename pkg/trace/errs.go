package trace

import (
	"errors"
	"strconv"
)

var (
	// ErrUnknownEventKind means a trace file named an event kind that
	// isn't one of Activation/Deactivation/Preemption/Dispatch/Exit.
	ErrUnknownEventKind = errors.New("trace: unknown event kind")
)

// NonMonotonicError reports that an event pushed onto a Trace is timestamped
// before the previously pushed event, which would make every downstream
// extraction algorithm's sliding-window assumptions unsound.
type NonMonotonicError struct {
	Position  int
	Previous  Event
	Offending Event
}

func (e *NonMonotonicError) Error() string {
	return "trace: event at position " + strconv.Itoa(e.Position) + " is non-monotonic: " +
		"previous instant " + e.Previous.Instant.String() +
		" > offending instant " + e.Offending.Instant.String()
}
