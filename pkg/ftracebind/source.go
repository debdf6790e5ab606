// Package ftracebind is the boundary between a kernel scheduling-event
// feed and pkg/trace: it reads already-collected events (from a YAML
// dump, or from a line-oriented text trace in the style a
// `trace-cmd report`-like ftrace/perf bridge would emit) and turns them
// into trace.Event values, one at a time, for pkg/sysmodel.System to
// consume.
//
// rbftrace never talks to the kernel itself — the actual ftrace/perf
// collection step is an external collaborator, run separately (e.g. by a
// tracer binary) and handed to rbftrace as a file. EventSource is the
// contract that boundary must honor.
package ftracebind

import "github.com/rbftrace/rbftrace/pkg/trace"

// EventSource yields trace events one at a time. Next returns
// (event, true, nil) for each event, (zero, false, nil) the first time it
// is exhausted, (zero, false, ErrClosed) on any call after that, and
// (zero, false, err) on a read or parse failure.
type EventSource interface {
	Next() (trace.Event, bool, error)
}

// Drain reads every remaining event off src, in order.
func Drain(src EventSource) ([]trace.Event, error) {
	var events []trace.Event
	for {
		e, ok, err := src.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return events, nil
		}
		events = append(events, e)
	}
}
