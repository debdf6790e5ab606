package trace

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Trace is an ordered log of scheduling events, non-decreasing in Instant.
// Push rejects only an event timestamped before the previous one; equal
// timestamps are accepted for every pair of event kinds, not only for an
// Activation followed by a Dispatch.
type Trace struct {
	events []Event
}

// New returns an empty Trace.
func New() *Trace {
	return &Trace{}
}

// FromEvents builds a Trace from an already-ordered slice, mainly useful in
// tests. It does not re-validate monotonicity.
func FromEvents(events []Event) *Trace {
	return &Trace{events: append([]Event{}, events...)}
}

// Events returns the underlying event slice. Callers must not mutate it.
func (t *Trace) Events() []Event {
	return t.events
}

// Push appends e, rejecting it if it is timestamped before the last event
// already in the trace.
func (t *Trace) Push(e Event) error {
	if n := len(t.events); n > 0 {
		prev := t.events[n-1]
		if prev.Instant > e.Instant {
			return &NonMonotonicError{Position: n, Previous: prev, Offending: e}
		}
	}
	t.events = append(t.events, e)
	return nil
}

// LoadYAMLFile reads a sequence of events from a YAML file and assembles
// them into a Trace, validating monotonicity as it goes.
func LoadYAMLFile(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("trace: read %s: %w", path, err)
	}

	var events []Event
	if err := yaml.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("trace: parse %s: %w", path, err)
	}

	t := New()
	for _, e := range events {
		if err := t.Push(e); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// SaveYAMLFile writes the trace's events to path as YAML.
func (t *Trace) SaveYAMLFile(path string) error {
	data, err := yaml.Marshal(t.events)
	if err != nil {
		return fmt.Errorf("trace: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
