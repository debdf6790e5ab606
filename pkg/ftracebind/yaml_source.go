package ftracebind

import (
	"fmt"
	"os"

	"github.com/rbftrace/rbftrace/pkg/trace"
	"gopkg.in/yaml.v3"
)

// YAMLSource replays a trace previously serialized with
// trace.Trace.SaveYAMLFile (the on-disk format named by `source_path` in
// the reference CLI). The whole file is parsed up front; Next then just
// walks the resulting slice once. There is no rewind and no accessor for
// the parsed events.
type YAMLSource struct {
	events []trace.Event
	pos    int
	closed bool
}

// NewYAMLSource parses path as a YAML-encoded []trace.Event.
func NewYAMLSource(path string) (*YAMLSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ftracebind: read %s: %w", path, err)
	}

	var events []trace.Event
	if err := yaml.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("ftracebind: parse %s: %w", path, err)
	}

	return &YAMLSource{events: events}, nil
}

// Next returns the next event in file order.
func (s *YAMLSource) Next() (trace.Event, bool, error) {
	if s.pos >= len(s.events) {
		if s.closed {
			return trace.Event{}, false, ErrClosed
		}
		s.closed = true
		return trace.Event{}, false, nil
	}
	e := s.events[s.pos]
	s.pos++
	return e, true, nil
}
