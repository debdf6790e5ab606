package ftracebind

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rbftrace/rbftrace/pkg/model"
	"github.com/rbftrace/rbftrace/pkg/rtime"
	"github.com/rbftrace/rbftrace/pkg/trace"
)

// TextSource reads a line-oriented scheduling trace, one event per line:
//
//	<kind> <pid> <instant_ns>
//
// where <kind> is one of the single-letter tags trace.EventKind.ShortName
// produces (A/D/P/R/E). This is the plain-text sibling of the YAML format a
// real ftrace/perf bridge (in the style of trace-sched-event) would emit
// when asked to print instead of serialize; blank lines and lines starting
// with '#' are skipped.
type TextSource struct {
	sc     *bufio.Scanner
	closed bool
}

// NewTextSource wraps r, scanning it line by line.
func NewTextSource(r io.Reader) *TextSource {
	return &TextSource{sc: bufio.NewScanner(r)}
}

// Next parses and returns the next non-blank, non-comment line as an
// Event.
func (s *TextSource) Next() (trace.Event, bool, error) {
	if s.closed {
		return trace.Event{}, false, ErrClosed
	}

	for s.sc.Scan() {
		line := strings.TrimSpace(s.sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return parseTextLine(line)
	}
	s.closed = true
	if err := s.sc.Err(); err != nil {
		return trace.Event{}, false, fmt.Errorf("ftracebind: scan: %w", err)
	}
	return trace.Event{}, false, nil
}

func parseTextLine(line string) (trace.Event, bool, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return trace.Event{}, false, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}

	kind, err := parseKind(fields[0])
	if err != nil {
		return trace.Event{}, false, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}

	pid, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return trace.Event{}, false, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}

	instantNs, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return trace.Event{}, false, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}

	return trace.NewEvent(kind, model.TaskID(pid), rtime.FromNs(instantNs)), true, nil
}

func parseKind(tag string) (trace.EventKind, error) {
	if len(tag) != 1 {
		return 0, ErrMalformedLine
	}
	switch tag[0] {
	case 'A':
		return trace.Activation, nil
	case 'D':
		return trace.Deactivation, nil
	case 'P':
		return trace.Preemption, nil
	case 'R':
		return trace.Dispatch, nil
	case 'E':
		return trace.Exit, nil
	default:
		return 0, ErrMalformedLine
	}
}
