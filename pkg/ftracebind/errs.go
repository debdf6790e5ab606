package ftracebind

import "errors"

var (
	// ErrMalformedLine means a text-format trace line didn't split into
	// the expected whitespace-separated <kind> <pid> <instant_ns> fields.
	ErrMalformedLine = errors.New("ftracebind: malformed trace line")

	// ErrClosed means Next was called again after the source was
	// exhausted or closed.
	ErrClosed = errors.New("ftracebind: source closed")
)
