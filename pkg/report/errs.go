package report

import "errors"

// ErrOutputExists means a target output file already existed: an output
// directory may only ever be written to once, so a stale or reused
// directory is treated as an error rather than silently overwritten.
var ErrOutputExists = errors.New("report: output file already exists")
