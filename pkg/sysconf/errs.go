package sysconf

import "errors"

var (
	// ErrEmptyAffinityMask means a target real-time thread has no CPUs in
	// its affinity mask, making the multiprocessor layout unclassifiable.
	ErrEmptyAffinityMask = errors.New("sysconf: thread has empty affinity mask")

	// ErrNoTargetThreads means no real-time threads were found to probe.
	ErrNoTargetThreads = errors.New("sysconf: no real-time threads found")

	// ErrReadProcStat means /proc/<pid>/stat could not be parsed for a
	// candidate thread.
	ErrReadProcStat = errors.New("sysconf: malformed /proc/<pid>/stat")
)
