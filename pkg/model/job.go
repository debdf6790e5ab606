// Package model holds the data types shared by every extraction component:
// jobs, the task models an extractor can produce, and the per-task-set
// container those models are collected into.
package model

import "github.com/rbftrace/rbftrace/pkg/rtime"

// TaskID identifies a schedulable entity (a Linux PID/TID) within a trace.
type TaskID uint64

// Job is one execution instance of a task, as reconstructed from a run of
// Activation/Dispatch/Preemption/Deactivation events.
type Job struct {
	ExecutionTime  rtime.Time
	ArrivedAt      rtime.Time
	CompletedAt    rtime.Time
	PreemptionTime rtime.Time
}
