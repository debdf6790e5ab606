package model

import "github.com/rbftrace/rbftrace/pkg/rbf"

// CompositeModel is a single task's full extracted model: a scalar
// periodic model when the task fits one (either without self-suspension,
// or with it), and the RBF curve, which is present whenever the RBF
// extractor is enabled and nil otherwise. Periodic and
// PeriodicSS are never both non-nil.
type CompositeModel struct {
	Periodic   *PeriodicTask
	PeriodicSS *PeriodicSelfSuspendingTask
	RBF        *rbf.Curve
}
