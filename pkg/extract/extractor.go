package extract

import (
	"github.com/rbftrace/rbftrace/pkg/trace"
)

// Extractor is the common shape of every task-model extraction component:
// fold in events one at a time, ask whether the task still matches this
// model's shape, and pull out the model built so far.
type Extractor[M any] interface {
	// PushEvent folds in one event and returns true if the model could
	// have changed as a result.
	PushEvent(event trace.Event) bool
	// IsMatching reports whether the task observed so far still fits
	// this extractor's model.
	IsMatching() bool
	// ExtractModel returns the current model, if one is available.
	ExtractModel() (M, bool)
}
