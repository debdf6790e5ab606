package extract

import (
	"github.com/rbftrace/rbftrace/pkg/model"
	"github.com/rbftrace/rbftrace/pkg/rbf"
	"github.com/rbftrace/rbftrace/pkg/trace"
)

// RBFParams configures an RBFExtractor.
type RBFParams struct {
	// WindowSize bounds both the sliding arrival window used to update
	// the curve and the SparseMap's bucket count.
	WindowSize int
}

// DefaultRBFParams mirrors the window size the rest of the pipeline
// assumes when nothing else is configured.
func DefaultRBFParams() RBFParams {
	return RBFParams{WindowSize: 1000}
}

// RBFExtractor builds a task's Request-Bound Function curve directly from
// its completed jobs. Unlike the periodic and spectral extractors it never
// rejects a task: every job, however irregular its arrival pattern, folds
// cleanly into the curve.
type RBFExtractor struct {
	jobDetector *JobExtractor
	curve       *rbf.Curve
}

// NewRBFExtractor builds an RBFExtractor for taskID.
func NewRBFExtractor(taskID model.TaskID, windowSize int) *RBFExtractor {
	return &RBFExtractor{
		jobDetector: NewJobExtractor(),
		curve:       rbf.NewCurve(uint64(taskID), windowSize),
	}
}

// RBFExtractorFromParams builds an RBFExtractor from RBFParams.
func RBFExtractorFromParams(taskID model.TaskID, params RBFParams) *RBFExtractor {
	return NewRBFExtractor(taskID, params.WindowSize)
}

// IsMatching is always true: an RBF curve can represent any task, no
// matter how irregular its arrivals.
func (r *RBFExtractor) IsMatching() bool { return true }

// ExtractModel returns the curve built so far.
func (r *RBFExtractor) ExtractModel() (*rbf.Curve, bool) {
	return r.curve, true
}

// PushEvent folds one more event in and returns whether a job completed.
func (r *RBFExtractor) PushEvent(event trace.Event) bool {
	job, completed := r.jobDetector.PushEvent(event)
	if completed {
		r.curve.AddArrival(job.ArrivedAt, job.ExecutionTime)
	}
	return completed
}
