package report

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/rbftrace/rbftrace/pkg/model"
)

// matchedModel wraps an optionally-absent sample for YAML serialization: a
// matched model serializes as itself; an unmatched one serializes as the
// literal string "Not matched", so a human skimming a report file can see
// at a glance where the extractor lost (or never gained) a match.
type matchedModel[T any] struct {
	v *T
}

func (m matchedModel[T]) MarshalYAML() (any, error) {
	if m.v == nil {
		return "Not matched", nil
	}
	return *m.v, nil
}

type reportEntry[T any] struct {
	SampleCount int             `yaml:"sample_count"`
	Model       matchedModel[T] `yaml:"model"`
}

// Report accumulates one scalar-model sample per task at each step of an
// incremental extraction run, keyed by the arrival count at which the
// sample was taken.
type Report[T any] struct {
	suffix  string
	entries map[model.TaskID][]reportEntry[T]
}

// NewReport builds an empty Report. suffix names the model kind embedded
// in each output filename, e.g. "periodic" or "periodic_ss".
func NewReport[T any](suffix string) *Report[T] {
	return &Report[T]{suffix: suffix, entries: make(map[model.TaskID][]reportEntry[T])}
}

// PushSample records one task's current (possibly nil, meaning unmatched)
// model at the given arrival count.
func (r *Report[T]) PushSample(id model.TaskID, arrivalCount int, m *T) {
	r.entries[id] = append(r.entries[id], reportEntry[T]{SampleCount: arrivalCount, Model: matchedModel[T]{v: m}})
}

// WriteYAML writes one "<task_id>.<suffix>.report.yaml" file per task with
// at least one recorded sample.
func (r *Report[T]) WriteYAML(outputDir string) error {
	ids := make([]model.TaskID, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		path := filepath.Join(outputDir, fmt.Sprintf("%d.%s.report.yaml", id, r.suffix))
		if err := writeYAMLFile(path, r.entries[id]); err != nil {
			return err
		}
	}
	return nil
}
