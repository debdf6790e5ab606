// Package report turns a SystemModel snapshot (or a sequence of them) into
// the on-disk YAML layout a rbftrace run leaves behind: one
// "<task>.periodic.yaml" / "<task>.periodic_ss.yaml" per task that matched a
// scalar model, one "<task>.rbf.yaml" per task's curve, and, in incremental
// mode, one "<task>.<model>.report.yaml" recording every sample taken
// during the run.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rbftrace/rbftrace/pkg/model"
	"github.com/rbftrace/rbftrace/pkg/rbf"
)

// OutputRBF is the on-disk shape of a task's RBF curve: its steps, in
// ascending delta order.
type OutputRBF struct {
	RBF []rbf.Point `yaml:"rbf"`
}

func newOutputRBF(c *rbf.Curve) OutputRBF {
	if c == nil {
		return OutputRBF{}
	}
	return OutputRBF{RBF: c.Steps.Points()}
}

// Output is a one-shot snapshot of every task's extracted models, ready to
// be written as the final state of an extraction run.
//
// Note: thread/task priority is deliberately not included here. It can be
// recovered from the system configuration captured alongside the trace.
type Output struct {
	ScalarModels         map[model.TaskID]*model.PeriodicTask
	SelfSuspendingModels map[model.TaskID]*model.PeriodicSelfSuspendingTask
	CurveModels          map[model.TaskID]OutputRBF
}

// FromSystemModel builds an Output from a snapshot produced by
// pkg/sysmodel.System.ExtractModel.
func FromSystemModel(sm *model.SystemModel[model.CompositeModel]) *Output {
	o := &Output{
		ScalarModels:         make(map[model.TaskID]*model.PeriodicTask),
		SelfSuspendingModels: make(map[model.TaskID]*model.PeriodicSelfSuspendingTask),
		CurveModels:          make(map[model.TaskID]OutputRBF),
	}

	for _, id := range sm.TaskIDs() {
		m, ok := sm.Model(id)
		if !ok {
			continue
		}
		if m.Periodic != nil {
			o.ScalarModels[id] = m.Periodic
		}
		if m.PeriodicSS != nil {
			o.SelfSuspendingModels[id] = m.PeriodicSS
		}
		if m.RBF != nil {
			o.CurveModels[id] = newOutputRBF(m.RBF)
		}
	}

	return o
}

// WriteYAML writes one file per matched model under outputDir, following
// the "<task_id>.<model>.yaml" naming convention. outputDir must already
// exist; every target file must not already exist.
func (o *Output) WriteYAML(outputDir string) error {
	for id, m := range o.ScalarModels {
		if err := writeYAMLFile(filepath.Join(outputDir, fmt.Sprintf("%d.periodic.yaml", id)), m); err != nil {
			return err
		}
	}
	for id, m := range o.SelfSuspendingModels {
		if err := writeYAMLFile(filepath.Join(outputDir, fmt.Sprintf("%d.periodic_ss.yaml", id)), m); err != nil {
			return err
		}
	}
	for id, m := range o.CurveModels {
		if err := writeYAMLFile(filepath.Join(outputDir, fmt.Sprintf("%d.rbf.yaml", id)), m); err != nil {
			return err
		}
	}
	return nil
}

// createNewFile opens path for writing, failing if it already exists:
// output directories are meant to be written to exactly once per run.
func createNewFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("%w: %s", ErrOutputExists, path)
	}
	return f, err
}
