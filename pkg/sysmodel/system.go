// Package sysmodel holds the System-level Multiplexer: the component that
// routes a multi-task event stream to one Composite Task Extractor per
// task and snapshots the result into a SystemModel.
package sysmodel

import (
	"github.com/rbftrace/rbftrace/pkg/extract"
	"github.com/rbftrace/rbftrace/pkg/model"
	"github.com/rbftrace/rbftrace/pkg/sysconf"
	"github.com/rbftrace/rbftrace/pkg/trace"
)

// System holds a mapping from task ID to its CompositeExtractor, creating
// extractors lazily as new task IDs are observed. It is not internally
// goroutine-safe: the multiplexer is the sole writer of the task →
// extractor mapping, and concurrent access from multiple producers
// requires external synchronization.
type System struct {
	params     extract.CompositeParams
	sysConf    sysconf.SysConf
	extractors map[model.TaskID]*extract.CompositeExtractor
}

// New builds an empty System bound to the given sysconf snapshot and
// composite extractor parameters.
func New(conf sysconf.SysConf, params extract.CompositeParams) *System {
	return &System{
		params:     params,
		sysConf:    conf,
		extractors: make(map[model.TaskID]*extract.CompositeExtractor),
	}
}

// PushEvent routes event to (and lazily creates) the extractor for its
// task ID.
func (s *System) PushEvent(event trace.Event) bool {
	e, ok := s.extractors[event.TaskID]
	if !ok {
		e = extract.NewCompositeExtractor(event.TaskID, s.params)
		s.extractors[event.TaskID] = e
	}
	return e.PushEvent(event)
}

// PushTrace feeds every event of a finite trace through PushEvent in order.
func (s *System) PushTrace(t *trace.Trace) {
	for _, event := range t.Events() {
		s.PushEvent(event)
	}
}

// ExtractModel snapshots every task's current composite model into a
// SystemModel.
func (s *System) ExtractModel() *model.SystemModel[model.CompositeModel] {
	sm := model.NewSystemModel[model.CompositeModel](s.sysConf)
	for id, e := range s.extractors {
		if m, ok := e.ExtractModel(); ok {
			sm.SetModel(id, m)
		}
	}
	return sm
}
