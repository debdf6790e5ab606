package model

import (
	"sort"

	"github.com/rbftrace/rbftrace/pkg/sysconf"
)

// SystemModel collects the extracted task model of type T for every task
// seen in a trace, alongside the system configuration the trace was
// captured under.
type SystemModel[T any] struct {
	sysConf sysconf.SysConf
	models  map[TaskID]T
}

// NewSystemModel builds an empty SystemModel bound to the given configuration.
func NewSystemModel[T any](conf sysconf.SysConf) *SystemModel[T] {
	return &SystemModel[T]{
		sysConf: conf,
		models:  make(map[TaskID]T),
	}
}

// SysConf returns the system configuration the models were extracted under.
func (m *SystemModel[T]) SysConf() sysconf.SysConf { return m.sysConf }

// Model returns the task model for id, if one has been set.
func (m *SystemModel[T]) Model(id TaskID) (T, bool) {
	v, ok := m.models[id]
	return v, ok
}

// SetModel records (or replaces) the task model for id.
func (m *SystemModel[T]) SetModel(id TaskID, model T) {
	m.models[id] = model
}

// TaskIDs returns every task ID with a recorded model, in ascending order.
func (m *SystemModel[T]) TaskIDs() []TaskID {
	ids := make([]TaskID, 0, len(m.models))
	for id := range m.models {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
