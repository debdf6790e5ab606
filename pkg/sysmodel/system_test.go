package sysmodel

import (
	"testing"

	"github.com/rbftrace/rbftrace/pkg/extract"
	"github.com/rbftrace/rbftrace/pkg/model"
	"github.com/rbftrace/rbftrace/pkg/rtime"
	"github.com/rbftrace/rbftrace/pkg/sysconf"
	"github.com/rbftrace/rbftrace/pkg/trace"
	"github.com/stretchr/testify/assert"
)

func TestSystemRoutesByTaskID(t *testing.T) {
	s := New(sysconf.Default(), extract.DefaultCompositeParams())

	events := []trace.Event{
		trace.Activate(1, rtime.FromMs(5.0)), trace.DispatchEvent(1, rtime.FromMs(5.0)), trace.Deactivate(1, rtime.FromMs(7.0)),
		trace.Activate(2, rtime.FromMs(5.0)), trace.DispatchEvent(2, rtime.FromMs(5.0)), trace.Deactivate(2, rtime.FromMs(6.0)),
		trace.Activate(1, rtime.FromMs(15.0)), trace.DispatchEvent(1, rtime.FromMs(15.0)), trace.Deactivate(1, rtime.FromMs(17.0)),
		trace.Activate(2, rtime.FromMs(15.0)), trace.DispatchEvent(2, rtime.FromMs(15.0)), trace.Deactivate(2, rtime.FromMs(16.0)),
	}

	tr := trace.FromEvents(events)
	s.PushTrace(tr)

	sm := s.ExtractModel()
	assert.ElementsMatch(t, []model.TaskID{1, 2}, sm.TaskIDs())

	m1, ok := sm.Model(1)
	assert.True(t, ok)
	assert.NotNil(t, m1.RBF)

	m2, ok := sm.Model(2)
	assert.True(t, ok)
	assert.NotNil(t, m2.RBF)
}
