package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rbftrace/rbftrace/pkg/extract"
	"github.com/rbftrace/rbftrace/pkg/model"
	"github.com/rbftrace/rbftrace/pkg/rtime"
	"github.com/rbftrace/rbftrace/pkg/sysconf"
	"github.com/rbftrace/rbftrace/pkg/sysmodel"
	"github.com/rbftrace/rbftrace/pkg/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputWriteYAML(t *testing.T) {
	s := sysmodel.New(sysconf.Default(), extract.DefaultCompositeParams())
	events := []trace.Event{
		trace.Activate(1, rtime.FromMs(5.0)), trace.DispatchEvent(1, rtime.FromMs(5.0)), trace.Deactivate(1, rtime.FromMs(7.0)),
		trace.Activate(1, rtime.FromMs(15.0)), trace.DispatchEvent(1, rtime.FromMs(15.0)), trace.Deactivate(1, rtime.FromMs(17.0)),
		trace.Activate(1, rtime.FromMs(25.0)), trace.DispatchEvent(1, rtime.FromMs(25.0)), trace.Deactivate(1, rtime.FromMs(27.0)),
	}
	s.PushTrace(trace.FromEvents(events))

	out := FromSystemModel(s.ExtractModel())
	assert.Contains(t, out.ScalarModels, model.TaskID(1))
	assert.Contains(t, out.CurveModels, model.TaskID(1))

	dir := t.TempDir()
	require.NoError(t, out.WriteYAML(dir))

	_, err := os.Stat(filepath.Join(dir, "1.periodic.yaml"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "1.rbf.yaml"))
	assert.NoError(t, err)

	assert.ErrorIs(t, out.WriteYAML(dir), ErrOutputExists)
}
