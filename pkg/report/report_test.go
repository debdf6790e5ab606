package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rbftrace/rbftrace/pkg/model"
	"github.com/rbftrace/rbftrace/pkg/rtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportWritesMatchedAndUnmatchedSamples(t *testing.T) {
	r := NewReport[model.PeriodicTask]("periodic")

	matched := model.NewPeriodicTask(rtime.FromMs(10), rtime.FromMs(0), rtime.FromMs(0), rtime.FromMs(2))
	r.PushSample(1, 2, &matched)
	r.PushSample(1, 3, nil)

	dir := t.TempDir()
	require.NoError(t, r.WriteYAML(dir))

	data, err := os.ReadFile(filepath.Join(dir, "1.periodic.report.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Not matched")
	assert.Contains(t, string(data), "sample_count: 2")
}

func TestReportRefusesToOverwrite(t *testing.T) {
	r := NewReport[model.PeriodicTask]("periodic")
	matched := model.NewPeriodicTask(rtime.FromMs(10), rtime.FromMs(0), rtime.FromMs(0), rtime.FromMs(2))
	r.PushSample(1, 1, &matched)

	dir := t.TempDir()
	require.NoError(t, r.WriteYAML(dir))
	assert.ErrorIs(t, r.WriteYAML(dir), ErrOutputExists)
}
