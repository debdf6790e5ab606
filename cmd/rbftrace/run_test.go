package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rbftrace/rbftrace/pkg/rtime"
	"github.com/rbftrace/rbftrace/pkg/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestTrace(t *testing.T, path string) {
	t.Helper()
	tr := trace.FromEvents([]trace.Event{
		trace.Activate(1, rtime.FromMs(5)), trace.DispatchEvent(1, rtime.FromMs(5)), trace.Deactivate(1, rtime.FromMs(7)),
		trace.Activate(1, rtime.FromMs(15)), trace.DispatchEvent(1, rtime.FromMs(15)), trace.Deactivate(1, rtime.FromMs(17)),
		trace.Activate(1, rtime.FromMs(25)), trace.DispatchEvent(1, rtime.FromMs(25)), trace.Deactivate(1, rtime.FromMs(27)),
	})
	require.NoError(t, tr.SaveYAMLFile(path))
}

func defaultOpts(source, output string) opts {
	return opts{
		sourcePath:     source,
		sourceFormat:   "yaml",
		outputPath:     output,
		jitterBoundMs:  1.5,
		resolutionUs:   100,
		windowSize:     1000,
		maxSignalLen:   1_000_000,
		fftCutoff:      0.5,
	}
}

func TestRunOneShotWritesScalarAndCurveFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "trace.yaml")
	writeTestTrace(t, src)

	out := filepath.Join(dir, "out")
	require.NoError(t, run(defaultOpts(src, out)))

	_, err := os.Stat(filepath.Join(out, "1.periodic.yaml"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "1.rbf.yaml"))
	assert.NoError(t, err)
}

func TestRunIncrementalWithReport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "trace.yaml")
	writeTestTrace(t, src)

	out := filepath.Join(dir, "out")
	o := defaultOpts(src, out)
	o.arrivalSet = true
	o.updateArrival = 1
	o.report = true

	require.NoError(t, run(o))

	_, err := os.Stat(filepath.Join(out, "1.periodic.report.yaml"))
	assert.NoError(t, err)
}

func TestRunRejectsZeroArrival(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "trace.yaml")
	writeTestTrace(t, src)

	o := defaultOpts(src, "")
	o.arrivalSet = true
	o.updateArrival = 0

	err := run(o)
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
}

func TestRunMissingSourceIsTraceError(t *testing.T) {
	o := defaultOpts(filepath.Join(t.TempDir(), "missing.yaml"), "")
	err := run(o)
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
}
