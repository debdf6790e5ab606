package extract

import (
	"testing"

	"github.com/rbftrace/rbftrace/pkg/rtime"
	"github.com/rbftrace/rbftrace/pkg/trace"
	"github.com/stretchr/testify/assert"
)

func runSpectral(events []trace.Event) *SpectralExtractor {
	e := NewSpectralExtractor(1_000_000, 1000, 0.5)
	for _, ev := range events {
		e.PushEvent(ev)
	}
	return e
}

func TestSpectralPeriodicNoSSPerfect(t *testing.T) {
	events := []trace.Event{
		trace.Activate(0, rtime.FromSec(5.0)), trace.DispatchEvent(0, rtime.FromSec(5.0)), trace.Deactivate(0, rtime.FromSec(7.0)),
		trace.Activate(0, rtime.FromSec(15.0)), trace.DispatchEvent(0, rtime.FromSec(15.0)), trace.Deactivate(0, rtime.FromSec(18.0)),
		trace.Activate(0, rtime.FromSec(25.0)), trace.DispatchEvent(0, rtime.FromSec(25.0)), trace.Deactivate(0, rtime.FromSec(26.0)),
		trace.Activate(0, rtime.FromSec(35.0)), trace.DispatchEvent(0, rtime.FromSec(35.0)), trace.Deactivate(0, rtime.FromSec(37.0)),
		trace.Activate(0, rtime.FromSec(45.0)), trace.DispatchEvent(0, rtime.FromSec(45.0)), trace.Deactivate(0, rtime.FromSec(48.0)),
		trace.Activate(0, rtime.FromSec(55.0)), trace.DispatchEvent(0, rtime.FromSec(55.0)), trace.Deactivate(0, rtime.FromSec(56.0)),
		trace.Activate(0, rtime.FromSec(65.0)), trace.DispatchEvent(0, rtime.FromSec(65.0)), trace.Deactivate(0, rtime.FromSec(67.0)),
		trace.Activate(0, rtime.FromSec(75.0)), trace.DispatchEvent(0, rtime.FromSec(75.0)), trace.Deactivate(0, rtime.FromSec(78.0)),
		trace.Activate(0, rtime.FromSec(85.0)), trace.DispatchEvent(0, rtime.FromSec(85.0)), trace.Deactivate(0, rtime.FromSec(86.0)),
		trace.Activate(0, rtime.FromSec(95.0)), trace.DispatchEvent(0, rtime.FromSec(95.0)), trace.Deactivate(0, rtime.FromSec(96.0)),
		trace.Activate(0, rtime.FromSec(105.0)), trace.DispatchEvent(0, rtime.FromSec(105.0)), trace.Deactivate(0, rtime.FromSec(106.0)),
	}

	e := runSpectral(events)
	m, ok := e.ExtractModel()
	assert.True(t, ok)
	assert.True(t, e.IsMatching())
	assert.Equal(t, rtime.FromSec(10.0), m.Period)
}

func TestSpectralPeriodicNoSSJitter(t *testing.T) {
	events := []trace.Event{
		trace.Activate(0, rtime.FromMs(5.5)), trace.DispatchEvent(0, rtime.FromMs(5.5)), trace.Deactivate(0, rtime.FromMs(7.5)),
		trace.Activate(0, rtime.FromMs(15.3)), trace.DispatchEvent(0, rtime.FromMs(15.3)), trace.Deactivate(0, rtime.FromMs(18.3)),
		trace.Activate(0, rtime.FromMs(25.0)), trace.DispatchEvent(0, rtime.FromMs(25.0)), trace.Deactivate(0, rtime.FromMs(26.0)),
		trace.Activate(0, rtime.FromMs(35.5)), trace.DispatchEvent(0, rtime.FromMs(35.5)), trace.Deactivate(0, rtime.FromMs(37.5)),
		trace.Activate(0, rtime.FromMs(45.3)), trace.DispatchEvent(0, rtime.FromMs(45.3)), trace.Deactivate(0, rtime.FromMs(48.3)),
		trace.Activate(0, rtime.FromMs(55.0)), trace.DispatchEvent(0, rtime.FromMs(55.0)), trace.Deactivate(0, rtime.FromMs(56.0)),
		trace.Activate(0, rtime.FromMs(65.5)), trace.DispatchEvent(0, rtime.FromMs(65.5)), trace.Deactivate(0, rtime.FromMs(67.5)),
		trace.Activate(0, rtime.FromMs(75.3)), trace.DispatchEvent(0, rtime.FromMs(75.3)), trace.Deactivate(0, rtime.FromMs(78.3)),
		trace.Activate(0, rtime.FromMs(85.0)), trace.DispatchEvent(0, rtime.FromMs(85.0)), trace.Deactivate(0, rtime.FromMs(86.0)),
		trace.Activate(0, rtime.FromMs(95.0)), trace.DispatchEvent(0, rtime.FromMs(95.0)), trace.Deactivate(0, rtime.FromMs(96.0)),
		trace.Activate(0, rtime.FromMs(105.0)), trace.DispatchEvent(0, rtime.FromMs(105.0)), trace.Deactivate(0, rtime.FromMs(106.0)),
	}

	e := runSpectral(events)
	m, ok := e.ExtractModel()
	assert.True(t, ok)
	assert.True(t, e.IsMatching())
	assert.Equal(t, rtime.FromMs(10.0), m.Period)
}

func TestSpectralPeriodicSS(t *testing.T) {
	events := []trace.Event{
		trace.Activate(0, rtime.FromSec(5.5)), trace.DispatchEvent(0, rtime.FromSec(5.5)), trace.Deactivate(0, rtime.FromSec(7.5)),
		trace.Activate(0, rtime.FromMs(5550.0)), trace.DispatchEvent(0, rtime.FromMs(5550.0)), trace.Deactivate(0, rtime.FromMs(5600.0)),

		trace.Activate(0, rtime.FromSec(15.3)), trace.DispatchEvent(0, rtime.FromSec(15.3)), trace.Deactivate(0, rtime.FromSec(18.3)),

		trace.Activate(0, rtime.FromSec(25.0)), trace.DispatchEvent(0, rtime.FromSec(25.0)), trace.Deactivate(0, rtime.FromSec(26.0)),
		trace.Activate(0, rtime.FromMs(25070.0)), trace.DispatchEvent(0, rtime.FromMs(25070.0)), trace.Deactivate(0, rtime.FromMs(25100.0)),

		trace.Activate(0, rtime.FromSec(35.5)), trace.DispatchEvent(0, rtime.FromSec(35.5)), trace.Deactivate(0, rtime.FromSec(37.5)),
		trace.Activate(0, rtime.FromSec(45.3)), trace.DispatchEvent(0, rtime.FromSec(45.3)), trace.Deactivate(0, rtime.FromSec(48.3)),

		trace.Activate(0, rtime.FromSec(55.0)), trace.DispatchEvent(0, rtime.FromSec(55.0)), trace.Deactivate(0, rtime.FromSec(56.0)),
		trace.Activate(0, rtime.FromMs(55100.0)), trace.DispatchEvent(0, rtime.FromMs(55100.0)), trace.Deactivate(0, rtime.FromMs(55200.0)),

		trace.Activate(0, rtime.FromSec(65.5)), trace.DispatchEvent(0, rtime.FromSec(65.5)), trace.Deactivate(0, rtime.FromSec(67.5)),
		trace.Activate(0, rtime.FromMs(65550.0)), trace.DispatchEvent(0, rtime.FromMs(65550.0)), trace.Deactivate(0, rtime.FromMs(65650.0)),

		trace.Activate(0, rtime.FromSec(75.3)), trace.DispatchEvent(0, rtime.FromSec(75.3)), trace.Deactivate(0, rtime.FromSec(78.3)),

		trace.Activate(0, rtime.FromSec(85.0)), trace.DispatchEvent(0, rtime.FromSec(85.0)), trace.Deactivate(0, rtime.FromSec(86.0)),

		trace.Activate(0, rtime.FromSec(95.0)), trace.DispatchEvent(0, rtime.FromSec(95.0)), trace.Deactivate(0, rtime.FromSec(96.0)),
		trace.Activate(0, rtime.FromMs(95055.0)), trace.DispatchEvent(0, rtime.FromMs(95055.0)), trace.Deactivate(0, rtime.FromMs(95100.0)),

		trace.Activate(0, rtime.FromSec(105.0)), trace.DispatchEvent(0, rtime.FromSec(105.0)), trace.Deactivate(0, rtime.FromSec(106.0)),
	}

	e := runSpectral(events)
	m, ok := e.ExtractModel()
	assert.True(t, ok)
	assert.True(t, e.IsMatching())

	errBound := rtime.FromSec(0.05)
	assert.LessOrEqual(t, m.Period, rtime.FromSec(10.0).Add(errBound))
	assert.GreaterOrEqual(t, m.Period, rtime.FromSec(10.0).Sub(errBound))
}

func TestSpectralPeriodicSSBurst(t *testing.T) {
	events := []trace.Event{
		trace.Activate(0, rtime.FromMs(0.5)), trace.DispatchEvent(0, rtime.FromMs(0.5)), trace.Deactivate(0, rtime.FromMs(0.6)),
		trace.Activate(0, rtime.FromMs(1.5)), trace.DispatchEvent(0, rtime.FromMs(1.5)), trace.Deactivate(0, rtime.FromMs(1.6)),
		trace.Activate(0, rtime.FromMs(2.5)), trace.DispatchEvent(0, rtime.FromMs(2.5)), trace.Deactivate(0, rtime.FromMs(2.6)),

		trace.Activate(0, rtime.FromMs(10.5)), trace.DispatchEvent(0, rtime.FromMs(10.5)), trace.Deactivate(0, rtime.FromMs(10.6)),
		trace.Activate(0, rtime.FromMs(11.5)), trace.DispatchEvent(0, rtime.FromMs(11.5)), trace.Deactivate(0, rtime.FromMs(11.6)),
		trace.Activate(0, rtime.FromMs(12.5)), trace.DispatchEvent(0, rtime.FromMs(12.5)), trace.Deactivate(0, rtime.FromMs(12.6)),

		trace.Activate(0, rtime.FromMs(20.5)), trace.DispatchEvent(0, rtime.FromMs(20.5)), trace.Deactivate(0, rtime.FromMs(20.6)),
		trace.Activate(0, rtime.FromMs(21.5)), trace.DispatchEvent(0, rtime.FromMs(21.5)), trace.Deactivate(0, rtime.FromMs(21.6)),
		trace.Activate(0, rtime.FromMs(22.5)), trace.DispatchEvent(0, rtime.FromMs(22.5)), trace.Deactivate(0, rtime.FromMs(22.6)),

		trace.Activate(0, rtime.FromMs(30.5)), trace.DispatchEvent(0, rtime.FromMs(30.5)), trace.Deactivate(0, rtime.FromMs(30.6)),
		trace.Activate(0, rtime.FromMs(31.5)), trace.DispatchEvent(0, rtime.FromMs(31.5)), trace.Deactivate(0, rtime.FromMs(31.6)),
		trace.Activate(0, rtime.FromMs(32.5)), trace.DispatchEvent(0, rtime.FromMs(32.5)), trace.Deactivate(0, rtime.FromMs(32.6)),

		trace.Activate(0, rtime.FromMs(41.5)), trace.DispatchEvent(0, rtime.FromMs(41.5)), trace.Deactivate(0, rtime.FromMs(41.6)),
		trace.Activate(0, rtime.FromMs(42.5)), trace.DispatchEvent(0, rtime.FromMs(42.5)), trace.Deactivate(0, rtime.FromMs(42.6)),
		trace.Activate(0, rtime.FromMs(44.5)), trace.DispatchEvent(0, rtime.FromMs(44.5)), trace.Deactivate(0, rtime.FromMs(44.6)),

		trace.Activate(0, rtime.FromMs(51.5)), trace.DispatchEvent(0, rtime.FromMs(51.5)), trace.Deactivate(0, rtime.FromMs(51.6)),
		trace.Activate(0, rtime.FromMs(52.5)), trace.DispatchEvent(0, rtime.FromMs(52.5)), trace.Deactivate(0, rtime.FromMs(52.6)),
		trace.Activate(0, rtime.FromMs(52.5)), trace.DispatchEvent(0, rtime.FromMs(52.5)), trace.Deactivate(0, rtime.FromMs(52.6)),

		trace.Activate(0, rtime.FromMs(61.5)), trace.DispatchEvent(0, rtime.FromMs(61.5)), trace.Deactivate(0, rtime.FromMs(61.6)),
		trace.Activate(0, rtime.FromMs(62.5)), trace.DispatchEvent(0, rtime.FromMs(62.5)), trace.Deactivate(0, rtime.FromMs(62.6)),
		trace.Activate(0, rtime.FromMs(63.5)), trace.DispatchEvent(0, rtime.FromMs(63.5)), trace.Deactivate(0, rtime.FromMs(63.6)),
	}

	e := runSpectral(events)
	m, ok := e.ExtractModel()
	assert.True(t, ok)
	assert.True(t, e.IsMatching())

	errBound := rtime.FromMs(1.0)
	assert.LessOrEqual(t, m.Period, rtime.FromMs(10.0).Add(errBound))
	assert.GreaterOrEqual(t, m.Period, rtime.FromMs(10.0).Sub(errBound))
}

func TestSpectralPeriodicSSBurstAliasing(t *testing.T) {
	events := []trace.Event{
		trace.Activate(0, rtime.FromMs(0.5)), trace.DispatchEvent(0, rtime.FromMs(0.5)), trace.Deactivate(0, rtime.FromMs(0.6)),
		trace.Activate(0, rtime.FromMs(1.5)), trace.DispatchEvent(0, rtime.FromMs(1.5)), trace.Deactivate(0, rtime.FromMs(1.6)),
		trace.Activate(0, rtime.FromMs(2.5)), trace.DispatchEvent(0, rtime.FromMs(2.5)), trace.Deactivate(0, rtime.FromMs(2.6)),

		trace.Activate(0, rtime.FromMs(10.5)), trace.DispatchEvent(0, rtime.FromMs(10.5)), trace.Deactivate(0, rtime.FromMs(10.6)),
		trace.Activate(0, rtime.FromMs(11.5)), trace.DispatchEvent(0, rtime.FromMs(11.5)), trace.Deactivate(0, rtime.FromMs(11.6)),
		trace.Activate(0, rtime.FromMs(12.5)), trace.DispatchEvent(0, rtime.FromMs(12.5)), trace.Deactivate(0, rtime.FromMs(12.6)),

		trace.Activate(0, rtime.FromMs(20.5)), trace.DispatchEvent(0, rtime.FromMs(20.5)), trace.Deactivate(0, rtime.FromMs(20.6)),
		trace.Activate(0, rtime.FromMs(21.5)), trace.DispatchEvent(0, rtime.FromMs(21.5)), trace.Deactivate(0, rtime.FromMs(21.6)),
		trace.Activate(0, rtime.FromMs(22.5)), trace.DispatchEvent(0, rtime.FromMs(22.5)), trace.Deactivate(0, rtime.FromMs(22.6)),

		trace.Activate(0, rtime.FromMs(30.5)), trace.DispatchEvent(0, rtime.FromMs(30.5)), trace.Deactivate(0, rtime.FromMs(30.6)),
		trace.Activate(0, rtime.FromMs(31.5)), trace.DispatchEvent(0, rtime.FromMs(31.5)), trace.Deactivate(0, rtime.FromMs(31.6)),
		trace.Activate(0, rtime.FromMs(32.5)), trace.DispatchEvent(0, rtime.FromMs(32.5)), trace.Deactivate(0, rtime.FromMs(32.6)),
	}

	e := runSpectral(events)
	m, ok := e.ExtractModel()
	assert.True(t, ok)
	assert.True(t, e.IsMatching())

	errBound := rtime.FromMs(1.0)
	assert.LessOrEqual(t, m.Period, rtime.FromMs(10.0).Add(errBound))
	assert.GreaterOrEqual(t, m.Period, rtime.FromMs(10.0).Sub(errBound))
}

func TestSpectralFailOnSporadic(t *testing.T) {
	events := []trace.Event{
		trace.Activate(0, rtime.FromMs(1.0)), trace.DispatchEvent(0, rtime.FromMs(1.0)), trace.Deactivate(0, rtime.FromMs(1.1)),
		trace.Activate(0, rtime.FromMs(9809.0)), trace.DispatchEvent(0, rtime.FromMs(9809.0)), trace.Deactivate(0, rtime.FromMs(9809.1)),
		trace.Activate(0, rtime.FromMs(10970.0)), trace.DispatchEvent(0, rtime.FromMs(10970.0)), trace.Deactivate(0, rtime.FromMs(10970.1)),
		trace.Activate(0, rtime.FromMs(18269.0)), trace.DispatchEvent(0, rtime.FromMs(18269.0)), trace.Deactivate(0, rtime.FromMs(18269.1)),
		trace.Activate(0, rtime.FromMs(23135.0)), trace.DispatchEvent(0, rtime.FromMs(23135.0)), trace.Deactivate(0, rtime.FromMs(23135.1)),
		trace.Activate(0, rtime.FromMs(31576.0)), trace.DispatchEvent(0, rtime.FromMs(31576.0)), trace.Deactivate(0, rtime.FromMs(31576.1)),
		trace.Activate(0, rtime.FromMs(33085.0)), trace.DispatchEvent(0, rtime.FromMs(33085.0)), trace.Deactivate(0, rtime.FromMs(33085.1)),
		trace.Activate(0, rtime.FromMs(35973.0)), trace.DispatchEvent(0, rtime.FromMs(35973.0)), trace.Deactivate(0, rtime.FromMs(35973.1)),
		trace.Activate(0, rtime.FromMs(42330.0)), trace.DispatchEvent(0, rtime.FromMs(42330.0)), trace.Deactivate(0, rtime.FromMs(42330.1)),
		trace.Activate(0, rtime.FromMs(45267.0)), trace.DispatchEvent(0, rtime.FromMs(45267.0)), trace.Deactivate(0, rtime.FromMs(45267.1)),
		trace.Activate(0, rtime.FromMs(49278.0)), trace.DispatchEvent(0, rtime.FromMs(49278.0)), trace.Deactivate(0, rtime.FromMs(49278.1)),
		trace.Activate(0, rtime.FromMs(57180.0)), trace.DispatchEvent(0, rtime.FromMs(57180.0)), trace.Deactivate(0, rtime.FromMs(57180.1)),
	}

	e := runSpectral(events)
	_, ok := e.ExtractModel()
	assert.False(t, ok)
	assert.False(t, e.IsMatching())
}
