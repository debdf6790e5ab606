package extract

import (
	"math"

	"github.com/rbftrace/rbftrace/pkg/model"
	"github.com/rbftrace/rbftrace/pkg/rtime"
	"github.com/rbftrace/rbftrace/pkg/trace"
)

// PeriodicParams configures a PeriodicExtractor.
type PeriodicParams struct {
	// Resolution is the finest period granularity the extractor will
	// settle on, and the truncation grain used for the extracted offset.
	Resolution rtime.Time
	// JMax bounds how far a single activation may drift from its ideal
	// periodic instant while the task is still considered periodic.
	JMax rtime.Time
}

// DefaultPeriodicParams mirrors the values the rest of the pipeline assumes
// when nothing else is configured: a tenth of a millisecond resolution and
// a 1.5 millisecond jitter bound.
func DefaultPeriodicParams() PeriodicParams {
	return PeriodicParams{Resolution: rtime.FromMs(0.1), JMax: rtime.FromMs(1.5)}
}

// PeriodicExtractor infers a PeriodicTask model from a single task's
// activation history: it maintains a moving average inter-arrival gap, the
// running intersection of every feasible period interval observed so far,
// and derives period/offset/jitter/WCET from that state after every
// activation.
type PeriodicExtractor struct {
	resolution rtime.Time
	jMax       rtime.Time

	activationHistory *ringBuffer[trace.Event]
	stillPeriodic     bool

	currentModel     *model.PeriodicTask
	averageGap       rtime.Time
	wcet             rtime.Time
	currPeriodRange  rtime.ClosedInterval
	periodRangeIsSet bool

	jobDetector *JobExtractor
	lastJob     *model.Job
}

// NewPeriodicExtractor builds a PeriodicExtractor from explicit parameters.
func NewPeriodicExtractor(jMax, resolution rtime.Time) *PeriodicExtractor {
	historySizeTarget := int(2*(jMax.ToNs()/resolution.ToNs()) + 1)
	historySize := nextPowerOfTwo(historySizeTarget)

	return &PeriodicExtractor{
		resolution:        resolution,
		jMax:              jMax,
		activationHistory: newRingBuffer[trace.Event](historySize),
		currPeriodRange:   rtime.ClosedInterval{},
		jobDetector:       NewJobExtractor(),
	}
}

// PeriodicExtractorFromParams builds a PeriodicExtractor from PeriodicParams.
func PeriodicExtractorFromParams(params PeriodicParams) *PeriodicExtractor {
	return NewPeriodicExtractor(params.JMax, params.Resolution)
}

// IsMatching reports whether the task observed so far still fits a
// periodic model.
func (p *PeriodicExtractor) IsMatching() bool { return p.stillPeriodic }

// ExtractModel returns the current model. The periodic extractor is fully
// incremental, so there is nothing to compute on demand.
func (p *PeriodicExtractor) ExtractModel() (model.PeriodicTask, bool) {
	if p.currentModel == nil {
		return model.PeriodicTask{}, false
	}
	return *p.currentModel, true
}

// PushEvent folds one more event into the extractor and reports whether a
// job completed as a result.
func (p *PeriodicExtractor) PushEvent(event trace.Event) bool {
	job, completed := p.jobDetector.PushEvent(event)
	if completed {
		p.lastJob = &job
	}

	switch event.Kind {
	case trace.Activation:
		p.pushActivation(event)
	case trace.Deactivation:
		p.pushDeactivation(event)
	}

	return completed
}

func (p *PeriodicExtractor) pushActivation(event trace.Event) {
	if p.activationHistory.IsEmpty() {
		p.activationHistory.Push(event)
		return
	}

	p.pushActivationAndUpdateAverageGap(event)
	p.updatePeriodRange()
	p.updateStillPeriodic()

	if p.stillPeriodic {
		p.findPeriod()
		p.extractOffsetAndJitter()
	}
}

func (p *PeriodicExtractor) pushActivationAndUpdateAverageGap(event trace.Event) {
	newDiff := event.Instant.Sub(p.activationHistory.Back().Instant)

	k := p.activationHistory.Len() - 1
	newAverageGap := p.averageGap

	if p.activationHistory.IsFull() {
		oldestDiff := p.activationHistory.Get(1).Instant.Sub(p.activationHistory.Get(0).Instant)
		newAverageGap = newAverageGap.Add(newDiff.DivInt(uint64(k)))
		newAverageGap = newAverageGap.SatSub(oldestDiff.DivInt(uint64(k)))
	} else {
		k++
		newAverageGap = newAverageGap.Add(newDiff.DivInt(uint64(k)))
		newAverageGap = newAverageGap.SatSub(p.averageGap.DivInt(uint64(k)))
	}

	p.activationHistory.Push(event)
	p.averageGap = newAverageGap
}

func (p *PeriodicExtractor) updatePeriodRange() {
	eventCount := p.activationHistory.Len() - 1
	if eventCount <= 0 {
		return
	}

	err := p.jMax.DivInt(uint64(eventCount))
	upper := p.averageGap.Add(err)
	lower := rtime.FromNs(1)
	if err < p.averageGap {
		lower = p.averageGap.Sub(err)
	}

	obsPeriodRange := rtime.NewClosedInterval(lower, upper)

	if !p.periodRangeIsSet {
		p.currPeriodRange = obsPeriodRange
		p.periodRangeIsSet = true
	} else {
		p.currPeriodRange = p.currPeriodRange.Intersection(obsPeriodRange)
	}
}

func (p *PeriodicExtractor) updateStillPeriodic() {
	p.stillPeriodic = p.currPeriodRange.IsInterval() && !p.currPeriodRange.IsEmpty()

	if p.stillPeriodic {
		m := model.PeriodicTask{WCET: p.wcet}
		p.currentModel = &m
	} else {
		p.currentModel = nil
	}
}

func (p *PeriodicExtractor) findPeriod() {
	if p.currentModel == nil {
		return
	}
	m := *p.currentModel

	period := p.averageGap
	periodFound := false
	intervalLeft := p.currPeriodRange.Lower
	intervalRight := p.currPeriodRange.Upper

	minMagnitude := uint32(math.Log10(float64(p.resolution.ToNs())))
	magnitude := uint32(10)

	for !periodFound && magnitude >= minMagnitude {
		granularity := rtime.FromNs(uint64(math.Pow(10, float64(magnitude))))
		period = p.averageGap.Round(granularity)
		if intervalLeft <= period && period <= intervalRight {
			periodFound = true
		}
		if magnitude == 0 {
			break
		}
		magnitude--
	}

	if periodFound {
		m.Period = period
	} else {
		m.Period = p.averageGap.Round(p.resolution)
	}

	p.currentModel = &m
}

func (p *PeriodicExtractor) extractOffsetAndJitter() {
	if p.currentModel == nil {
		return
	}
	m := *p.currentModel

	lastActivation := p.activationHistory.Back()
	lastActivationJO := lastActivation.Instant.Mod(m.Period)

	minJO := lastActivationJO
	maxJO := lastActivationJO

	for _, event := range p.activationHistory.Iter() {
		jo := event.Instant.Mod(m.Period)
		minJO = minJO.Min(jo)
		maxJO = maxJO.Max(jo)
	}

	m.Offset = minJO.Truncate(p.resolution)
	m.Jitter = maxJO.Sub(m.Offset)

	p.currentModel = &m
}

func (p *PeriodicExtractor) pushDeactivation(event trace.Event) {
	if p.lastJob == nil || p.lastJob.CompletedAt != event.Instant {
		return
	}

	p.wcet = p.wcet.Max(p.lastJob.ExecutionTime)

	if p.currentModel == nil {
		return
	}
	m := *p.currentModel
	m.WCET = p.wcet
	p.currentModel = &m
}
