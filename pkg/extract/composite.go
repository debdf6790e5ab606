package extract

import (
	"github.com/rbftrace/rbftrace/pkg/model"
	"github.com/rbftrace/rbftrace/pkg/trace"
)

// CompositeParams configures a CompositeExtractor: per-sub-extractor
// parameters, plus an independent enable flag for each. A disabled
// sub-extractor is never built: no events reach it and it contributes
// nothing to the composite model.
type CompositeParams struct {
	Periodic        PeriodicParams
	Spectral        SpectralParams
	RBF             RBFParams
	PeriodicEnabled bool
	SpectralEnabled bool
	RBFEnabled      bool
}

// DefaultCompositeParams enables every sub-extractor with its own default
// parameters.
func DefaultCompositeParams() CompositeParams {
	return CompositeParams{
		Periodic:        DefaultPeriodicParams(),
		Spectral:        DefaultSpectralParams(),
		RBF:             DefaultRBFParams(),
		PeriodicEnabled: true,
		SpectralEnabled: true,
		RBFEnabled:      true,
	}
}

// CompositeExtractor runs the periodic, spectral, and RBF extractors
// concurrently (in the sense of independently stateful, not
// goroutine-concurrent) over the same task's event stream. Its extraction
// hierarchy prefers a non-self-suspending periodic match; failing that, a
// self-suspending (spectral) match; the RBF is always emitted when enabled.
type CompositeExtractor struct {
	periodicExtractor *PeriodicExtractor
	spectralExtractor *SpectralExtractor
	rbfExtractor      *RBFExtractor

	periodicEnabled bool
	spectralEnabled bool
	rbfEnabled      bool
}

// NewCompositeExtractor builds a CompositeExtractor for taskID.
func NewCompositeExtractor(taskID model.TaskID, params CompositeParams) *CompositeExtractor {
	c := &CompositeExtractor{
		periodicEnabled: params.PeriodicEnabled,
		spectralEnabled: params.SpectralEnabled,
		rbfEnabled:      params.RBFEnabled,
	}
	if c.periodicEnabled {
		c.periodicExtractor = PeriodicExtractorFromParams(params.Periodic)
	}
	if c.spectralEnabled {
		c.spectralExtractor = SpectralExtractorFromParams(params.Spectral)
	}
	if c.rbfEnabled {
		c.rbfExtractor = RBFExtractorFromParams(taskID, params.RBF)
	}
	return c
}

// IsMatching reports whether any enabled sub-extractor currently matches.
func (c *CompositeExtractor) IsMatching() bool {
	if c.periodicEnabled && c.periodicExtractor.IsMatching() {
		return true
	}
	if c.spectralEnabled && c.spectralExtractor.IsMatching() {
		return true
	}
	if c.rbfEnabled && c.rbfExtractor.IsMatching() {
		return true
	}
	return false
}

// PushEvent folds one event into every enabled sub-extractor and reports
// whether any of them could have changed as a result.
func (c *CompositeExtractor) PushEvent(event trace.Event) bool {
	changed := false
	if c.periodicEnabled && c.periodicExtractor.PushEvent(event) {
		changed = true
	}
	if c.spectralEnabled && c.spectralExtractor.PushEvent(event) {
		changed = true
	}
	if c.rbfEnabled && c.rbfExtractor.PushEvent(event) {
		changed = true
	}
	return changed
}

// ExtractModel applies the extraction hierarchy: a periodic match wins
// over a spectral (self-suspending) match; the RBF curve is attached
// whenever the RBF extractor is enabled.
func (c *CompositeExtractor) ExtractModel() (model.CompositeModel, bool) {
	var m model.CompositeModel
	any := false

	if c.periodicEnabled {
		if periodic, ok := c.periodicExtractor.ExtractModel(); ok {
			m.Periodic = &periodic
			any = true
		}
	}

	if m.Periodic == nil && c.spectralEnabled {
		if ss, ok := c.spectralExtractor.ExtractModel(); ok {
			m.PeriodicSS = &ss
			any = true
		}
	}

	if c.rbfEnabled {
		if curve, ok := c.rbfExtractor.ExtractModel(); ok {
			m.RBF = curve
			any = true
		}
	}

	return m, any
}
