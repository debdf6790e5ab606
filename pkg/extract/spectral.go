package extract

import (
	"math"
	"math/cmplx"

	"github.com/rbftrace/rbftrace/pkg/model"
	"github.com/rbftrace/rbftrace/pkg/rtime"
	"github.com/rbftrace/rbftrace/pkg/trace"
)

// SpectralParams configures a SpectralExtractor.
type SpectralParams struct {
	// MaxSignalLen bounds the synthesized signal's length before it is
	// handed to the FFT; rounded up to the next power of two.
	MaxSignalLen int
	// WindowSize bounds the job history ring buffer; rounded up to the
	// next power of two.
	WindowSize int
	// FFTCutoff is the normalized-power threshold a frequency bin must
	// clear to be considered a candidate period.
	FFTCutoff float64
}

// DefaultSpectralParams mirrors the values the rest of the pipeline
// assumes when nothing else is configured.
func DefaultSpectralParams() SpectralParams {
	return SpectralParams{MaxSignalLen: 1_000_000, WindowSize: 1000, FFTCutoff: 0.5}
}

// SpectralExtractor infers a PeriodicSelfSuspendingTask model for tasks
// whose self-suspension defeats the Periodic Extractor: it resynthesizes
// an arrival signal from the job history, finds its dominant period via
// FFT, and reconstructs per-segment computation/suspension times from the
// jobs grouped by period instance.
type SpectralExtractor struct {
	maxSignalLen int
	fftCutoff    float64

	jobHistory    *ringBuffer[model.Job]
	stillPeriodic bool
	jobDetector   *JobExtractor

	currentModel *model.PeriodicSelfSuspendingTask

	minGap rtime.Time
}

// NewSpectralExtractor builds a SpectralExtractor from explicit parameters.
func NewSpectralExtractor(maxSignalLen, windowSize int, fftCutoff float64) *SpectralExtractor {
	historySize := nextPowerOfTwo(windowSize)
	return &SpectralExtractor{
		maxSignalLen: nextPowerOfTwo(maxSignalLen),
		fftCutoff:    fftCutoff,
		jobHistory:   newRingBuffer[model.Job](historySize),
		jobDetector:  NewJobExtractor(),
	}
}

// SpectralExtractorFromParams builds a SpectralExtractor from SpectralParams.
func SpectralExtractorFromParams(params SpectralParams) *SpectralExtractor {
	return NewSpectralExtractor(params.MaxSignalLen, params.WindowSize, params.FFTCutoff)
}

// IsMatching reports whether the last extraction found a dominant period.
func (s *SpectralExtractor) IsMatching() bool { return s.stillPeriodic }

// PushEvent folds one more event in and returns whether a job completed.
func (s *SpectralExtractor) PushEvent(event trace.Event) bool {
	job, completed := s.jobDetector.PushEvent(event)
	if completed {
		s.pushJob(job)
	}
	return completed
}

func (s *SpectralExtractor) pushJob(job model.Job) {
	if !s.jobHistory.IsEmpty() {
		lastGap := job.ArrivedAt.Sub(s.jobHistory.Back().ArrivedAt)
		if s.minGap > 0 {
			s.minGap = s.minGap.Min(lastGap)
		} else {
			s.minGap = lastGap
		}
	}
	s.jobHistory.Push(job)
}

// ExtractModel triggers extraction and returns the current model, if any.
// Unlike the periodic extractor, spectral extraction is not incremental:
// the FFT is recomputed from the whole job history on every call.
func (s *SpectralExtractor) ExtractModel() (model.PeriodicSelfSuspendingTask, bool) {
	s.extract()
	if s.currentModel == nil {
		return model.PeriodicSelfSuspendingTask{}, false
	}
	return *s.currentModel, true
}

func (s *SpectralExtractor) extract() {
	if s.jobHistory.Len() <= 1 {
		return
	}

	period := s.fft()
	if period.IsZero() {
		s.stillPeriodic = false
		s.currentModel = nil
		return
	}

	s.stillPeriodic = true
	m := model.PeriodicSelfSuspendingTask{Period: period}
	s.reconstructSelfSuspension(&m, period)
	s.currentModel = &m
}

// fft picks a sampling resolution from the minimum observed inter-arrival
// gap, resynthesizes an arrival signal at that resolution, and returns the
// dominant period found by spectral analysis, or zero if none survives the
// candidate/aliasing checks.
func (s *SpectralExtractor) fft() rtime.Time {
	if s.minGap.IsZero() {
		return rtime.Zero
	}

	magnitude := int(math.Floor(math.Log10(float64(s.minGap.ToNs())))) - 1
	resolution := rtime.FromNs(uint64(math.Pow(10, float64(magnitude))))
	if resolution > rtime.FromSec(1.0) {
		resolution = rtime.FromSec(1.0)
	}
	if resolution < rtime.FromUs(10.0) {
		resolution = rtime.FromUs(10.0)
	}
	if s.minGap < resolution {
		return rtime.Zero
	}

	jobs := s.jobHistory.Iter()
	firstArr := jobs[0].ArrivedAt
	traceDelta := jobs[len(jobs)-1].ArrivedAt.Sub(firstArr)
	signalLen := int(traceDelta.ToNs()/resolution.ToNs()) + 1
	if signalLen > s.maxSignalLen {
		signalLen = s.maxSignalLen
	}

	signal := make([]float64, 0, signalLen)
	signal = append(signal, 1.0)
	prevPeakIdx := 0

	for _, job := range jobs[1:] {
		arrTruncNs := job.ArrivedAt.Sub(firstArr).Truncate(resolution).ToNs()
		peakIdx := int(arrTruncNs / resolution.ToNs())
		delta := peakIdx - prevPeakIdx

		if peakIdx > signalLen {
			break
		}

		for idx := prevPeakIdx + 1; idx <= peakIdx; idx++ {
			k := idx - prevPeakIdx
			signal = append(signal, math.Cos(2*math.Pi*float64(k)/float64(delta)))
		}
		prevPeakIdx = peakIdx
	}

	n := nextPowerOfTwo(len(signal))
	padded := make([]complex128, n)
	for i, v := range signal {
		padded[i] = complex(v, 0)
	}
	spectrum := fftRadix2(padded)

	samplingFreq := math.Round(1.0 / resolution.ToSec())
	if samplingFreq < 1 {
		samplingFreq = 1
	}

	maxPower := 0.0
	freqs := make([]float64, 0, n/2)
	powers := make([]float64, 0, n/2)
	for i := 1; i < n/2+1; i++ {
		freq := float64(i) * samplingFreq / float64(n)
		power := real(spectrum[i])*real(spectrum[i]) + imag(spectrum[i])*imag(spectrum[i])
		freqs = append(freqs, freq)
		powers = append(powers, power)
		if power > maxPower {
			maxPower = power
		}
	}
	if maxPower == 0 {
		return rtime.Zero
	}

	var spikes []rtime.Time
	for i, power := range powers {
		if power/maxPower >= s.fftCutoff {
			spikes = append(spikes, rtime.FromSec(1.0/freqs[i]))
		}
	}

	if len(spikes) == 0 {
		return rtime.Zero
	}
	if len(spikes) > 1 {
		leftmost := spikes[0]
		lim := len(spikes)
		if lim > 5 {
			lim = 5
		}
		for i := 1; i < lim; i++ {
			ratio := math.Round(float64(leftmost.ToNs()) / float64(spikes[i].ToNs()))
			if uint64(ratio) != uint64(i+1) {
				return rtime.Zero
			}
		}
	}

	return spikes[0].Round(resolution)
}

// fftRadix2 computes the discrete Fourier transform of x via the
// Cooley-Tukey algorithm. len(x) must be a power of two.
func fftRadix2(x []complex128) []complex128 {
	n := len(x)
	if n <= 1 {
		return x
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = x[2*i]
		odd[i] = x[2*i+1]
	}
	even = fftRadix2(even)
	odd = fftRadix2(odd)

	out := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		twiddle := cmplx.Rect(1, -2*math.Pi*float64(k)/float64(n)) * odd[k]
		out[k] = even[k] + twiddle
		out[k+n/2] = even[k] - twiddle
	}
	return out
}

// reconstructSelfSuspension partitions the job history into invocation
// groups of width period starting at the first arrival, turns each group
// into an alternating computation/suspension segment sequence, and folds
// the groups into m's per-segment worst case (if every group has the same
// segment count) and total worst case (always).
func (s *SpectralExtractor) reconstructSelfSuspension(m *model.PeriodicSelfSuspendingTask, period rtime.Time) {
	jobs := s.jobHistory.Iter()
	if len(jobs) == 0 {
		return
	}
	firstArrival := jobs[0].ArrivedAt

	type ssGroup struct {
		wcet []rtime.Time
		ss   []rtime.Time
	}

	var groups []ssGroup
	var cur ssGroup
	curIdx := int64(-1)
	var prevJob *model.Job

	for i := range jobs {
		job := jobs[i]
		idx := int64(job.ArrivedAt.Sub(firstArrival).ToNs() / period.ToNs())
		if idx != curIdx {
			if curIdx != -1 {
				groups = append(groups, cur)
			}
			cur = ssGroup{}
			curIdx = idx
			prevJob = nil
		}

		if prevJob != nil {
			cur.ss = append(cur.ss, job.ArrivedAt.Sub(prevJob.CompletedAt))
		}
		cur.wcet = append(cur.wcet, job.ExecutionTime)

		jobCopy := job
		prevJob = &jobCopy
	}
	if curIdx != -1 {
		groups = append(groups, cur)
	}

	segmented := len(groups) > 0
	segCount := 0
	if segmented {
		segCount = len(groups[0].wcet)
		for _, g := range groups[1:] {
			if len(g.wcet) != segCount {
				segmented = false
				break
			}
		}
	}

	var totalWCET, totalWCSS rtime.Time
	for _, g := range groups {
		var groupWCET, groupWCSS rtime.Time
		for _, w := range g.wcet {
			groupWCET = groupWCET.Add(w)
		}
		for _, gap := range g.ss {
			groupWCSS = groupWCSS.Add(gap)
		}
		totalWCET = totalWCET.Max(groupWCET)
		totalWCSS = totalWCSS.Max(groupWCSS)
	}

	m.TotalWCET = totalWCET
	m.TotalWCSS = totalWCSS
	m.Segmented = segmented

	if segmented && segCount > 0 {
		wcet := make([]rtime.Time, segCount)
		ss := make([]rtime.Time, segCount-1)
		for _, g := range groups {
			for i, w := range g.wcet {
				wcet[i] = wcet[i].Max(w)
			}
			for i, gap := range g.ss {
				ss[i] = ss[i].Max(gap)
			}
		}
		m.WCET = wcet
		m.SS = ss
	}
}
