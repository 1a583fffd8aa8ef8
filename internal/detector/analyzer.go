package detector

// UndefinedTime is the sentinel for a rise or decay time that could not be
// measured inside the capture window. It is negative so it always fails a
// `> threshold` comparison against the (positive) classification cutoffs: a
// pulse with incomplete timing is never classified as a neutron.
const UndefinedTime = -1.0

// PulseAnalysis is the derived pulse-shape record. It is stateless and
// recomputable at any time from a Capture; Baseline and Threshold repeat the
// snapshot values for audit.
type PulseAnalysis struct {
	// DecayTime is microseconds from the peak to the first sample below 10%
	// of peak, or UndefinedTime.
	DecayTime float64
	// RiseTime is microseconds from the 10%-of-peak crossing to the
	// 90%-of-peak crossing. Zero is a legitimate value (peak in slot 0).
	RiseTime float64
	// PulseArea is the trapezoidal integral of the waveform over time.
	PulseArea float64
	// IsNeutron is the pulse-shape discrimination verdict.
	IsNeutron bool

	Baseline  float64
	Threshold float64
}

// Analyzer extracts rise time, decay time and integrated area from captured
// waveforms and applies the neutron discrimination cut. All methods are pure:
// identical inputs always produce identical outputs.
type Analyzer struct {
	sampleIntervalMicros float64
	minAmplitude         uint8

	decayCut float64
	riseCut  float64
	areaCut  float64
}

// NewAnalyzer builds an analyzer from the detector configuration.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{
		sampleIntervalMicros: float64(cfg.SampleIntervalMicros),
		minAmplitude:         uint8(cfg.MinPulseAmplitude),
		decayCut:             cfg.NeutronDecayTimeThreshold,
		riseCut:              cfg.NeutronRiseTimeThreshold,
		areaCut:              cfg.NeutronAreaThreshold,
	}
}

// Analyze computes the full pulse-shape record for a capture.
func (a *Analyzer) Analyze(c Capture) PulseAnalysis {
	result := PulseAnalysis{
		DecayTime: a.DecayTime(c.Pulse),
		RiseTime:  a.RiseTime(c.Pulse),
		PulseArea: a.PulseArea(c.Pulse),
		Baseline:  c.Baseline,
		Threshold: c.Threshold,
	}
	// UndefinedTime is negative, so an untimed decay fails this cut on its
	// own; no separate guard is needed.
	result.IsNeutron = result.DecayTime > a.decayCut &&
		result.RiseTime > a.riseCut &&
		result.PulseArea > a.areaCut
	return result
}

// DecayTime returns the elapsed time from the waveform peak to the first
// subsequent sample below 10% of peak. Pulses below the minimum amplitude,
// and pulses that never fall below 10% inside the window, are undefined
// rather than zero: a truncated tail must not masquerade as a fast decay.
func (a *Analyzer) DecayTime(p Pulse) float64 {
	var peak uint8
	peakIndex := 0
	for i, s := range p.Samples {
		if s > peak {
			peak = s
			peakIndex = i
		}
	}

	if peak < a.minAmplitude {
		return UndefinedTime
	}

	cut := uint8(float64(peak) * 0.1)
	for i := peakIndex; i < len(p.Samples); i++ {
		if p.Samples[i] < cut {
			return float64(i-peakIndex) * a.sampleIntervalMicros
		}
	}
	return UndefinedTime
}

// RiseTime returns the 10%→90% climb time. The 90% search starts at the 10%
// crossing so a noisy pre-pulse sample cannot produce a negative duration.
// A peak in slot 0 legitimately yields zero.
func (a *Analyzer) RiseTime(p Pulse) float64 {
	var peak uint8
	for _, s := range p.Samples {
		if s > peak {
			peak = s
		}
	}

	cut10 := 0.1 * float64(peak)
	cut90 := 0.9 * float64(peak)
	t10, t90 := 0, 0

	for i, s := range p.Samples {
		if float64(s) >= cut10 {
			t10 = i
			break
		}
	}
	for i := t10; i < len(p.Samples); i++ {
		if float64(p.Samples[i]) >= cut90 {
			t90 = i
			break
		}
	}
	return float64(t90-t10) * a.sampleIntervalMicros
}

// PulseArea integrates the waveform with the trapezoidal rule, each segment
// weighted by the sample interval. Non-negative for non-negative samples.
func (a *Analyzer) PulseArea(p Pulse) float64 {
	area := 0.0
	for i := 0; i+1 < len(p.Samples); i++ {
		area += (float64(p.Samples[i]) + float64(p.Samples[i+1])) * 0.5 * a.sampleIntervalMicros
	}
	return area
}
