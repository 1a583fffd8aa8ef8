package detector

import "math"

// BaselineTracker maintains the slowly-adapting no-signal level and the
// detection threshold derived from recent noise magnitude. It is a
// single-pole low-pass with a deviation guard: ordinary noise wiggle moves
// the baseline but not the noise model, so the threshold stays put under
// quiet conditions and a real pulse cannot inflate its own future
// threshold.
type BaselineTracker struct {
	baseline  float64
	noiseRMS  float64
	threshold float64

	deviationGuard float64
}

// NewBaselineTracker seeds the filter with the configured initial values.
func NewBaselineTracker(cfg Config) *BaselineTracker {
	return &BaselineTracker{
		baseline:       cfg.InitialBaseline,
		noiseRMS:       cfg.InitialNoiseRMS,
		threshold:      cfg.InitialThreshold,
		deviationGuard: cfg.BaselineDeviationGuard,
	}
}

// Update folds one oversampled reading into the baseline and, when the
// deviation is large enough to plausibly be a pulse onset, into the noise
// model. It returns the new baseline and whether the threshold moved.
//
// The coefficients (0.95/0.05 EMA, 4-sigma margin, 2.0 noise floor) are
// fixed constants of the detection contract.
func (b *BaselineTracker) Update(reading int) (baseline float64, thresholdChanged bool) {
	dev := float64(reading) - b.baseline
	b.baseline = 0.95*b.baseline + 0.05*float64(reading)

	if math.Abs(dev) > b.deviationGuard {
		b.noiseRMS = math.Max(0.95*b.noiseRMS+0.05*math.Abs(dev), 2.0)
		b.threshold = b.baseline + 4*b.noiseRMS
		thresholdChanged = true
	}
	return b.baseline, thresholdChanged
}

// Baseline returns the current no-signal estimate.
func (b *BaselineTracker) Baseline() float64 { return b.baseline }

// NoiseRMS returns the current noise magnitude estimate.
func (b *BaselineTracker) NoiseRMS() float64 { return b.noiseRMS }

// Threshold returns the current detection threshold.
func (b *BaselineTracker) Threshold() float64 { return b.threshold }
