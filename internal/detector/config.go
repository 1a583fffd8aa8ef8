package detector

// Config holds every construction-time constant of the detector. None of the
// values are runtime-mutable: the classification thresholds and the baseline
// filter coefficients are part of the discrimination contract and changing
// them invalidates comparisons against previously recorded data.
type Config struct {
	// Channel identifies the analog input on the acquisition frontend.
	Channel int

	// InitialThreshold is the detection threshold in raw ADC units before the
	// noise tracker has produced its first estimate.
	InitialThreshold float64
	// InitialBaseline seeds the baseline filter. Mid-rail for a 10-bit ADC.
	InitialBaseline float64
	// InitialNoiseRMS seeds the noise estimator.
	InitialNoiseRMS float64

	// MaxRaw is the largest value the frontend can report (10-bit: 1023).
	// A reading at MaxRaw during capture is treated as saturation.
	MaxRaw int

	// SamplesPerPulse is the fixed length of every captured waveform.
	SamplesPerPulse int
	// SampleIntervalMicros is the slot spacing inside a capture window.
	SampleIntervalMicros int64
	// OversampleCount is how many raw reads are averaged per sample.
	OversampleCount int
	// OversampleIntervalMicros is the spacing between oversample reads.
	OversampleIntervalMicros int64

	// MaxPulses is the ring buffer capacity.
	MaxPulses int

	// MinCaptureIntervalMicros is the dead-time between capture attempts.
	MinCaptureIntervalMicros int64
	// ConnectionCheckIntervalMicros is how often the input is probed.
	ConnectionCheckIntervalMicros int64
	// ConnectionProbeDelayMicros is the spacing between probe reads.
	ConnectionProbeDelayMicros int64

	// MinPulseAmplitude is the smallest peak (8-bit units) that the analyzer
	// will attempt to time; anything below yields an undefined decay time.
	MinPulseAmplitude int

	// BaselineDeviationGuard keeps ordinary noise wiggle from retriggering
	// the noise-RMS update (raw ADC units).
	BaselineDeviationGuard float64

	// Pulse-shape discrimination thresholds. Decay and rise are in
	// microseconds, area in (8-bit amplitude × microseconds).
	NeutronDecayTimeThreshold float64
	NeutronRiseTimeThreshold  float64
	NeutronAreaThreshold      float64
}

// DefaultConfig returns the reference tuning: a 10-bit frontend, 30-sample
// windows at 10µs, 16× oversampling at 2µs, and the published neutron
// discrimination thresholds.
func DefaultConfig() Config {
	return Config{
		Channel:                       0,
		InitialThreshold:              100,
		InitialBaseline:               512,
		InitialNoiseRMS:               40,
		MaxRaw:                        1023,
		SamplesPerPulse:               30,
		SampleIntervalMicros:          10,
		OversampleCount:               16,
		OversampleIntervalMicros:      2,
		MaxPulses:                     30,
		MinCaptureIntervalMicros:      2000,
		ConnectionCheckIntervalMicros: 1_000_000,
		ConnectionProbeDelayMicros:    100,
		MinPulseAmplitude:             10,
		BaselineDeviationGuard:        5,
		NeutronDecayTimeThreshold:     25.0,
		NeutronRiseTimeThreshold:      12.0,
		NeutronAreaThreshold:          500.0,
	}
}
