package adc

import (
	"math"
	"math/rand"
)

// SimParams shapes the simulated detector signal. The defaults produce
// neutron-like events against a quiet floor: a linear climb over RiseMicros
// followed by an exponential tail with time constant DecayTauMicros.
type SimParams struct {
	// Quiescent is the no-signal raw level.
	Quiescent int
	// NoiseSigma is the gaussian noise on every reading, raw units.
	NoiseSigma float64
	// Amplitude is the pulse height above quiescent, raw units.
	Amplitude float64
	// RiseMicros is the linear climb duration.
	RiseMicros float64
	// DecayTauMicros is the exponential decay time constant.
	DecayTauMicros float64
	// PeriodMicros is the spacing between simulated events.
	PeriodMicros int64
	// MaxRaw clips every reading (10-bit frontend: 1023).
	MaxRaw int
	// Seed fixes the noise stream so runs are reproducible.
	Seed int64
}

// DefaultSimParams returns a tuning whose events pass all three
// discrimination cuts.
func DefaultSimParams() SimParams {
	return SimParams{
		Quiescent:      40,
		NoiseSigma:     2.0,
		Amplitude:      800,
		RiseMicros:     30,
		DecayTauMicros: 60,
		PeriodMicros:   5000,
		MaxRaw:         1023,
		Seed:           1,
	}
}

// SimSource is a deterministic simulated frontend with a virtual
// microsecond clock. Every clock query and every read advances virtual
// time, so the detector's busy-wait deadlines terminate and a dev-mode
// acquisition loop runs at CPU speed rather than wall-clock speed.
type SimSource struct {
	params SimParams
	rng    *rand.Rand

	nowMicros int64
	// clock cost per operation, virtual µs
	tickPerNow  int64
	tickPerRead int64
}

// NewSimSource builds a simulator at virtual time zero.
func NewSimSource(params SimParams) *SimSource {
	return &SimSource{
		params:      params,
		rng:         rand.New(rand.NewSource(params.Seed)),
		tickPerNow:  1,
		tickPerRead: 1,
	}
}

// NowMicros returns the virtual clock, advancing it by one tick.
func (s *SimSource) NowMicros() int64 {
	s.nowMicros += s.tickPerNow
	return s.nowMicros
}

// ReadRaw samples the simulated signal at the current virtual time.
func (s *SimSource) ReadRaw() int {
	s.nowMicros += s.tickPerRead

	level := float64(s.params.Quiescent) + s.pulseAt(s.nowMicros)
	if s.params.NoiseSigma > 0 {
		level += s.rng.NormFloat64() * s.params.NoiseSigma
	}

	v := int(level)
	if v < 0 {
		v = 0
	}
	if v > s.params.MaxRaw {
		v = s.params.MaxRaw
	}
	return v
}

// pulseAt evaluates the event waveform at virtual time t. Events repeat on
// a fixed period; between events the exponential tail is effectively zero.
func (s *SimSource) pulseAt(t int64) float64 {
	if s.params.PeriodMicros <= 0 || s.params.Amplitude <= 0 {
		return 0
	}
	dt := float64(t % s.params.PeriodMicros)
	switch {
	case dt <= s.params.RiseMicros:
		if s.params.RiseMicros <= 0 {
			return s.params.Amplitude
		}
		return s.params.Amplitude * dt / s.params.RiseMicros
	default:
		return s.params.Amplitude * math.Exp(-(dt-s.params.RiseMicros)/s.params.DecayTauMicros)
	}
}
