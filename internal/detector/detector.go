// Package detector implements a single-channel neutron pulse detector: it
// polls an analog acquisition frontend, tracks the noise floor adaptively,
// captures short waveform snippets when a reading crosses the detection
// threshold, and classifies each snippet by pulse shape (rise time, decay
// time, integrated area).
//
// All mutable state lives in one Detector instance and is touched only
// under its mutex. The embedding caller drives acquisition by calling
// Update from a single control goroutine at a cadence faster than the
// capture dead-time; the query surface (pulse retrieval, statistics) may be
// called from other goroutines — HTTP handlers in practice — and serializes
// against the poll loop through the same mutex.
package detector

import (
	"sync"

	"github.com/banshee-data/neutron.report/internal/monitoring"
)

// Stats is a point-in-time snapshot of the running detector statistics.
type Stats struct {
	TotalPulses         uint64
	NeutronCount        uint64
	LastNeutronTimeUs   int64
	MaxPulseArea        float64
	MaxDecayTime        float64
	Baseline            float64
	NoiseRMS            float64
	Threshold           float64
	InputConnected      bool
	LastCaptureTimeUs   int64
	LastConnCheckTimeUs int64
}

// Detector orchestrates the acquisition pipeline. Construct with New, call
// Begin once, then call Update repeatedly from one goroutine.
type Detector struct {
	cfg Config
	src SampleSource

	over     *Oversampler
	tracker  *BaselineTracker
	conn     *ConnectionMonitor
	store    *PulseStore
	analyzer *Analyzer

	mu          sync.Mutex
	initialized bool

	inputConnected      bool
	lastConnectionCheck int64
	lastCaptureTime     int64

	totalPulses     uint64
	neutronCount    uint64
	lastNeutronTime int64
	maxPulseArea    float64
	maxDecayTime    float64
}

// New builds a detector over the given source. State starts at the
// documented defaults; nothing is read from the source until Begin.
func New(src SampleSource, cfg Config) *Detector {
	return &Detector{
		cfg:      cfg,
		src:      src,
		over:     NewOversampler(src, cfg.OversampleCount, cfg.OversampleIntervalMicros),
		tracker:  NewBaselineTracker(cfg),
		conn:     NewConnectionMonitor(src, cfg),
		store:    NewPulseStore(cfg.MaxPulses),
		analyzer: NewAnalyzer(cfg),
	}
}

// Begin arms the detector and runs one immediate connection probe so a
// freshly started detector does not sit dark for the first check interval.
// Calling Begin again is a no-op.
func (d *Detector) Begin() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initialized {
		return
	}
	d.initialized = true
	d.inputConnected = d.conn.CheckConnected()
	d.lastConnectionCheck = d.src.NowMicros()
	monitoring.Logf("[detector] initialized on channel %d (connected=%v, threshold=%.1f)",
		d.cfg.Channel, d.inputConnected, d.tracker.Threshold())
}

// IsInitialized reports whether Begin has run.
func (d *Detector) IsInitialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialized
}

// Update runs one poll cycle: periodic connection check, baseline update,
// trigger decision and, on a threshold crossing past the dead-time, a full
// waveform capture. It blocks the calling goroutine for a bounded duration
// (the capture window plus oversampling overhead) and must only be called
// from one goroutine. Calling Update before Begin is an error.
func (d *Detector) Update() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return ErrNotInitialized
	}

	now := d.src.NowMicros()

	if now-d.lastConnectionCheck > d.cfg.ConnectionCheckIntervalMicros {
		connected := d.conn.CheckConnected()
		d.lastConnectionCheck = now
		if !connected {
			if d.inputConnected {
				// Transition to disconnected: drop transient state but keep
				// the baseline and threshold so re-acquisition is warm.
				monitoring.Logf("[detector] input disconnected; clearing pulse store")
				d.resetLocked()
			}
			d.inputConnected = false
			return nil
		}
		if !d.inputConnected {
			monitoring.Logf("[detector] input reconnected")
		}
		d.inputConnected = true
	}

	if !d.inputConnected {
		return nil
	}

	d.tracker.Update(d.over.Sample())

	if now-d.lastCaptureTime >= d.cfg.MinCaptureIntervalMicros {
		reading := d.over.Sample()
		if float64(reading)-d.tracker.Baseline() >= d.tracker.Threshold() {
			// The dead-time clock advances even when the capture aborts on
			// saturation; a continuously saturated input retries at the
			// dead-time cadence, not every poll.
			d.lastCaptureTime = now
			d.capturePulse()
		}
	}
	return nil
}

// capturePulse acquires one fixed-length waveform. Each slot is gated on
// its scheduled offset from the window start. A saturated raw reading
// aborts the whole capture: an out-of-range event would corrupt the area
// and decay-time math, so no partial pulse is ever stored and the counters
// stay untouched. Caller holds d.mu.
func (d *Detector) capturePulse() {
	n := d.cfg.SamplesPerPulse
	p := Pulse{
		TimestampMicros: d.src.NowMicros(),
		Samples:         make([]uint8, n),
	}

	// Compression divisor from the raw range down to 8 bits (10-bit: >>2).
	divisor := (d.cfg.MaxRaw + 1) / 256
	if divisor < 1 {
		divisor = 1
	}

	var peak uint8
	start := d.src.NowMicros()
	for i := 0; i < n; i++ {
		spinUntil(d.src, start+int64(i)*d.cfg.SampleIntervalMicros)

		raw := d.over.Sample()
		if raw >= d.cfg.MaxRaw {
			return
		}

		s := raw / divisor
		if s > 255 {
			s = 255
		}
		p.Samples[i] = uint8(s)
		if p.Samples[i] > peak {
			peak = p.Samples[i]
		}
	}
	p.PeakValue = peak

	capture := Capture{
		Pulse:     p,
		Baseline:  d.tracker.Baseline(),
		Threshold: d.tracker.Threshold(),
	}
	d.store.Push(capture)
	d.totalPulses++

	analysis := d.analyzer.Analyze(capture)
	if analysis.IsNeutron {
		d.neutronCount++
		d.lastNeutronTime = p.TimestampMicros
	}
	if analysis.PulseArea > d.maxPulseArea {
		d.maxPulseArea = analysis.PulseArea
	}
	if analysis.DecayTime > d.maxDecayTime {
		d.maxDecayTime = analysis.DecayTime
	}
}

// Reset clears the ring buffer and the transient counters. The baseline,
// noise estimate and threshold are deliberately retained.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
}

func (d *Detector) resetLocked() {
	d.store.Reset()
	d.totalPulses = 0
	d.neutronCount = 0
	d.lastNeutronTime = 0
	d.maxPulseArea = 0
	d.maxDecayTime = 0
}

// PulseCount returns the number of pulses currently retained.
func (d *Detector) PulseCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.Count()
}

// PulseAt returns the retained pulse at the given logical index
// (0 = oldest). An index at or beyond PulseCount is ErrIndexOutOfRange.
func (d *Detector) PulseAt(index int) (Pulse, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, err := d.store.Get(index)
	if err != nil {
		return Pulse{}, err
	}
	return c.Pulse, nil
}

// CaptureAt returns the full capture record (pulse plus baseline/threshold
// snapshot) at the given logical index.
func (d *Detector) CaptureAt(index int) (Capture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.Get(index)
}

// AnalysisAt recomputes the pulse-shape analysis for the retained pulse at
// the given logical index, using the baseline/threshold snapshot taken at
// capture time.
func (d *Detector) AnalysisAt(index int) (PulseAnalysis, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, err := d.store.Get(index)
	if err != nil {
		return PulseAnalysis{}, err
	}
	return d.analyzer.Analyze(c), nil
}

// IsConnected reports the last connection-check verdict. While
// disconnected, queries stay valid and return the last-known data.
func (d *Detector) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inputConnected
}

// Snapshot returns the running statistics.
func (d *Detector) Snapshot() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Stats{
		TotalPulses:         d.totalPulses,
		NeutronCount:        d.neutronCount,
		LastNeutronTimeUs:   d.lastNeutronTime,
		MaxPulseArea:        d.maxPulseArea,
		MaxDecayTime:        d.maxDecayTime,
		Baseline:            d.tracker.Baseline(),
		NoiseRMS:            d.tracker.NoiseRMS(),
		Threshold:           d.tracker.Threshold(),
		InputConnected:      d.inputConnected,
		LastCaptureTimeUs:   d.lastCaptureTime,
		LastConnCheckTimeUs: d.lastConnectionCheck,
	}
}

// Config returns the construction-time configuration.
func (d *Detector) Config() Config { return d.cfg }
