package detector

// SampleSource is the acquisition frontend: one analog channel and a
// monotonic microsecond clock. Implementations live outside this package
// (internal/adc provides a serial-attached frontend and a simulator).
type SampleSource interface {
	// ReadRaw returns the instantaneous raw reading in [0, MaxRaw].
	ReadRaw() int
	// NowMicros returns a monotonically non-decreasing microsecond counter.
	NowMicros() int64
}

// spinUntil busy-waits on the source clock until it reaches deadlineMicros.
// Capture timing is a hard deadline contract, not best-effort: each sample
// slot must not be read earlier than its scheduled offset, because uneven
// spacing biases the area and rise-time computations. Platforms with a
// high-resolution timer can substitute one here without changing the
// contract.
func spinUntil(src SampleSource, deadlineMicros int64) {
	for src.NowMicros() < deadlineMicros {
	}
}

// Oversampler suppresses high-frequency noise by averaging a burst of raw
// reads taken at fixed micro-offsets from the burst start.
type Oversampler struct {
	src            SampleSource
	count          int
	intervalMicros int64
}

// NewOversampler returns an Oversampler taking count reads spaced
// intervalMicros apart.
func NewOversampler(src SampleSource, count int, intervalMicros int64) *Oversampler {
	return &Oversampler{src: src, count: count, intervalMicros: intervalMicros}
}

// Sample reads the source count times, each read gated on its scheduled
// offset, and returns the integer average. For a power-of-two count the
// truncating division is exact (equivalent to a right shift), which keeps
// the average free of systematic bias.
func (o *Oversampler) Sample() int {
	sum := 0
	start := o.src.NowMicros()
	for i := 0; i < o.count; i++ {
		spinUntil(o.src, start+int64(i)*o.intervalMicros)
		sum += o.src.ReadRaw()
	}
	return sum / o.count
}
