package detector

// Pulse is one captured waveform snippet. Samples always has exactly
// Config.SamplesPerPulse entries, each compressed to the 8-bit output range.
// A Pulse is immutable once captured; the ring buffer owns it.
type Pulse struct {
	// TimestampMicros is the monotonic clock at capture start.
	TimestampMicros int64
	// Samples is the ordered waveform, oldest first.
	Samples []uint8
	// PeakValue caches max(Samples).
	PeakValue uint8
}

// Capture pairs a pulse with the baseline and threshold that were in effect
// when it was taken. Carrying the snapshot makes every later analysis a pure
// function of the record instead of whatever the tracker has drifted to.
type Capture struct {
	Pulse     Pulse
	Baseline  float64
	Threshold float64
}

// PulseStore is a fixed-capacity ring holding the most recent captures.
// Logical index 0 is always the oldest retained capture; Count()-1 the
// newest. Once full, Push overwrites the oldest slot (FIFO eviction).
// Memory is bounded: the backing array never grows.
type PulseStore struct {
	slots       []Capture
	writeCursor int
	storedCount int
}

// NewPulseStore returns an empty store with the given capacity.
func NewPulseStore(capacity int) *PulseStore {
	return &PulseStore{slots: make([]Capture, capacity)}
}

// Capacity returns the fixed slot count.
func (s *PulseStore) Capacity() int { return len(s.slots) }

// Count returns the number of retained captures; it saturates at capacity.
func (s *PulseStore) Count() int { return s.storedCount }

// Push stores a capture, evicting the oldest entry once at capacity. It
// always succeeds.
func (s *PulseStore) Push(c Capture) {
	s.slots[s.writeCursor] = c
	s.writeCursor = (s.writeCursor + 1) % len(s.slots)
	if s.storedCount < len(s.slots) {
		s.storedCount++
	}
}

// Get maps a logical index (0 = oldest retained) to its physical slot.
// Indexes at or beyond Count are an explicit error, never a zeroed pulse.
func (s *PulseStore) Get(index int) (Capture, error) {
	if index < 0 || index >= s.storedCount {
		return Capture{}, ErrIndexOutOfRange
	}
	physical := (s.writeCursor + len(s.slots) - s.storedCount + index) % len(s.slots)
	return s.slots[physical], nil
}

// Reset empties the store and rewinds the cursor. The underlying slots are
// not erased; because Count drops to zero they can never be read again, so
// stale contents are unreachable.
func (s *PulseStore) Reset() {
	s.writeCursor = 0
	s.storedCount = 0
}
