package detector

// Probe shape for the input connection check: of probeCount raw reads, at
// least probeQuorum must land strictly between the rails for the input to
// count as attached. A floating pin sits at a rail (or at zero), so rail
// readings are excluded outright.
const (
	probeCount  = 10
	probeQuorum = 8
)

// ConnectionMonitor verifies the sensor is physically attached and producing
// a plausible signal. It reads the raw source directly, without
// oversampling: the probe cares about where readings sit, not how noisy
// they are.
type ConnectionMonitor struct {
	src         SampleSource
	maxRaw      int
	delayMicros int64
}

// NewConnectionMonitor builds a monitor probing the given source.
func NewConnectionMonitor(src SampleSource, cfg Config) *ConnectionMonitor {
	return &ConnectionMonitor{
		src:         src,
		maxRaw:      cfg.MaxRaw,
		delayMicros: cfg.ConnectionProbeDelayMicros,
	}
}

// CheckConnected probes the input and reports whether it looks attached.
func (m *ConnectionMonitor) CheckConnected() bool {
	inRange := 0
	start := m.src.NowMicros()
	for i := 0; i < probeCount; i++ {
		spinUntil(m.src, start+int64(i)*m.delayMicros)
		v := m.src.ReadRaw()
		if v > 10 && v < m.maxRaw-10 {
			inRange++
		}
	}
	return inRange >= probeQuorum
}
