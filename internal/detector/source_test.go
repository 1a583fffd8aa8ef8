package detector

import "github.com/banshee-data/neutron.report/internal/monitoring"

func init() {
	// keep capture diagnostics out of test output
	monitoring.SetLogger(nil)
}

// scriptSource is a deterministic SampleSource for tests. Virtual time
// advances one microsecond per clock query and per read, so every busy-wait
// in the pipeline terminates. Reads come from the scripted queue first and
// fall back to levelFn (or level) once the queue drains.
type scriptSource struct {
	now     int64
	level   int
	levelFn func(nowMicros int64) int
	queue   []int
}

func newScriptSource(level int) *scriptSource {
	return &scriptSource{level: level}
}

func (s *scriptSource) NowMicros() int64 {
	s.now++
	return s.now
}

func (s *scriptSource) ReadRaw() int {
	s.now++
	if len(s.queue) > 0 {
		v := s.queue[0]
		s.queue = s.queue[1:]
		return v
	}
	if s.levelFn != nil {
		return s.levelFn(s.now)
	}
	return s.level
}

// advance jumps the virtual clock, e.g. past the connection-check interval.
func (s *scriptSource) advance(micros int64) {
	s.now += micros
}

// enqueue appends raw readings to the script.
func (s *scriptSource) enqueue(values ...int) {
	s.queue = append(s.queue, values...)
}

// enqueueBurst appends one oversampling burst worth of a constant reading,
// so the burst average equals the value exactly.
func (s *scriptSource) enqueueBurst(value, count int) {
	for i := 0; i < count; i++ {
		s.queue = append(s.queue, value)
	}
}
