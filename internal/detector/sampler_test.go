package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOversamplerAveragesBurst(t *testing.T) {
	src := newScriptSource(0)
	src.enqueue(100, 104, 96, 100, 100, 104, 96, 100, 100, 104, 96, 100, 100, 104, 96, 100)

	o := NewOversampler(src, 16, 2)
	assert.Equal(t, 100, o.Sample())
}

func TestOversamplerTruncatingDivision(t *testing.T) {
	src := newScriptSource(0)
	// sum 1603 over 16 reads: integer average truncates to 100, matching a
	// right shift for the power-of-two count
	for i := 0; i < 15; i++ {
		src.enqueue(100)
	}
	src.enqueue(103)

	o := NewOversampler(src, 16, 2)
	assert.Equal(t, 100, o.Sample())
}

// deadlineSource records the virtual time of every read so the test can
// check the fixed-offset discipline.
type deadlineSource struct {
	scriptSource
	readTimes []int64
}

func (s *deadlineSource) ReadRaw() int {
	v := s.scriptSource.ReadRaw()
	s.readTimes = append(s.readTimes, s.now)
	return v
}

func TestOversamplerDeadlineDiscipline(t *testing.T) {
	src := &deadlineSource{scriptSource: *newScriptSource(50)}

	const count, interval = 16, 8
	o := NewOversampler(src, count, interval)
	start := src.now
	o.Sample()

	require.Len(t, src.readTimes, count)
	for i, at := range src.readTimes {
		// each reading is taken no earlier than its scheduled offset
		assert.GreaterOrEqual(t, at, start+int64(i)*interval, "read %d", i)
	}
}

func TestSpinUntilReachesDeadline(t *testing.T) {
	src := newScriptSource(0)
	spinUntil(src, 500)
	assert.GreaterOrEqual(t, src.now, int64(500))
}
