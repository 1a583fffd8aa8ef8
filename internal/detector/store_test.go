package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCapture(stamp int64) Capture {
	return Capture{
		Pulse: Pulse{
			TimestampMicros: stamp,
			Samples:         []uint8{uint8(stamp % 200)},
			PeakValue:       uint8(stamp % 200),
		},
		Baseline:  100,
		Threshold: 150,
	}
}

func TestPulseStoreEmpty(t *testing.T) {
	s := NewPulseStore(4)
	assert.Equal(t, 0, s.Count())
	assert.Equal(t, 4, s.Capacity())

	_, err := s.Get(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestPulseStoreOrdering(t *testing.T) {
	s := NewPulseStore(4)
	for i := int64(1); i <= 3; i++ {
		s.Push(testCapture(i))
	}
	require.Equal(t, 3, s.Count())

	for i := 0; i < 3; i++ {
		c, err := s.Get(i)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), c.Pulse.TimestampMicros, "logical index %d", i)
	}

	_, err := s.Get(3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = s.Get(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

// Pushing capacity+K pulses retains exactly capacity entries, and logical
// index 0 is the (K+1)-th pushed pulse, for every K.
func TestPulseStoreEviction(t *testing.T) {
	const capacity = 5
	for k := 0; k <= 2*capacity; k++ {
		s := NewPulseStore(capacity)
		total := capacity + k
		for i := 1; i <= total; i++ {
			s.Push(testCapture(int64(i)))
		}

		require.Equal(t, capacity, s.Count(), "k=%d", k)

		oldest, err := s.Get(0)
		require.NoError(t, err)
		assert.Equal(t, int64(k+1), oldest.Pulse.TimestampMicros, "k=%d", k)

		newest, err := s.Get(capacity - 1)
		require.NoError(t, err)
		assert.Equal(t, int64(total), newest.Pulse.TimestampMicros, "k=%d", k)
	}
}

func TestPulseStoreReset(t *testing.T) {
	s := NewPulseStore(3)
	for i := int64(1); i <= 5; i++ {
		s.Push(testCapture(i))
	}
	require.Equal(t, 3, s.Count())

	s.Reset()
	assert.Equal(t, 0, s.Count())

	// stale slots are unreachable after reset
	_, err := s.Get(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	// the store refills from a rewound cursor
	s.Push(testCapture(9))
	c, err := s.Get(0)
	require.NoError(t, err)
	assert.Equal(t, int64(9), c.Pulse.TimestampMicros)
}
