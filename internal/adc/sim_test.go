package adc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/neutron.report/internal/detector"
)

func TestSimDeterministic(t *testing.T) {
	a := NewSimSource(DefaultSimParams())
	b := NewSimSource(DefaultSimParams())
	for i := 0; i < 5000; i++ {
		require.Equal(t, a.ReadRaw(), b.ReadRaw(), "read %d", i)
	}
}

func TestSimReadingsInRange(t *testing.T) {
	params := DefaultSimParams()
	params.NoiseSigma = 50 // exaggerate so clipping actually engages
	src := NewSimSource(params)
	for i := 0; i < 20000; i++ {
		v := src.ReadRaw()
		require.GreaterOrEqual(t, v, 0)
		require.LessOrEqual(t, v, params.MaxRaw)
	}
}

func TestSimQuietFloor(t *testing.T) {
	params := DefaultSimParams()
	params.Amplitude = 0
	src := NewSimSource(params)

	sum := 0
	const n = 10000
	for i := 0; i < n; i++ {
		sum += src.ReadRaw()
	}
	mean := float64(sum) / n
	assert.InDelta(t, float64(params.Quiescent), mean, 1.0)
}

func TestSimPulseShape(t *testing.T) {
	params := DefaultSimParams()
	params.NoiseSigma = 0
	src := NewSimSource(params)

	minReading, maxReading := params.MaxRaw, 0
	for i := int64(0); i < params.PeriodMicros; i++ {
		v := src.ReadRaw()
		if v < minReading {
			minReading = v
		}
		if v > maxReading {
			maxReading = v
		}
	}

	// the crest of the linear climb and the settled tail, exactly
	assert.Equal(t, params.Quiescent+int(params.Amplitude), maxReading)
	assert.Equal(t, params.Quiescent, minReading)
}

// The default simulation tuning must actually drive the detection pipeline:
// after the baseline settles, the periodic events trigger captures.
func TestSimDrivesDetector(t *testing.T) {
	src := NewSimSource(DefaultSimParams())
	d := detector.New(src, detector.DefaultConfig())
	d.Begin()
	require.True(t, d.IsConnected())

	for i := 0; i < 20000; i++ {
		require.NoError(t, d.Update())
		if d.Snapshot().TotalPulses > 0 {
			break
		}
	}
	assert.Greater(t, d.Snapshot().TotalPulses, uint64(0))
}
