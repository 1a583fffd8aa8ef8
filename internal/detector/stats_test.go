package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// flatPulse fills every slot with the same value; its trapezoidal area is
// exactly value*(slots-1)*interval.
func flatPulse(value uint8) Pulse {
	cfg := DefaultConfig()
	samples := make([]uint8, cfg.SamplesPerPulse)
	for i := range samples {
		samples[i] = value
	}
	return Pulse{TimestampMicros: 1000, Samples: samples, PeakValue: value}
}

func TestAreaStatsEmpty(t *testing.T) {
	d, _ := newTestDetector()
	assert.Equal(t, AreaSummary{}, d.AreaStats())
}

func TestAreaStatsSinglePulse(t *testing.T) {
	d, _ := newTestDetector()
	d.store.Push(Capture{Pulse: flatPulse(20)})

	s := d.AreaStats()
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 5800.0, s.Mean) // 20 * 29 slots * 10µs
	assert.Equal(t, 0.0, s.StdDev)
	assert.Equal(t, 5800.0, s.P50)
	assert.Equal(t, 5800.0, s.P95)
}

func TestAreaStatsPopulation(t *testing.T) {
	d, _ := newTestDetector()
	for _, v := range []uint8{30, 10, 20} {
		d.store.Push(Capture{Pulse: flatPulse(v)})
	}

	s := d.AreaStats()
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 5800.0, s.Mean, 1e-9)
	assert.InDelta(t, 2900.0, s.StdDev, 1e-9)
	assert.Equal(t, 5800.0, s.P50)
	assert.Equal(t, 8700.0, s.P95)
}
