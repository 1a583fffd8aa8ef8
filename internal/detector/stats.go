package detector

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// AreaSummary describes the pulse-area population across the retained
// pulses. It is derived on demand from the ring buffer; with fewer than two
// pulses the spread fields are zero.
type AreaSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	P50    float64 `json:"p50"`
	P95    float64 `json:"p95"`
}

// AreaStats summarizes the integrated areas of the retained pulses. Energy
// proxy statistics over the current window are cheap to recompute because
// the ring holds at most Config.MaxPulses entries.
func (d *Detector) AreaStats() AreaSummary {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.store.Count()
	if n == 0 {
		return AreaSummary{}
	}

	areas := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		c, err := d.store.Get(i)
		if err != nil {
			break
		}
		areas = append(areas, d.analyzer.PulseArea(c.Pulse))
	}

	summary := AreaSummary{
		Count: len(areas),
		Mean:  stat.Mean(areas, nil),
	}
	if len(areas) > 1 {
		summary.StdDev = stat.StdDev(areas, nil)
	}

	sorted := make([]float64, len(areas))
	copy(sorted, areas)
	sort.Float64s(sorted)
	summary.P50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	summary.P95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	return summary
}
