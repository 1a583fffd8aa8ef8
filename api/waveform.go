package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/neutron.report/internal/httputil"
)

// waveformHandler renders one captured pulse as an HTML line chart using
// go-echarts. This is a debugging-only endpoint to eyeball pulse shapes
// without pulling the JSON into a notebook.
// Query params:
//   - index (optional; defaults to the newest retained pulse)
func (s *Server) waveformHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	count := s.det.PulseCount()
	if count == 0 {
		httputil.NotFound(w, "no_pulses_detected")
		return
	}

	index := count - 1
	if q := r.URL.Query().Get("index"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil {
			httputil.BadRequest(w, "missing or invalid index")
			return
		}
		index = v
	}

	p, err := s.det.PulseAt(index)
	if err != nil {
		httputil.NotFound(w, fmt.Sprintf("failed to read pulse %d: %v", index, err))
		return
	}
	a, err := s.det.AnalysisAt(index)
	if err != nil {
		httputil.NotFound(w, fmt.Sprintf("failed to analyze pulse %d: %v", index, err))
		return
	}

	intervalUs := s.det.Config().SampleIntervalMicros
	xAxis := make([]string, len(p.Samples))
	data := make([]opts.LineData, len(p.Samples))
	for i, sample := range p.Samples {
		xAxis[i] = strconv.FormatInt(int64(i)*intervalUs, 10)
		data[i] = opts.LineData{Value: sample}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("Pulse %d (peak=%d, neutron=%v)", index, p.PeakValue, a.IsNeutron),
			Subtitle: fmt.Sprintf("rise=%.1fµs decay=%.1fµs area=%.1f baseline=%.1f threshold=%.1f",
				a.RiseTime, a.DecayTime, a.PulseArea, a.Baseline, a.Threshold),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "µs"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "amplitude (8-bit)"}),
	)
	line.SetXAxis(xAxis).AddSeries("samples", data)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := line.Render(w); err != nil {
		httputil.InternalError(w, fmt.Sprintf("failed to render chart: %v", err))
	}
}
