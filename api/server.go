// Package api is the HTTP/JSON adapter over the detector's query surface.
// It holds no acquisition state of its own: every handler reads through the
// detector accessors, which serialize against the poll loop.
package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/banshee-data/neutron.report/db"
	"github.com/banshee-data/neutron.report/internal/detector"
	"github.com/banshee-data/neutron.report/internal/httputil"
	"github.com/banshee-data/neutron.report/internal/version"
)

type Server struct {
	det       *detector.Detector
	db        *db.DB
	sessionID string
}

// NewServer wraps the detector and the observation log. db may be nil when
// running without persistence.
func NewServer(det *detector.Detector, db *db.DB, sessionID string) *Server {
	return &Server{det: det, db: db, sessionID: sessionID}
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/neutron/last", s.lastPulseHandler)
	mux.HandleFunc("/neutron/history", s.historyHandler)
	mux.HandleFunc("/neutron/stats", s.statsHandler)
	mux.HandleFunc("/neutron/pulse", s.pulseHandler)
	mux.HandleFunc("/neutron/waveform", s.waveformHandler)
	mux.HandleFunc("/neutron/log", s.logHandler)
	mux.HandleFunc("/", s.homeHandler)
	return mux
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Welcome to the Neutron Detector Server!"))
}

// pulsePayload is the on-wire pulse schema.
type pulsePayload struct {
	Timestamp  int64   `json:"timestamp"`
	DecayTime  float64 `json:"decay_time"`
	RiseTime   float64 `json:"rise_time"`
	PulseArea  float64 `json:"pulse_area"`
	IsNeutron  bool    `json:"is_neutron"`
	Baseline   float64 `json:"baseline"`
	Threshold  float64 `json:"threshold"`
	PeakValue  uint8   `json:"peak_value"`
	RawSamples []uint8 `json:"raw_samples"`
}

func (s *Server) pulsePayloadAt(index int) (pulsePayload, error) {
	p, err := s.det.PulseAt(index)
	if err != nil {
		return pulsePayload{}, err
	}
	a, err := s.det.AnalysisAt(index)
	if err != nil {
		return pulsePayload{}, err
	}
	return pulsePayload{
		Timestamp:  p.TimestampMicros,
		DecayTime:  a.DecayTime,
		RiseTime:   a.RiseTime,
		PulseArea:  a.PulseArea,
		IsNeutron:  a.IsNeutron,
		Baseline:   a.Baseline,
		Threshold:  a.Threshold,
		PeakValue:  p.PeakValue,
		RawSamples: p.Samples,
	}, nil
}

func (s *Server) lastPulseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	count := s.det.PulseCount()
	if count == 0 {
		httputil.NotFound(w, "no_pulses_detected")
		return
	}
	payload, err := s.pulsePayloadAt(count - 1)
	if err != nil {
		httputil.InternalError(w, fmt.Sprintf("failed to read last pulse: %v", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, payload)
}

func (s *Server) pulseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		httputil.BadRequest(w, "missing or invalid index")
		return
	}
	payload, err := s.pulsePayloadAt(index)
	if err != nil {
		// Out-of-range is a caller error, never a zeroed pulse.
		httputil.NotFound(w, fmt.Sprintf("failed to read pulse %d: %v", index, err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, payload)
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	count := 5
	if c := r.URL.Query().Get("count"); c != "" {
		if v, err := strconv.Atoi(c); err == nil && v > 0 {
			count = v
		}
	}

	stored := s.det.PulseCount()
	if count > stored {
		count = stored
	}
	start := stored - count

	pulses := make([]pulsePayload, 0, count)
	for i := start; i < stored; i++ {
		payload, err := s.pulsePayloadAt(i)
		if err != nil {
			// Raced with an eviction; drop the entry rather than fabricate.
			continue
		}
		pulses = append(pulses, payload)
	}

	stats := s.det.Snapshot()
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"pulses":        pulses,
		"count":         len(pulses),
		"total_pulses":  stats.TotalPulses,
		"neutron_count": stats.NeutronCount,
	})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	stats := s.det.Snapshot()
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"session_id":        s.sessionID,
		"version":           version.Version,
		"total_pulses":      stats.TotalPulses,
		"neutron_count":     stats.NeutronCount,
		"last_neutron_time": stats.LastNeutronTimeUs,
		"max_pulse_area":    stats.MaxPulseArea,
		"max_decay_time":    stats.MaxDecayTime,
		"current_baseline":  stats.Baseline,
		"current_threshold": stats.Threshold,
		"noise_rms":         stats.NoiseRMS,
		"input_connected":   stats.InputConnected,
		"area_summary":      s.det.AreaStats(),
	})
}

func (s *Server) logHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.db == nil {
		httputil.NotFound(w, "observation log not configured")
		return
	}
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil {
			limit = v
		}
	}
	records, err := s.db.RecentPulses(limit)
	if err != nil {
		httputil.InternalError(w, fmt.Sprintf("failed to retrieve pulse log: %v", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}
