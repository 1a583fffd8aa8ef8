package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/neutron.report/api"
	"github.com/banshee-data/neutron.report/db"
	"github.com/banshee-data/neutron.report/internal/adc"
	"github.com/banshee-data/neutron.report/internal/detector"
	"github.com/banshee-data/neutron.report/internal/version"
)

var (
	devMode    = flag.Bool("dev", false, "Run in dev mode with a simulated frontend")
	listen     = flag.String("listen", ":8080", "Listen address")
	serialPort = flag.String("serial", "/dev/ttyUSB0", "Serial device of the analog frontend")
	dbFile     = flag.String("db", "neutron_data.db", "Path to the pulse log database")
)

// recordNewPulses appends any pulses captured since the last call to the
// observation log.
func recordNewPulses(d *detector.Detector, pulseDB *db.DB, sessionID string, lastSeen *uint64) {
	stats := d.Snapshot()
	if stats.TotalPulses == *lastSeen {
		return
	}
	*lastSeen = stats.TotalPulses

	index := d.PulseCount() - 1
	if index < 0 {
		return
	}
	p, err := d.PulseAt(index)
	if err != nil {
		return
	}
	a, err := d.AnalysisAt(index)
	if err != nil {
		return
	}
	rec := db.PulseRecord{
		SessionID: sessionID,
		TSMicros:  p.TimestampMicros,
		PeakValue: int(p.PeakValue),
		DecayTime: a.DecayTime,
		RiseTime:  a.RiseTime,
		PulseArea: a.PulseArea,
		IsNeutron: a.IsNeutron,
		Baseline:  a.Baseline,
		Threshold: a.Threshold,
	}
	if err := pulseDB.RecordPulse(rec); err != nil {
		log.Printf("failed to record pulse: %v", err)
	} else {
		log.Printf("Recorded pulse: %s", rec.String())
	}
}

// Main
func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	log.Printf("neutron.report %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)

	cfg := detector.DefaultConfig()

	var src detector.SampleSource
	var serialSrc *adc.SerialSource
	if *devMode {
		src = adc.NewSimSource(adc.DefaultSimParams())
	} else {
		var err error
		serialSrc, err = adc.NewSerialSource(*serialPort, cfg.MaxRaw)
		if err != nil {
			log.Fatalf("failed to open analog frontend: %v", err)
		}
		defer serialSrc.Close()
		src = serialSrc
	}

	pulseDB, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pulseDB.Close()

	sessionID := uuid.NewString()
	det := detector.New(src, cfg)

	// Create a wait group for the frontend monitor, acquisition loop and
	// HTTP server routines
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run the monitor routine to manage IO on the serial frontend
	if serialSrc != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := serialSrc.Monitor(ctx); err != nil && err != context.Canceled {
				log.Printf("failed to monitor analog frontend: %v", err)
			}
			log.Print("frontend monitor routine terminated")
		}()
	}

	// acquisition loop: poll the detector faster than the capture dead-time
	// and append each new classified pulse to the observation log
	wg.Add(1)
	go func() {
		defer wg.Done()
		det.Begin()
		var lastSeen uint64
		for {
			select {
			case <-ctx.Done():
				log.Printf("acquisition routine terminated")
				return
			default:
			}
			if err := det.Update(); err != nil {
				log.Printf("detector update failed: %v", err)
				return
			}
			recordNewPulses(det, pulseDB, sessionID, &lastSeen)
			time.Sleep(200 * time.Microsecond)
		}
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// mount the admin debugging routes (accessible only in dev mode or over Tailscale)
		pulseDB.AttachAdminRoutes(mux)

		// mount the API handlers for the detector query surface
		apiMux := api.NewServer(det, pulseDB, sessionID).ServeMux()
		mux.Handle("/api/", http.StripPrefix("/api", apiMux))

		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("got request %q", r.URL.Path)
			mux.ServeHTTP(w, r)
		})

		server := &http.Server{
			Addr:    *listen,
			Handler: h,
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
