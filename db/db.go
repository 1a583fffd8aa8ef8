// Package db is the append-only pulse observation log. The detector core
// never reads it back: the in-memory ring buffer is the only acquisition
// state, and this log exists purely for reporting and offline analysis.
package db

import (
	"compress/gzip"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"
)

type DB struct {
	*sql.DB
}

func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS pulses (
			session_id TEXT,
			ts_micros BIGINT,
			peak_value INTEGER,
			decay_time DOUBLE,
			rise_time DOUBLE,
			pulse_area DOUBLE,
			is_neutron BOOLEAN,
			baseline DOUBLE,
			threshold DOUBLE,
			recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// PulseRecord is one classified pulse as logged.
type PulseRecord struct {
	SessionID string
	TSMicros  int64
	PeakValue int
	DecayTime float64
	RiseTime  float64
	PulseArea float64
	IsNeutron bool
	Baseline  float64
	Threshold float64
}

func (r *PulseRecord) String() string {
	return fmt.Sprintf("ts=%dµs peak=%d area=%.1f decay=%.1f rise=%.1f neutron=%v",
		r.TSMicros, r.PeakValue, r.PulseArea, r.DecayTime, r.RiseTime, r.IsNeutron)
}

// RecordPulse appends one classified pulse to the log.
func (db *DB) RecordPulse(r PulseRecord) error {
	_, err := db.Exec(
		`INSERT INTO pulses (session_id, ts_micros, peak_value, decay_time, rise_time, pulse_area, is_neutron, baseline, threshold)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.TSMicros, r.PeakValue, r.DecayTime, r.RiseTime, r.PulseArea, r.IsNeutron, r.Baseline, r.Threshold,
	)
	return err
}

// RecentPulses returns the most recently logged pulses, newest first.
func (db *DB) RecentPulses(limit int) ([]PulseRecord, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := db.Query(
		`SELECT session_id, ts_micros, peak_value, decay_time, rise_time, pulse_area, is_neutron, baseline, threshold
		 FROM pulses ORDER BY ts_micros DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PulseRecord
	for rows.Next() {
		var r PulseRecord
		if err := rows.Scan(&r.SessionID, &r.TSMicros, &r.PeakValue, &r.DecayTime, &r.RiseTime, &r.PulseArea, &r.IsNeutron, &r.Baseline, &r.Threshold); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (db *DB) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)
	// create a tailSQL instance and point it to our DB
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		log.Fatalf("failed to create tailsql server: %v", err)
	}
	tsql.SetDB("sqlite://neutron.db", db.DB, &tailsql.DBOptions{
		Label: "Neutron DB",
	})

	// mount the tailSQL server on the debug /tailsql path
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("backup", "Create and download a backup of the database now", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		unixTime := time.Now().Unix()
		backupPath := fmt.Sprintf("backup-%d.db", unixTime)
		if _, err := db.DB.Exec("VACUUM INTO ?", backupPath); err != nil {
			http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", backupPath))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Encoding", "gzip")

		backupFile, err := os.Open(backupPath)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
			return
		}

		// close the backup file after sending it
		// and remove it from the filesystem
		defer func() {
			backupFile.Close()
			if err := os.Remove(backupPath); err != nil {
				log.Printf("Failed to remove backup file: %v", err)
			}
		}()

		gzipWriter := gzip.NewWriter(w)
		defer gzipWriter.Close()
		if _, err := gzipWriter.Write([]byte{}); err != nil {
			// Need to write something to initialize the gzip header
			http.Error(w, fmt.Sprintf("Failed to initialize gzip writer: %v", err), http.StatusInternalServerError)
			return
		}

		if _, err := io.Copy(gzipWriter, backupFile); err != nil {
			http.Error(w, fmt.Sprintf("Failed to write backup file: %v", err), http.StatusInternalServerError)
			return
		}
	}))
}
