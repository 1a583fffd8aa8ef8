// Package adc provides acquisition frontends for the neutron detector: a
// serial-attached analog frontend streaming raw ADC readings, and a
// deterministic simulator for dev mode and tests. Both satisfy
// detector.SampleSource.
package adc

import (
	"bufio"
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.bug.st/serial"

	"github.com/banshee-data/neutron.report/internal/monitoring"
)

// SerialSource reads a frontend board that streams one decimal raw ADC
// reading per line over a serial port. The board samples continuously; the
// host keeps the most recent value and hands it out on ReadRaw, so the
// detector's oversampling bursts see the freshest conversion without a
// round-trip per read.
type SerialSource struct {
	port   serial.Port
	maxRaw int

	latest atomic.Int64
	epoch  time.Time
}

// NewSerialSource opens the serial device at the conventional frontend
// settings (115200 8N1).
func NewSerialSource(portName string, maxRaw int) (*SerialSource, error) {
	mode := &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: 1,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, err
	}

	return &SerialSource{
		port:   port,
		maxRaw: maxRaw,
		epoch:  time.Now(),
	}, nil
}

// Monitor reads lines from the port until the context is cancelled,
// updating the latest reading. Malformed lines are skipped; the frontend
// emits a plain decimal per line and anything else is line noise.
func (s *SerialSource) Monitor(ctx context.Context) error {
	scan := bufio.NewScanner(s.port)

	lineChan := make(chan string)
	scanErrChan := make(chan error, 1)

	// The blocking scan.Scan runs in its own goroutine so the outer loop
	// can still observe context cancellation.
	go func() {
		defer close(lineChan)
		for scan.Scan() {
			select {
			case lineChan <- scan.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scan.Err(); err != nil {
			select {
			case scanErrChan <- err:
			case <-ctx.Done():
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-scanErrChan:
			return err
		case line, ok := <-lineChan:
			if !ok {
				return scan.Err()
			}
			v, err := strconv.Atoi(strings.TrimSpace(line))
			if err != nil {
				monitoring.Logf("[adc] skipping unparseable line %q", line)
				continue
			}
			if v < 0 {
				v = 0
			}
			if v > s.maxRaw {
				v = s.maxRaw
			}
			s.latest.Store(int64(v))
		}
	}
}

// ReadRaw returns the most recent reading. Before the first line arrives it
// reads zero, which the connection monitor correctly treats as a rail value.
func (s *SerialSource) ReadRaw() int {
	return int(s.latest.Load())
}

// NowMicros returns microseconds since the source was opened.
func (s *SerialSource) NowMicros() int64 {
	return time.Since(s.epoch).Microseconds()
}

// Close closes the serial port.
func (s *SerialSource) Close() error {
	return s.port.Close()
}
