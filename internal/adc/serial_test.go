package adc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"

	"github.com/banshee-data/neutron.report/internal/monitoring"
)

func init() {
	monitoring.SetLogger(nil)
}

// mockPort is a serial.Port backed by a byte slice. When the data runs out,
// Read blocks briefly instead of returning EOF so the scanner goroutine
// stays alive until the context is cancelled, like a real idle port.
type mockPort struct {
	readData []byte
	closed   bool
}

func (m *mockPort) Break(time.Duration) error                            { return nil }
func (m *mockPort) Drain() error                                         { return nil }
func (m *mockPort) GetModemStatusBits() (*serial.ModemStatusBits, error) { return nil, nil }
func (m *mockPort) ResetInputBuffer() error                              { return nil }
func (m *mockPort) ResetOutputBuffer() error                             { return nil }
func (m *mockPort) SetDTR(bool) error                                    { return nil }
func (m *mockPort) SetMode(*serial.Mode) error                           { return nil }
func (m *mockPort) SetReadTimeout(time.Duration) error                   { return nil }
func (m *mockPort) SetRTS(bool) error                                    { return nil }
func (m *mockPort) Write(p []byte) (int, error)                          { return len(p), nil }

func (m *mockPort) Read(p []byte) (int, error) {
	if len(m.readData) == 0 {
		time.Sleep(10 * time.Millisecond)
		return 0, nil
	}
	n := copy(p, m.readData)
	m.readData = m.readData[n:]
	return n, nil
}

func (m *mockPort) Close() error {
	m.closed = true
	return nil
}

func TestSerialMonitorParsesAndClamps(t *testing.T) {
	port := &mockPort{
		// a clean reading, line noise, an over-range value, an under-range
		// value, then the value the test waits for
		readData: []byte("512\nnot a number\n2000\n-5\n700\n"),
	}
	src := &SerialSource{port: port, maxRaw: 1023, epoch: time.Now()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Monitor(ctx) }()

	deadline := time.After(2 * time.Second)
	for src.ReadRaw() != 700 {
		select {
		case <-deadline:
			t.Fatalf("latest reading never reached 700, got %d", src.ReadRaw())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Monitor did not return after cancellation")
	}
}

func TestSerialReadRawBeforeFirstLine(t *testing.T) {
	src := &SerialSource{port: &mockPort{}, maxRaw: 1023, epoch: time.Now()}
	// zero reads as a rail value until the frontend speaks
	assert.Equal(t, 0, src.ReadRaw())
}

func TestSerialClose(t *testing.T) {
	port := &mockPort{}
	src := &SerialSource{port: port, maxRaw: 1023, epoch: time.Now()}
	require.NoError(t, src.Close())
	assert.True(t, port.closed)
}

func TestSerialNowMicrosMonotonic(t *testing.T) {
	src := &SerialSource{port: &mockPort{}, maxRaw: 1023, epoch: time.Now()}
	a := src.NowMicros()
	time.Sleep(time.Millisecond)
	b := src.NowMicros()
	assert.Greater(t, b, a)
}
