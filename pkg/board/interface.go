package board

import (
	"errors"
	"time"
)

var (
	// ErrNotConnected is returned by commands sent to a device that is not connected.
	ErrNotConnected = errors.New("not connected")
	// ErrAlreadyConnected is returned by a second Connect.
	ErrAlreadyConnected = errors.New("already connected")
	// ErrClosed is returned when connecting a device that was closed.
	ErrClosed = errors.New("device closed")
	// ErrNoPort is returned by Autodetect when no USB serial port is present.
	ErrNoPort = errors.New("no USB serial port found")
	// ErrHandshakeTimeout is returned when the board does not report its version in time.
	ErrHandshakeTimeout = errors.New("timed out waiting for firmata version report")
	// ErrInvalidChannel is returned for analog channels outside 0..15.
	ErrInvalidChannel = errors.New("invalid analog channel")
)

// Reading is a single analog sample reported by the board.
type Reading struct {
	Timestamp time.Time // Host arrival time
	Channel   int       // Analog channel (A0 = 0)
	Raw       uint16    // 10-bit value (0-1023)
	Value     float64   // Normalized value (0.0-1.0)
}

// Device defines the interface for analog sample sources (real or mocked).
type Device interface {
	Connect() error
	Close() error
	Readings() <-chan Reading
	SetSamplingInterval(interval time.Duration) error
	EnableReporting(channel int) error
	DisableReporting(channel int) error
	IsConnected() bool
}

// Observer is notified about every reading delivered or dropped.
type Observer interface {
	ReadingReceived()
	ReadingDropped()
}

type nopObserver struct{}

func (nopObserver) ReadingReceived() {}
func (nopObserver) ReadingDropped()  {}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
