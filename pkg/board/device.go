package board

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/itohio/goscope/pkg/config"
	"github.com/itohio/goscope/pkg/firmata"
	"go.bug.st/serial"
	"go.uber.org/zap"
)

const (
	// DefaultBufferSize is the default size for the readings channel buffer.
	DefaultBufferSize = 1000
	// DefaultHandshakeTimeout bounds the wait for the version report.
	DefaultHandshakeTimeout = 5 * time.Second
)

// Version is the Firmata protocol version reported by the board.
type Version struct {
	Major int
	Minor int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Option configures a Serial device.
type Option func(*Serial)

// WithObserver registers an observer for delivered and dropped readings.
func WithObserver(o Observer) Option {
	return func(d *Serial) {
		if o != nil {
			d.observer = o
		}
	}
}

// Serial is a Firmata board connected over a serial port.
type Serial struct {
	cfg      config.SerialConfig
	log      *zap.Logger
	observer Observer

	open   func(name string, baudRate int) (io.ReadWriteCloser, error)
	detect func() (string, error)
	now    func() time.Time

	mu        sync.Mutex
	conn      io.ReadWriteCloser
	port      string
	version   Version
	readings  chan Reading
	reporting map[int]bool
	done      chan struct{} // Closed when the read loop exits
	started   bool
	connected bool
	closed    bool
}

// New creates a new Serial device. An empty port or config.AutodetectPort
// selects the port on Connect.
func New(cfg config.SerialConfig, logger *zap.Logger, opts ...Option) *Serial {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = firmata.DefaultBaudRate
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Serial{
		cfg:       cfg,
		log:       logger,
		observer:  nopObserver{},
		open:      openPort,
		detect:    Autodetect,
		now:       time.Now,
		readings:  make(chan Reading, cfg.BufferSize),
		reporting: make(map[int]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func openPort(name string, baudRate int) (io.ReadWriteCloser, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, err
	}
	return port, nil
}

// Connect opens the port, waits for the board to come out of reset and
// performs the version handshake.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return ErrAlreadyConnected
	}
	if d.closed {
		return ErrClosed
	}

	port := d.cfg.Port
	if port == "" || port == config.AutodetectPort {
		detected, err := d.detect()
		if err != nil {
			return fmt.Errorf("failed to autodetect board: %w", err)
		}
		d.log.Info("Autodetected board", zap.String("port", detected))
		port = detected
	}

	conn, err := d.open(port, d.cfg.BaudRate)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", port, err)
	}

	// Opening the port resets most boards
	if d.cfg.SetupWait > 0 {
		time.Sleep(d.cfg.SetupWait)
	}

	d.conn = conn
	d.port = port
	d.done = make(chan struct{})
	d.started = true

	versions := make(chan Version, 1)
	go d.readLoop(conn, versions)

	query := firmata.AppendFirmwareQuery(firmata.AppendReportVersion(nil))
	if _, err := conn.Write(query); err != nil {
		d.shutdown()
		return fmt.Errorf("failed to query firmata version on %s: %w", port, err)
	}

	timer := time.NewTimer(d.cfg.HandshakeTimeout)
	defer timer.Stop()

	select {
	case v := <-versions:
		d.version = v
	case <-d.done:
		d.shutdown()
		return fmt.Errorf("serial port %s closed during handshake", port)
	case <-timer.C:
		d.shutdown()
		return fmt.Errorf("%w on %s", ErrHandshakeTimeout, port)
	}

	d.connected = true
	d.log.Info("Connected to board",
		zap.String("port", port),
		zap.Stringer("firmata", d.version),
	)

	return nil
}

// Close disables reporting, closes the port and the readings channel.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}

	if !d.started {
		d.closed = true
		close(d.readings)
		return nil
	}

	for ch := range d.reporting {
		if _, err := d.conn.Write(firmata.AppendReportAnalog(nil, ch, false)); err != nil {
			d.log.Warn("Failed to disable reporting", zap.Int("channel", ch), zap.Error(err))
		}
	}
	d.reporting = make(map[int]bool)

	return d.shutdown()
}

// shutdown closes the connection and waits for the read loop. Caller holds mu.
func (d *Serial) shutdown() error {
	d.connected = false
	d.closed = true

	err := d.conn.Close()
	<-d.done
	d.conn = nil

	if err != nil {
		return fmt.Errorf("failed to close serial port %s: %w", d.port, err)
	}
	return nil
}

// Readings returns the channel for reading samples. It is closed by Close.
func (d *Serial) Readings() <-chan Reading {
	return d.readings
}

// SetSamplingInterval sets how often the board samples its analog inputs.
func (d *Serial) SetSamplingInterval(interval time.Duration) error {
	ms := firmata.ClampInterval(interval)
	return d.send(firmata.AppendSamplingInterval(nil, ms))
}

// EnableReporting starts streaming of an analog channel.
func (d *Serial) EnableReporting(channel int) error {
	return d.setReporting(channel, true)
}

// DisableReporting stops streaming of an analog channel.
func (d *Serial) DisableReporting(channel int) error {
	return d.setReporting(channel, false)
}

func (d *Serial) setReporting(channel int, enable bool) error {
	if channel < 0 || channel > firmata.MaxChannel {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, channel)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.sendLocked(firmata.AppendReportAnalog(nil, channel, enable)); err != nil {
		return err
	}
	if enable {
		d.reporting[channel] = true
	} else {
		delete(d.reporting, channel)
	}
	return nil
}

func (d *Serial) send(cmd []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sendLocked(cmd)
}

func (d *Serial) sendLocked(cmd []byte) error {
	if !d.connected {
		return ErrNotConnected
	}
	if _, err := d.conn.Write(cmd); err != nil {
		return fmt.Errorf("failed to send command to %s: %w", d.port, err)
	}
	return nil
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connected
}

// Port returns the port name used by the last Connect.
func (d *Serial) Port() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.port
}

// Version returns the protocol version reported during the handshake.
func (d *Serial) Version() Version {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version
}

// readLoop decodes the incoming stream until the port is closed.
func (d *Serial) readLoop(conn io.Reader, versions chan<- Version) {
	defer close(d.done)
	defer close(d.readings)
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("Panic in read loop", zap.Any("panic", r))
		}
	}()

	var dec firmata.Decoder
	buf := make([]byte, 256)
	for {
		n, err := conn.Read(buf)
		for _, b := range buf[:n] {
			if msg, ok := dec.Feed(b); ok {
				d.handle(msg, versions)
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) {
				d.log.Debug("Read loop stopped", zap.String("port", d.port), zap.Error(err))
			}
			return
		}
	}
}

func (d *Serial) handle(msg firmata.Message, versions chan<- Version) {
	switch msg.Command {
	case firmata.AnalogMessage:
		raw := uint16(msg.Value())
		reading := Reading{
			Timestamp: d.now(),
			Channel:   msg.Channel,
			Raw:       raw,
			Value:     firmata.Normalize(raw),
		}
		select {
		case d.readings <- reading:
			d.observer.ReadingReceived()
		default:
			d.observer.ReadingDropped()
			d.log.Warn("Readings channel full, dropping reading", zap.Int("channel", msg.Channel))
		}

	case firmata.ReportVersion:
		if len(msg.Data) < 2 {
			return
		}
		select {
		case versions <- Version{Major: int(msg.Data[0]), Minor: int(msg.Data[1])}:
		default:
		}

	case firmata.StartSysex:
		switch msg.Sysex {
		case firmata.ReportFirmware:
			if len(msg.Data) >= 2 {
				d.log.Info("Board firmware",
					zap.String("name", firmata.DecodeString(msg.Data[2:])),
					zap.Int("major", int(msg.Data[0])),
					zap.Int("minor", int(msg.Data[1])),
				)
			}
		case firmata.StringData:
			d.log.Info("Board message", zap.String("text", firmata.DecodeString(msg.Data)))
		}
	}
}
