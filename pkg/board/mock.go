package board

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/itohio/goscope/pkg/config"
	"github.com/itohio/goscope/pkg/firmata"
)

// Mock simulates a Firmata board for testing and development.
type Mock struct {
	cfg  *config.MockConfig
	vref float64

	readings chan Reading
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	interval chan time.Duration

	reporting map[int]bool
	connected bool
	closed    bool

	// Simulation state, owned by the generator goroutine
	startTime time.Time
	rnd       *rand.Rand
}

// NewMock creates a new mocked board. vref is the voltage that maps to the
// full-scale reading.
func NewMock(cfg *config.MockConfig, vref float64) *Mock {
	if cfg == nil {
		cfg = &config.Default().Mock
	}
	if vref <= 0 {
		vref = 5.0
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:       cfg,
		vref:      vref,
		readings:  make(chan Reading, DefaultBufferSize),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		interval:  make(chan time.Duration, 1),
		reporting: make(map[int]bool),
		rnd:       rand.New(rand.NewSource(1)),
	}
}

// Connect starts generating samples.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return ErrAlreadyConnected
	}
	if m.closed {
		return ErrClosed
	}

	m.connected = true
	m.startTime = time.Now()

	go m.generateSamples()

	return nil
}

// Close stops the mocked board and closes the readings channel.
func (m *Mock) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	wasConnected := m.connected
	m.connected = false
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	if wasConnected {
		<-m.done
	} else {
		close(m.readings)
	}

	return nil
}

// Readings returns the channel for reading samples.
func (m *Mock) Readings() <-chan Reading {
	return m.readings
}

// SetSamplingInterval changes the generator period.
func (m *Mock) SetSamplingInterval(interval time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return ErrNotConnected
	}

	d := time.Duration(firmata.ClampInterval(interval)) * time.Millisecond
	// Keep only the latest request
	select {
	case <-m.interval:
	default:
	}
	m.interval <- d

	return nil
}

// EnableReporting starts generating samples for a channel.
func (m *Mock) EnableReporting(channel int) error {
	return m.setReporting(channel, true)
}

// DisableReporting stops generating samples for a channel.
func (m *Mock) DisableReporting(channel int) error {
	return m.setReporting(channel, false)
}

func (m *Mock) setReporting(channel int, enable bool) error {
	if channel < 0 || channel > firmata.MaxChannel {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, channel)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return ErrNotConnected
	}
	if enable {
		m.reporting[channel] = true
	} else {
		delete(m.reporting, channel)
	}
	return nil
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// generateSamples generates simulated samples.
func (m *Mock) generateSamples() {
	defer close(m.done)
	defer close(m.readings)

	ticker := time.NewTicker(firmata.DefaultSamplingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case d := <-m.interval:
			ticker.Reset(d)
		case now := <-ticker.C:
			for _, ch := range m.channels() {
				reading := m.generateSample(now, ch)
				select {
				case m.readings <- reading:
				case <-m.ctx.Done():
					return
				default:
					// Channel full, skip
				}
			}
		}
	}
}

func (m *Mock) channels() []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	chs := make([]int, 0, len(m.reporting))
	for ch := 0; ch <= firmata.MaxChannel; ch++ {
		if m.reporting[ch] {
			chs = append(chs, ch)
		}
	}
	return chs
}

// generateSample generates a single simulated sample.
func (m *Mock) generateSample(now time.Time, channel int) Reading {
	elapsed := now.Sub(m.startTime).Seconds()
	noise := (m.rnd.Float64()*2 - 1) * m.cfg.Noise

	v := waveform(m.cfg, elapsed, channel) + noise
	raw := quantize(v, m.vref)

	return Reading{
		Timestamp: now,
		Channel:   channel,
		Raw:       raw,
		Value:     firmata.Normalize(raw),
	}
}

// waveform returns the noiseless voltage of a channel at time t (seconds).
// Channels are phase shifted by 1/8 of a period.
func waveform(cfg *config.MockConfig, t float64, channel int) float64 {
	phase := 2*math.Pi*cfg.Frequency*t + float64(channel)*math.Pi/4

	switch cfg.Waveform {
	case "square":
		if math.Sin(phase) >= 0 {
			return cfg.Offset + cfg.Amplitude
		}
		return cfg.Offset - cfg.Amplitude
	default:
		return cfg.Offset + cfg.Amplitude*math.Sin(phase)
	}
}

// quantize converts a voltage to a clamped 10-bit reading.
func quantize(v, vref float64) uint16 {
	raw := math.Round(v / vref * firmata.AnalogMax)
	if raw < 0 {
		return 0
	}
	if raw > firmata.AnalogMax {
		return firmata.AnalogMax
	}
	return uint16(raw)
}
