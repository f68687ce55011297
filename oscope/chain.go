package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/itohio/goscope/pkg/board"
	"github.com/itohio/goscope/pkg/config"
	"github.com/itohio/goscope/pkg/sample"
	"github.com/itohio/goscope/pkg/window"
	"go.uber.org/zap"
)

// acquisitionChain tracks the components of a running acquisition for graceful shutdown.
type acquisitionChain struct {
	device board.Device
	window *window.Window
	values <-chan float64
	cancel context.CancelFunc
	done   chan struct{} // Closed when the window loop exits
	err    error

	stopOnce sync.Once
}

// newDevice creates the sample source selected by the flags.
func newDevice(cfg *config.Config, useMock bool, logger *zap.Logger, observer board.Observer) board.Device {
	if useMock {
		return board.NewMock(&cfg.Mock, cfg.Display.VRef)
	}
	return board.New(cfg.Serial, logger, board.WithObserver(observer))
}

// startChain connects the device, configures sampling and runs the window loop
// until the device stops or ctx is done. Every frame goes to r.
func startChain(ctx context.Context, cfg *config.Config, device board.Device, r window.Renderer, logger *zap.Logger) (*acquisitionChain, error) {
	if err := device.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if err := device.SetSamplingInterval(cfg.Sampling.SamplingInterval()); err != nil {
		device.Close()
		return nil, fmt.Errorf("failed to set sampling interval: %w", err)
	}
	if err := device.EnableReporting(cfg.Sampling.Channel); err != nil {
		device.Close()
		return nil, fmt.Errorf("failed to enable reporting on A%d: %w", cfg.Sampling.Channel, err)
	}

	// Chain converters: base converter always used, moving average when enabled
	samples := sample.NewConverter(cfg, cfg.Serial.BufferSize)(device.Readings())
	if cfg.Filter.AverageSamples > 1 {
		samples = sample.NewMovingAverage(cfg.Filter.AverageSamples, cfg.Serial.BufferSize)(samples)
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &acquisitionChain{
		device: device,
		window: window.New(cfg.Window.Size),
		values: sample.Values(samples),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(c.done)
		c.err = c.window.Run(ctx, c.values, cfg.Window.RefreshInterval, r)
	}()

	logger.Info("acquisition started",
		zap.Int("channel", cfg.Sampling.Channel),
		zap.Int("rate_hz", cfg.Sampling.RateHz),
		zap.Int("window", cfg.Window.Size))
	return c, nil
}

// Done is closed when the window loop exits.
func (c *acquisitionChain) Done() <-chan struct{} {
	return c.done
}

// History returns the current window contents.
func (c *acquisitionChain) History() []float64 {
	return c.window.History()
}

// stop closes the device and waits for the pipeline to drain.
// Closing the device closes every channel of the pipeline in turn.
func (c *acquisitionChain) stop() error {
	var err error
	c.stopOnce.Do(func() {
		err = c.device.Close()
		<-c.done
		c.cancel()
		// The window loop may have left on ctx; drain what is left upstream
		for range c.values {
		}
	})
	return err
}
