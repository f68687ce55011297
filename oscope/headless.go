package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/goscope/pkg/config"
	"github.com/itohio/goscope/pkg/term"
	"github.com/itohio/goscope/pkg/window"
	"go.uber.org/zap"
)

// runHeadless acquires until SIGINT/SIGTERM or until the device stops.
// With -ui tui every frame is drawn in the terminal.
func runHeadless(cfg *config.Config, opts options, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := newOutputs(ctx, cfg, logger)
	defer out.close()

	var renderers []window.Renderer
	if opts.ui == "tui" {
		renderers = append(renderers, term.New(cfg))
	}

	device := newDevice(cfg, opts.useMock, logger, out.observer())
	chain, err := startChain(ctx, cfg, device, out.renderer(renderers...), logger)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case <-chain.Done():
		logger.Warn("device stopped")
	}

	if err := chain.stop(); err != nil {
		logger.Warn("failed to close device", zap.Error(err))
	}
	saveSnapshot(opts.snapshotPath, chain.History(), cfg, logger)
	return nil
}
