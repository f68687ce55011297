package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/itohio/goscope/pkg/board"
	"github.com/itohio/goscope/pkg/config"
	"github.com/itohio/goscope/pkg/logging"
	"github.com/itohio/goscope/pkg/metrics"
	"github.com/itohio/goscope/pkg/snapshot"
	"github.com/itohio/goscope/pkg/telemetry"
	"github.com/itohio/goscope/pkg/window"
	"go.uber.org/zap"
)

// options holds the command line selections that are not part of the config file.
type options struct {
	configPath   string
	useMock      bool
	ui           string
	snapshotPath string
}

func main() {
	var (
		configFlag         = flag.String("config", "config.yaml", "Configuration file path")
		portFlag           = flag.String("p", "", "Serial port override (e.g., COM5, /dev/ttyACM0 or auto)")
		rateFlag           = flag.Int("rate", 0, "Sampling rate in Hz (overrides config)")
		mockFlag           = flag.Bool("mock", false, "Use mocked board instead of serial port")
		uiFlag             = flag.String("ui", "gui", "User interface: gui, tui or none")
		snapshotFlag       = flag.String("snapshot", "", "Write the window to this image file on exit")
		metricsFlag        = flag.String("metrics", "", "Serve Prometheus metrics on this address (overrides config)")
		averageSamplesFlag = flag.Int("average-samples", -1, "Number of samples to average (0 = disabled, overrides config)")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *rateFlag > 0 {
		cfg.Sampling.RateHz = *rateFlag
	}
	if *metricsFlag != "" {
		cfg.Metrics.Listen = *metricsFlag
	}
	if *averageSamplesFlag >= 0 {
		cfg.Filter.AverageSamples = *averageSamplesFlag
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	opts := options{
		configPath:   *configFlag,
		useMock:      *mockFlag,
		ui:           *uiFlag,
		snapshotPath: *snapshotFlag,
	}

	switch opts.ui {
	case "gui":
		runGUI(cfg, opts, logger)
	case "tui", "none":
		if err := runHeadless(cfg, opts, logger); err != nil {
			logger.Fatal("acquisition failed", zap.Error(err))
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown -ui %q (want gui, tui or none)\n", opts.ui)
		os.Exit(2)
	}
}

// outputs are the renderers and observers shared by every acquisition chain.
type outputs struct {
	metrics   *metrics.Metrics
	publisher *telemetry.Publisher
}

// newOutputs starts the optional metrics endpoint and MQTT publisher.
// Failures to reach the broker are logged and leave the publisher disabled.
func newOutputs(ctx context.Context, cfg *config.Config, logger *zap.Logger) *outputs {
	out := &outputs{}

	if cfg.Metrics.Listen != "" {
		out.metrics = metrics.New(cfg.Display.VRef)
		go func() {
			if err := out.metrics.Serve(ctx, cfg.Metrics.Listen, logger); err != nil {
				logger.Error("metrics endpoint failed", zap.String("addr", cfg.Metrics.Listen), zap.Error(err))
			}
		}()
	}

	if cfg.MQTT.Broker != "" {
		p, err := telemetry.Dial(cfg.MQTT, cfg.Display.VRef, logger)
		if err != nil {
			logger.Warn("mqtt publishing disabled", zap.Error(err))
		} else {
			out.publisher = p
		}
	}

	return out
}

// renderer fans frames out to the given renderers plus the publisher, counting them in metrics.
func (o *outputs) renderer(renderers ...window.Renderer) window.Renderer {
	if o.publisher != nil {
		renderers = append(renderers, o.publisher)
	}
	r := window.Multi(renderers...)
	if o.metrics != nil {
		r = o.metrics.Wrap(r)
	}
	return r
}

// observer returns the device observer, or nil without metrics.
func (o *outputs) observer() board.Observer {
	if o.metrics == nil {
		return nil
	}
	return o.metrics
}

func (o *outputs) close() {
	if o.publisher != nil {
		o.publisher.Close()
	}
}

// saveSnapshot writes history to path when path is set.
func saveSnapshot(path string, history []float64, cfg *config.Config, logger *zap.Logger) {
	if path == "" {
		return
	}
	if err := snapshot.Save(path, history, cfg); err != nil {
		logger.Error("failed to write snapshot", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Info("snapshot written", zap.String("path", path))
}
