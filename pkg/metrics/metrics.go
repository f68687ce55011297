// Package metrics exposes acquisition and rendering counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/itohio/goscope/pkg/board"
	"github.com/itohio/goscope/pkg/window"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "goscope"

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	vref     float64

	readings    prometheus.Counter
	dropped     prometheus.Counter
	redraws     prometheus.Counter
	lastVoltage prometheus.Gauge
}

// Ensure Metrics can observe a device.
var _ board.Observer = (*Metrics)(nil)

// New registers the collectors. vref scales normalized values to volts.
func New(vref float64) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		vref:     vref,
		readings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_total",
			Help:      "Analog readings delivered by the board.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_dropped_total",
			Help:      "Analog readings dropped because the consumer was too slow.",
		}),
		redraws: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redraws_total",
			Help:      "Window frames handed to the renderers.",
		}),
		lastVoltage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_voltage_volts",
			Help:      "Newest sample in the window.",
		}),
	}
	m.registry.MustRegister(m.readings, m.dropped, m.redraws, m.lastVoltage)
	return m
}

// ReadingReceived implements board.Observer.
func (m *Metrics) ReadingReceived() { m.readings.Inc() }

// ReadingDropped implements board.Observer.
func (m *Metrics) ReadingDropped() { m.dropped.Inc() }

// Wrap returns a Renderer that records every frame before passing it to next.
// A nil next only records.
func (m *Metrics) Wrap(next window.Renderer) window.Renderer {
	return window.RendererFunc(func(history []float64) {
		m.redraws.Inc()
		if len(history) > 0 {
			m.lastVoltage.Set(history[len(history)-1] * m.vref)
		}
		if next != nil {
			next.Render(history)
		}
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(
		m.registry, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}),
	)
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
