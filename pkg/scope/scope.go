package scope

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goscope/pkg/axis"
	"github.com/itohio/goscope/pkg/config"
	"github.com/itohio/goscope/pkg/measure"
	"github.com/itohio/goscope/pkg/sample"
)

const maxDisplayPoints = 1000

// ScopeWidget is a custom Fyne widget that displays the scrolling voltage chart.
type ScopeWidget struct {
	widget.BaseWidget

	cfg *config.Config

	// Data (protected by mu)
	mu      sync.RWMutex
	history []float64
	stats   measure.Stats

	// Display buffer (reused for downsampling)
	display []float64

	// Fixed axes
	yTicks []axis.Tick
	xTicks []axis.Tick
}

// New creates a new ScopeWidget instance.
func New(cfg *config.Config) *ScopeWidget {
	s := &ScopeWidget{
		cfg:     cfg,
		display: make([]float64, 0, maxDisplayPoints),
		yTicks:  axis.YTicks(cfg.Display.VRef, cfg.Display.YMax, cfg.Display.Marks),
		xTicks:  axis.XTicks(cfg.Window.Size, cfg.Sampling.EffectiveRateHz()),
	}
	s.ExtendBaseWidget(s)
	// Trigger initial refresh to display empty scope
	s.Refresh()
	return s
}

// UpdateData replaces the displayed window with history.
// This should be called on the Fyne main thread using fyne.Do().
func (s *ScopeWidget) UpdateData(history []float64) {
	s.mu.Lock()

	s.display = sample.DownsampleValues(s.display, history, maxDisplayPoints)
	s.history = history
	s.stats = measure.Compute(history, s.cfg.Display.VRef)

	s.mu.Unlock()

	// Refresh the widget (must be outside lock to avoid potential deadlock)
	s.Refresh()
}

// Stats returns the statistics of the last displayed window.
func (s *ScopeWidget) Stats() measure.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:      s,
		background: background,
		objects:    []fyne.CanvasObject{background},
	}
}
