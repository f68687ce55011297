// Package snapshot exports the scrolling window as an image.
package snapshot

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/itohio/goscope/pkg/axis"
	"github.com/itohio/goscope/pkg/config"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no samples to plot")

const (
	width  = 10 * vg.Inch
	height = 5 * vg.Inch
)

// Save plots history with the same axes as the scope and writes it to path.
// The image format is taken from the file extension (png, svg, pdf, ...).
func Save(path string, history []float64, cfg *config.Config) error {
	p, err := Plot(history, cfg)
	if err != nil {
		return err
	}
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", path, err)
	}
	return nil
}

// Write renders history to w in format (png, svg, pdf, ...).
func Write(w io.Writer, format string, history []float64, cfg *config.Config) error {
	p, err := Plot(history, cfg)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("failed to render snapshot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Plot builds the chart for history. The newest sample is drawn at the right edge.
func Plot(history []float64, cfg *config.Config) (*plot.Plot, error) {
	if len(history) == 0 {
		return nil, ErrNoData
	}

	size := cfg.Window.Size
	if len(history) > size {
		size = len(history)
	}
	offset := size - len(history)

	pts := make(plotter.XYs, len(history))
	for i, v := range history {
		pts[i].X = float64(offset + i)
		pts[i].Y = v
	}

	p := plot.New()
	p.Title.Text = "goscope"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Voltage (V)"
	p.X.Min, p.X.Max = 0, float64(size)
	p.Y.Min, p.Y.Max = 0, cfg.Display.YMax
	p.X.Tick.Marker = plot.ConstantTicks(ticks(axis.XTicks(size, cfg.Sampling.EffectiveRateHz())))
	p.Y.Tick.Marker = plot.ConstantTicks(ticks(axis.YTicks(cfg.Display.VRef, cfg.Display.YMax, cfg.Display.Marks)))

	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to create line: %w", err)
	}
	line.Color = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	line.Width = vg.Points(1.5)
	p.Add(line)

	return p, nil
}

func ticks(in []axis.Tick) []plot.Tick {
	out := make([]plot.Tick, len(in))
	for i, t := range in {
		out[i] = plot.Tick{Value: t.Value, Label: t.Label}
	}
	return out
}
