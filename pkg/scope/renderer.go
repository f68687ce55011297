package scope

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/chewxy/math32"
	"github.com/itohio/goscope/pkg/measure"
)

var (
	gridColor  = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	markColor  = color.RGBA{R: 90, G: 60, B: 60, A: 255}
	textColor  = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	traceColor = color.RGBA{R: 255, G: 165, B: 0, A: 255} // Orange
)

// plotArea is the drawable rectangle inside the axis margins.
type plotArea struct {
	x, y, width, height float32
}

func newPlotArea(size fyne.Size) plotArea {
	const (
		marginLeft   = 60
		marginRight  = 20
		marginTop    = 30
		marginBottom = 45
	)
	return plotArea{
		x:      marginLeft,
		y:      marginTop,
		width:  size.Width - marginLeft - marginRight,
		height: size.Height - marginTop - marginBottom,
	}
}

// pointX maps a window index to a horizontal position.
func (a plotArea) pointX(index float64, size int) float32 {
	if size <= 0 {
		return a.x
	}
	return a.x + float32(index/float64(size))*a.width
}

// pointY maps a normalized value to a vertical position, clamped to [0, yMax].
func (a plotArea) pointY(value, yMax float64) float32 {
	if yMax <= 0 {
		return a.y + a.height
	}
	frac := math32.Max(0, math32.Min(float32(value/yMax), 1))
	return a.y + a.height - frac*a.height
}

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	background *canvas.Rectangle

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(480, 320)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh updates the widget display.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	values := r.scope.display
	samples := len(r.scope.history)
	stats := r.scope.stats
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.background}
	area := newPlotArea(size)

	r.drawGrid(area)
	r.drawLabels(area, size)
	if len(values) > 1 {
		r.drawTrace(area, values)
	}
	if samples > 0 {
		r.drawStats(area, stats)
	}
}

// drawGrid draws the grid lines at the axis ticks.
func (r *scopeRenderer) drawGrid(area plotArea) {
	cfg := r.scope.cfg
	marks := make(map[string]bool, len(cfg.Display.Marks))
	for _, m := range cfg.Display.Marks {
		marks[fmt.Sprintf("%g", m)] = true
	}

	for _, tick := range r.scope.yTicks {
		y := area.pointY(tick.Value, cfg.Display.YMax)
		c := gridColor
		if marks[tick.Label] {
			c = markColor
		}
		r.addLine(c, fyne.NewPos(area.x, y), fyne.NewPos(area.x+area.width, y))
		r.addText(tick.Label, fyne.TextAlignTrailing, fyne.NewPos(area.x-8, y-7))
	}

	for _, tick := range r.scope.xTicks {
		x := area.pointX(tick.Value, cfg.Window.Size)
		r.addLine(gridColor, fyne.NewPos(x, area.y), fyne.NewPos(x, area.y+area.height))
		r.addText(tick.Label, fyne.TextAlignCenter, fyne.NewPos(x, area.y+area.height+4))
	}
}

func (r *scopeRenderer) drawLabels(area plotArea, size fyne.Size) {
	yLabel := canvas.NewText("Voltage (V)", textColor)
	yLabel.TextSize = 11
	yLabel.Move(fyne.NewPos(4, 6))
	r.objects = append(r.objects, yLabel)

	xLabel := canvas.NewText("Time (s)", textColor)
	xLabel.TextSize = 11
	xLabel.Alignment = fyne.TextAlignCenter
	xLabel.Move(fyne.NewPos(area.x+area.width/2, size.Height-18))
	r.objects = append(r.objects, xLabel)
}

// drawTrace draws the sample curve (orange). The newest sample sits at the right edge.
func (r *scopeRenderer) drawTrace(area plotArea, values []float64) {
	cfg := r.scope.cfg
	points := area.tracePoints(values, cfg.Window.Size, cfg.Display.YMax)
	for i := 1; i < len(points); i++ {
		line := canvas.NewLine(traceColor)
		line.Position1 = points[i-1]
		line.Position2 = points[i]
		line.StrokeWidth = 1.5
		r.objects = append(r.objects, line)
	}
}

// minSegment is the shortest trace segment, in pixels, worth a line object.
const minSegment = 0.5

// tracePoints maps values onto the plot area, right aligned in a window of
// size samples. Points closer than minSegment to the previous kept point are
// merged into it. The first and last points are always kept.
func (a plotArea) tracePoints(values []float64, size int, yMax float64) []fyne.Position {
	n := len(values)
	if n == 0 {
		return nil
	}
	span := float64(size)
	offset := span - float64(n)
	step := 1.0
	if n > size {
		offset, step = 0, span/float64(n)
	}

	points := make([]fyne.Position, 0, n)
	points = append(points, fyne.NewPos(a.pointX(offset, size), a.pointY(values[0], yMax)))
	for i := 1; i < n; i++ {
		pos := fyne.NewPos(a.pointX(offset+float64(i)*step, size), a.pointY(values[i], yMax))
		last := points[len(points)-1]
		if i < n-1 && math32.Hypot(pos.X-last.X, pos.Y-last.Y) < minSegment {
			continue
		}
		points = append(points, pos)
	}
	return points
}

// drawStats draws the measurement readout in the top right corner.
func (r *scopeRenderer) drawStats(area plotArea, stats measure.Stats) {
	text := canvas.NewText(formatStats(stats), color.RGBA{R: 200, G: 200, B: 200, A: 255})
	text.TextSize = 11
	text.Alignment = fyne.TextAlignTrailing
	text.Move(fyne.NewPos(area.x+area.width, 6))
	r.objects = append(r.objects, text)
}

func (r *scopeRenderer) addLine(c color.Color, p1, p2 fyne.Position) {
	line := canvas.NewLine(c)
	line.Position1 = p1
	line.Position2 = p2
	line.StrokeWidth = 1
	r.objects = append(r.objects, line)
}

func (r *scopeRenderer) addText(s string, align fyne.TextAlign, pos fyne.Position) {
	text := canvas.NewText(s, textColor)
	text.TextSize = 10
	text.Alignment = align
	text.Move(pos)
	r.objects = append(r.objects, text)
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {
	// Cleanup handled by Fyne
}

func formatStats(s measure.Stats) string {
	return fmt.Sprintf("%.3fV  min %.3fV  max %.3fV  p-p %.3fV  rms %.3fV",
		s.Last, s.Min, s.Max, s.PeakToPeak, s.RMS)
}
