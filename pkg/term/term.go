// Package term renders the scrolling window as a line chart in the terminal.
package term

import (
	"fmt"

	tm "github.com/buger/goterm"
	"github.com/itohio/goscope/pkg/axis"
	"github.com/itohio/goscope/pkg/config"
	"github.com/itohio/goscope/pkg/measure"
)

// Terminal draws every frame with goterm. It is not safe for concurrent use.
type Terminal struct {
	cfg     *config.Config
	cleared bool
}

// New creates a terminal renderer sized by cfg.Display.
func New(cfg *config.Config) *Terminal {
	return &Terminal{cfg: cfg}
}

// Render draws history and a stats line, replacing the previous frame.
func (t *Terminal) Render(history []float64) {
	columns, rows := t.series(history)
	if len(rows) < 2 {
		return
	}

	if !t.cleared {
		tm.Clear()
		t.cleared = true
	}
	tm.MoveCursor(1, 1)

	data := new(tm.DataTable)
	for _, c := range columns {
		data.AddColumn(c)
	}
	for _, row := range rows {
		data.AddRow(row...)
	}

	width, height := t.cfg.Display.Width, t.cfg.Display.Height
	if width <= 0 {
		width = tm.Width()
	}
	if height <= 0 {
		height = tm.Height() - 2
	}

	chart := tm.NewLineChart(width, height)
	tm.Println(chart.Draw(data))

	s := measure.Compute(history, t.cfg.Display.VRef)
	tm.Printf("%s  last %.3fV  min %.3fV  max %.3fV  mean %.3fV\n",
		tm.Bold("Voltage (V)"), s.Last, s.Min, s.Max, s.Mean)
	tm.Flush()
}

// series converts history into chart columns: time in seconds, the trace in
// volts and one constant series per reference mark. When every value is
// equal a 0V floor is added so the chart has a non-empty range.
func (t *Terminal) series(history []float64) ([]string, [][]float64) {
	cfg := t.cfg
	columns := []string{"Time (s)", "Voltage (V)"}
	for _, m := range cfg.Display.Marks {
		columns = append(columns, fmt.Sprintf("%gV", m))
	}

	flat := len(history) > 0
	for _, v := range history {
		if axis.Volts(v, cfg.Display.VRef) != axis.Volts(history[0], cfg.Display.VRef) {
			flat = false
			break
		}
	}
	for _, m := range cfg.Display.Marks {
		if flat && m != axis.Volts(history[0], cfg.Display.VRef) {
			flat = false
		}
	}
	if flat {
		columns = append(columns, "0V")
	}

	size := len(history)
	rate := cfg.Sampling.EffectiveRateHz()
	rows := make([][]float64, 0, size)
	for i, v := range history {
		row := make([]float64, 0, len(columns))
		row = append(row, axis.Seconds(i, size, rate), axis.Volts(v, cfg.Display.VRef))
		row = append(row, cfg.Display.Marks...)
		if flat {
			row = append(row, 0)
		}
		rows = append(rows, row)
	}
	return columns, rows
}
