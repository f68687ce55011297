// Package axis computes the tick positions and labels of the scope chart.
//
// The vertical axis is expressed in normalized units (0.0-1.0 of the
// reference voltage) and labelled in volts. The horizontal axis is expressed
// in sample indices of the window and labelled in seconds relative to the
// newest sample.
package axis

import (
	"math"
	"sort"
	"strconv"
)

// Tick is a single axis mark.
type Tick struct {
	Value float64
	Label string
}

// YTicks returns one tick per whole volt in [0, yMax*vref] plus the extra
// marks (in volts) that fall inside that range, sorted by value.
func YTicks(vref, yMax float64, marks []float64) []Tick {
	if vref <= 0 || yMax <= 0 {
		return nil
	}

	top := yMax * vref
	seen := make(map[float64]bool)
	var ticks []Tick

	add := func(volts float64) {
		if volts < 0 || volts > top+1e-9 || seen[volts] {
			return
		}
		seen[volts] = true
		ticks = append(ticks, Tick{Value: volts / vref, Label: formatFloat(volts)})
	}

	for v := 0.0; v <= math.Floor(top+1e-9); v++ {
		add(v)
	}
	for _, m := range marks {
		add(m)
	}

	sort.Slice(ticks, func(i, j int) bool { return ticks[i].Value < ticks[j].Value })
	return ticks
}

// XTicks returns one tick per whole second of a window of size samples taken
// at rateHz. The oldest sample (index 0) is labelled -size/rateHz and the
// newest (index size) is labelled 0. Windows shorter than a second get
// fractional steps of 0.5, 0.2 or 0.1 times a power of ten.
func XTicks(size int, rateHz float64) []Tick {
	if size <= 0 || rateHz <= 0 {
		return nil
	}

	span := float64(size) / rateHz
	step := xStep(span)
	n := int(math.Floor(span/step + 1e-9))
	ticks := make([]Tick, 0, n+1)
	for k := n; k >= 0; k-- {
		s := float64(k) * step
		ticks = append(ticks, Tick{
			Value: float64(size) - s*rateHz,
			Label: formatFloat(-math.Round(s*1e9) / 1e9),
		})
	}
	return ticks
}

// xStep picks the tick spacing in seconds for a window of span seconds.
func xStep(span float64) float64 {
	if span >= 1 {
		return 1
	}
	scale := 0.1
	for ; scale > 1e-9; scale /= 10 {
		for _, m := range []float64{5, 2, 1} {
			if step := m * scale; span/step >= 4-1e-9 {
				return step
			}
		}
	}
	return scale
}

// Seconds converts window index i to seconds relative to the newest sample.
func Seconds(i, size int, rateHz float64) float64 {
	if rateHz <= 0 {
		return 0
	}
	return float64(i-size) / rateHz
}

// Volts converts a normalized value to volts.
func Volts(v, vref float64) float64 {
	return v * vref
}

func formatFloat(v float64) string {
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
