package measure

import "math"

// Stats summarizes a window of normalized samples in volts.
type Stats struct {
	Last       float64 `json:"last"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Mean       float64 `json:"mean"`
	RMS        float64 `json:"rms"`
	PeakToPeak float64 `json:"peak_to_peak"`
}

// Compute calculates statistics over history scaled by vref.
// An empty history yields the zero Stats.
func Compute(history []float64, vref float64) Stats {
	if len(history) == 0 {
		return Stats{}
	}

	minV, maxV := history[0], history[0]
	var sum, sumSq float64
	for _, v := range history {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
		sum += v
		sumSq += v * v
	}

	n := float64(len(history))
	return Stats{
		Last:       history[len(history)-1] * vref,
		Min:        minV * vref,
		Max:        maxV * vref,
		Mean:       sum / n * vref,
		RMS:        math.Sqrt(sumSq/n) * vref,
		PeakToPeak: (maxV - minV) * vref,
	}
}
