package measure

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_Empty(t *testing.T) {
	assert.Equal(t, Stats{}, Compute(nil, 5))
	assert.Equal(t, Stats{}, Compute([]float64{}, 5))
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name    string
		history []float64
		vref    float64
		want    Stats
	}{
		{
			name:    "constant",
			history: []float64{0.66, 0.66, 0.66},
			vref:    5,
			want:    Stats{Last: 3.3, Min: 3.3, Max: 3.3, Mean: 3.3, RMS: 3.3, PeakToPeak: 0},
		},
		{
			name:    "ramp",
			history: []float64{0, 0.2, 0.4, 0.6},
			vref:    5,
			want:    Stats{Last: 3, Min: 0, Max: 3, Mean: 1.5, RMS: math.Sqrt(0.14) * 5, PeakToPeak: 3},
		},
		{
			name:    "single sample",
			history: []float64{1},
			vref:    3.3,
			want:    Stats{Last: 3.3, Min: 3.3, Max: 3.3, Mean: 3.3, RMS: 3.3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.history, tt.vref)
			assert.InDelta(t, tt.want.Last, got.Last, 1e-9)
			assert.InDelta(t, tt.want.Min, got.Min, 1e-9)
			assert.InDelta(t, tt.want.Max, got.Max, 1e-9)
			assert.InDelta(t, tt.want.Mean, got.Mean, 1e-9)
			assert.InDelta(t, tt.want.RMS, got.RMS, 1e-9)
			assert.InDelta(t, tt.want.PeakToPeak, got.PeakToPeak, 1e-9)
		})
	}
}
