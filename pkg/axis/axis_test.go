package axis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(ticks []Tick) []string {
	out := make([]string, len(ticks))
	for i, t := range ticks {
		out[i] = t.Label
	}
	return out
}

func TestYTicks_Defaults(t *testing.T) {
	ticks := YTicks(5.0, 1.5, []float64{3.3})

	assert.Equal(t, []string{"0", "1", "2", "3", "3.3", "4", "5", "6", "7"}, labels(ticks))
	require.Len(t, ticks, 9)
	assert.InDelta(t, 0.0, ticks[0].Value, 1e-9)
	assert.InDelta(t, 0.66, ticks[4].Value, 1e-9)
	assert.InDelta(t, 1.4, ticks[8].Value, 1e-9)
}

func TestYTicks_Marks(t *testing.T) {
	tests := []struct {
		name  string
		vref  float64
		yMax  float64
		marks []float64
		want  []string
	}{
		{"duplicate mark ignored", 3.3, 1, []float64{3}, []string{"0", "1", "2", "3"}},
		{"mark out of range", 5, 0.5, []float64{3.3}, []string{"0", "1", "2"}},
		{"negative mark", 5, 0.2, []float64{-1, 0.5}, []string{"0", "0.5", "1"}},
		{"no marks", 5, 1, nil, []string{"0", "1", "2", "3", "4", "5"}},
		{"invalid vref", 0, 1, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := labels(YTicks(tt.vref, tt.yMax, tt.marks))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestXTicks_Defaults(t *testing.T) {
	ticks := XTicks(500, 100)

	require.Len(t, ticks, 6)
	assert.Equal(t, []string{"-5", "-4", "-3", "-2", "-1", "0"}, labels(ticks))
	for i, tick := range ticks {
		assert.InDelta(t, float64(i*100), tick.Value, 1e-9)
	}
}

func TestXTicks_PartialSecond(t *testing.T) {
	ticks := XTicks(250, 100)

	assert.Equal(t, []string{"-2", "-1", "0"}, labels(ticks))
	assert.InDelta(t, 50.0, ticks[0].Value, 1e-9)
	assert.InDelta(t, 250.0, ticks[2].Value, 1e-9)
	assert.Empty(t, XTicks(0, 100))
	assert.Empty(t, XTicks(500, 0))
}

func TestXTicks_SubSecond(t *testing.T) {
	tests := []struct {
		size   int
		rate   float64
		labels []string
	}{
		{500, 1000, []string{"-0.5", "-0.4", "-0.3", "-0.2", "-0.1", "0"}},
		{900, 1000, []string{"-0.8", "-0.6", "-0.4", "-0.2", "0"}},
		{50, 1000, []string{"-0.05", "-0.04", "-0.03", "-0.02", "-0.01", "0"}},
	}

	for _, tt := range tests {
		ticks := XTicks(tt.size, tt.rate)
		assert.Equal(t, tt.labels, labels(ticks), "size %d", tt.size)
		require.NotEmpty(t, ticks)
		assert.InDelta(t, float64(tt.size), ticks[len(ticks)-1].Value, 1e-9)
	}

	ticks := XTicks(500, 1000)
	for i, tick := range ticks {
		assert.InDelta(t, float64(i*100), tick.Value, 1e-6)
	}
}

func TestSeconds(t *testing.T) {
	assert.InDelta(t, -5.0, Seconds(0, 500, 100), 1e-9)
	assert.InDelta(t, -0.01, Seconds(499, 500, 100), 1e-9)
	assert.InDelta(t, 0.0, Seconds(500, 500, 100), 1e-9)
	assert.Equal(t, 0.0, Seconds(10, 500, 0))
}

func TestVolts(t *testing.T) {
	assert.InDelta(t, 3.3, Volts(0.66, 5), 1e-9)
	assert.Equal(t, 0.0, Volts(0, 5))
}
