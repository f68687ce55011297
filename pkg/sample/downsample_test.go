package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownsampleValues_NoDownsampling(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5}

	result := DownsampleValues(nil, values, 10)
	require.Equal(t, 5, len(result))
	assert.Equal(t, values, result)

	dst := make([]float64, 0, 10)
	result = DownsampleValues(dst, values, 10)
	require.Equal(t, 5, len(result))
	assert.Equal(t, cap(dst), cap(result))
}

func TestDownsampleValues_WithDownsampling(t *testing.T) {
	values := make([]float64, 500)
	for i := range values {
		values[i] = float64(i) / 500
	}

	result := DownsampleValues(make([]float64, 0, 200), values, 100)
	require.Equal(t, 100, len(result))
	assert.Equal(t, values[0], result[0])
	assert.Equal(t, values[5], result[1])
	assert.GreaterOrEqual(t, result[len(result)-1], 0.98)
}

func TestDownsampleValues_DestinationReuse(t *testing.T) {
	dst := make([]float64, 0, 10)
	result1 := DownsampleValues(dst, []float64{0.1, 0.2}, 10)
	require.Equal(t, 2, len(result1))

	result2 := DownsampleValues(result1, []float64{0.3, 0.4, 0.5}, 10)
	require.Equal(t, 3, len(result2))
	assert.Equal(t, cap(result1), cap(result2))
}

func TestDownsampleValues_EmptyInput(t *testing.T) {
	result := DownsampleValues(nil, []float64{}, 10)
	require.Equal(t, 0, len(result))
}

func TestDownsampleValues_NoLimit(t *testing.T) {
	values := []float64{1, 2, 3}
	assert.Equal(t, values, DownsampleValues(nil, values, 0))
}
