package term

import (
	"testing"

	"github.com/itohio/goscope/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeries(t *testing.T) {
	cfg := config.Default()
	term := New(cfg)

	columns, rows := term.series([]float64{0, 0.2, 0.66, 1})
	assert.Equal(t, []string{"Time (s)", "Voltage (V)", "3.3V"}, columns)
	require.Len(t, rows, 4)

	assert.InDelta(t, -0.04, rows[0][0], 1e-9)
	assert.InDelta(t, -0.01, rows[3][0], 1e-9)
	assert.InDelta(t, 1.0, rows[1][1], 1e-9)
	assert.InDelta(t, 3.3, rows[2][1], 1e-9)
	for _, row := range rows {
		require.Len(t, row, 3)
		assert.Equal(t, 3.3, row[2])
	}
}

func TestSeries_FlatAddsFloor(t *testing.T) {
	cfg := config.Default()
	cfg.Display.Marks = nil
	term := New(cfg)

	columns, rows := term.series([]float64{0.5, 0.5, 0.5})
	assert.Equal(t, []string{"Time (s)", "Voltage (V)", "0V"}, columns)
	for _, row := range rows {
		assert.Equal(t, []float64{row[0], 2.5, 0}, row)
	}
}

func TestSeries_Empty(t *testing.T) {
	columns, rows := New(config.Default()).series(nil)
	assert.Len(t, columns, 3)
	assert.Empty(t, rows)
}

func TestSeries_UsesBoardInterval(t *testing.T) {
	cfg := config.Default()
	cfg.Sampling.RateHz = 300
	term := New(cfg)

	_, rows := term.series([]float64{0.1, 0.2})
	require.Len(t, rows, 2)
	assert.InDelta(t, -0.006, rows[0][0], 1e-9)
	assert.InDelta(t, -0.003, rows[1][0], 1e-9)
}
