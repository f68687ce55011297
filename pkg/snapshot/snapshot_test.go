package snapshot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/itohio/goscope/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSave_PNG(t *testing.T) {
	cfg := config.Default()
	history := make([]float64, cfg.Window.Size)
	for i := range history {
		history[i] = float64(i%100) / 100
	}

	path := filepath.Join(t.TempDir(), "window.png")
	require.NoError(t, Save(path, history, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), data[:8])
}

func TestSave_NoData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	assert.ErrorIs(t, Save(path, nil, config.Default()), ErrNoData)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestPlot_Axes(t *testing.T) {
	cfg := config.Default()

	p, err := Plot([]float64{0.1, 0.2, 0.3}, cfg)
	require.NoError(t, err)

	assert.Equal(t, 0.0, p.Y.Min)
	assert.Equal(t, cfg.Display.YMax, p.Y.Max)
	assert.Equal(t, float64(cfg.Window.Size), p.X.Max)

	yTicks := p.Y.Tick.Marker.Ticks(p.Y.Min, p.Y.Max)
	require.Len(t, yTicks, 9)
	assert.Equal(t, "3.3", yTicks[4].Label)

	xTicks := p.X.Tick.Marker.Ticks(p.X.Min, p.X.Max)
	require.Len(t, xTicks, 6)
	assert.Equal(t, "-5", xTicks[0].Label)
	assert.Equal(t, "0", xTicks[5].Label)
}

func TestSave_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "window.png")
	err := Save(path, []float64{0.5, 0.5}, config.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save snapshot")
}

func TestWrite_SVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "svg", []float64{0.1, 0.5, 0.9}, config.Default()))
	assert.Contains(t, buf.String(), "<svg")

	assert.Error(t, Write(&buf, "bogus", []float64{0.1, 0.5}, config.Default()))
}
