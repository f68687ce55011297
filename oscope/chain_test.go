package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/itohio/goscope/pkg/board"
	"github.com/itohio/goscope/pkg/config"
	"github.com/itohio/goscope/pkg/metrics"
	"github.com/itohio/goscope/pkg/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type frameRecorder struct {
	mu     sync.Mutex
	frames [][]float64
}

func (f *frameRecorder) Render(history []float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, history)
}

func (f *frameRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *frameRecorder) last() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames[len(f.frames)-1]
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Sampling.RateHz = 1000
	cfg.Window.Size = 50
	cfg.Window.RefreshInterval = 5 * time.Millisecond
	return cfg
}

func TestChain_MockStreamsIntoWindow(t *testing.T) {
	cfg := testConfig()
	rec := &frameRecorder{}

	device := newDevice(cfg, true, zap.NewNop(), nil)
	chain, err := startChain(context.Background(), cfg, device, rec, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, device.IsConnected())

	assert.Eventually(t, func() bool {
		if rec.count() == 0 {
			return false
		}
		last := rec.last()
		return last[len(last)-1] > 0
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, chain.stop())
	assert.NoError(t, chain.stop())
	assert.False(t, device.IsConnected())

	select {
	case <-chain.Done():
	default:
		t.Fatal("window loop still running after stop")
	}
	assert.NoError(t, chain.err)

	history := chain.History()
	require.Len(t, history, cfg.Window.Size)
	for _, v := range history {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestChain_MovingAverage(t *testing.T) {
	cfg := testConfig()
	cfg.Filter.AverageSamples = 4
	rec := &frameRecorder{}

	chain, err := startChain(context.Background(), cfg, newDevice(cfg, true, nil, nil), rec, zap.NewNop())
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return rec.count() > 2 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, chain.stop())
}

func TestChain_ContextCancel(t *testing.T) {
	cfg := testConfig()
	ctx, cancel := context.WithCancel(context.Background())

	chain, err := startChain(ctx, cfg, newDevice(cfg, true, nil, nil), nil, zap.NewNop())
	require.NoError(t, err)

	cancel()
	select {
	case <-chain.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("window loop did not stop on cancel")
	}
	assert.ErrorIs(t, chain.err, context.Canceled)
	require.NoError(t, chain.stop())
}

func TestChain_ConnectError(t *testing.T) {
	cfg := testConfig()
	device := board.NewMock(&cfg.Mock, cfg.Display.VRef)
	require.NoError(t, device.Close())

	_, err := startChain(context.Background(), cfg, device, nil, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, board.ErrClosed)
}

func TestChain_InvalidChannel(t *testing.T) {
	cfg := testConfig()
	cfg.Sampling.Channel = 16
	device := newDevice(cfg, true, nil, nil)

	_, err := startChain(context.Background(), cfg, device, nil, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, board.ErrInvalidChannel)
	assert.False(t, device.IsConnected())
}

func TestOutputs_Renderer(t *testing.T) {
	rec := &frameRecorder{}

	bare := &outputs{}
	assert.Nil(t, bare.observer())
	bare.renderer(rec).Render([]float64{0.5})
	assert.Equal(t, 1, rec.count())

	withMetrics := &outputs{metrics: metrics.New(5)}
	assert.NotNil(t, withMetrics.observer())
	withMetrics.renderer(rec, window.RendererFunc(func([]float64) {})).Render([]float64{0.5})
	assert.Equal(t, 2, rec.count())
	withMetrics.close()
}

func TestSerialDeviceIgnoresNilObserver(t *testing.T) {
	cfg := testConfig()
	device := newDevice(cfg, false, nil, (&outputs{}).observer())
	_, ok := device.(*board.Serial)
	assert.True(t, ok)
}
