package sample

import (
	"testing"
	"time"

	"github.com/itohio/goscope/pkg/board"
	"github.com/itohio/goscope/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect[T any](t *testing.T, ch <-chan T) []T {
	t.Helper()
	var out []T
	timeout := time.After(2 * time.Second)
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, v)
		case <-timeout:
			t.Fatal("channel did not close")
			return out
		}
	}
}

func TestNewConverter_FiltersChannel(t *testing.T) {
	cfg := config.Default()
	cfg.Sampling.Channel = 1
	cfg.Display.VRef = 5.0

	in := make(chan board.Reading, 10)
	out := NewConverter(cfg, 10)(in)

	now := time.Now()
	in <- board.Reading{Timestamp: now, Channel: 0, Raw: 100, Value: 0.0978}
	in <- board.Reading{Timestamp: now, Channel: 1, Raw: 675, Value: 0.6598}
	in <- board.Reading{Timestamp: now, Channel: 2, Raw: 1023, Value: 1}
	close(in)

	samples := collect(t, out)
	require.Len(t, samples, 1)
	assert.Equal(t, now, samples[0].Timestamp)
	assert.Equal(t, 0.6598, samples[0].Value)
	assert.InDelta(t, 3.299, samples[0].Voltage, 1e-9)
}

func TestNewConverter_DefaultBuffer(t *testing.T) {
	in := make(chan board.Reading)
	out := NewConverter(config.Default(), 0)(in)
	assert.Equal(t, DefaultBufferSize, cap(out))
	close(in)
	assert.Empty(t, collect(t, out))
}

func TestValues(t *testing.T) {
	in := make(chan Sample, 3)
	in <- Sample{Value: 0.1}
	in <- Sample{Value: 0.2}
	in <- Sample{Value: 0.3}
	close(in)

	assert.Equal(t, []float64{0.1, 0.2, 0.3}, collect(t, Values(in)))
}

func TestMovingAverage(t *testing.T) {
	in := make(chan Sample, 5)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		in <- Sample{Value: v, Voltage: v * 2}
	}
	close(in)

	got := collect(t, NewMovingAverage(3, 5)(in))
	require.Len(t, got, 5)

	want := []float64{1, 1.5, 2, 3, 4}
	for i, s := range got {
		assert.InDelta(t, want[i], s.Value, 1e-9, "sample %d", i)
		assert.InDelta(t, want[i]*2, s.Voltage, 1e-9, "sample %d", i)
	}
}

func TestMovingAverage_PassThrough(t *testing.T) {
	now := time.Now()
	in := make(chan Sample, 2)
	in <- Sample{Timestamp: now, Value: 0.4}
	in <- Sample{Timestamp: now.Add(time.Millisecond), Value: 0.8}
	close(in)

	got := collect(t, NewMovingAverage(0, 0)(in))
	require.Len(t, got, 2)
	assert.Equal(t, 0.4, got[0].Value)
	assert.Equal(t, 0.8, got[1].Value)
	assert.Equal(t, now.Add(time.Millisecond), got[1].Timestamp)
}

// TestMovingAverage_GracefulShutdown tests that the filter closes its output
// when the input channel is closed.
func TestMovingAverage_GracefulShutdown(t *testing.T) {
	in := make(chan Sample)
	out := NewMovingAverage(4, 1)(in)

	go func() {
		for i := 0; i < 10; i++ {
			in <- Sample{Value: float64(i)}
		}
		close(in)
	}()

	assert.Len(t, collect(t, out), 10)
}
