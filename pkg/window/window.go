// Package window keeps a fixed-length trailing view of the most recent readings.
//
// Readings are staged as they arrive and folded into the history only when the
// window is updated, so the redraw rate is independent from the sampling rate.
package window

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultSize is the number of readings kept in the history.
	DefaultSize = 500
	// DefaultRefreshInterval is the redraw period used by Run.
	DefaultRefreshInterval = 100 * time.Millisecond
)

// Window is a scrolling window over a stream of scalar readings.
type Window struct {
	mu      sync.Mutex
	size    int
	staging []float64
	history []float64 // always len == size, oldest first
}

// New creates a window of the given size with a zero-filled history.
func New(size int) *Window {
	if size <= 0 {
		size = DefaultSize
	}
	return &Window{
		size:    size,
		staging: make([]float64, 0, size),
		history: make([]float64, size),
	}
}

// Size returns the history length.
func (w *Window) Size() int {
	return w.size
}

// Add stages a reading until the next Update.
func (w *Window) Add(reading float64) {
	w.mu.Lock()
	w.staging = append(w.staging, reading)
	w.mu.Unlock()
}

// Pending returns the number of staged readings.
func (w *Window) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.staging)
}

// Update appends staged readings to the history, truncates it to the trailing
// Size elements and clears the staging list. Returns a copy of the history.
func (w *Window) Update() []float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(w.staging)
	switch {
	case n == 0:
	case n >= w.size:
		copy(w.history, w.staging[n-w.size:])
	default:
		copy(w.history, w.history[n:])
		copy(w.history[w.size-n:], w.staging)
	}
	w.staging = w.staging[:0]

	return w.snapshot()
}

// History returns a copy of the current history.
func (w *Window) History() []float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

func (w *Window) snapshot() []float64 {
	out := make([]float64, w.size)
	copy(out, w.history)
	return out
}

// Run consumes readings from in and redraws every interval until ctx is done
// or in is closed. A closed input gets one final flush and redraw.
// Run is the only consumer of in; Add may still be called concurrently.
func (w *Window) Run(ctx context.Context, in <-chan float64, interval time.Duration, r Renderer) error {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if r == nil {
		r = RendererFunc(func([]float64) {})
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case v, ok := <-in:
			if !ok {
				r.Render(w.Update())
				return nil
			}
			w.Add(v)
		case <-ticker.C:
			r.Render(w.Update())
		}
	}
}
