package sample

import (
	"time"

	"github.com/itohio/goscope/pkg/board"
	"github.com/itohio/goscope/pkg/config"
)

// DefaultBufferSize is used when a converter is created with a non-positive buffer size.
const DefaultBufferSize = 100

// Sample represents a processed reading of the observed channel.
type Sample struct {
	Timestamp time.Time
	Value     float64 // Normalized reading (0.0-1.0)
	Voltage   float64 // Value scaled by the reference voltage (V)
}

// Converter is a function type that converts a Reading channel to a Sample channel.
type Converter func(in <-chan board.Reading) <-chan Sample

// NewConverter creates a converter that keeps the configured channel and
// scales readings to volts. The output closes when the input closes.
func NewConverter(cfg *config.Config, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	channel := cfg.Sampling.Channel
	vref := cfg.Display.VRef

	return func(in <-chan board.Reading) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			for r := range in {
				if r.Channel != channel {
					continue
				}
				out <- convertReading(r, vref)
			}
		}()

		return out
	}
}

// convertReading converts a Reading to a Sample.
func convertReading(r board.Reading, vref float64) Sample {
	return Sample{
		Timestamp: r.Timestamp,
		Value:     r.Value,
		Voltage:   r.Value * vref,
	}
}

// Values extracts normalized values from a Sample channel.
func Values(in <-chan Sample) <-chan float64 {
	out := make(chan float64, cap(in))

	go func() {
		defer close(out)
		for s := range in {
			out <- s.Value
		}
	}()

	return out
}
