package sample

// NewMovingAverage creates a filter that replaces every sample with the mean
// of the last windowSize samples (fewer while the window fills up).
// A windowSize of 1 or less passes samples through unchanged.
func NewMovingAverage(windowSize int, bufSize int) func(in <-chan Sample) <-chan Sample {
	if windowSize <= 0 {
		windowSize = 1
	}
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	return func(in <-chan Sample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			avg := newRunningMean(windowSize)
			for s := range in {
				out <- avg.push(s)
			}
		}()

		return out
	}
}

// runningMean keeps ring buffers of the last n values and their sums.
type runningMean struct {
	values   []float64
	voltages []float64
	next     int
	count    int
	sumV     float64
	sumVolt  float64
}

func newRunningMean(n int) *runningMean {
	return &runningMean{
		values:   make([]float64, n),
		voltages: make([]float64, n),
	}
}

// push adds a sample and returns the averaged sample with the latest timestamp.
func (m *runningMean) push(s Sample) Sample {
	if m.count == len(m.values) {
		m.sumV -= m.values[m.next]
		m.sumVolt -= m.voltages[m.next]
	} else {
		m.count++
	}

	m.values[m.next] = s.Value
	m.voltages[m.next] = s.Voltage
	m.sumV += s.Value
	m.sumVolt += s.Voltage
	m.next = (m.next + 1) % len(m.values)

	n := float64(m.count)
	return Sample{
		Timestamp: s.Timestamp,
		Value:     m.sumV / n,
		Voltage:   m.sumVolt / n,
	}
}
