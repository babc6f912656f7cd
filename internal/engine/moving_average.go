package engine

import (
	"fmt"

	"github.com/tphakala/go-sdr-pipeline/internal/pipeline"
	"github.com/tphakala/go-sdr-pipeline/internal/simdops"
)

// MovingAverage is a length-D boxcar average over a circular window with
// an O(1) update per sample. The window starts filled with zeros.
type MovingAverage struct {
	window []float32
	pos    int
	sum    float32

	ops *simdops.Ops[float32]
}

var _ pipeline.Stage = (*MovingAverage)(nil)

// NewMovingAverage creates an average over length samples (>= 1).
func NewMovingAverage(length int) (*MovingAverage, error) {
	if length < 1 {
		return nil, fmt.Errorf("moving average length must be positive: %d", length)
	}
	return &MovingAverage{
		window: make([]float32, length),
		ops:    simdops.For[float32](),
	}, nil
}

// Step pushes one sample and returns the average of the latest D inputs.
func (m *MovingAverage) Step(x float32) float32 {
	evicted := m.window[m.pos]
	m.window[m.pos] = x
	m.sum += x - evicted
	m.pos++
	if m.pos == len(m.window) {
		m.pos = 0
		// Re-sum once per cycle so rounding error cannot build up.
		m.sum = m.ops.Sum(m.window)
	}
	return m.sum / float32(len(m.window))
}

// Oldest returns the sample the next Step will evict, which is the input
// delayed by D-1 samples.
func (m *MovingAverage) Oldest() float32 { return m.window[m.pos] }

// Process appends the running average of every sample in src to dst.
func (m *MovingAverage) Process(dst, src []float32) []float32 {
	for _, x := range src {
		dst = append(dst, m.Step(x))
	}
	return dst
}

// OutputCount returns n.
func (m *MovingAverage) OutputCount(n int) int { return n }

// Reset zeroes the window.
func (m *MovingAverage) Reset() {
	clear(m.window)
	m.pos = 0
	m.sum = 0
}

// Latency returns the boxcar group delay (D-1)/2.
func (m *MovingAverage) Latency() int { return (len(m.window) - 1) / latencyDivisor }

// Length returns the window length D.
func (m *MovingAverage) Length() int { return len(m.window) }
