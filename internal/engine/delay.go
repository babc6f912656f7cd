package engine

import (
	"fmt"

	"github.com/tphakala/go-sdr-pipeline/internal/pipeline"
)

// DelayLine shifts a stream right by a fixed number of samples, emitting
// zeros first. Output length always equals input length.
type DelayLine struct {
	delay int
	fifo  *pipeline.FIFOBuffer
}

var _ pipeline.Stage = (*DelayLine)(nil)

// NewDelayLine creates a delay of the given number of samples (>= 0).
func NewDelayLine(delay int) (*DelayLine, error) {
	if delay < 0 {
		return nil, fmt.Errorf("delay must not be negative: %d", delay)
	}
	d := &DelayLine{delay: delay, fifo: pipeline.NewFIFOBuffer(2 * delay)}
	d.Reset()
	return d, nil
}

// Process appends len(src) delayed samples to dst.
func (d *DelayLine) Process(dst, src []float32) []float32 {
	n := len(src)
	if n == 0 {
		return dst
	}
	d.fifo.Write(src)
	start := len(dst)
	dst = append(dst, make([]float32, n)...)
	d.fifo.ReadInto(dst[start:])
	return dst
}

// OutputCount returns n.
func (d *DelayLine) OutputCount(n int) int { return n }

// Reset refills the line with zeros.
func (d *DelayLine) Reset() {
	d.fifo.Clear()
	d.fifo.Write(make([]float32, d.delay))
}

// Latency returns the delay in samples.
func (d *DelayLine) Latency() int { return d.delay }
