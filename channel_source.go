package sdr

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
)

// ChannelSource publishes blocks received on a channel. It bridges a
// hardware driver, which owns the channel and its own buffering, to the
// push pipeline: Run drives the downstream chain from the calling
// goroutine, so a slow chain stalls the reader and the driver's channel
// fills.
type ChannelSource[E Element] struct {
	*Producer[E]
	blocks   <-chan *Samples[E]
	sampleHz atomic.Uint64
}

// NewChannelSource returns a source reading blocks at sampleHz.
func NewChannelSource[E Element](blocks <-chan *Samples[E], sampleHz float64) (*ChannelSource[E], error) {
	if blocks == nil {
		return nil, fmt.Errorf("%w: channel source needs a channel", ErrInvalidConfig)
	}
	s := &ChannelSource[E]{Producer: NewProducer[E]("ChannelSource"), blocks: blocks}
	if err := s.SetSampleFrequency(sampleHz); err != nil {
		return nil, err
	}
	return s, nil
}

// SampleFrequency returns the current rate in Hz.
func (s *ChannelSource[E]) SampleFrequency() float64 {
	return math.Float64frombits(s.sampleHz.Load())
}

// SetSampleFrequency changes the declared rate. Drivers call it when the
// device is retuned; downstream stages see it on their next query.
func (s *ChannelSource[E]) SetSampleFrequency(hz float64) error {
	if hz <= 0 || math.IsNaN(hz) {
		return fmt.Errorf("%w: sample frequency must be positive: %f", ErrInvalidConfig, hz)
	}
	s.sampleHz.Store(math.Float64bits(hz))
	return nil
}

// Run publishes blocks until the channel is closed or ctx is done, then
// joins any asynchronous sinks. It returns ctx.Err() on cancellation and
// nil when the channel closes. Cancellation wins over queued blocks.
func (s *ChannelSource[E]) Run(ctx context.Context) error {
	defer s.Wait()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case block, ok := <-s.blocks:
			if !ok {
				s.log.Debug("channel closed")
				return nil
			}
			s.Buffer().AppendRange(block, 0, block.Len())
			s.Produce(true)
		}
	}
}
