package sdr

import (
	"fmt"
	"sync"
)

// ScopeData collects fixed-width tuples of diagnostic values for a
// visualization to poll. It holds at most NumPoints tuples; a sample
// arriving when it is full discards the collected tuples and starts over.
type ScopeData struct {
	numItems  int
	numPoints int
	sampleHz  float64

	mu   sync.Mutex
	data []float32
}

// NewScopeData returns a collector of numPoints tuples of numItems values
// sampled at sampleHz.
func NewScopeData(numItems, numPoints int, sampleHz float64) (*ScopeData, error) {
	if numItems < 1 {
		return nil, fmt.Errorf("%w: scope items must be positive: %d", ErrInvalidConfig, numItems)
	}
	if numPoints < 1 {
		return nil, fmt.Errorf("%w: scope points must be positive: %d", ErrInvalidConfig, numPoints)
	}
	return &ScopeData{
		numItems:  numItems,
		numPoints: numPoints,
		sampleHz:  sampleHz,
		data:      make([]float32, 0, numItems*numPoints),
	}, nil
}

// Sample appends one tuple. It panics if the tuple width is wrong.
func (s *ScopeData) Sample(values ...float32) {
	if len(values) != s.numItems {
		panic(fmt.Sprintf("sdr: scope tuple has %d values, want %d", len(values), s.numItems))
	}
	s.mu.Lock()
	if len(s.data) == s.numItems*s.numPoints {
		s.data = s.data[:0]
	}
	s.data = append(s.data, values...)
	s.mu.Unlock()
}

// Snapshot returns a copy of the collected tuples, oldest first. It is
// empty when nothing has been collected.
func (s *ScopeData) Snapshot() [][]float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.data) / s.numItems
	out := make([][]float32, n)
	for i := range out {
		out[i] = append([]float32(nil), s.data[i*s.numItems:(i+1)*s.numItems]...)
	}
	return out
}

// Clear discards the collected tuples.
func (s *ScopeData) Clear() {
	s.mu.Lock()
	s.data = s.data[:0]
	s.mu.Unlock()
}

// NumItems returns the tuple width.
func (s *ScopeData) NumItems() int { return s.numItems }

// NumPoints returns the tuple capacity.
func (s *ScopeData) NumPoints() int { return s.numPoints }

// SampleFrequency returns the tuple rate in Hz.
func (s *ScopeData) SampleFrequency() float64 { return s.sampleHz }
