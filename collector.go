package sdr

import "sync"

// Collector is a terminal sink that keeps a copy of every sample it
// receives, for applications and tests that read the stream afterwards.
type Collector[E Element] struct {
	Consumer[E]

	mu      sync.Mutex
	samples *Samples[E]
	blocks  int
}

// NewCollector returns an empty collector.
func NewCollector[E Element]() *Collector[E] {
	c := &Collector[E]{samples: NewSamples[E](0)}
	c.Consumer.init(c, nodeLogger("Collector", newID()))
	return c
}

// Process appends block to the collected samples.
func (c *Collector[E]) Process(block *Samples[E]) {
	c.mu.Lock()
	c.samples.AppendRange(block, 0, block.Len())
	c.blocks++
	c.mu.Unlock()
}

// Samples returns a copy of the collected samples.
func (c *Collector[E]) Samples() *Samples[E] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.samples.Copy()
}

// Blocks returns the number of blocks received.
func (c *Collector[E]) Blocks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blocks
}

// Reset discards the collected samples.
func (c *Collector[E]) Reset() {
	c.mu.Lock()
	c.samples.Clear()
	c.blocks = 0
	c.mu.Unlock()
}

// FuncSink adapts a function to a Sink.
type FuncSink[E Element] struct {
	Consumer[E]
	fn func(block *Samples[E])
}

// NewFuncSink returns a sink calling fn for every block.
func NewFuncSink[E Element](fn func(block *Samples[E])) *FuncSink[E] {
	s := &FuncSink[E]{fn: fn}
	s.Consumer.init(s, nodeLogger("FuncSink", newID()))
	return s
}

// Process calls the function.
func (s *FuncSink[E]) Process(block *Samples[E]) { s.fn(block) }
