package sdr

import "errors"

// Sentinel errors. Constructors wrap ErrInvalidConfig with the offending
// parameter so callers can test with errors.Is.
var (
	// ErrInvalidConfig reports a parameter rejected at construction time.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNoTransform is the panic value of a Transform processed without
	// a transform function.
	ErrNoTransform = errors.New("transform function not set")

	// ErrPoolClosed reports an async dispatch that could not run because
	// its pool was closed.
	ErrPoolClosed = errors.New("pool closed")
)

// Sink consumes sample blocks.
//
// The block is only valid for the duration of the call; a sink that keeps
// samples must copy them. Sinks are registered and removed by identity, so
// implementations must be comparable (pointer types).
type Sink[I Element] interface {
	Process(block *Samples[I])
}

// Source produces sample blocks for its subscribed sinks.
type Source[O Element] interface {
	// SampleFrequency returns the rate of the produced blocks in Hz.
	SampleFrequency() float64

	// Connect subscribes a sink that runs inline on every produce.
	Connect(sink Sink[O])

	// ConnectAsync subscribes a sink that runs on the pool. The source
	// joins the batch before its next produce.
	ConnectAsync(sink Sink[O], pool *Pool)

	// Disconnect removes a sink by identity.
	Disconnect(sink Sink[O])
}
