package sdr

import (
	"github.com/tphakala/go-sdr-pipeline/internal/engine"
)

// FIRFilter is a causal FIR filter stage. Output blocks have the length of
// the input blocks; the group delay of (P-1)/2 samples is left in the
// signal.
type FIRFilter[E Element] struct {
	*Transform[E, E]
	engines []*engine.FIR
}

// NewFIRFilter returns a filter with the given taps.
func NewFIRFilter[E Element](coeffs []float32) (*FIRFilter[E], error) {
	engines, err := newEngines[E](func() (*engine.FIR, error) { return engine.NewFIR(coeffs) })
	if err != nil {
		return nil, err
	}
	f := &FIRFilter[E]{engines: engines}
	f.Transform = NewTransform[E, E]("FIRFilter", f.apply)
	f.log.WithField("taps", len(coeffs)).Debug("designed FIR filter")
	return f, nil
}

func (f *FIRFilter[E]) apply(in, out *Samples[E]) {
	runEngines(f.engines, in, out)
}

// Coefficients returns a copy of the taps.
func (f *FIRFilter[E]) Coefficients() []float32 { return f.engines[0].Coefficients() }

// Latency returns the group delay in samples, rounded down.
func (f *FIRFilter[E]) Latency() int { return f.engines[0].Latency() }

// Reset zeroes the overlap state.
func (f *FIRFilter[E]) Reset() { resetEngines(f.engines) }
