package sdr

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/tphakala/go-sdr-pipeline/internal/engine"
)

// IIRFilter is a direct-form recursive filter stage
//
//	a[0]·y[n] = Σ b[k]·x[n-k] - Σ_{k≥1} a[k]·y[n-k]
type IIRFilter[E Element] struct {
	*Transform[E, E]
	engines []*engine.IIR
}

// NewIIRFilter returns a recursive filter. a[0] must be nonzero.
func NewIIRFilter[E Element](b, a []float32) (*IIRFilter[E], error) {
	engines, err := newEngines[E](func() (*engine.IIR, error) { return engine.NewIIR(b, a) })
	if err != nil {
		return nil, err
	}
	f := &IIRFilter[E]{engines: engines}
	f.Transform = NewTransform[E, E]("IIRFilter", f.apply)
	f.log.WithFields(logrus.Fields{"forward": len(b), "feedback": len(a)}).Debug("designed IIR filter")
	return f, nil
}

func (f *IIRFilter[E]) apply(in, out *Samples[E]) {
	runEngines(f.engines, in, out)
}

// Reset zeroes the input and output history.
func (f *IIRFilter[E]) Reset() { resetEngines(f.engines) }

// Biquad is a one-pole, one-zero recursive stage with O(1) state:
//
//	y[n] = b0·x[n] + b1·x[n-1] - a1·y[n-1]
type Biquad[E Element] struct {
	*Transform[E, E]
	engines []*engine.Biquad
}

// NewBiquad returns a section from b = [b0, b1] and a = [1, a1].
func NewBiquad[E Element](b, a []float32) (*Biquad[E], error) {
	engines, err := newEngines[E](func() (*engine.Biquad, error) { return engine.NewBiquad(b, a) })
	if err != nil {
		return nil, err
	}
	q := &Biquad[E]{engines: engines}
	q.Transform = NewTransform[E, E]("Biquad", q.apply)
	return q, nil
}

func (q *Biquad[E]) apply(in, out *Samples[E]) {
	runEngines(q.engines, in, out)
}

// Reset zeroes the state.
func (q *Biquad[E]) Reset() { resetEngines(q.engines) }

// DeemphasisTaps returns the biquad taps of a single-pole de-emphasis
// low pass with time constant tau, from the bilinear transform with
// frequency prewarping. The DC gain is one.
func DeemphasisTaps(sampleHz, tau float64) (b, a []float32, err error) {
	if sampleHz <= 0 || math.IsNaN(sampleHz) {
		return nil, nil, fmt.Errorf("%w: sample frequency must be positive: %f", ErrInvalidConfig, sampleHz)
	}
	if tau <= 0 || math.IsNaN(tau) {
		return nil, nil, fmt.Errorf("%w: de-emphasis time constant must be positive: %g", ErrInvalidConfig, tau)
	}
	fc := 1 / tau
	ca := 2 * sampleHz * math.Tan(fc/(2*sampleHz))
	k := -ca / (2 * sampleHz)
	p1 := (1 + k) / (1 - k)
	b0 := -k / (1 - k)
	return []float32{float32(b0), float32(b0)}, []float32{1, float32(-p1)}, nil
}

// NewFMDeemphasis returns the broadcast FM de-emphasis filter for audio at
// sampleHz. Use DefaultDeemphasisTau for 75 µs.
func NewFMDeemphasis(sampleHz, tau float64) (*Biquad[float32], error) {
	b, a, err := DeemphasisTaps(sampleHz, tau)
	if err != nil {
		return nil, err
	}
	q, err := NewBiquad[float32](b, a)
	if err != nil {
		return nil, err
	}
	q.rename("FMDeemphasis")
	return q, nil
}
