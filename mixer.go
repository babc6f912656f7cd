package sdr

import "math"

// PhaseDetector estimates the phase error between an input sample and the
// oscillator sample it is mixed with. The error is positive when the mixed
// sample in·osc leads the real axis.
type PhaseDetector func(in, osc complex64) float32

// ArgumentDetector is the phase of the mixed sample, for locking onto a
// pilot tone.
func ArgumentDetector(in, osc complex64) float32 {
	return Argument(in * osc)
}

// loop is the second order update shared by the mixer and Costas loops:
// each error e moves the oscillator frequency by -e·alpha and its phase by
// -e·beta, beta = sqrt(alpha). A positive error means the mixed sample
// leads the real axis.
type loop struct {
	alpha float64
	beta  float64
	scope *ScopeData
}

func newLoop() loop {
	return loop{alpha: DefaultLoopBandwidth, beta: math.Sqrt(DefaultLoopBandwidth)}
}

func (l *loop) setBandwidth(alpha float64) {
	l.alpha = alpha
	l.beta = math.Sqrt(alpha)
}

func (l *loop) update(nco NumericOscillator[complex64], e float32) {
	nco.AdjustFrequency(-float64(e) * l.alpha)
	nco.AdjustPhase(-float64(e) * l.beta)
	if l.scope != nil {
		l.scope.Sample(float32(nco.Frequency()), float32(nco.Phase()/twoPi), e)
	}
}

// complexAt returns sample i of a block as complex64.
func complexAt[E Element](s *Samples[E], i int) complex64 {
	if isComplex[E]() {
		return complex(s.re[i], s.im[i])
	}
	return complex(s.re[i], 0)
}

// appendComplex appends v to a complex block.
func appendComplex(out *Samples[complex64], v complex64) {
	out.re = append(out.re, real(v))
	out.im = append(out.im, imag(v))
}

// Mixer multiplies the input by a complex oscillator, shifting the
// spectrum by the oscillator frequency.
//
// With a phase detector the mixer is a phase-locked loop: the detector's
// error steers the oscillator frequency and phase through the loop gains.
type Mixer[I Element] struct {
	*Transform[I, complex64]
	nco      NumericOscillator[complex64]
	detector PhaseDetector
	loop     loop
}

// NewMixer returns a mixer driven by a unit-level table oscillator at
// signalHz. A negative frequency shifts the spectrum down.
func NewMixer[I Element](signalHz, sampleHz float64) (*Mixer[I], error) {
	nco, err := NewNCO[complex64](signalHz, sampleHz, 1)
	if err != nil {
		return nil, err
	}
	return NewMixerWith[I](nco), nil
}

// NewMixerWith returns a mixer driven by nco.
func NewMixerWith[I Element](nco NumericOscillator[complex64]) *Mixer[I] {
	m := &Mixer[I]{nco: nco, loop: newLoop()}
	m.Transform = NewTransform[I, complex64]("Mixer", m.apply)
	return m
}

// SetPhaseDetector closes the loop with d; nil opens it.
func (m *Mixer[I]) SetPhaseDetector(d PhaseDetector) { m.detector = d }

// SetLoopBandwidth sets alpha and beta = sqrt(alpha).
func (m *Mixer[I]) SetLoopBandwidth(alpha float64) { m.loop.setBandwidth(alpha) }

// SetScope publishes (frequency, phase/2π, error) per sample while the
// loop is closed; nil stops publishing.
func (m *Mixer[I]) SetScope(s *ScopeData) { m.loop.scope = s }

// Oscillator returns the mixing oscillator.
func (m *Mixer[I]) Oscillator() NumericOscillator[complex64] { return m.nco }

func (m *Mixer[I]) apply(in *Samples[I], out *Samples[complex64]) {
	for i := range in.Len() {
		v := complexAt(in, i)
		o := m.nco.Next()
		appendComplex(out, v*o)
		if m.detector != nil {
			m.loop.update(m.nco, m.detector(v, o))
		}
	}
}
