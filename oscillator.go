package sdr

import (
	"fmt"
	"math"
)

// NumericOscillator generates a sinusoid one sample at a time. Frequencies
// are in radians per sample and phases in radians.
type NumericOscillator[E Element] interface {
	// Next returns the current sample and advances the phase.
	Next() E

	// SetFrequency sets the phase step.
	SetFrequency(f float64)

	// AdjustFrequency adds d to the phase step.
	AdjustFrequency(d float64)

	// Frequency returns the phase step wrapped into (-π, π].
	Frequency() float64

	// SetPhase sets the phase of the next sample.
	SetPhase(p float64)

	// AdjustPhase adds d to the phase.
	AdjustPhase(d float64)

	// Phase returns the phase of the next sample.
	Phase() float64
}

// checkOscillator validates the rates of an oscillator.
func checkOscillator(signalHz, sampleHz float64) error {
	if sampleHz <= 0 || math.IsNaN(sampleHz) {
		return fmt.Errorf("%w: sample frequency must be positive: %f", ErrInvalidConfig, sampleHz)
	}
	if math.IsNaN(signalHz) || sampleHz < minOversampling*math.Abs(signalHz) {
		return fmt.Errorf("%w: sample frequency %f below twice the signal frequency %f",
			ErrInvalidConfig, sampleHz, signalHz)
	}
	return nil
}

// wrapFrequency folds f into (-π, π].
func wrapFrequency(f float64) float64 {
	f = math.Mod(f, twoPi)
	if f > math.Pi {
		f -= twoPi
	} else if f <= -math.Pi {
		f += twoPi
	}
	return f
}

// NCO is a table lookup oscillator. The table holds one cycle of
// level·cos (real) or level·(cos, sin) (complex) in 1024 entries; the
// phase is rounded to the nearest entry with no interpolation.
type NCO[E Element] struct {
	re, im []float32
	phase  float32 // table index
	step   float32 // table index per sample
}

var _ NumericOscillator[complex64] = (*NCO[complex64])(nil)

// NewNCO returns a table oscillator at signalHz for samples at sampleHz.
// sampleHz must be at least twice |signalHz|; negative frequencies rotate
// clockwise.
func NewNCO[E Element](signalHz, sampleHz float64, level float32) (*NCO[E], error) {
	if err := checkOscillator(signalHz, sampleHz); err != nil {
		return nil, err
	}
	o := &NCO[E]{
		re:   make([]float32, oscillatorTableSize),
		im:   make([]float32, oscillatorTableSize),
		step: float32(oscillatorTableSize * signalHz / sampleHz),
	}
	for i := range oscillatorTableSize {
		s, c := math.Sincos(twoPi * float64(i) / oscillatorTableSize)
		o.re[i] = level * float32(c)
		o.im[i] = level * float32(s)
	}
	return o, nil
}

// Next returns the table entry nearest the phase and advances it.
func (o *NCO[E]) Next() E {
	for o.phase >= oscillatorTableSize-0.5 {
		o.phase -= oscillatorTableSize
	}
	for o.phase < -0.5 {
		o.phase += oscillatorTableSize
	}
	i := int(o.phase + 0.5)
	if i == oscillatorTableSize {
		// float32 rounding just below the upper wrap point.
		i = 0
	}
	o.phase += o.step
	return makeElement[E](o.re[i], o.im[i])
}

// SetFrequency sets the step to f radians per sample.
func (o *NCO[E]) SetFrequency(f float64) {
	o.step = float32(f * oscillatorTableSize / twoPi)
}

// AdjustFrequency adds d radians per sample to the step.
func (o *NCO[E]) AdjustFrequency(d float64) {
	o.step += float32(d * oscillatorTableSize / twoPi)
}

// Frequency returns the step in radians per sample, wrapped into (-π, π].
func (o *NCO[E]) Frequency() float64 {
	return wrapFrequency(float64(o.step) * twoPi / oscillatorTableSize)
}

// SetPhase sets the phase in radians.
func (o *NCO[E]) SetPhase(p float64) {
	o.phase = float32(p * oscillatorTableSize / twoPi)
}

// AdjustPhase adds d radians to the phase.
func (o *NCO[E]) AdjustPhase(d float64) {
	o.phase += float32(d * oscillatorTableSize / twoPi)
}

// Phase returns the phase in radians.
func (o *NCO[E]) Phase() float64 {
	return float64(o.phase) * twoPi / oscillatorTableSize
}

// PreciseNCO evaluates the sinusoid directly with math.Sincos, keeping the
// phase in float64 radians wrapped into [0, 2π).
type PreciseNCO[E Element] struct {
	level float64
	phase float64
	step  float64
}

var _ NumericOscillator[complex64] = (*PreciseNCO[complex64])(nil)

// NewPreciseNCO returns a direct oscillator at signalHz for samples at
// sampleHz.
func NewPreciseNCO[E Element](signalHz, sampleHz float64, level float32) (*PreciseNCO[E], error) {
	if err := checkOscillator(signalHz, sampleHz); err != nil {
		return nil, err
	}
	return &PreciseNCO[E]{level: float64(level), step: twoPi * signalHz / sampleHz}, nil
}

// Next returns level·(cos, sin)(phase) and advances the phase.
func (o *PreciseNCO[E]) Next() E {
	s, c := math.Sincos(o.phase)
	o.phase = wrapPhase(o.phase + o.step)
	return makeElement[E](float32(o.level*c), float32(o.level*s))
}

// wrapPhase folds p into [0, 2π).
func wrapPhase(p float64) float64 {
	p = math.Mod(p, twoPi)
	if p < 0 {
		p += twoPi
	}
	return p
}

// SetFrequency sets the step to f radians per sample.
func (o *PreciseNCO[E]) SetFrequency(f float64) { o.step = f }

// AdjustFrequency adds d radians per sample to the step.
func (o *PreciseNCO[E]) AdjustFrequency(d float64) { o.step += d }

// Frequency returns the step wrapped into (-π, π].
func (o *PreciseNCO[E]) Frequency() float64 { return wrapFrequency(o.step) }

// SetPhase sets the phase in radians.
func (o *PreciseNCO[E]) SetPhase(p float64) { o.phase = wrapPhase(p) }

// AdjustPhase adds d radians to the phase.
func (o *PreciseNCO[E]) AdjustPhase(d float64) { o.phase = wrapPhase(o.phase + d) }

// Phase returns the phase in [0, 2π).
func (o *PreciseNCO[E]) Phase() float64 { return o.phase }

// Oscillator is a source publishing blocks from a numeric oscillator.
type Oscillator[E Element] struct {
	*Producer[E]
	nco      NumericOscillator[E]
	sampleHz float64
}

// NewOscillator returns a table oscillator source.
func NewOscillator[E Element](signalHz, sampleHz float64, level float32) (*Oscillator[E], error) {
	nco, err := NewNCO[E](signalHz, sampleHz, level)
	if err != nil {
		return nil, err
	}
	return &Oscillator[E]{Producer: NewProducer[E]("Oscillator"), nco: nco, sampleHz: sampleHz}, nil
}

// NewPreciseOscillator returns a direct-evaluation oscillator source.
func NewPreciseOscillator[E Element](signalHz, sampleHz float64, level float32) (*Oscillator[E], error) {
	nco, err := NewPreciseNCO[E](signalHz, sampleHz, level)
	if err != nil {
		return nil, err
	}
	return &Oscillator[E]{Producer: NewProducer[E]("PreciseOscillator"), nco: nco, sampleHz: sampleHz}, nil
}

// Generate publishes a block of n samples.
func (o *Oscillator[E]) Generate(n int) {
	fillOscillator(o.nco, o.Buffer(), n)
	o.Produce(true)
}

// fillOscillator appends n oscillator samples to out.
func fillOscillator[E Element](nco NumericOscillator[E], out *Samples[E], n int) {
	for range n {
		re, im := components(nco.Next())
		out.re = append(out.re, re)
		if isComplex[E]() {
			out.im = append(out.im, im)
		}
	}
}

// SampleFrequency returns the sample rate in Hz.
func (o *Oscillator[E]) SampleFrequency() float64 { return o.sampleHz }

// NCO returns the underlying oscillator, for retuning.
func (o *Oscillator[E]) NCO() NumericOscillator[E] { return o.nco }
