package sdr

import (
	"fmt"
	"math"
)

// AGCConfig configures the per-sample AGC loop.
type AGCConfig struct {
	// Rate is the adaptation step per sample.
	Rate float64

	// Reference is the target output modulus.
	Reference float64

	// InitialGain is the gain applied to the first sample.
	InitialGain float64

	// MaxGain caps the gain. NaN leaves it unlimited.
	MaxGain float64
}

// DefaultAGCConfig returns rate 1e-4, reference 1, initial gain 1 and no
// gain limit.
func DefaultAGCConfig() AGCConfig {
	return AGCConfig{
		Rate:        DefaultAGCRate,
		Reference:   DefaultAGCReference,
		InitialGain: DefaultAGCGain,
		MaxGain:     math.NaN(),
	}
}

// Validate checks the configuration.
func (c *AGCConfig) Validate() error {
	if c.Rate <= 0 || math.IsNaN(c.Rate) {
		return fmt.Errorf("%w: AGC rate must be positive: %g", ErrInvalidConfig, c.Rate)
	}
	if c.Reference <= 0 || math.IsNaN(c.Reference) {
		return fmt.Errorf("%w: AGC reference must be positive: %g", ErrInvalidConfig, c.Reference)
	}
	if c.InitialGain <= 0 || math.IsNaN(c.InitialGain) {
		return fmt.Errorf("%w: AGC initial gain must be positive: %g", ErrInvalidConfig, c.InitialGain)
	}
	if c.MaxGain <= 0 {
		return fmt.Errorf("%w: AGC maximum gain must be positive or NaN: %g", ErrInvalidConfig, c.MaxGain)
	}
	return nil
}

// AGC is a first order gain loop run per sample:
//
//	out = x·gain;  gain += rate·(reference - |out|)
//
// with the gain clamped to the configured maximum.
type AGC[E Element] struct {
	*Transform[E, E]
	rate      float32
	reference float32
	gain      float32
	maxGain   float32
	limited   bool
}

// NewAGC returns a gain loop for cfg.
func NewAGC[E Element](cfg AGCConfig) (*AGC[E], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &AGC[E]{
		rate:      float32(cfg.Rate),
		reference: float32(cfg.Reference),
		gain:      float32(cfg.InitialGain),
		maxGain:   float32(cfg.MaxGain),
		limited:   !math.IsNaN(cfg.MaxGain),
	}
	a.Transform = NewTransform[E, E]("AGC", a.apply)
	return a, nil
}

// Gain returns the current gain.
func (a *AGC[E]) Gain() float32 { return a.gain }

func (a *AGC[E]) apply(in, out *Samples[E]) {
	cplx := isComplex[E]()
	for i := range in.Len() {
		re := in.re[i] * a.gain
		var im, mod float32
		if cplx {
			im = in.im[i] * a.gain
			out.im = append(out.im, im)
			mod = float32(math.Hypot(float64(re), float64(im)))
		} else {
			mod = float32(math.Abs(float64(re)))
		}
		out.re = append(out.re, re)

		a.gain += a.rate * (a.reference - mod)
		if a.limited && a.gain > a.maxGain {
			a.gain = a.maxGain
		}
	}
}

// AutoGainControl scales each block by a gain derived from the block
// peaks. The peak is tracked by two cascaded exponential averages so the
// gain follows slow level changes and ignores single loud blocks; the
// gain targets an output peak of 0.5.
type AutoGainControl[E Element] struct {
	*Transform[E, E]
	gain    float32
	ceil    float32
	ceilMA  float32
	ceilMAA float32
	locked  bool
}

// NewAutoGainControl returns a block AGC starting at gain 0.5.
func NewAutoGainControl[E Element]() *AutoGainControl[E] {
	const initialGain = autoGainTarget
	a := &AutoGainControl[E]{
		gain:    initialGain,
		ceil:    1 / initialGain,
		ceilMA:  1 / initialGain,
		ceilMAA: 1 / initialGain,
	}
	a.Transform = NewTransform[E, E]("AutoGainControl", a.apply)
	return a
}

// Lock freezes (true) or releases (false) the gain.
func (a *AutoGainControl[E]) Lock(locked bool) { a.locked = locked }

// Locked reports whether the gain is frozen.
func (a *AutoGainControl[E]) Locked() bool { return a.locked }

// Gain returns the current gain.
func (a *AutoGainControl[E]) Gain() float32 { return a.gain }

// SignalLevel returns the tracked input level 1/gain.
func (a *AutoGainControl[E]) SignalLevel() float32 { return 1 / a.gain }

// RSSI returns the received signal strength -20·log10(gain) in dB.
func (a *AutoGainControl[E]) RSSI() float32 {
	return float32(-dBPerDecade * math.Log10(float64(a.gain)))
}

func (a *AutoGainControl[E]) apply(in, out *Samples[E]) {
	if !a.locked && in.Len() > 0 {
		a.ceilMA += (a.ceil - a.ceilMA) * autoGainSmoothing
		a.ceilMAA += (a.ceilMA - a.ceilMAA) * autoGainSmoothing
		a.ceil = peakModulus(in)
		if a.ceilMAA > 0 {
			a.gain = autoGainTarget / a.ceilMAA
		}
	}
	out.AppendRange(in, 0, in.Len())
	out.Scale(a.gain)
}

// peakModulus returns the largest sample modulus of a block.
func peakModulus[E Element](s *Samples[E]) float32 {
	var peak float32
	for i := range s.Len() {
		peak = max(peak, Modulus(s.At(i)))
	}
	return peak
}
