package sdr

import (
	"fmt"
	"math"
)

// checkModulationFactor validates a modulation factor.
func checkModulationFactor(factor float64) error {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return fmt.Errorf("%w: modulation factor must be positive: %g", ErrInvalidConfig, factor)
	}
	return nil
}

// FMModulate frequency modulates a real signal onto a unit complex
// baseband carrier. An input of x advances the phase by 2π·factor·x per
// sample, so factor is the peak deviation over the sample rate for a
// full-scale input.
type FMModulate struct {
	*Transform[float32, complex64]
	step  float64
	phase float64
}

// NewFMModulate returns a modulator with the given factor.
func NewFMModulate(factor float64) (*FMModulate, error) {
	if err := checkModulationFactor(factor); err != nil {
		return nil, err
	}
	m := &FMModulate{step: twoPi * factor}
	m.Transform = NewTransform[float32, complex64]("FMModulate", m.apply)
	return m, nil
}

func (m *FMModulate) apply(in *Samples[float32], out *Samples[complex64]) {
	for _, x := range in.re {
		m.phase += float64(x) * m.step
		if m.phase > math.Pi {
			m.phase -= twoPi
		} else if m.phase < -math.Pi {
			m.phase += twoPi
		}
		s, c := math.Sincos(m.phase)
		out.re = append(out.re, float32(c))
		out.im = append(out.im, float32(s))
	}
}

// FMDemodulate recovers the modulating signal from a complex baseband
// block as the phase difference between successive samples:
//
//	out = arg(conj(prev)·x) / (2π·factor)
//
// The previous sample starts at zero, so the first output is zero.
type FMDemodulate struct {
	*Transform[complex64, float32]
	scale  float32
	prevRe float32
	prevIm float32
}

// NewFMDemodulate returns a demodulator with the given factor. A factor of
// deviation/sampleHz yields a full-scale output at peak deviation.
func NewFMDemodulate(factor float64) (*FMDemodulate, error) {
	if err := checkModulationFactor(factor); err != nil {
		return nil, err
	}
	d := &FMDemodulate{scale: float32(1 / (twoPi * factor))}
	d.Transform = NewTransform[complex64, float32]("FMDemodulate", d.apply)
	return d, nil
}

func (d *FMDemodulate) apply(in *Samples[complex64], out *Samples[float32]) {
	pr, pi := d.prevRe, d.prevIm
	for i, xr := range in.re {
		xi := in.im[i]
		re := xr*pr + xi*pi
		im := xi*pr - xr*pi
		out.re = append(out.re, float32(math.Atan2(float64(im), float64(re)))*d.scale)
		pr, pi = xr, xi
	}
	d.prevRe, d.prevIm = pr, pi
}

// Reset forgets the previous sample.
func (d *FMDemodulate) Reset() {
	d.prevRe, d.prevIm = 0, 0
}
