package sdr

import "math"

// AMEnvelopeDemodulate recovers an AM signal as the envelope of each block
// about its mean, with the carrier level removed:
//
//	m = |x - mean(x)| / factor;  out = m - mean(m)
//
// Removing the block means rejects a residual carrier offset and the DC
// term of the envelope.
type AMEnvelopeDemodulate struct {
	*Transform[complex64, float32]
	scale float32
}

// NewAMEnvelopeDemodulate returns a demodulator dividing the envelope by
// factor.
func NewAMEnvelopeDemodulate(factor float64) (*AMEnvelopeDemodulate, error) {
	if err := checkModulationFactor(factor); err != nil {
		return nil, err
	}
	d := &AMEnvelopeDemodulate{scale: float32(1 / factor)}
	d.Transform = NewTransform[complex64, float32]("AMEnvelopeDemodulate", d.apply)
	return d, nil
}

func (d *AMEnvelopeDemodulate) apply(in *Samples[complex64], out *Samples[float32]) {
	n := in.Len()
	if n == 0 {
		return
	}
	mean := in.Mean()
	start := len(out.re)
	for i, xr := range in.re {
		v := complex(xr, in.im[i]) - mean
		out.re = append(out.re, Modulus(v)*d.scale)
	}
	block := out.re[start:]
	offset := RealSamples(block).Mean()
	for i := range block {
		block[i] -= offset
	}
}

// AMEnvelope is the plain envelope detector |x| / factor.
type AMEnvelope struct {
	*Transform[complex64, float32]
	scale float32
}

// NewAMEnvelope returns an envelope detector dividing by factor.
func NewAMEnvelope(factor float64) (*AMEnvelope, error) {
	if err := checkModulationFactor(factor); err != nil {
		return nil, err
	}
	d := &AMEnvelope{scale: float32(1 / factor)}
	d.Transform = NewTransform[complex64, float32]("AMEnvelope", d.apply)
	return d, nil
}

func (d *AMEnvelope) apply(in *Samples[complex64], out *Samples[float32]) {
	for i, xr := range in.re {
		out.re = append(out.re, float32(math.Hypot(float64(xr), float64(in.im[i])))*d.scale)
	}
}

// AMModulate amplitude modulates a real signal onto a complex carrier:
//
//	out = carrier·(1 + factor·x)
//
// or carrier·factor·x with the carrier suppressed (DSB-SC).
type AMModulate struct {
	*Transform[float32, complex64]
	carrier NumericOscillator[complex64]
	factor  float32
	offset  float32
}

// NewAMModulate returns a modulator with a table carrier at carrierHz and
// the given level.
func NewAMModulate(carrierHz, sampleHz float64, level float32, factor float64, suppressCarrier bool) (*AMModulate, error) {
	if err := checkModulationFactor(factor); err != nil {
		return nil, err
	}
	carrier, err := NewNCO[complex64](carrierHz, sampleHz, level)
	if err != nil {
		return nil, err
	}
	m := &AMModulate{carrier: carrier, factor: float32(factor), offset: 1}
	if suppressCarrier {
		m.offset = 0
	}
	m.Transform = NewTransform[float32, complex64]("AMModulate", m.apply)
	return m, nil
}

func (m *AMModulate) apply(in *Samples[float32], out *Samples[complex64]) {
	for _, x := range in.re {
		appendComplex(out, m.carrier.Next()*complex(m.offset+x*m.factor, 0))
	}
}
