package sdr

import "math"

// ErrorEstimator maps a mixed (demodulated) sample to a phase error for a
// Costas loop. It is zero when the sample lies on the real axis.
type ErrorEstimator func(v complex64) float32

var tanhTable = buildTanhTable()

// buildTanhTable samples tanh over [-2, 2].
func buildTanhTable() []float32 {
	t := make([]float32, tanhTableSize)
	for i := range t {
		t[i] = float32(math.Tanh(float64(i)/(tanhTableSize-1)*2*tanhRange - tanhRange))
	}
	return t
}

// fastTanh looks tanh up in a 1024-entry table, saturating to ±1
// outside [-2, 2].
func fastTanh(x float32) float32 {
	if x >= tanhRange {
		return 1
	}
	if x <= -tanhRange {
		return -1
	}
	i := int(tanhTableSize/2 + tanhTableSize/(2*tanhRange)*x)
	return tanhTable[min(max(i, 0), tanhTableSize-1)]
}

// ErrorEstimatorProduct is the classic Costas detector re·im.
func ErrorEstimatorProduct(v complex64) float32 {
	return real(v) * imag(v)
}

// ErrorEstimatorTanh is the soft-decision detector tanh(|v|·re)·im.
func ErrorEstimatorTanh(v complex64) float32 {
	return fastTanh(Modulus(v)*real(v)) * imag(v)
}

// SNREstimator returns the detector tanh((|v|/noise)·re)·im for a noise
// level estimate.
func SNREstimator(noise float32) ErrorEstimator {
	return func(v complex64) float32 {
		return fastTanh(Modulus(v)/noise*real(v)) * imag(v)
	}
}

// ErrorEstimatorSNR is SNREstimator at unit noise level.
var ErrorEstimatorSNR = SNREstimator(defaultNoiseLevel)

// CostasLoop recovers a suppressed carrier. The input is mixed with the
// loop oscillator and the estimator's error on the mixed sample steers the
// oscillator frequency and phase, locking a BPSK or DSB signal onto the
// real axis.
type CostasLoop struct {
	*Transform[complex64, complex64]
	nco       NumericOscillator[complex64]
	estimator ErrorEstimator
	loop      loop
}

// NewCostasLoop returns a loop starting at signalHz with the given
// estimator; nil selects ErrorEstimatorProduct.
func NewCostasLoop(signalHz, sampleHz float64, estimator ErrorEstimator) (*CostasLoop, error) {
	nco, err := NewNCO[complex64](signalHz, sampleHz, 1)
	if err != nil {
		return nil, err
	}
	return NewCostasLoopWith(nco, estimator), nil
}

// NewCostasLoopWith returns a loop driven by nco.
func NewCostasLoopWith(nco NumericOscillator[complex64], estimator ErrorEstimator) *CostasLoop {
	if estimator == nil {
		estimator = ErrorEstimatorProduct
	}
	c := &CostasLoop{nco: nco, estimator: estimator, loop: newLoop()}
	c.Transform = NewTransform[complex64, complex64]("CostasLoop", c.apply)
	return c
}

// SetLoopBandwidth sets alpha and beta = sqrt(alpha).
func (c *CostasLoop) SetLoopBandwidth(alpha float64) { c.loop.setBandwidth(alpha) }

// SetScope publishes (frequency, phase/2π, error) per sample; nil stops
// publishing.
func (c *CostasLoop) SetScope(s *ScopeData) { c.loop.scope = s }

// Oscillator returns the loop oscillator.
func (c *CostasLoop) Oscillator() NumericOscillator[complex64] { return c.nco }

func (c *CostasLoop) apply(in, out *Samples[complex64]) {
	for i := range in.Len() {
		vo := complex(in.re[i], in.im[i]) * c.nco.Next()
		appendComplex(out, vo)
		c.loop.update(c.nco, c.estimator(vo))
	}
}
