package sdr

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-sdr-pipeline/internal/testutil"
)

const (
	loopAlpha      = 0.01
	loopSamples    = 20000
	loopTail       = 2000
	tableTolerance = 5e-3
)

func TestNCO_MatchesPreciseNCO(t *testing.T) {
	table, err := NewNCO[complex64](1000, 48000, 1)
	require.NoError(t, err)
	precise, err := NewPreciseNCO[complex64](1000, 48000, 1)
	require.NoError(t, err)

	for i := range 4800 {
		a, b := table.Next(), precise.Next()
		require.InDelta(t, 0, Modulus(a-b), tableTolerance, "sample %d", i)
	}
	assert.InDelta(t, precise.Frequency(), table.Frequency(), exactTolerance)
}

func TestNCO_FrequencyAndPhase(t *testing.T) {
	tests := []struct {
		name string
		nco  func() (NumericOscillator[complex64], error)
	}{
		{"Table", func() (NumericOscillator[complex64], error) { return NewNCO[complex64](0, 1000, 1) }},
		{"Precise", func() (NumericOscillator[complex64], error) { return NewPreciseNCO[complex64](0, 1000, 1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := tt.nco()
			require.NoError(t, err)

			o.SetFrequency(3 * math.Pi / 2)
			assert.InDelta(t, -math.Pi/2, o.Frequency(), exactTolerance, "wraps into (-π, π]")
			o.AdjustFrequency(math.Pi / 4)
			assert.InDelta(t, -math.Pi/4, o.Frequency(), exactTolerance)

			o.SetPhase(math.Pi / 2)
			v := o.Next()
			assert.InDelta(t, 0, real(v), tableTolerance)
			assert.InDelta(t, 1, imag(v), tableTolerance)
		})
	}

	p, err := NewPreciseNCO[float32](0, 1000, 1)
	require.NoError(t, err)
	p.AdjustPhase(-1)
	assert.InDelta(t, twoPi-1, p.Phase(), exactTolerance, "phase stays in [0, 2π)")
	p.SetPhase(5 * math.Pi)
	assert.InDelta(t, math.Pi, p.Phase(), exactTolerance)
}

func TestOscillator_InvalidRates(t *testing.T) {
	tests := []struct {
		name             string
		signalHz, sample float64
	}{
		{"ZeroSampleRate", 0, 0},
		{"NegativeSampleRate", 10, -1000},
		{"AboveNyquist", 1000, 1500},
		{"NegativeAboveNyquist", -800, 1500},
		{"NaNSignal", math.NaN(), 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNCO[complex64](tt.signalHz, tt.sample, 1)
			require.ErrorIs(t, err, ErrInvalidConfig)
			_, err = NewPreciseOscillator[float32](tt.signalHz, tt.sample, 1)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestOscillator_Generate(t *testing.T) {
	osc, err := NewOscillator[float32](1000, 8000, 2)
	require.NoError(t, err)
	assert.Equal(t, 8000.0, osc.SampleFrequency())

	sink := NewCollector[float32]()
	sink.Attach(osc)
	osc.Generate(8)
	osc.Generate(8)

	expected := make([]float64, 16)
	for i := range expected {
		expected[i] = 2 * math.Cos(twoPi*float64(i)/8)
	}
	testutil.AssertSamplesInDelta(t, expected, sink.Samples().Real(), sampleTolerance)
	assert.Equal(t, 2, sink.Blocks())

	precise, err := NewPreciseOscillator[complex64](-1000, 8000, 1)
	require.NoError(t, err)
	precise.Generate(2)
	assert.InDelta(t, -math.Sqrt2/2, imag(precise.Output().At(1)), exactTolerance, "negative frequencies rotate clockwise")
	assert.InDelta(t, -twoPi/8, precise.NCO().Frequency(), exactTolerance)
}

func TestMixer_ShiftsToDC(t *testing.T) {
	m, err := NewMixer[complex64](-4800, 48000)
	require.NoError(t, err)
	re, im := testutil.ComplexTone(1000, 0.1)
	out := runBlocks[complex64, complex64](m, chunked(ComplexSamples(re, im), 333)...)

	for i, v := range out.Values() {
		require.InDelta(t, 0, Modulus(v-1), tableTolerance, "sample %d", i)
	}
}

func TestMixer_RealInput(t *testing.T) {
	m, err := NewMixer[float32](-4800, 48000)
	require.NoError(t, err)
	out := runBlocks[float32, complex64](m, RealSamples(realTone(1000, 0.1, 1)))

	// cos·exp(-jωn) is half at DC and half at -2ω.
	mean := out.Mean()
	assert.InDelta(t, 0.5, real(mean), tableTolerance)
	assert.InDelta(t, 0, imag(mean), tableTolerance)
}

func TestMixer_PhaseLockedLoop(t *testing.T) {
	for _, f0 := range []float64{0.002, -0.005} {
		nco, err := NewPreciseNCO[complex64](0, 1, 1)
		require.NoError(t, err)
		m := NewMixerWith[complex64](nco)
		m.SetPhaseDetector(ArgumentDetector)
		m.SetLoopBandwidth(loopAlpha)

		re, im := testutil.ComplexTone(loopSamples, f0)
		out := runBlocks[complex64, complex64](m, chunked(ComplexSamples(re, im), 4096)...)

		assert.InDelta(t, -twoPi*f0, nco.Frequency(), 1e-4, "f0 %v", f0)
		for _, v := range out.Values()[loopSamples-loopTail:] {
			require.Less(t, math.Abs(float64(Argument(v))), 0.01, "f0 %v", f0)
		}
	}
}

func TestMixer_Scope(t *testing.T) {
	scope, err := NewScopeData(scopeLoopItems, 100, 1000)
	require.NoError(t, err)

	m, err := NewMixer[complex64](0, 1000)
	require.NoError(t, err)
	m.SetScope(scope)
	m.Process(complexNoise(10))
	assert.Empty(t, scope.Snapshot(), "an open loop publishes nothing")

	m.SetPhaseDetector(ArgumentDetector)
	m.Process(complexNoise(50))
	snap := scope.Snapshot()
	require.Len(t, snap, 50)
	for _, point := range snap {
		require.Len(t, point, scopeLoopItems)
		testutil.AssertNoNaNOrInf(t, point)
	}

	m.SetScope(nil)
	m.Process(complexNoise(5))
	assert.Len(t, scope.Snapshot(), 50)
}

// bpsk returns n samples of ±1 symbols, each held for hold samples, on a
// carrier at f cycles per sample with the given phase.
func bpsk(n, hold int, f, phase float64) *Samples[complex64] {
	rng := rand.New(rand.NewPCG(seedA, seedB))
	re := make([]float32, n)
	im := make([]float32, n)
	var sym float64
	for i := range n {
		if i%hold == 0 {
			sym = float64(2*rng.IntN(2) - 1)
		}
		s, c := math.Sincos(twoPi*f*float64(i) + phase)
		re[i], im[i] = float32(sym*c), float32(sym*s)
	}
	return ComplexSamples(re, im)
}

func TestCostasLoop_LocksBPSK(t *testing.T) {
	const f0 = 0.005
	tests := []struct {
		name      string
		estimator ErrorEstimator
	}{
		{"Product", ErrorEstimatorProduct},
		{"Tanh", ErrorEstimatorTanh},
		{"SNR", ErrorEstimatorSNR},
	}
	input := bpsk(loopSamples, 8, f0, 0.7)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nco, err := NewPreciseNCO[complex64](0, 1, 1)
			require.NoError(t, err)
			c := NewCostasLoopWith(nco, tt.estimator)
			c.SetLoopBandwidth(loopAlpha)
			assert.Same(t, nco, c.Oscillator())

			out := runBlocks[complex64, complex64](c, chunked(input, 1000)...)
			assert.InDelta(t, -twoPi*f0, nco.Frequency(), 1e-3)
			for _, v := range out.Values()[loopSamples-loopTail:] {
				require.Less(t, math.Abs(float64(imag(v)/real(v))), 0.01, "locked onto the real axis")
			}
		})
	}
}

func TestCostasLoop_DefaultEstimator(t *testing.T) {
	c, err := NewCostasLoop(0, 1000, nil)
	require.NoError(t, err)
	scope, err := NewScopeData(scopeLoopItems, 10, 1000)
	require.NoError(t, err)
	c.SetScope(scope)

	// A sample on the real axis produces no error, so the loop stays put.
	c.Process(SamplesOf[complex64](1, 1, 1))
	assert.Zero(t, c.Oscillator().Frequency())
	assert.Len(t, scope.Snapshot(), 3)

	_, err = NewCostasLoop(600, 1000, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFastTanh(t *testing.T) {
	assert.Equal(t, float32(1), fastTanh(5))
	assert.Equal(t, float32(-1), fastTanh(-2))
	for _, x := range []float32{-1.5, -0.5, 0, 0.25, 1.9} {
		assert.InDelta(t, math.Tanh(float64(x)), fastTanh(x), tableTolerance, "x=%v", x)
	}

	est := SNREstimator(2)
	assert.InDelta(t, 0.5*math.Tanh(math.Hypot(1, 0.5)/2), est(1+0.5i), tableTolerance)
}
