package filter

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-sdr-pipeline/internal/mathutil"
	"github.com/tphakala/go-sdr-pipeline/internal/testutil"
)

const (
	sincReferenceTolerance   = 1e-6
	kaiserReferenceTolerance = 1e-3
	gainTolerance            = 1e-9
	notchSemiLength          = 20
	notchAttenuation         = 60.0
)

func TestSincKernel_RectangularReference(t *testing.T) {
	half := []float64{0.030273, 0.015059, -0.033595, -0.028985, 0.036316, 0.051504,
		-0.038337, -0.098652, 0.039580, 0.315800, 0.460000}
	expected := append(append([]float64{}, half...), reversed(half[:len(half)-1])...)

	got, err := SincKernel(21, 460.0/2000.0, false, Rectangular, math.NaN())
	require.NoError(t, err)
	testutil.AssertSamplesInDelta(t, expected, got, sincReferenceTolerance)
}

func TestSincKernel_KaiserReference(t *testing.T) {
	ripple := -20 * math.Log10(0.01)
	numTaps, beta, err := mathutil.KaiserParameters(ripple, 0.2)
	require.NoError(t, err)
	require.Equal(t, 24, numTaps)

	w, err := Kaiser(beta)
	require.NoError(t, err)

	half := []float64{-0.002896, -0.004885, 0.007528, 0.010980, -0.015463, -0.021317,
		0.029123, 0.039980, -0.056254, -0.084142, 0.146464, 0.448952}
	expected := append(append([]float64{}, half...), reversed(half)...)

	got, err := SincKernel(numTaps, 0.25, false, w, math.NaN())
	require.NoError(t, err)
	testutil.AssertSamplesInDelta(t, expected, got, kaiserReferenceTolerance)
}

func reversed(s []float64) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}

func TestSincKernel_Gain(t *testing.T) {
	tests := []struct {
		name     string
		length   int
		highPass bool
		refFreq  float64
	}{
		{"LowPassOdd", 31, false, 0},
		{"LowPassEven", 32, false, 0},
		{"HighPass", 31, true, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := SincKernel(tt.length, 0.2, tt.highPass, Hamming, 2)
			require.NoError(t, err)
			testutil.AssertSymmetric(t, k, testutil.DefaultTolerance)
			assert.InDelta(t, 2.0, cmplx.Abs(FrequencyResponse(k, tt.refFreq)), gainTolerance)
		})
	}
}

func TestSincKernel_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		length   int
		ft       float64
		highPass bool
		errMsg   string
	}{
		{"ZeroLength", 0, 0.2, false, "length must be positive"},
		{"AboveNyquist", 11, 0.6, false, "outside"},
		{"EvenHighPass", 10, 0.2, true, "must be odd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SincKernel(tt.length, tt.ft, tt.highPass, nil, 1)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDualSincKernel(t *testing.T) {
	bp, err := DualSincKernel(63, 0.1, 0.2, false, nil, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cmplx.Abs(FrequencyResponse(bp, 0.15)), gainTolerance)
	assert.Less(t, cmplx.Abs(FrequencyResponse(bp, 0)), 0.01)
	assert.Less(t, cmplx.Abs(FrequencyResponse(bp, 0.4)), 0.01)

	bs, err := DualSincKernel(63, 0.1, 0.2, true, nil, 1)
	require.NoError(t, err)
	testutil.AssertDCGain(t, bs, 1.0, gainTolerance)
	assert.Less(t, cmplx.Abs(FrequencyResponse(bs, 0.15)), 0.01)

	_, err = DualSincKernel(64, 0.1, 0.2, false, nil, 1)
	require.Error(t, err)
	_, err = DualSincKernel(63, 0.2, 0.1, false, nil, 1)
	require.Error(t, err)
}

func TestHzDesigns(t *testing.T) {
	const fs = 48000.0

	lp, err := LowPass(101, 3000, fs, nil, 1)
	require.NoError(t, err)
	testutil.AssertDCGain(t, lp, 1.0, gainTolerance)
	testutil.AssertCenterIsMax(t, lp)

	hp, err := HighPass(101, 3000, fs, nil, 1)
	require.NoError(t, err)
	assert.Less(t, math.Abs(sum(hp)), 0.01)

	bp, err := BandPass(101, 3000, 6000, fs, nil, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cmplx.Abs(FrequencyResponse(bp, 4500/fs)), gainTolerance)

	bs, err := BandStop(101, 3000, 6000, fs, nil, 1)
	require.NoError(t, err)
	testutil.AssertDCGain(t, bs, 1.0, gainTolerance)

	_, err = LowPass(101, 3000, 0, nil, 1)
	require.Error(t, err)
}

func sum(s []float64) float64 {
	var total float64
	for _, v := range s {
		total += v
	}
	return total
}

func TestKaiserDesigns(t *testing.T) {
	lp, err := KaiserLowPass(0.1, 60, 0.05, 1)
	require.NoError(t, err)
	testutil.AssertDCGain(t, lp, 1.0, gainTolerance)
	assert.Less(t, MagnitudeDB(cmplx.Abs(FrequencyResponse(lp, 0.2))), -55.0)

	fixed, err := KaiserLowPassLength(65, 0.1, 60, 1)
	require.NoError(t, err)
	assert.Len(t, fixed, 65)

	hp, err := KaiserHighPass(0.25, 40, 0.1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, len(hp)%2, "high pass length must be odd")

	bp, err := KaiserBandPass(0.1, 0.2, 40, 0.1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, len(bp)%2)

	bs, err := KaiserBandStop(0.1, 0.2, 40, 0.1, 1)
	require.NoError(t, err)
	testutil.AssertDCGain(t, bs, 1.0, gainTolerance)

	_, err = KaiserLowPass(0.1, 5, 0.05, 1)
	require.Error(t, err)
}

func TestNotch_ZeroAtDesignFrequency(t *testing.T) {
	for _, f := range []float64{0, 0.1, 0.456, 0.5, -0.25, -0.389} {
		h, err := Notch(notchSemiLength, f, notchAttenuation)
		require.NoError(t, err)
		require.Len(t, h, 2*notchSemiLength+1)
		assert.Less(t, cmplx.Abs(FrequencyResponse(h, f)), 1e-9, "f=%v", f)
	}
}

func TestDCBlock(t *testing.T) {
	h, err := DCBlock(notchSemiLength, notchAttenuation)
	require.NoError(t, err)
	testutil.AssertDCGain(t, h, 0, 1e-9)
	assert.InDelta(t, 1.0, cmplx.Abs(FrequencyResponse(h, 0.25)), 0.05)
}

func TestPeak_UnityAtDesignFrequency(t *testing.T) {
	for _, f := range []float64{0.05, 0.2, -0.3} {
		h, err := Peak(notchSemiLength, f, notchAttenuation)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, cmplx.Abs(FrequencyResponse(h, f)), 1e-9, "f=%v", f)
	}
}

func TestToneKernel_Invalid(t *testing.T) {
	_, err := Notch(0, 0.1, 60)
	require.Error(t, err)
	_, err = Notch(10, 0.7, 60)
	require.Error(t, err)
	_, err = Peak(10, 0.1, -1)
	require.Error(t, err)
}

// BenchmarkKaiserLowPass benchmarks a typical channel filter design.
func BenchmarkKaiserLowPass(b *testing.B) {
	for b.Loop() {
		_, _ = KaiserLowPass(0.1, 60, 0.02, 1)
	}
}
