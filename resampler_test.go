package sdr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-sdr-pipeline/internal/testutil"
)

func TestUpFIRDown_OutputCountAgreesWithProcess(t *testing.T) {
	tests := []struct {
		name     string
		up, down int
	}{
		{"Decimate4", 1, 4},
		{"Interpolate3", 3, 1},
		{"Rational3over2", 3, 2},
		{"Rational147over160", 147, 160},
	}
	sizes := []int{1, 5, 100, 37, 2, 640}
	input := complexNoise(2000)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewUpFIRDown[complex64](DefaultResamplerConfig(tt.up, tt.down))
			require.NoError(t, err)
			total := 0
			for _, block := range chunked(input, sizes...) {
				predicted := r.OutputCount(block.Len())
				r.Process(block)
				require.Equal(t, predicted, r.Output().Len())
				total += predicted
			}
			assert.InDelta(t, float64(input.Len()*tt.up)/float64(tt.down), float64(total), 1)
		})
	}
}

func TestUpFIRDown_ChunkingInvariance(t *testing.T) {
	input := RealSamples(noise(1500))

	whole, err := NewUpFIRDown[float32](DefaultResamplerConfig(3, 2))
	require.NoError(t, err)
	expected := runBlocks[float32, float32](whole, input)

	r, err := NewUpFIRDown[float32](DefaultResamplerConfig(3, 2))
	require.NoError(t, err)
	got := runBlocks[float32, float32](r, chunked(input, 1, 13, 250)...)
	testutil.AssertSamplesInDelta(t, expected.Real(), got.Real(), exactTolerance)

	r.Reset()
	again := runBlocks[float32, float32](r, input)
	testutil.AssertSamplesInDelta(t, expected.Real(), again.Real(), exactTolerance)
}

func TestUpFIRDown_UnityDCGain(t *testing.T) {
	tests := []struct {
		name      string
		up, down  int
		tolerance float64
	}{
		{"Decimate4", 1, 4, 1e-4},
		{"Rational3over2", 3, 2, 1e-3},
		{"Interpolate2", 2, 1, 1e-3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewUpFIRDown[float32](DefaultResamplerConfig(tt.up, tt.down))
			require.NoError(t, err)
			out := runBlocks[float32, float32](r, RealSamples(realTone(2000, 0, 1)))
			tail := out.Real()[out.Len()/2:]
			testutil.AssertAllInRange(t, tail, 1-tt.tolerance, 1+tt.tolerance)
		})
	}
}

func TestUpFIRDown_ExplicitKernel(t *testing.T) {
	r, err := NewUpFIRDown[float32](ResamplerConfig{Up: 1, Down: 2, Kernel: []float32{1}})
	require.NoError(t, err)
	out := runBlocks[float32, float32](r, SamplesOf[float32](1, 2, 3), SamplesOf[float32](4, 5, 6))
	assert.Equal(t, []float32{1, 3, 5}, out.Values())
	assert.Zero(t, r.Latency())
}

func TestUpFIRDown_SampleFrequency(t *testing.T) {
	osc, err := NewOscillator[float32](1000, 48000, 1)
	require.NoError(t, err)
	r, err := NewUpFIRDown[float32](DefaultResamplerConfig(6, 4))
	require.NoError(t, err)

	up, down := r.Factors()
	assert.Equal(t, 3, up)
	assert.Equal(t, 2, down)

	assert.True(t, math.IsNaN(r.SampleFrequency()))
	r.Attach(osc)
	assert.Equal(t, 72000.0, r.SampleFrequency())

	sink := NewCollector[float32]()
	sink.Attach(r)
	osc.Generate(480)
	assert.Equal(t, 720, sink.Samples().Len())
}

func TestResamplerConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  ResamplerConfig
	}{
		{"ZeroUp", ResamplerConfig{Up: 0, Down: 1, FilterSemiLength: 8, TransitionFrequency: 0.5}},
		{"ZeroDown", ResamplerConfig{Up: 1, Down: 0, FilterSemiLength: 8, TransitionFrequency: 0.5}},
		{"ZeroSemiLength", ResamplerConfig{Up: 1, Down: 2, TransitionFrequency: 0.5}},
		{"TransitionAboveHalf", ResamplerConfig{Up: 1, Down: 2, FilterSemiLength: 8, TransitionFrequency: 0.7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUpFIRDown[float32](tt.cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func BenchmarkUpFIRDown_Decimate5(b *testing.B) {
	r, err := NewUpFIRDown[complex64](DefaultResamplerConfig(1, 5))
	require.NoError(b, err)
	block := complexNoise(4800)
	for b.Loop() {
		r.Process(block)
	}
}
