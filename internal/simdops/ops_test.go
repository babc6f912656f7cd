package simdops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const opsTolerance = 1e-5

func TestDot_TruncatesToShorter(t *testing.T) {
	a := []float32{1, 2, 3, 4}
	b := []float32{0.5, 0.25, 2}

	assert.InDelta(t, 1*0.5+2*0.25+3*2, Dot(a, b), opsTolerance)
	assert.Zero(t, Dot[float32](nil, b))
}

func TestConvolveValid_CorrelatesWithReversedKernel(t *testing.T) {
	ops := For[float32]()
	signal := []float32{1, 2, 3, 4, 5}
	kernel := []float32{1, 0, -1}
	dst := make([]float32, len(signal)-len(kernel)+1)

	ops.ConvolveValid(dst, signal, kernel)

	for i := range dst {
		want := signal[i]*kernel[0] + signal[i+1]*kernel[1] + signal[i+2]*kernel[2]
		assert.InDelta(t, want, dst[i], opsTolerance, "index %d", i)
	}
}

func TestInterleave2(t *testing.T) {
	ops := For[float32]()
	re := []float32{1, 3, 5}
	im := []float32{2, 4, 6}
	dst := make([]float32, 2*len(re))

	ops.Interleave2(dst, re, im)

	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, dst)
}

func TestFor_ReturnsSharedInstances(t *testing.T) {
	require.Same(t, Float32Ops(), For[float32]())
	require.Same(t, Float64Ops(), For[float64]())

	ops := For[float64]()
	x := []float64{1, 2, 3}
	assert.InDelta(t, 6.0, ops.Sum(x), opsTolerance)

	scaled := make([]float64, len(x))
	ops.Scale(scaled, x, 0.5)
	assert.Equal(t, []float64{0.5, 1, 1.5}, scaled)
}

// BenchmarkIndirectF32DotProduct measures indirect call through Ops struct.
func BenchmarkIndirectF32DotProduct(b *testing.B) {
	ops := For[float32]()
	a := make([]float32, 64)
	c := make([]float32, 64)
	for i := range a {
		a[i] = float32(i) * 0.01
		c[i] = float32(i) * 0.02
	}

	b.ReportAllocs()
	for b.Loop() {
		_ = ops.DotProductUnsafe(a, c)
	}
}

// BenchmarkF32ConvolveValid measures the FIR fast path kernel.
func BenchmarkF32ConvolveValid(b *testing.B) {
	ops := For[float32]()
	signal := make([]float32, 1024+63)
	kernel := make([]float32, 64)
	dst := make([]float32, 1024)
	for i := range signal {
		signal[i] = float32(i) * 0.001
	}
	for i := range kernel {
		kernel[i] = 1.0 / float32(len(kernel))
	}

	b.ReportAllocs()
	for b.Loop() {
		ops.ConvolveValid(dst, signal, kernel)
	}
}
