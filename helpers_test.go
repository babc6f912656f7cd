package sdr

import (
	"math"
	"math/rand/v2"
)

// Tolerances shared by the root package tests.
const (
	exactTolerance  = 1e-6
	sampleTolerance = 1e-5
	seedA, seedB    = 1, 2
)

// stage is a node that processes I blocks and publishes O blocks.
type stage[I, O Element] interface {
	Process(block *Samples[I])
	Output() *Samples[O]
}

// runBlocks processes blocks in order and concatenates the published
// outputs.
func runBlocks[I, O Element](s stage[I, O], blocks ...*Samples[I]) *Samples[O] {
	out := NewSamples[O](0)
	for _, b := range blocks {
		s.Process(b)
		o := s.Output()
		out.AppendRange(o, 0, o.Len())
	}
	return out
}

// chunked splits s into consecutive blocks, cycling through sizes.
func chunked[E Element](s *Samples[E], sizes ...int) []*Samples[E] {
	var blocks []*Samples[E]
	for from, i := 0, 0; from < s.Len(); i++ {
		to := min(from+sizes[i%len(sizes)], s.Len())
		b := NewSamples[E](to - from)
		b.AppendRange(s, from, to)
		blocks = append(blocks, b)
		from = to
	}
	return blocks
}

// noise returns n uniform samples in [-1, 1).
func noise(n int) []float32 {
	rng := rand.New(rand.NewPCG(seedA, seedB))
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(2*rng.Float64() - 1)
	}
	return out
}

// complexNoise returns n complex samples with uniform components.
func complexNoise(n int) *Samples[complex64] {
	v := noise(2 * n)
	return ComplexSamples(v[:n], v[n:])
}

// realTone returns n samples of amp·cos(2π·f·i).
func realTone(n int, f, amp float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amp * math.Cos(2*math.Pi*f*float64(i)))
	}
	return out
}
