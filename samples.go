package sdr

import (
	"fmt"
	"math"
	"slices"

	"github.com/tphakala/go-sdr-pipeline/internal/simdops"
)

// Samples is an ordered, growable block of samples.
//
// Complex blocks use split layout: real and imaginary parts live in two
// parallel float32 slices of equal length, so per-component filtering and
// dot products run on contiguous vectors. Real blocks leave the imaginary
// slice nil. The zero value is an empty, usable block.
type Samples[E Element] struct {
	re []float32
	im []float32
}

// NewSamples returns an empty block with room for capacity samples.
func NewSamples[E Element](capacity int) *Samples[E] {
	s := &Samples[E]{re: make([]float32, 0, capacity)}
	if isComplex[E]() {
		s.im = make([]float32, 0, capacity)
	}
	return s
}

// SamplesOf returns a block holding values.
func SamplesOf[E Element](values ...E) *Samples[E] {
	s := NewSamples[E](len(values))
	s.Append(values...)
	return s
}

// RealSamples returns a real block holding a copy of values.
func RealSamples(values []float32) *Samples[float32] {
	return &Samples[float32]{re: slices.Clone(values)}
}

// ComplexSamples returns a complex block holding copies of the real and
// imaginary parts. It panics if the lengths differ.
func ComplexSamples(re, im []float32) *Samples[complex64] {
	if len(re) != len(im) {
		panic(fmt.Sprintf("sdr: component lengths differ: %d != %d", len(re), len(im)))
	}
	return &Samples[complex64]{re: slices.Clone(re), im: slices.Clone(im)}
}

// Len returns the number of samples.
func (s *Samples[E]) Len() int { return len(s.re) }

// At returns sample i.
func (s *Samples[E]) At(i int) E {
	if !isComplex[E]() {
		return makeElement[E](s.re[i], 0)
	}
	return makeElement[E](s.re[i], s.im[i])
}

// Set replaces sample i.
func (s *Samples[E]) Set(i int, v E) {
	re, im := components(v)
	s.re[i] = re
	if isComplex[E]() {
		s.im[i] = im
	}
}

// Append adds values at the end.
func (s *Samples[E]) Append(values ...E) {
	cplx := isComplex[E]()
	for _, v := range values {
		re, im := components(v)
		s.re = append(s.re, re)
		if cplx {
			s.im = append(s.im, im)
		}
	}
}

// appendParts adds components at the end. im is ignored for real blocks
// and must match re in length for complex ones.
func (s *Samples[E]) appendParts(re, im []float32) {
	s.re = append(s.re, re...)
	if isComplex[E]() {
		s.im = append(s.im, im...)
	}
}

// AppendRange appends src[from:to].
func (s *Samples[E]) AppendRange(src *Samples[E], from, to int) {
	s.re = append(s.re, src.re[from:to]...)
	if isComplex[E]() {
		s.im = append(s.im, src.im[from:to]...)
	}
}

// Replace substitutes s[from:to] with src[srcFrom:srcTo]. The ranges may
// differ in length; the block grows or shrinks accordingly.
func (s *Samples[E]) Replace(from, to int, src *Samples[E], srcFrom, srcTo int) {
	s.re = slices.Replace(s.re, from, to, src.re[srcFrom:srcTo]...)
	if isComplex[E]() {
		s.im = slices.Replace(s.im, from, to, src.im[srcFrom:srcTo]...)
	}
}

// RemoveRange deletes s[from:to].
func (s *Samples[E]) RemoveRange(from, to int) {
	s.re = slices.Delete(s.re, from, to)
	if isComplex[E]() {
		s.im = slices.Delete(s.im, from, to)
	}
}

// Clear empties the block and keeps its capacity.
func (s *Samples[E]) Clear() {
	s.re = s.re[:0]
	if s.im != nil {
		s.im = s.im[:0]
	}
}

// Resize truncates the block to n samples, or grows it padding with NaN.
func (s *Samples[E]) Resize(n int) {
	s.re = resizeNaN(s.re, n)
	if isComplex[E]() {
		s.im = resizeNaN(s.im, n)
	}
}

func resizeNaN(v []float32, n int) []float32 {
	if n <= len(v) {
		return v[:n]
	}
	nan := float32(math.NaN())
	for len(v) < n {
		v = append(v, nan)
	}
	return v
}

// DotAt returns Σ s[offset+k]·weights[k] over the weights. Complex blocks
// take the dot product of each component with the real weights.
//
// This is the primitive shared by FIR filtering and polyphase resampling.
// It panics if the window runs past the end of the block.
func (s *Samples[E]) DotAt(offset int, weights []float32) E {
	end := offset + len(weights)
	re := simdops.Dot(s.re[offset:end], weights)
	if !isComplex[E]() {
		return makeElement[E](re, 0)
	}
	return makeElement[E](re, simdops.Dot(s.im[offset:end], weights))
}

// Real returns the real parts. The slice aliases the block and is valid
// until the block is next modified.
func (s *Samples[E]) Real() []float32 { return s.re }

// Imag returns the imaginary parts, nil for a real block. The slice
// aliases the block and is valid until the block is next modified.
func (s *Samples[E]) Imag() []float32 { return s.im }

// Values returns a copy of the samples.
func (s *Samples[E]) Values() []E {
	out := make([]E, len(s.re))
	for i := range out {
		out[i] = s.At(i)
	}
	return out
}

// Mean returns the average sample, zero for an empty block.
func (s *Samples[E]) Mean() E {
	n := len(s.re)
	if n == 0 {
		var zero E
		return zero
	}
	ops := simdops.Float32Ops()
	re := ops.Sum(s.re) / float32(n)
	if !isComplex[E]() {
		return makeElement[E](re, 0)
	}
	return makeElement[E](re, ops.Sum(s.im)/float32(n))
}

// Copy returns an independent copy of the block.
func (s *Samples[E]) Copy() *Samples[E] {
	return &Samples[E]{re: slices.Clone(s.re), im: slices.Clone(s.im)}
}

// Scale multiplies every sample by f.
func (s *Samples[E]) Scale(f float32) {
	if len(s.re) == 0 {
		return
	}
	ops := simdops.Float32Ops()
	ops.Scale(s.re, s.re, f)
	if isComplex[E]() {
		ops.Scale(s.im, s.im, f)
	}
}
