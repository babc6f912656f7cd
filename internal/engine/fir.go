// Package engine implements the float32 per-component sample engines behind
// the public stages: FIR and IIR filters, the 1-pole/1-zero biquad, the
// polyphase up/FIR/down resampler, the delay line and the moving average.
//
// Every engine keeps its own history between calls so that output does not
// depend on how a stream is chunked. Complex streams in split layout run one
// engine per component.
package engine

import (
	"fmt"
	"slices"

	"github.com/tphakala/go-sdr-pipeline/internal/pipeline"
	"github.com/tphakala/go-sdr-pipeline/internal/simdops"
)

// FIR is a causal block convolution filter with overlap-save continuity.
//
// Output length always equals input length; the group delay of a symmetric
// kernel is (taps-1)/2 samples and is left implicit in the indices.
type FIR struct {
	coeffs   []float32
	reversed []float32 // Stored reversed for ConvolveValid
	overlap  []float32 // Last taps-1 inputs, oldest first
	work     []float32 // Overlap followed by the head of the input

	ops *simdops.Ops[float32]
}

var _ pipeline.Stage = (*FIR)(nil)

// NewFIR creates a FIR filter for the given coefficients.
//
// Parameters:
//
//	coeffs: Filter taps h[0..P-1], at least one
//
// Returns:
//
//	The filter with a zeroed overlap buffer
//	Error if coeffs is empty
func NewFIR(coeffs []float32) (*FIR, error) {
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("FIR coefficients must not be empty")
	}
	reversed := slices.Clone(coeffs)
	slices.Reverse(reversed)
	overlapLen := len(coeffs) - 1

	return &FIR{
		coeffs:   slices.Clone(coeffs),
		reversed: reversed,
		overlap:  make([]float32, overlapLen),
		work:     make([]float32, 0, 2*overlapLen),
		ops:      simdops.For[float32](),
	}, nil
}

// Process filters src and appends len(src) outputs to dst.
func (f *FIR) Process(dst, src []float32) []float32 {
	n := len(src)
	if n == 0 {
		return dst
	}
	start := len(dst)
	dst = slices.Grow(dst, n)[:start+n]
	out := dst[start:]
	ov := len(f.overlap)

	if ov == 0 {
		f.ops.Scale(out, src, f.coeffs[0])
		return dst
	}

	if n >= ov {
		// Boundary outputs draw from the overlap and the first ov inputs.
		f.work = append(append(f.work[:0], f.overlap...), src[:ov]...)
		f.ops.ConvolveValid(out[:ov], f.work, f.reversed)
		if n > ov {
			f.ops.ConvolveValid(out[ov:], src, f.reversed)
		}
		copy(f.overlap, src[n-ov:])
		return dst
	}

	// Short block: the overlap absorbs the input and is trimmed afterwards.
	f.work = append(append(f.work[:0], f.overlap...), src...)
	f.ops.ConvolveValid(out, f.work, f.reversed)
	copy(f.overlap, f.work[n:])
	return dst
}

// OutputCount returns n; the filter is rate preserving.
func (f *FIR) OutputCount(n int) int { return n }

// Reset zeroes the overlap buffer.
func (f *FIR) Reset() { clear(f.overlap) }

// Latency returns the group delay (taps-1)/2 in samples.
func (f *FIR) Latency() int { return len(f.overlap) / latencyDivisor }

// Coefficients returns a copy of the filter taps.
func (f *FIR) Coefficients() []float32 { return slices.Clone(f.coeffs) }
