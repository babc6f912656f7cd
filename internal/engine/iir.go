package engine

import (
	"fmt"
	"slices"

	"github.com/tphakala/go-sdr-pipeline/internal/pipeline"
	"github.com/tphakala/go-sdr-pipeline/internal/simdops"
)

// IIR is a direct-form recursive filter
//
//	a[0]·y[n] = Σ b[k]·x[n-k] - Σ_{k≥1} a[k]·y[n-k]
//
// The feed-forward part runs through a FIR engine first; the feedback term is
// then resolved left to right against a history of the last len(a)-1 outputs.
type IIR struct {
	forward  *FIR
	reversed []float32 // a[1:] reversed
	invA0    float32
	work     []float32 // Output history followed by the current block

	ops *simdops.Ops[float32]
}

var _ pipeline.Stage = (*IIR)(nil)

// NewIIR creates a recursive filter.
//
// Parameters:
//
//	b: Feed-forward coefficients, at least one
//	a: Feedback coefficients, at least one; a[0] must be nonzero
func NewIIR(b, a []float32) (*IIR, error) {
	if len(a) == 0 {
		return nil, fmt.Errorf("IIR feedback coefficients must not be empty")
	}
	if a[0] == 0 {
		return nil, fmt.Errorf("IIR leading feedback coefficient must be nonzero")
	}
	forward, err := NewFIR(b)
	if err != nil {
		return nil, fmt.Errorf("IIR feed-forward: %w", err)
	}

	reversed := slices.Clone(a[1:])
	slices.Reverse(reversed)

	return &IIR{
		forward:  forward,
		reversed: reversed,
		invA0:    1 / a[0],
		work:     make([]float32, len(reversed)),
		ops:      simdops.For[float32](),
	}, nil
}

// Process filters src and appends len(src) outputs to dst.
func (f *IIR) Process(dst, src []float32) []float32 {
	n := len(src)
	if n == 0 {
		return dst
	}
	start := len(dst)
	dst = f.forward.Process(dst, src)
	out := dst[start:]

	ov := len(f.reversed)
	f.work = append(f.work[:ov], out...)
	for i := range n {
		var fb float32
		if ov > 0 {
			fb = f.ops.DotProductUnsafe(f.work[i:i+ov], f.reversed)
		}
		y := (f.work[ov+i] - fb) * f.invA0
		f.work[ov+i] = y
		out[i] = y
	}
	// Keep the last ov outputs as history.
	copy(f.work, f.work[n:n+ov])
	f.work = f.work[:ov]
	return dst
}

// OutputCount returns n; the filter is rate preserving.
func (f *IIR) OutputCount(n int) int { return n }

// Reset clears both histories.
func (f *IIR) Reset() {
	f.forward.Reset()
	clear(f.work)
}

// Latency returns the feed-forward group delay.
func (f *IIR) Latency() int { return f.forward.Latency() }

// Biquad is the 1-pole/1-zero section y = b0·x + b1·x[n-1] - a1·y[n-1]
// with O(1) state.
type Biquad struct {
	b0, b1, a1 float32
	lastIn     float32
	lastOut    float32
}

var _ pipeline.Stage = (*Biquad)(nil)

// NewBiquad creates the section from forward taps {b0, b1} and feedback
// taps {1, a1}.
func NewBiquad(b, a []float32) (*Biquad, error) {
	if len(b) != 2 || len(a) != 2 {
		return nil, fmt.Errorf("biquad needs 2 forward and 2 feedback coefficients, got %d and %d", len(b), len(a))
	}
	if a[0] != 1 {
		return nil, fmt.Errorf("biquad leading feedback coefficient must be 1, got %g", a[0])
	}
	return &Biquad{b0: b[0], b1: b[1], a1: a[1]}, nil
}

// Process filters src and appends len(src) outputs to dst.
func (q *Biquad) Process(dst, src []float32) []float32 {
	for _, x := range src {
		y := x*q.b0 + q.lastIn*q.b1 - q.lastOut*q.a1
		q.lastIn = x
		q.lastOut = y
		dst = append(dst, y)
	}
	return dst
}

// OutputCount returns n; the section is rate preserving.
func (q *Biquad) OutputCount(n int) int { return n }

// Reset clears the one-sample state.
func (q *Biquad) Reset() {
	q.lastIn = 0
	q.lastOut = 0
}

// Latency returns 0.
func (q *Biquad) Latency() int { return 0 }
