package engine

import (
	"fmt"

	"github.com/tphakala/go-sdr-pipeline/internal/filter"
	"github.com/tphakala/go-sdr-pipeline/internal/mathutil"
	"github.com/tphakala/go-sdr-pipeline/internal/pipeline"
	"github.com/tphakala/go-sdr-pipeline/internal/simdops"
)

// UpFIRDown is a rational resampler: upsample by up, filter by a prototype
// kernel, downsample by down, computed through a polyphase bank so only the
// kept outputs are evaluated.
//
// The timing state is exact integer arithmetic. For the next output,
// offset is the index in the coming block of the newest input it uses and
// phase selects the sub-filter:
//
//	t = up·offset + phase,  0 ≤ phase < up,  0 ≤ t < down
//
// Each output advances t by down; a block of n inputs consumes n·up.
type UpFIRDown struct {
	up, down int
	bank     [][]float32 // up rows of rowLen reversed taps
	rowLen   int
	padding  int
	kernel   int // Prototype length before padding

	phase   int
	offset  int
	overlap []float32 // Last rowLen-1 inputs
	work    []float32 // Overlap followed by the current block

	ops *simdops.Ops[float32]
}

var _ pipeline.Stage = (*UpFIRDown)(nil)

// NewUpFIRDown creates a resampler from a prototype low-pass kernel
// designed at the upsampled rate.
//
// The factors are reduced by their gcd first. Each polyphase row is scaled
// by the reduced up factor to keep unity gain after interpolation.
//
// Parameters:
//
//	up: Interpolation factor (>= 1)
//	down: Decimation factor (>= 1)
//	kernel: Prototype filter taps, at least one
func NewUpFIRDown(up, down int, kernel []float32) (*UpFIRDown, error) {
	if up < 1 {
		return nil, fmt.Errorf("interpolation factor must be >= 1: %d", up)
	}
	if down < 1 {
		return nil, fmt.Errorf("decimation factor must be >= 1: %d", down)
	}
	if len(kernel) == 0 {
		return nil, fmt.Errorf("resampler coefficients must not be empty")
	}

	g := mathutil.GCD(up, down)
	up, down = up/g, down/g

	bank, padding, err := filter.PolyphaseBank(up, kernel, float32(up))
	if err != nil {
		return nil, fmt.Errorf("failed to build polyphase bank: %w", err)
	}
	rowLen := len(bank[0])

	return &UpFIRDown{
		up:      up,
		down:    down,
		bank:    bank,
		rowLen:  rowLen,
		padding: padding,
		kernel:  len(kernel),
		overlap: make([]float32, rowLen-1),
		work:    make([]float32, 0, 2*rowLen),
		ops:     simdops.For[float32](),
	}, nil
}

// Factors returns the reduced interpolation and decimation factors.
func (r *UpFIRDown) Factors() (up, down int) { return r.up, r.down }

// SubfilterLength returns the length of each polyphase row.
func (r *UpFIRDown) SubfilterLength() int { return r.rowLen }

// Padding returns how many zeros were appended to the prototype to fill the
// polyphase bank.
func (r *UpFIRDown) Padding() int { return r.padding }

// OutputCount returns exactly how many outputs the next Process call
// produces for n inputs:
//
//	np = n·up;  np/down + (1 if up·offset + phase < np mod down)
func (r *UpFIRDown) OutputCount(n int) int {
	if n <= 0 {
		return 0
	}
	np := n * r.up
	count := np / r.down
	if r.phase+r.up*r.offset < np%r.down {
		count++
	}
	return count
}

// Process resamples src and appends OutputCount(len(src)) samples to dst.
func (r *UpFIRDown) Process(dst, src []float32) []float32 {
	n := len(src)
	if n == 0 {
		return dst
	}
	ov := r.rowLen - 1
	r.work = append(append(r.work[:0], r.overlap...), src...)

	i, p := r.offset, r.phase
	for i < n {
		// work[i+ov] is src[i], the newest input of this output.
		dst = append(dst, r.ops.DotProductUnsafe(r.work[i:i+r.rowLen], r.bank[p]))
		p += r.down
		i += p / r.up
		p %= r.up
	}
	r.offset = i - n
	r.phase = p

	// Blocks shorter than the overlap retain part of the previous history.
	copy(r.overlap, r.work[len(r.work)-ov:])
	return dst
}

// Reset restores the zero history and timing state.
func (r *UpFIRDown) Reset() {
	clear(r.overlap)
	r.phase = 0
	r.offset = 0
}

// Latency returns the prototype group delay in input samples.
func (r *UpFIRDown) Latency() int {
	return (r.kernel - 1) / latencyDivisor / r.up
}
