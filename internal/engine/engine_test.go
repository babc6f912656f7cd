package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-sdr-pipeline/internal/pipeline"
	"github.com/tphakala/go-sdr-pipeline/internal/testutil"
)

const (
	signalLength    = 1000
	chunkTolerance  = 1e-5
	directTolerance = 1e-4
)

// chunkPattern splits streams into irregular block sizes, including empty
// blocks and blocks shorter than typical overlaps.
var chunkPattern = []int{1, 0, 2, 3, 7, 0, 50, 5, 128, 1, 33}

func randomSignal(n int, seed uint64) []float32 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(rng.Float64()*2 - 1)
	}
	return out
}

// runChunked feeds src through s in the irregular chunk pattern.
func runChunked(t *testing.T, s pipeline.Stage, src []float32) []float32 {
	t.Helper()
	var out []float32
	for i, pos := 0, 0; pos < len(src); i++ {
		n := min(chunkPattern[i%len(chunkPattern)], len(src)-pos)
		before := len(out)
		expected := s.OutputCount(n)
		out = s.Process(out, src[pos:pos+n])
		require.Equal(t, expected, len(out)-before, "OutputCount mismatch at block %d", i)
		pos += n
	}
	return out
}

// directConvolve computes y[n] = Σ h[k]·x[n-k] in float64.
func directConvolve(h, x []float32) []float64 {
	y := make([]float64, len(x))
	for n := range x {
		var acc float64
		for k := range h {
			if n-k >= 0 {
				acc += float64(h[k]) * float64(x[n-k])
			}
		}
		y[n] = acc
	}
	return y
}

func TestFIR_MatchesDirectConvolution(t *testing.T) {
	tests := []struct {
		name string
		taps int
	}{
		{"SingleTap", 1},
		{"TwoTaps", 2},
		{"Short", 5},
		{"Long", 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := randomSignal(tt.taps, 7)
			x := randomSignal(signalLength, 11)
			expected := directConvolve(h, x)

			whole, err := NewFIR(h)
			require.NoError(t, err)
			testutil.AssertSamplesInDelta(t, expected, whole.Process(nil, x), directTolerance)

			chunked, err := NewFIR(h)
			require.NoError(t, err)
			testutil.AssertSamplesInDelta(t, expected, runChunked(t, chunked, x), directTolerance)
		})
	}
}

func TestFIR_ImpulseResponseAndReset(t *testing.T) {
	h := []float32{0.5, 0.25, -0.125, 1}
	f, err := NewFIR(h)
	require.NoError(t, err)

	impulse := []float32{1, 0, 0, 0, 0, 0}
	assert.Equal(t, []float32{0.5, 0.25, -0.125, 1, 0, 0}, f.Process(nil, impulse))

	f.Reset()
	got := f.Process(nil, []float32{1})
	got = f.Process(got, []float32{0})
	got = f.Process(got, []float32{0, 0})
	assert.Equal(t, h, got)

	assert.Equal(t, 1, f.Latency())
	assert.Equal(t, h, f.Coefficients())
}

func TestFIR_AppendsToDst(t *testing.T) {
	f, err := NewFIR([]float32{2})
	require.NoError(t, err)

	out := f.Process([]float32{9}, []float32{1, 2})
	assert.Equal(t, []float32{9, 2, 4}, out)
	assert.Equal(t, []float32{9}, f.Process([]float32{9}, nil))
}

func TestFIR_Invalid(t *testing.T) {
	_, err := NewFIR(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")
}

// directIIR evaluates a[0]·y[n] = Σ b·x - Σ a[1:]·y in float64.
func directIIR(b, a, x []float32) []float64 {
	y := make([]float64, len(x))
	for n := range x {
		var acc float64
		for k := range b {
			if n-k >= 0 {
				acc += float64(b[k]) * float64(x[n-k])
			}
		}
		for k := 1; k < len(a); k++ {
			if n-k >= 0 {
				acc -= float64(a[k]) * y[n-k]
			}
		}
		y[n] = acc / float64(a[0])
	}
	return y
}

func TestIIR_MatchesDirectForm(t *testing.T) {
	tests := []struct {
		name string
		b, a []float32
	}{
		{"OnePole", []float32{1}, []float32{1, -0.5}},
		{"Deemphasis", []float32{0.2, 0.2}, []float32{1, -0.6}},
		{"SecondOrder", []float32{0.1, 0.2, 0.1}, []float32{1, -0.8, 0.2}},
		{"ScaledLeading", []float32{1, 1}, []float32{2, -0.5}},
		{"FeedForwardOnly", []float32{0.5, 0.5}, []float32{1}},
		{"LongFeedback", []float32{0.05}, []float32{1, -0.3, 0.1, -0.05, 0.02, 0.01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := randomSignal(signalLength, 3)
			expected := directIIR(tt.b, tt.a, x)

			f, err := NewIIR(tt.b, tt.a)
			require.NoError(t, err)
			testutil.AssertSamplesInDelta(t, expected, runChunked(t, f, x), directTolerance)
		})
	}
}

func TestIIR_EqualsBiquad(t *testing.T) {
	b := []float32{0.2, 0.2}
	a := []float32{1, -0.6}
	x := randomSignal(signalLength, 5)

	general, err := NewIIR(b, a)
	require.NoError(t, err)
	section, err := NewBiquad(b, a)
	require.NoError(t, err)

	testutil.AssertSamplesInDelta(t, general.Process(nil, x), runChunked(t, section, x), chunkTolerance)
}

func TestIIR_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		b, a   []float32
		errMsg string
	}{
		{"NoFeedback", []float32{1}, nil, "feedback coefficients"},
		{"ZeroLeading", []float32{1}, []float32{0, 1}, "nonzero"},
		{"NoForward", nil, []float32{1}, "must not be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIIR(tt.b, tt.a)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestBiquad_Invalid(t *testing.T) {
	_, err := NewBiquad([]float32{1, 2, 3}, []float32{1, 0})
	require.Error(t, err)
	_, err = NewBiquad([]float32{1, 2}, []float32{2, 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be 1")
}

func TestBiquad_Reset(t *testing.T) {
	q, err := NewBiquad([]float32{1, 0}, []float32{1, -0.5})
	require.NoError(t, err)
	first := q.Process(nil, []float32{1, 0, 0})
	assert.Equal(t, []float32{1, 0.5, 0.25}, first)

	q.Reset()
	assert.Equal(t, first, q.Process(nil, []float32{1, 0, 0}))
	assert.Equal(t, 0, q.Latency())
}

func TestDelayLine(t *testing.T) {
	d, err := NewDelayLine(4)
	require.NoError(t, err)

	assert.Equal(t, []float32{0, 0, 0}, d.Process(nil, []float32{1, 2, 3}))
	assert.Equal(t, []float32{0, 1, 2}, d.Process(nil, []float32{4, 5, 6}))
	assert.Equal(t, []float32{3, 4, 5, 6, 7, 8}, d.Process(nil, []float32{7, 8, 9, 10, 11, 12}))
	assert.Equal(t, 4, d.Latency())
}

func TestDelayLine_AnyChunking(t *testing.T) {
	for _, delay := range []int{0, 1, 4, 37} {
		x := randomSignal(300, uint64(delay))
		d, err := NewDelayLine(delay)
		require.NoError(t, err)

		got := runChunked(t, d, x)
		expected := make([]float32, len(x))
		copy(expected[min(delay, len(x)):], x)
		assert.Equal(t, expected, got, "delay=%d", delay)
	}

	_, err := NewDelayLine(-1)
	require.Error(t, err)
}

func TestMovingAverage(t *testing.T) {
	m, err := NewMovingAverage(3)
	require.NoError(t, err)

	got := m.Process(nil, []float32{4, 8, 6, -1, -2, -3, -1, 3, 4, 5})
	expected := []float64{4.0 / 3, 4, 6, 13.0 / 3, 1, -2, -2, -1.0 / 3, 2, 4}
	testutil.AssertSamplesInDelta(t, expected, got, testutil.SampleTolerance)

	_, err = NewMovingAverage(0)
	require.Error(t, err)
}

func TestMovingAverage_Oldest(t *testing.T) {
	m, err := NewMovingAverage(3)
	require.NoError(t, err)

	// After each step Oldest is the input from D-1 samples ago.
	inputs := []float32{1, 2, 3, 4, 5}
	var oldest []float32
	for _, x := range inputs {
		m.Step(x)
		oldest = append(oldest, m.Oldest())
	}
	assert.Equal(t, []float32{0, 0, 1, 2, 3}, oldest)
}
