package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlan(t *testing.T) {
	tests := []struct {
		name       string
		in, out    int
		expected   []StageSpec
		chainLabel string
	}{
		{
			name: "SDRToAudio", in: 2_400_000, out: 48_000,
			expected: []StageSpec{
				{Up: 1, Down: 5, Taps: 120},
				{Up: 1, Down: 5, Taps: 120},
				{Up: 1, Down: 2, Taps: 48},
			},
			chainLabel: "1/5 -> 1/5 -> 1/2",
		},
		{
			name: "PowerOfTwo", in: 1_920_000, out: 240_000,
			expected:   []StageSpec{{Up: 1, Down: 8, Taps: 192}},
			chainLabel: "1/8",
		},
		{
			name: "IFToAudio", in: 240_000, out: 44_100,
			expected: []StageSpec{
				{Up: 1, Down: 5, Taps: 120},
				{Up: 147, Down: 160, Taps: 3840},
			},
			chainLabel: "1/5 -> 147/160",
		},
		{
			name: "DecimateThenRational", in: 960_000, out: 44_100,
			expected: []StageSpec{
				{Up: 1, Down: 5, Taps: 120},
				{Up: 1, Down: 4, Taps: 96},
				{Up: 147, Down: 160, Taps: 3840},
			},
			chainLabel: "1/5 -> 1/4 -> 147/160",
		},
		{
			name: "Interpolation", in: 8_000, out: 48_000,
			expected:   []StageSpec{{Up: 6, Down: 1, Taps: 144}},
			chainLabel: "6/1",
		},
		{
			name: "Passthrough", in: 48_000, out: 48_000,
			expected:   []StageSpec{{Up: 1, Down: 1, Taps: 24}},
			chainLabel: "1/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := BuildPlan(tt.in, tt.out, DefaultMaxStageFactor, DefaultSemiLength)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p.Stages())
			assert.Equal(t, tt.chainLabel, p.String())

			ratio := 1.0
			for _, s := range p.Stages() {
				ratio *= s.Ratio()
			}
			assert.InDelta(t, float64(tt.out)/float64(tt.in), ratio, 1e-12)
			assert.InDelta(t, p.Ratio(), ratio, 1e-12)
		})
	}
}

func TestBuildPlan_IntermediateRatesStayAboveOutput(t *testing.T) {
	p, err := BuildPlan(960_000, 44_100, DefaultMaxStageFactor, DefaultSemiLength)
	require.NoError(t, err)

	rate := 960_000.0
	for _, s := range p.Stages() {
		rate *= s.Ratio()
		assert.GreaterOrEqual(t, rate, 44_100.0-1e-6)
	}
}

func TestPlan_Latency(t *testing.T) {
	p, err := BuildPlan(400, 100, DefaultMaxStageFactor, DefaultSemiLength)
	require.NoError(t, err)
	require.Len(t, p.Stages(), 1)
	// 96 taps at the input rate: (96-1)/2 samples.
	assert.InDelta(t, 47.5, p.Latency(), 1e-12)

	chain, err := BuildPlan(100, 1, 10, 1)
	require.NoError(t, err)
	// Two 1/10 stages of 20 taps each.
	assert.Equal(t, "1/10 -> 1/10", chain.String())
	assert.InDelta(t, 9.5+9.5*10, chain.Latency(), 1e-12)

	up, down := chain.Factors()
	assert.Equal(t, 1, up)
	assert.Equal(t, 100, down)
}

func TestBuildPlan_Invalid(t *testing.T) {
	tests := []struct {
		name                     string
		in, out, factor, semiLen int
		errMsg                   string
	}{
		{"ZeroInput", 0, 48000, 8, 12, "must be positive"},
		{"NegativeOutput", 48000, -1, 8, 12, "must be positive"},
		{"FactorTooSmall", 48000, 8000, 1, 12, "max stage factor"},
		{"ZeroSemiLength", 48000, 8000, 8, 0, "semi-length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildPlan(tt.in, tt.out, tt.factor, tt.semiLen)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
