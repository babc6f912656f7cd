package filter

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-sdr-pipeline/internal/testutil"
)

func TestComputeResponse_MatchesDirectEvaluation(t *testing.T) {
	kernel, err := SincKernel(31, 0.15, false, Hamming, 1)
	require.NoError(t, err)

	resp, err := ComputeResponse(kernel, 64)
	require.NoError(t, err)
	require.Len(t, resp.Frequencies, 64)

	assert.InDelta(t, -0.5, resp.Frequencies[0], testutil.DefaultTolerance)
	assert.InDelta(t, 0.0, resp.Frequencies[32], testutil.DefaultTolerance)

	for i, f := range resp.Frequencies {
		want := MagnitudeDB(cmplx.Abs(FrequencyResponse(kernel, f)))
		assert.InDelta(t, want, resp.MagnitudeDB[i], 1e-6, "f=%v", f)
	}
	assert.InDelta(t, 0.0, resp.MagnitudeDB[32], testutil.DBTolerance)
}

func TestComputeResponse_Invalid(t *testing.T) {
	_, err := ComputeResponse(make([]float64, 100), 64)
	require.Error(t, err)

	resp, err := ComputeResponse([]float64{1}, 0)
	require.NoError(t, err)
	assert.Len(t, resp.MagnitudeDB, defaultResponsePoints)
}

func TestMagnitudeDB(t *testing.T) {
	assert.InDelta(t, 0.0, MagnitudeDB(1), testutil.DefaultTolerance)
	assert.InDelta(t, -20.0, MagnitudeDB(0.1), testutil.DefaultTolerance)
	assert.InDelta(t, -200.0, MagnitudeDB(0), testutil.DefaultTolerance)
}
