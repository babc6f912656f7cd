package filter

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// FrequencyResponse evaluates H(f) = Σ c[i]·exp(j·2π·f·i) at a normalized
// frequency f in cycles per sample.
func FrequencyResponse(coeffs []float64, f float64) complex128 {
	var h complex128
	for i, c := range coeffs {
		s, co := math.Sincos(2 * math.Pi * f * float64(i))
		h += complex(c*co, c*s)
	}
	return h
}

// Response holds a sampled magnitude response.
type Response struct {
	// Frequencies in cycles per sample, ascending from -0.5 to just below 0.5
	Frequencies []float64

	// Magnitude in decibels at each frequency
	MagnitudeDB []float64
}

// ComputeResponse samples the magnitude response of a kernel at points
// evenly spaced frequencies covering the full band, zero frequency centred.
//
// The response comes from a zero-padded FFT of the coefficients, so points
// must be at least the kernel length. A non-positive value selects 512.
func ComputeResponse(coeffs []float64, points int) (Response, error) {
	if points <= 0 {
		points = defaultResponsePoints
	}
	if points < len(coeffs) {
		return Response{}, fmt.Errorf("response points %d shorter than kernel length %d", points, len(coeffs))
	}

	fft := fourier.NewCmplxFFT(points)
	seq := make([]complex128, points)
	for i, c := range coeffs {
		seq[i] = complex(c, 0)
	}
	spectrum := fft.Coefficients(nil, seq)

	resp := Response{
		Frequencies: make([]float64, points),
		MagnitudeDB: make([]float64, points),
	}
	for i := range points {
		k := fft.ShiftIdx(i)
		resp.Frequencies[i] = fft.Freq(k)
		resp.MagnitudeDB[i] = MagnitudeDB(cmplx.Abs(spectrum[k]))
	}
	return resp, nil
}

// MagnitudeDB converts linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}
