// Package filter provides FIR filter design for the DSP pipeline: window
// functions, windowed-sinc kernels, Kaiser designs, notch and peak kernels,
// polyphase decomposition and frequency response evaluation.
//
// Design runs in float64. Callers round the finished coefficients to the
// sample precision once.
package filter

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tphakala/go-sdr-pipeline/internal/mathutil"
)

// Window evaluates a window shape at sample n for denominator m.
//
// A symmetric window of length L uses m = L-1 (filter design); a periodic
// window uses m = L (spectral analysis).
type Window func(n, m int) float64

// Rectangular returns 1 for every sample.
func Rectangular(_, _ int) float64 { return 1 }

// Bartlett is the triangular window 1 - 2|n - m/2| / m.
func Bartlett(n, m int) float64 {
	tmp := float64(n) - float64(m)/halfDivisor
	return 1 - (halfDivisor*math.Abs(tmp))/float64(m)
}

// generalCosine evaluates Σ a[k] cos(k·2πn/m).
func generalCosine(n, m int, coeffs ...float64) float64 {
	f := 2 * math.Pi * float64(n) / float64(m)
	sum := coeffs[0]
	for k := 1; k < len(coeffs); k++ {
		sum += coeffs[k] * math.Cos(float64(k)*f)
	}
	return sum
}

// Hann window.
func Hann(n, m int) float64 { return generalCosine(n, m, 0.5, -0.5) }

// Hamming window.
func Hamming(n, m int) float64 { return generalCosine(n, m, 0.54, -0.46) }

// Blackman window.
func Blackman(n, m int) float64 { return generalCosine(n, m, 0.42, -0.50, 0.08) }

// BlackmanHarris is the 4-term Blackman-Harris window.
func BlackmanHarris(n, m int) float64 {
	return generalCosine(n, m, 0.35875, -0.48829, 0.14128, -0.01168)
}

// Nuttall33 is Nuttall's 4-term window with continuous first derivative.
func Nuttall33(n, m int) float64 {
	return generalCosine(n, m, 0.338946, -0.481973, 0.161054, -0.018027)
}

// Nuttall37 is Nuttall's minimum 4-term window (Blackman-Nuttall).
func Nuttall37(n, m int) float64 {
	return generalCosine(n, m, 0.3635819, -0.4891775, 0.1365995, -0.0106411)
}

// FlatTop is the 5-term flat-top window used for amplitude measurement.
func FlatTop(n, m int) float64 {
	return generalCosine(n, m, 0.21557895, -0.41663158, 0.277263158, -0.083578947, 0.006947368)
}

// HFT70 is Heinzel's 3-term flat-top window (70 dB sidelobes).
func HFT70(n, m int) float64 {
	return generalCosine(n, m, 1, -1.90796, 1.07349, -0.18199)
}

// HFT95 is Heinzel's 4-term flat-top window (95 dB sidelobes).
func HFT95(n, m int) float64 {
	return generalCosine(n, m, 1, -1.9383379, 1.3045202, -0.4028270, 0.0350665)
}

// HFT90D is Heinzel's 4-term flat-top window with fast sidelobe decay.
func HFT90D(n, m int) float64 {
	return generalCosine(n, m, 1, -1.942604, 1.340318, -0.440811, 0.043097)
}

// Kaiser returns a Kaiser window with shape parameter beta.
//
// w(n) = I₀(β√(1-r²)) / I₀(β), r = 2n/m - 1
func Kaiser(beta float64) (Window, error) {
	if beta < 0 || math.IsNaN(beta) {
		return nil, fmt.Errorf("kaiser beta must be >= 0: %f", beta)
	}
	i0Beta := mathutil.BesselI0(beta)
	return func(n, m int) float64 {
		r := halfDivisor*float64(n)/float64(m) - 1
		return mathutil.BesselI0(beta*math.Sqrt(1-r*r)) / i0Beta
	}, nil
}

// Periodic samples a window of the given length with denominator length,
// scaled by gain. Used for spectral analysis.
func Periodic(length int, w Window, gain float64) []float64 {
	return sampleWindow(length, length, w, gain)
}

// Symmetric samples a window of the given length with denominator length-1,
// scaled by gain. Used for filter design.
func Symmetric(length int, w Window, gain float64) []float64 {
	return sampleWindow(length, length-1, w, gain)
}

func sampleWindow(length, m int, w Window, gain float64) []float64 {
	if length < 1 {
		return []float64{}
	}
	if w == nil {
		w = Blackman
	}
	out := make([]float64, length)
	if m == 0 {
		// A single-sample symmetric window has no shape.
		out[0] = gain
		return out
	}
	for n := range length {
		out[n] = gain * w(n, m)
	}
	return out
}

// windowsByName maps the lower-case window names accepted by WindowByName.
var windowsByName = map[string]Window{
	"rectangular":    Rectangular,
	"bartlett":       Bartlett,
	"hann":           Hann,
	"hamming":        Hamming,
	"blackman":       Blackman,
	"blackmanharris": BlackmanHarris,
	"nuttall33":      Nuttall33,
	"nuttall37":      Nuttall37,
	"flattop":        FlatTop,
	"hft70":          HFT70,
	"hft95":          HFT95,
	"hft90d":         HFT90D,
}

// WindowByName looks up a fixed-shape window by name (case-insensitive).
// Kaiser windows need a beta and are built with Kaiser instead.
func WindowByName(name string) (Window, error) {
	w, ok := windowsByName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown window %q (valid: %s)", name, strings.Join(WindowNames(), ", "))
	}
	return w, nil
}

// WindowNames returns the names accepted by WindowByName in sorted order.
func WindowNames() []string {
	names := make([]string, 0, len(windowsByName))
	for name := range windowsByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
