package filter

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/tphakala/go-sdr-pipeline/internal/mathutil"
	"github.com/tphakala/go-sdr-pipeline/internal/simdops"
)

// SincKernel designs a windowed-sinc filter with one transition (low or high pass).
//
// The kernel is the ideal sinc response at the normalized transition
// frequency, truncated to length taps and shaped by the window evaluated in
// symmetric mode. A high pass is formed by subtracting the low pass from a
// centred impulse, which needs an odd length.
//
// Parameters:
//
//	length: Number of taps (odd for high pass)
//	ft: Normalized transition frequency in cycles per sample, 0 ≤ ft ≤ 0.5
//	highPass: true for a high pass, false for a low pass
//	w: Window shape (nil selects Blackman)
//	gain: Passband gain after normalization; NaN leaves the kernel unscaled
//
// Returns:
//
//	Filter coefficients, symmetric about the centre
//	Error if parameters are invalid
func SincKernel(length int, ft float64, highPass bool, w Window, gain float64) ([]float64, error) {
	if length < 1 {
		return nil, fmt.Errorf("kernel length must be positive: %d", length)
	}
	if ft < 0 || ft > maxNormalizedFrequency || math.IsNaN(ft) {
		return nil, fmt.Errorf("normalized transition frequency %f outside [0, %.1f]", ft, maxNormalizedFrequency)
	}
	if w == nil {
		w = Blackman
	}

	out := make([]float64, length)
	halfLength := length / 2
	m := length - 1 // order of the filter
	m2 := float64(m) / halfDivisor

	if 2*halfLength != length {
		// Centre tap, set directly to avoid 0/0.
		val := halfDivisor * ft
		if highPass {
			val = 1 - val
		}
		out[halfLength] = val
	} else if highPass {
		return nil, fmt.Errorf("high pass kernel length must be odd: %d", length)
	}

	// Negating the frequency inverts every side tap.
	if highPass {
		ft = -ft
	}

	for n := range halfLength {
		val := sincSample(ft, n, m2) * w(n, m)
		out[n] = val
		out[length-n-1] = val
	}

	if highPass {
		return normalizeAt(out, maxNormalizedFrequency, gain), nil
	}
	return normalizeAt(out, 0, gain), nil
}

// sincSample returns sin(2π·ft·(n-m2)) / (π·(n-m2)).
func sincSample(ft float64, n int, m2 float64) float64 {
	x := float64(n) - m2
	if x == 0 {
		return halfDivisor * ft
	}
	return math.Sin(2*math.Pi*ft*x) / (math.Pi * x)
}

// DualSincKernel designs a windowed-sinc filter with two transitions
// (band pass or band stop). Both forms need an odd length.
//
// Parameters:
//
//	length: Number of taps (odd)
//	ft1, ft2: Normalized band edges, 0 ≤ ft1 < ft2 ≤ 0.5
//	bandStop: true for a band stop, false for a band pass
//	w: Window shape (nil selects Blackman)
//	gain: Passband gain after normalization; NaN leaves the kernel unscaled
func DualSincKernel(length int, ft1, ft2 float64, bandStop bool, w Window, gain float64) ([]float64, error) {
	if length < 1 || length%2 == 0 {
		return nil, fmt.Errorf("band kernel length must be odd and positive: %d", length)
	}
	if ft1 < 0 || ft2 > maxNormalizedFrequency || ft1 >= ft2 {
		return nil, fmt.Errorf("band edges must satisfy 0 <= ft1 < ft2 <= %.1f: %f, %f",
			maxNormalizedFrequency, ft1, ft2)
	}
	if w == nil {
		w = Blackman
	}

	out := make([]float64, length)
	halfLength := length / 2
	m := length - 1
	m2 := float64(m) / halfDivisor

	val := halfDivisor * (ft2 - ft1)
	if bandStop {
		val = 1 - val
		ft1, ft2 = ft2, ft1
	}
	out[halfLength] = val

	for n := range halfLength {
		v := (sincSample(ft2, n, m2) - sincSample(ft1, n, m2)) * w(n, m)
		out[n] = v
		out[length-n-1] = v
	}

	if bandStop {
		return normalizeAt(out, 0, gain), nil
	}
	return normalizeAt(out, (ft1+ft2)/halfDivisor, gain), nil
}

// normalizeAt scales the kernel so its magnitude response at frequency f
// equals gain. At DC this is the coefficient sum.
func normalizeAt(kernel []float64, f, gain float64) []float64 {
	if math.IsNaN(gain) {
		return kernel
	}
	ops := simdops.For[float64]()
	var ref float64
	if f == 0 {
		ref = ops.Sum(kernel)
	} else {
		ref = cmplx.Abs(FrequencyResponse(kernel, f))
	}
	if math.Abs(ref) > minMagnitude {
		ops.Scale(kernel, kernel, gain/ref)
	}
	return kernel
}

// LowPass designs a windowed-sinc low pass from a transition frequency in Hz.
func LowPass(length int, transitionHz, sampleHz float64, w Window, gain float64) ([]float64, error) {
	if sampleHz <= 0 {
		return nil, fmt.Errorf("sample frequency must be positive: %f", sampleHz)
	}
	return SincKernel(length, transitionHz/sampleHz, false, w, gain)
}

// HighPass designs a windowed-sinc high pass from a transition frequency in Hz.
func HighPass(length int, transitionHz, sampleHz float64, w Window, gain float64) ([]float64, error) {
	if sampleHz <= 0 {
		return nil, fmt.Errorf("sample frequency must be positive: %f", sampleHz)
	}
	return SincKernel(length, transitionHz/sampleHz, true, w, gain)
}

// BandPass designs a windowed-sinc band pass from band edges in Hz.
func BandPass(length int, transition1Hz, transition2Hz, sampleHz float64, w Window, gain float64) ([]float64, error) {
	if sampleHz <= 0 {
		return nil, fmt.Errorf("sample frequency must be positive: %f", sampleHz)
	}
	return DualSincKernel(length, transition1Hz/sampleHz, transition2Hz/sampleHz, false, w, gain)
}

// BandStop designs a windowed-sinc band stop from band edges in Hz.
func BandStop(length int, transition1Hz, transition2Hz, sampleHz float64, w Window, gain float64) ([]float64, error) {
	if sampleHz <= 0 {
		return nil, fmt.Errorf("sample frequency must be positive: %f", sampleHz)
	}
	return DualSincKernel(length, transition1Hz/sampleHz, transition2Hz/sampleHz, true, w, gain)
}

// kaiserDesign returns the Kaiser window and tap count for a ripple and width.
func kaiserDesign(ripple, width float64, oddLength bool) (Window, int, error) {
	numTaps, beta, err := mathutil.KaiserParameters(ripple, width)
	if err != nil {
		return nil, 0, err
	}
	if oddLength && numTaps%2 == 0 {
		numTaps++
	}
	w, err := Kaiser(beta)
	if err != nil {
		return nil, 0, err
	}
	return w, numTaps, nil
}

// KaiserLowPass designs a low pass whose length and window follow from the
// ripple (dB) and transition width (fraction of Nyquist).
func KaiserLowPass(ft, ripple, width, gain float64) ([]float64, error) {
	w, numTaps, err := kaiserDesign(ripple, width, false)
	if err != nil {
		return nil, err
	}
	return SincKernel(numTaps, ft, false, w, gain)
}

// KaiserLowPassLength designs a Kaiser-windowed low pass of fixed length
// with β taken from the stopband attenuation.
func KaiserLowPassLength(length int, ft, attenuation, gain float64) ([]float64, error) {
	w, err := Kaiser(mathutil.KaiserBeta(attenuation))
	if err != nil {
		return nil, err
	}
	return SincKernel(length, ft, false, w, gain)
}

// KaiserHighPass designs a Kaiser-windowed high pass. The estimated length
// is rounded up to odd.
func KaiserHighPass(ft, ripple, width, gain float64) ([]float64, error) {
	w, numTaps, err := kaiserDesign(ripple, width, true)
	if err != nil {
		return nil, err
	}
	return SincKernel(numTaps, ft, true, w, gain)
}

// KaiserBandPass designs a Kaiser-windowed band pass. The estimated length
// is rounded up to odd.
func KaiserBandPass(ft1, ft2, ripple, width, gain float64) ([]float64, error) {
	w, numTaps, err := kaiserDesign(ripple, width, true)
	if err != nil {
		return nil, err
	}
	return DualSincKernel(numTaps, ft1, ft2, false, w, gain)
}

// KaiserBandStop designs a Kaiser-windowed band stop. The estimated length
// is rounded up to odd.
func KaiserBandStop(ft1, ft2, ripple, width, gain float64) ([]float64, error) {
	w, numTaps, err := kaiserDesign(ripple, width, true)
	if err != nil {
		return nil, err
	}
	return DualSincKernel(numTaps, ft1, ft2, true, w, gain)
}

// toneKernel returns the Kaiser-windowed tone cos(2πf(i-semi)) over
// 2·semi+1 taps and its energy Σ w·cos².
func toneKernel(semi int, f, attenuation float64) ([]float64, float64, error) {
	if semi < 1 {
		return nil, 0, fmt.Errorf("filter semi-length must be positive: %d", semi)
	}
	if f < -maxNormalizedFrequency || f > maxNormalizedFrequency || math.IsNaN(f) {
		return nil, 0, fmt.Errorf("frequency %f outside [-0.5, 0.5]", f)
	}
	if attenuation < 0 {
		return nil, 0, fmt.Errorf("stop-band attenuation must not be negative: %f", attenuation)
	}
	w, err := Kaiser(mathutil.KaiserBeta(attenuation))
	if err != nil {
		return nil, 0, err
	}

	length := 2*semi + 1
	out := make([]float64, length)
	var energy float64
	for i := range length {
		p := math.Cos(2 * math.Pi * f * float64(i-semi))
		// Symmetric evaluation keeps the tone's phase response linear,
		// so the design frequency cancels exactly.
		v := p * w(i, length-1)
		out[i] = v
		energy += v * p
	}
	return out, energy, nil
}

// Notch designs a narrow band reject filter at normalized frequency f.
//
// A windowed tone at f, scaled to unit gain at f, is subtracted from a
// centred impulse so the response at f is zero and close to one elsewhere.
//
// Parameters:
//
//	semi: Filter semi-length; the kernel has 2·semi+1 taps
//	f: Notch frequency in cycles per sample, -0.5 ≤ f ≤ 0.5
//	attenuation: Stop-band attenuation in dB, selects the Kaiser β
func Notch(semi int, f, attenuation float64) ([]float64, error) {
	out, energy, err := toneKernel(semi, f, attenuation)
	if err != nil {
		return nil, err
	}
	scale := -1 / energy
	simdops.For[float64]().Scale(out, out, scale)
	out[semi]++
	return out, nil
}

// DCBlock is a notch at zero frequency.
func DCBlock(semi int, attenuation float64) ([]float64, error) {
	return Notch(semi, 0, attenuation)
}

// Peak designs a narrow band accept filter at normalized frequency f,
// normalized to unity gain at f.
func Peak(semi int, f, attenuation float64) ([]float64, error) {
	out, energy, err := toneKernel(semi, f, attenuation)
	if err != nil {
		return nil, err
	}
	out[semi]++
	simdops.For[float64]().Scale(out, out, 1/(energy+1))
	return out, nil
}
