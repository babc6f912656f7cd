package sdr

import (
	"fmt"

	"github.com/tphakala/go-sdr-pipeline/internal/filter"
	"github.com/tphakala/go-sdr-pipeline/internal/mathutil"
)

// Window evaluates a window shape at sample n for denominator m: m = L-1
// for a symmetric window of length L, m = L for a periodic one.
type Window = filter.Window

// Window shapes.
var (
	Rectangular    Window = filter.Rectangular
	Bartlett       Window = filter.Bartlett
	Hann           Window = filter.Hann
	Hamming        Window = filter.Hamming
	Blackman       Window = filter.Blackman
	BlackmanHarris Window = filter.BlackmanHarris
	Nuttall33      Window = filter.Nuttall33
	Nuttall37      Window = filter.Nuttall37
	FlatTop        Window = filter.FlatTop
	HFT70          Window = filter.HFT70
	HFT90D         Window = filter.HFT90D
	HFT95          Window = filter.HFT95
)

// Kaiser returns a Kaiser window with shape parameter beta >= 0.
func Kaiser(beta float64) (Window, error) {
	w, err := filter.Kaiser(beta)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return w, nil
}

// WindowByName looks up a fixed-shape window by name, case-insensitive.
func WindowByName(name string) (Window, error) {
	w, err := filter.WindowByName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return w, nil
}

// PeriodicWindow samples w over length points for spectral analysis.
func PeriodicWindow(length int, w Window) []float32 {
	return toFloat32(filter.Periodic(length, w, 1))
}

// SymmetricWindow samples w over length points for filter design.
func SymmetricWindow(length int, w Window) []float32 {
	return toFloat32(filter.Symmetric(length, w, 1))
}

// KaiserBeta returns the Kaiser β for a stop-band attenuation in dB.
func KaiserBeta(attenuation float64) float64 {
	return mathutil.KaiserBeta(attenuation)
}

// KaiserParameters estimates the Kaiser length and β for a ripple in dB
// and a transition width as a fraction of Nyquist.
func KaiserParameters(ripple, width float64) (numTaps int, beta float64, err error) {
	numTaps, beta, err = mathutil.KaiserParameters(ripple, width)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return numTaps, beta, nil
}

// SincKernel designs a unity-gain windowed-sinc low or high pass at the
// normalized transition frequency ft (cycles per sample). A high pass needs
// an odd length. A nil window selects Blackman.
func SincKernel(length int, ft float64, highPass bool, w Window) ([]float32, error) {
	return design(filter.SincKernel(length, ft, highPass, w, 1))
}

// DualSincKernel designs a unity-gain windowed-sinc band pass or band stop
// between ft1 and ft2. The length must be odd.
func DualSincKernel(length int, ft1, ft2 float64, bandStop bool, w Window) ([]float32, error) {
	return design(filter.DualSincKernel(length, ft1, ft2, bandStop, w, 1))
}

// LowPass designs a windowed-sinc low pass with its transition in Hz.
func LowPass(length int, transitionHz, sampleHz float64, w Window) ([]float32, error) {
	return design(filter.LowPass(length, transitionHz, sampleHz, w, 1))
}

// HighPass designs a windowed-sinc high pass with its transition in Hz.
func HighPass(length int, transitionHz, sampleHz float64, w Window) ([]float32, error) {
	return design(filter.HighPass(length, transitionHz, sampleHz, w, 1))
}

// BandPass designs a windowed-sinc band pass with its edges in Hz.
func BandPass(length int, lowHz, highHz, sampleHz float64, w Window) ([]float32, error) {
	return design(filter.BandPass(length, lowHz, highHz, sampleHz, w, 1))
}

// BandStop designs a windowed-sinc band stop with its edges in Hz.
func BandStop(length int, lowHz, highHz, sampleHz float64, w Window) ([]float32, error) {
	return design(filter.BandStop(length, lowHz, highHz, sampleHz, w, 1))
}

// KaiserLowPass designs a low pass whose length and window follow from the
// ripple in dB and the transition width as a fraction of Nyquist.
func KaiserLowPass(ft, ripple, width float64) ([]float32, error) {
	return design(filter.KaiserLowPass(ft, ripple, width, 1))
}

// KaiserHighPass is the high pass counterpart of KaiserLowPass.
func KaiserHighPass(ft, ripple, width float64) ([]float32, error) {
	return design(filter.KaiserHighPass(ft, ripple, width, 1))
}

// KaiserBandPass designs a Kaiser-windowed band pass between ft1 and ft2.
func KaiserBandPass(ft1, ft2, ripple, width float64) ([]float32, error) {
	return design(filter.KaiserBandPass(ft1, ft2, ripple, width, 1))
}

// KaiserBandStop designs a Kaiser-windowed band stop between ft1 and ft2.
func KaiserBandStop(ft1, ft2, ripple, width float64) ([]float32, error) {
	return design(filter.KaiserBandStop(ft1, ft2, ripple, width, 1))
}

// Notch designs a 2·semi+1 tap band reject at normalized frequency f with
// zero response at f. attenuation selects the Kaiser β.
func Notch(semi int, f, attenuation float64) ([]float32, error) {
	return design(filter.Notch(semi, f, attenuation))
}

// DCBlock is a notch at zero frequency.
func DCBlock(semi int, attenuation float64) ([]float32, error) {
	return design(filter.DCBlock(semi, attenuation))
}

// Peak designs a 2·semi+1 tap band accept at normalized frequency f with
// unity response at f.
func Peak(semi int, f, attenuation float64) ([]float32, error) {
	return design(filter.Peak(semi, f, attenuation))
}

// PolyphaseBank splits kernel into m reversed sub-filter rows, each
// coefficient multiplied by scale, zero padding the kernel to a multiple
// of m. A scale of m keeps unity gain after interpolation by m.
func PolyphaseBank(m int, kernel []float32, scale float32) ([][]float32, error) {
	bank, _, err := filter.PolyphaseBank(m, kernel, scale)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return bank, nil
}

// FrequencyResponse evaluates the kernel's response at normalized
// frequency f in cycles per sample.
func FrequencyResponse(coeffs []float32, f float64) complex128 {
	return filter.FrequencyResponse(toFloat64(coeffs), f)
}

// design rounds a float64 design to sample precision.
func design(coeffs []float64, err error) ([]float32, error) {
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return toFloat32(coeffs), nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
