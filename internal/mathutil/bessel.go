// Package mathutil provides the special functions and integer helpers used by
// filter design: the modified Bessel function for Kaiser windows, Kaiser
// parameter estimation, and the gcd used to reduce resampling ratios.
package mathutil

import (
	"fmt"
	"math"
)

// BesselI0 computes the modified Bessel function of the first kind, order zero: I₀(x).
// This function is used in Kaiser window calculation for filter design.
//
// The implementation uses Chebyshev polynomial approximations for numerical stability:
//   - For |x| < 3.75: Direct polynomial series expansion
//   - For |x| ≥ 3.75: Asymptotic expansion with exponential scaling
//
// Accuracy: relative error below 2e-7 over the whole range.
//
// Reference: Abramowitz & Stegun, "Handbook of Mathematical Functions" 9.8.1, 9.8.2
func BesselI0(x float64) float64 {
	// Use absolute value since I₀(x) = I₀(-x)
	ax := math.Abs(x)

	if ax < besselSmallArgThreshold {
		// I₀(x) ≈ P(t) where t = (x/3.75)²
		t := x / besselSmallArgThreshold
		t *= t

		return 1.0 + t*(besselI0Coeff1+t*(besselI0Coeff2+t*(besselI0Coeff3+
			t*(besselI0Coeff4+t*(besselI0Coeff5+t*besselI0Coeff6)))))
	}

	// I₀(x) ≈ (eˣ / √x) * P(t) where t = 3.75/x
	t := besselSmallArgThreshold / ax

	result := besselI0AsympCoeff0 + t*(besselI0AsympCoeff1+t*(besselI0AsympCoeff2+
		t*(besselI0AsympCoeff3+t*(besselI0AsympCoeff4+t*(besselI0AsympCoeff5+
			t*(besselI0AsympCoeff6+t*(besselI0AsympCoeff7+t*besselI0AsympCoeff8)))))))

	return math.Exp(ax) * result / math.Sqrt(ax)
}

// KaiserBeta computes the Kaiser window β parameter from the desired
// stopband attenuation in decibels.
//
// The β parameter controls the trade-off between main lobe width and
// sidelobe level in the Kaiser window.
//
// Formula from Kaiser & Schafer:
//   - For att > 50 dB: β = 0.1102 * (att - 8.7)
//   - For 21 dB < att ≤ 50 dB: β = 0.5842 * (att - 21)^0.4 + 0.07886 * (att - 21)
//   - For att ≤ 21 dB: β = 0
//
// Parameters:
//
//	attenuation: Desired stopband attenuation in dB (positive)
//
// Returns:
//
//	β parameter for Kaiser window (typically 0-15)
func KaiserBeta(attenuation float64) float64 {
	if attenuation > kaiserAttHigh {
		return kaiserBetaHighCoeff1 * (attenuation - kaiserBetaHighOffset)
	} else if attenuation > kaiserAttMedium {
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(delta, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*delta
	}
	return 0.0
}

// KaiserParameters estimates the Kaiser window length and β for a filter
// whose passband and stopband deviation must stay below 10^(-ripple/20).
//
// Parameters:
//
//	ripple: Maximum deviation in dB; the sign is ignored, |ripple| must be ≥ 8
//	width: Transition width as a fraction of the Nyquist frequency (1 = π rad/sample)
//
// Returns:
//
//	numTaps: ceil((a - 7.95) / 2.285 / (π * width) + 1)
//	beta: KaiserBeta(|ripple|)
func KaiserParameters(ripple, width float64) (numTaps int, beta float64, err error) {
	a := math.Abs(ripple)
	if a < kaiserMinAttenuation {
		return 0, 0, fmt.Errorf("ripple attenuation %.2f dB is too small for the Kaiser formula (minimum %.0f dB)",
			a, kaiserMinAttenuation)
	}
	if width <= 0 || math.IsNaN(width) {
		return 0, 0, fmt.Errorf("transition width must be positive: %f", width)
	}
	beta = KaiserBeta(a)
	taps := (a-kaiserLengthOffset)/kaiserLengthMultiplier/(math.Pi*width) + 1
	return int(math.Ceil(taps)), beta, nil
}

// GCD returns the greatest common divisor of two non-negative integers.
func GCD(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
