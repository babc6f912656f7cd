package sdr

import "math"

// Element is the sample type of a block: real float32 or complex complex64.
type Element interface {
	float32 | complex64
}

// isComplex reports whether E is complex64.
func isComplex[E Element]() bool {
	var zero E
	_, ok := any(zero).(complex64)
	return ok
}

// makeElement builds an E from its components. The imaginary part is
// dropped for real samples.
func makeElement[E Element](re, im float32) E {
	var v E
	switch p := any(&v).(type) {
	case *float32:
		*p = re
	case *complex64:
		*p = complex(re, im)
	}
	return v
}

// components splits a sample into real and imaginary parts.
func components[E Element](v E) (re, im float32) {
	switch x := any(v).(type) {
	case float32:
		return x, 0
	case complex64:
		return real(x), imag(x)
	}
	return 0, 0
}

// Modulus returns |v|.
func Modulus[E Element](v E) float32 {
	re, im := components(v)
	if im == 0 {
		return float32(math.Abs(float64(re)))
	}
	return float32(math.Hypot(float64(re), float64(im)))
}

// Argument returns the phase of v in (-π, π]. A negative real sample has
// argument π.
func Argument[E Element](v E) float32 {
	re, im := components(v)
	return float32(math.Atan2(float64(im), float64(re)))
}

// Power returns the squared modulus re² + im².
func Power[E Element](v E) float32 {
	re, im := components(v)
	return re*re + im*im
}
