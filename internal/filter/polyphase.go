package filter

import (
	"fmt"

	"github.com/tphakala/go-sdr-pipeline/internal/simdops"
)

// PolyphaseBank splits a kernel into m sub-filters for rational resampling.
//
// The kernel is scaled, zero padded to a multiple of m, and row i holds
// every m-th coefficient starting at i, in reversed order so it can be
// applied directly against a sliding sample window:
//
//	bank[i] = reverse(F[i], F[i+m], F[i+2m], ...)
//
// Parameters:
//
//	m: Number of rows (the interpolation factor)
//	kernel: Prototype filter coefficients, len(kernel) ≥ m
//	scale: Gain applied to every coefficient, typically m for unity gain
//
// Returns:
//
//	m rows of equal length ceil(len(kernel)/m)
//	padding: number of zero coefficients appended
func PolyphaseBank[F simdops.Float](m int, kernel []F, scale F) (bank [][]F, padding int, err error) {
	if m < 1 {
		return nil, 0, fmt.Errorf("polyphase bank size must be positive: %d", m)
	}
	n := len(kernel)
	if n == 0 {
		return nil, 0, fmt.Errorf("polyphase bank kernel must not be empty")
	}
	if m > n {
		return nil, 0, fmt.Errorf("polyphase bank size %d exceeds kernel length %d", m, n)
	}

	padding = (n+m-1)/m*m - n
	padded := make([]F, n+padding)
	simdops.For[F]().Scale(padded[:n], kernel, scale)

	rowLen := len(padded) / m
	bank = make([][]F, m)
	for i := range m {
		row := make([]F, rowLen)
		for k := range rowLen {
			row[k] = padded[(rowLen-1-k)*m+i]
		}
		bank[i] = row
	}
	return bank, padding, nil
}
