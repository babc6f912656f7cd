package filter

const (
	// halfDivisor is used for window centres and semi-lengths.
	halfDivisor = 2.0

	// maxNormalizedFrequency is the Nyquist frequency in cycles per sample.
	maxNormalizedFrequency = 0.5

	// Default frequency response resolution.
	defaultResponsePoints = 512

	// Magnitude floor for decibel conversion, avoids log(0).
	minMagnitude = 1e-10
	dbMultiplier = 20.0
)
