package sdr

import "math"

// Environment variable that enables debug logging on the default logger.
const debugEnv = "SDR_DEBUG"

// Oscillator constants
const (
	// oscillatorTableSize is the number of entries in an NCO lookup table.
	oscillatorTableSize = 1024

	// twoPi is one full oscillator cycle in radians.
	twoPi = 2 * math.Pi

	// minOversampling is the lowest sample to signal frequency ratio an NCO accepts.
	minOversampling = 2.0
)

// Carrier loop constants
const (
	// DefaultLoopBandwidth is the default frequency gain alpha of the mixer
	// and Costas loops. The phase gain is sqrt(alpha).
	DefaultLoopBandwidth = 0.1

	// tanhTableSize is the number of entries in the Costas tanh lookup table.
	tanhTableSize = 1024

	// tanhRange is the input magnitude beyond which the table saturates to ±1.
	tanhRange = 2.0

	// defaultNoiseLevel is the noise estimate of the SNR error estimator.
	defaultNoiseLevel = 1.0

	// scopeLoopItems is the width of a loop diagnostic tuple (frequency, phase, error).
	scopeLoopItems = 3
)

// Gain control constants
const (
	// DefaultAGCRate is the default per-sample adaptation rate.
	DefaultAGCRate = 1e-4

	// DefaultAGCReference is the default target output modulus.
	DefaultAGCReference = 1.0

	// DefaultAGCGain is the default initial gain.
	DefaultAGCGain = 1.0

	// autoGainSmoothing is the EMA factor of the block ceiling trackers.
	autoGainSmoothing = 0.025

	// autoGainTarget is the output peak the block AGC aims for.
	autoGainTarget = 0.5

	// dBPerDecade converts an amplitude ratio to decibels.
	dBPerDecade = 20.0
)

// FM constants
const (
	// DefaultDeemphasisTau is the broadcast FM de-emphasis time constant
	// (75 µs in the Americas, 50 µs in Europe).
	DefaultDeemphasisTau = 75e-6
)

// Spectrum constants
const (
	// DefaultFFTSize is the default spectrum length.
	DefaultFFTSize = 1024

	// DefaultSmoothing is the default exponential weight of a new spectrum.
	DefaultSmoothing = 0.1

	// spectrumFloor seeds the power accumulator so empty bins stay finite.
	spectrumFloor = 1e-15

	// powerDecibels converts a power ratio to decibels.
	powerDecibels = 10.0
)

// Resampler constants
const (
	// DefaultFilterSemiLength is the default synthesized kernel semi-length
	// in units of the larger rate factor.
	DefaultFilterSemiLength = 12

	// DefaultTransitionFrequency is the default synthesized kernel cutoff
	// relative to the larger rate factor's Nyquist band.
	DefaultTransitionFrequency = 0.5

	// kernelLengthFactor turns a semi-length into a full kernel length.
	kernelLengthFactor = 2
)

// Receiver constants
const (
	// DefaultIFRate is the FM receiver's demodulation rate in Hz.
	DefaultIFRate = 240000

	// DefaultAudioRate is the FM receiver's output rate in Hz.
	DefaultAudioRate = 48000

	// DefaultFMDeviation is the broadcast FM peak deviation in Hz.
	DefaultFMDeviation = 75000

	// DefaultChannelBandwidth is the broadcast FM channel filter edge in Hz.
	DefaultChannelBandwidth = 100000

	// DefaultAudioBandwidth is the audio low pass edge in Hz.
	DefaultAudioBandwidth = 15000

	// DefaultMaxStageFactor bounds the decimation of one planned stage.
	DefaultMaxStageFactor = 8
)

// Timing constants
const (
	// timeReportUnused is printed for a report with no samples.
	timeReportUnused = "unused"
)
